package ranking

import (
	"sort"

	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/profile"
)

const (
	// DefaultLimit is the default and maximum number of recommendations.
	DefaultLimit = 6
	// BaselineScore is added to every entry.
	BaselineScore = 10

	genericReason = "General recommendation"
)

// Bonus is a single scoring step evaluated against every catalog entry.
type Bonus interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	// Score returns the awarded points and reason. ok is false when the bonus does not apply.
	Score(p *profile.Profile, e *catalog.Entry) (points int, reason string, ok bool)
}

// Status represents runtime information about a bonus.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type statusProvider interface {
	Status() Status
}

// Recommendation is a scored catalog entry.
type Recommendation struct {
	catalog.Entry
	MatchScore   int      `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

// Ranker scores catalog entries against a profile.
type Ranker struct {
	bonuses []Bonus
	limit   int
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithLimit caps the number of results. Values outside [1, DefaultLimit] are ignored.
func WithLimit(n int) Option {
	return func(r *Ranker) {
		if n > 0 && n <= DefaultLimit {
			r.limit = n
		}
	}
}

// WithBonuses replaces the default bonus steps.
func WithBonuses(bonuses ...Bonus) Option {
	return func(r *Ranker) {
		r.bonuses = bonuses
	}
}

// DefaultBonuses returns the scoring steps in evaluation order.
func DefaultBonuses() []Bonus {
	return []Bonus{
		NewAdmission(),
		NewStream(),
		NewLocation(),
		NewBudget(),
	}
}

// New creates a ranker with the default bonuses and limit.
func New(opts ...Option) *Ranker {
	r := &Ranker{bonuses: DefaultBonuses(), limit: DefaultLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limit returns the configured result cap.
func (r *Ranker) Limit() int {
	return r.limit
}

// Rank returns up to Limit recommendations.
func (r *Ranker) Rank(p *profile.Profile, c *catalog.Catalog) []Recommendation {
	return r.RankN(p, c, r.limit)
}

// RankN returns up to n recommendations, never more than Limit. Scores are sorted descending
// with catalog order kept on ties.
func (r *Ranker) RankN(p *profile.Profile, c *catalog.Catalog, n int) []Recommendation {
	if n <= 0 || n > r.limit {
		n = r.limit
	}
	if p == nil {
		p = profile.New()
	}

	entries := c.Entries()
	recs := make([]Recommendation, 0, len(entries))
	for i := range entries {
		recs = append(recs, r.score(p, &entries[i]))
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].MatchScore > recs[j].MatchScore
	})

	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

func (r *Ranker) score(p *profile.Profile, e *catalog.Entry) Recommendation {
	score := BaselineScore
	reasons := make([]string, 0, len(r.bonuses))
	for _, bonus := range r.bonuses {
		if !bonus.IsEnabled() {
			continue
		}
		points, reason, ok := bonus.Score(p, e)
		if !ok {
			continue
		}
		score += points
		reasons = append(reasons, reason)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, genericReason)
	}
	return Recommendation{Entry: *e, MatchScore: score, MatchReasons: reasons}
}

// DisableByName marks the bonus with the provided name as disabled while keeping it in the list.
func (r *Ranker) DisableByName(name, reason string) bool {
	found := false
	for _, bonus := range r.bonuses {
		if bonus.Name() == name {
			bonus.Disable(reason)
			found = true
		}
	}
	return found
}

// Describe returns status entries for the configured bonuses.
func (r *Ranker) Describe() []Status {
	statuses := make([]Status, 0, len(r.bonuses))
	for _, bonus := range r.bonuses {
		if reporter, ok := bonus.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: bonus.Name(), Enabled: bonus.IsEnabled()})
	}
	return statuses
}

// Rank scores c against p with the default ranker.
func Rank(p *profile.Profile, c *catalog.Catalog) []Recommendation {
	return New().Rank(p, c)
}
