package ranking

import (
	"fmt"

	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/profile"
)

const admissionPoints = 30

type admissionBonus struct {
	toggle
}

// NewAdmission awards entries whose cutoff the student's entrance rank clears.
func NewAdmission() Bonus {
	return &admissionBonus{}
}

func (b *admissionBonus) Name() string { return "admission" }

func (b *admissionBonus) Score(p *profile.Profile, e *catalog.Entry) (int, string, bool) {
	if e.MinRank == nil {
		return 0, "", false
	}
	exam, rank, ok := entranceRank(p)
	if !ok || rank > *e.MinRank {
		return 0, "", false
	}
	return admissionPoints, fmt.Sprintf("%s rank qualifies (cutoff: %d)", exam, *e.MinRank), true
}

func (b *admissionBonus) Status() Status {
	st := b.status(b.Name(), admissionPoints)
	st.Details["ranks"] = "jee_score, neet_score"
	return st
}

// entranceRank prefers the JEE rank and falls back to NEET.
func entranceRank(p *profile.Profile) (string, int, bool) {
	if p.JEEScore != nil {
		return "JEE", *p.JEEScore, true
	}
	if p.NEETScore != nil {
		return "NEET", *p.NEETScore, true
	}
	return "", 0, false
}
