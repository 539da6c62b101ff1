package ranking

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/college-counselor/internal/catalog"
	"github.com/spigell/college-counselor/internal/profile"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func mustCatalog(t *testing.T, entries ...catalog.Entry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(entries)
	require.NoError(t, err)
	return c
}

func TestAdmissionBonusScenario(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.JEEScore = intPtr(4000)
	c := mustCatalog(t, catalog.Entry{Name: "BITS Pilani", Location: "Rajasthan", Fees: 1200000, MinRank: intPtr(5000), Streams: []string{"Engineering"}})

	recs := Rank(p, c)
	require.Len(t, recs, 1)
	assert.Equal(t, 40, recs[0].MatchScore)
	assert.Equal(t, []string{"JEE rank qualifies (cutoff: 5000)"}, recs[0].MatchReasons)
}

func TestAdmissionFallsBackToNEET(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.NEETScore = intPtr(40)
	c := mustCatalog(t,
		catalog.Entry{Name: "AIIMS Delhi", Fees: 600000, MinRank: intPtr(50)},
		catalog.Entry{Name: "No cutoff", Fees: 1},
	)

	recs := Rank(p, c)
	assert.Equal(t, 40, recs[0].MatchScore)
	assert.Equal(t, []string{"NEET rank qualifies (cutoff: 50)"}, recs[0].MatchReasons)
	assert.Equal(t, []string{"General recommendation"}, recs[1].MatchReasons)
}

func TestBudgetBonusScenarios(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.BudgetMax = intPtr(600000)
	c := mustCatalog(t,
		catalog.Entry{Name: "Stretch", Fees: 700000},
		catalog.Entry{Name: "Exact stretch", Fees: 720000},
		catalog.Entry{Name: "Too expensive", Fees: 720001},
		catalog.Entry{Name: "Within", Fees: 600000},
	)

	recs := Rank(p, c)
	got := make(map[string]Recommendation, len(recs))
	for _, r := range recs {
		got[r.Name] = r
	}

	assert.Equal(t, 15, got["Stretch"].MatchScore)
	assert.Equal(t, []string{"Slightly above budget but manageable"}, got["Stretch"].MatchReasons)
	assert.Equal(t, 15, got["Exact stretch"].MatchScore)
	assert.Equal(t, 10, got["Too expensive"].MatchScore)
	assert.Equal(t, 25, got["Within"].MatchScore)
	assert.Equal(t, []string{"Within budget (₹600,000)"}, got["Within"].MatchReasons)
}

func TestZeroBudgetIsIgnored(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.BudgetMax = intPtr(0)
	recs := Rank(p, mustCatalog(t, catalog.Entry{Name: "Free", Fees: 0}))
	assert.Equal(t, 10, recs[0].MatchScore)
}

func TestEmptyProfileScoresBaselineInCatalogOrder(t *testing.T) {
	t.Parallel()

	c := catalog.Default()
	recs := Rank(profile.New(), c)
	require.Len(t, recs, DefaultLimit)

	entries := c.Entries()
	for i, r := range recs {
		assert.Equal(t, BaselineScore, r.MatchScore)
		assert.Equal(t, []string{"General recommendation"}, r.MatchReasons)
		assert.Equal(t, entries[i].Name, r.Name)
	}
}

func TestEmptyCatalogYieldsNoRecommendations(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.PreferredStream = strPtr("Engineering")
	assert.Empty(t, Rank(p, mustCatalog(t)))
	assert.Empty(t, Rank(p, nil))
}

func TestFullProfileAgainstDefaultCatalog(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.JEEScore = intPtr(2500)
	p.PreferredStream = strPtr("engineering")
	p.PreferredLocation = strPtr("Tamil Nadu")
	p.BudgetMax = intPtr(800000)

	recs := Rank(p, catalog.Default())
	require.Len(t, recs, 6)

	assert.Equal(t, "NIT Trichy", recs[0].Name)
	assert.Equal(t, 100, recs[0].MatchScore)
	assert.Equal(t, []string{
		"JEE rank qualifies (cutoff: 3000)",
		"Offers engineering",
		"Located in preferred area",
		"Within budget (₹500,000)",
	}, recs[0].MatchReasons)

	names := make([]string, 0, len(recs))
	scores := make([]int, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
		scores = append(scores, r.MatchScore)
	}
	assert.Equal(t, []string{"NIT Trichy", "VIT Vellore", "NIT Surathkal", "Graphic Era University", "BITS Pilani", "Manipal Institute of Technology"}, names)
	assert.Equal(t, []int{100, 90, 80, 80, 65, 65}, scores)
	assert.Equal(t, "Slightly above budget but manageable", recs[1].MatchReasons[3])

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].MatchScore, recs[i].MatchScore)
	}
}

func TestStreamMatchesEitherDirection(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.PreferredStream = strPtr("Computer Science Engineering")
	c := mustCatalog(t,
		catalog.Entry{Name: "A", Streams: []string{"Engineering"}},
		catalog.Entry{Name: "B", Streams: []string{"Arts"}},
	)

	recs := Rank(p, c)
	assert.Equal(t, "A", recs[0].Name)
	assert.Equal(t, 35, recs[0].MatchScore)
	assert.Equal(t, []string{"Offers Computer Science Engineering"}, recs[0].MatchReasons)
}

func TestTextMatchingNormalizesWidth(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.PreferredLocation = strPtr("ＤＥＬＨＩ")
	recs := Rank(p, mustCatalog(t, catalog.Entry{Name: "DU", Location: "Delhi"}))
	assert.Equal(t, 30, recs[0].MatchScore)
}

func TestRankingIsDeterministic(t *testing.T) {
	t.Parallel()

	p := profile.New()
	p.JEEScore = intPtr(12000)
	p.PreferredStream = strPtr("Management")
	p.BudgetMax = intPtr(700000)

	first, err := json.Marshal(Rank(p, catalog.Default()))
	require.NoError(t, err)
	second, err := json.Marshal(Rank(p.Clone(), catalog.Default()))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRankNCapsAtLimit(t *testing.T) {
	t.Parallel()

	r := New(WithLimit(3))
	assert.Len(t, r.RankN(profile.New(), catalog.Default(), 10), 3)
	assert.Len(t, r.RankN(profile.New(), catalog.Default(), 2), 2)
	assert.Len(t, r.RankN(profile.New(), catalog.Default(), 0), 3)

	assert.Equal(t, DefaultLimit, New(WithLimit(50)).Limit())
}

func TestDisabledBonusIsSkipped(t *testing.T) {
	t.Parallel()

	r := New()
	require.True(t, r.DisableByName("budget", "configured"))
	assert.False(t, r.DisableByName("unknown", "configured"))

	p := profile.New()
	p.BudgetMax = intPtr(1000000)
	recs := r.Rank(p, mustCatalog(t, catalog.Entry{Name: "A", Fees: 10}))
	assert.Equal(t, 10, recs[0].MatchScore)

	want := []Status{
		{Name: "admission", Enabled: true, Details: map[string]string{"points": "30", "ranks": "jee_score, neet_score"}},
		{Name: "stream", Enabled: true, Details: map[string]string{"points": "25"}},
		{Name: "location", Enabled: true, Details: map[string]string{"points": "20"}},
		{Name: "budget", Enabled: false, Reason: "configured", Details: map[string]string{"points": "15", "stretch_points": "5"}},
	}
	if diff := cmp.Diff(want, r.Describe()); diff != "" {
		t.Fatalf("unexpected statuses (-want +got):\n%s", diff)
	}
}

func TestRecommendationJSONFlattensEntry(t *testing.T) {
	t.Parallel()

	rec := Recommendation{Entry: catalog.Entry{Name: "A", Fees: 1}, MatchScore: 10, MatchReasons: []string{"General recommendation"}}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "A", decoded["name"])
	assert.Equal(t, float64(10), decoded["match_score"])
}
