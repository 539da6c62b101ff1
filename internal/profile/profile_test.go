package profile

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	stream := "Engineering"
	jee := 1200
	p := New()
	p.PreferredStream = &stream
	p.JEEScore = &jee
	p.AdditionalInfo["hostel"] = "yes"
	p.ConfidenceScores[PreferredStream] = 0.9

	c := p.Clone()
	*c.PreferredStream = "Medicine"
	*c.JEEScore = 1
	c.AdditionalInfo["hostel"] = "no"
	c.ConfidenceScores[PreferredStream] = 0.1

	assert.Equal(t, "Engineering", *p.PreferredStream)
	assert.Equal(t, 1200, *p.JEEScore)
	assert.Equal(t, "yes", p.AdditionalInfo["hostel"])
	assert.Equal(t, 0.9, p.ConfidenceScores[PreferredStream])
}

func TestKnownAndNonEmpty(t *testing.T) {
	t.Parallel()

	grade := 91.5
	budget := 500000
	p := New()
	p.Grade12Percentage = &grade
	p.BudgetMax = &budget

	known := p.Known()
	if diff := cmp.Diff(map[string]any{Grade12Percentage: 91.5, BudgetMax: 500000}, known); diff != "" {
		t.Fatalf("unexpected known fields (-want +got):\n%s", diff)
	}
	assert.NotContains(t, p.NonEmpty(), "additional_info")

	p.AdditionalInfo["hostel"] = "yes"
	assert.Equal(t, map[string]any{"hostel": "yes"}, p.NonEmpty()["additional_info"])
	assert.Equal(t, 2, p.FilledCount())
}

func TestValidateReportsEveryOutOfRangeField(t *testing.T) {
	t.Parallel()

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{
		"grade_10_percentage": 120,
		"cgpa": 11,
		"gre_score": 200,
		"budget_max": 500000,
		"confidence_scores": {"cgpa": 1.5}
	}`), &p))

	err := p.Validate()
	require.ErrorIs(t, err, ErrValidation)
	for _, name := range []string{Grade10Percentage, CGPA, GREScore, "confidence_scores.cgpa"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.NotContains(t, err.Error(), BudgetMax)
}

func TestProfileJSONUsesSchemaNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(New())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, f := range Fields {
		assert.Contains(t, decoded, f.Name)
	}
	assert.Contains(t, decoded, "additional_info")
}

func TestSummaryListsKnownFieldsInSchemaOrder(t *testing.T) {
	t.Parallel()

	stream := "Engineering"
	grade := 90.0
	p := New()
	p.PreferredStream = &stream
	p.Grade12Percentage = &grade

	assert.Equal(t, "grade_12_percentage: 90\npreferred_stream: Engineering", p.Summary())
}
