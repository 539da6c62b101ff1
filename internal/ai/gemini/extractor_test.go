package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/spigell/college-counselor/internal/profile"
)

func TestParseFacts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want profile.Facts
	}{
		{
			name: "plain json",
			raw:  `{"academic_performance": {"grade_12_percentage": {"value": 92, "confidence": 0.9}}}`,
			want: profile.Facts{"academic_performance": {"grade_12_percentage": {Value: 92.0, Confidence: 0.9}}},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"preferences\": {\"preferred_stream\": {\"value\": \"Engineering\", \"confidence\": \"0.8\"}}}\n```",
			want: profile.Facts{"preferences": {"preferred_stream": {Value: "Engineering", Confidence: 0.8}}},
		},
		{
			name: "json inside prose",
			raw:  "Sure! Here is what I found:\n{\"constraints\": {\"budget_max\": {\"value\": \"5 lakhs\", \"confidence\": 0.7}}}\nLet me know.",
			want: profile.Facts{"constraints": {"budget_max": {Value: "5 lakhs", Confidence: 0.7}}},
		},
		{
			name: "truncated json",
			raw:  `{"preferences": {"preferred_location": {"value": "Delhi", "confidence": 0.9}, "preferred_stream": {"val`,
			want: profile.Facts{"preferences": {"preferred_location": {Value: "Delhi", Confidence: 0.9}}},
		},
		{
			name: "bare scalar and missing confidence",
			raw:  `{"personal_info": {"gender": "male", "category": {"value": "OBC"}}}`,
			want: profile.Facts{"personal_info": {
				"gender":   {Value: "male", Confidence: profile.DefaultConfidence},
				"category": {Value: "OBC", Confidence: profile.DefaultConfidence},
			}},
		},
		{
			name: "separate confidence category",
			raw:  `{"goals_interests": {"career_goal": "doctor"}, "confidence": {"career_goal": 0.85}}`,
			want: profile.Facts{"goals_interests": {"career_goal": {Value: "doctor", Confidence: 0.85}}},
		},
		{
			name: "entries without value are skipped",
			raw:  `{"academic_performance": {"cgpa": {"confidence": 0.9}, "jee_score": null}, "note": "n/a"}`,
			want: profile.Facts{},
		},
		{
			name: "confidence clamped",
			raw:  `{"additional": {"hostel": {"value": "needed", "confidence": 7}}}`,
			want: profile.Facts{"additional": {"hostel": {Value: "needed", Confidence: 1}}},
		},
		{name: "empty object", raw: "{}", want: profile.Facts{}},
		{name: "null", raw: "null", want: profile.Facts{}},
		{name: "none", raw: `"None"`, want: profile.Facts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseFacts(tt.raw)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected facts (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFactsRejectsNonJSON(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"I could not understand that.", `{"a": }`} {
		if _, err := parseFacts(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestExtractorBuildsPromptWithProfileAndMessage(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: `{"academic_performance": {"jee_score": {"value": 4000, "confidence": 0.9}}}`}
	e := NewExtractor(gen, zap.NewNop(), 0)

	facts, err := e.Extract(context.Background(), "My JEE rank is 4000", map[string]any{"preferred_stream": "Engineering"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if facts.Len() != 1 {
		t.Fatalf("expected one fact, got %v", facts)
	}

	req := gen.last()
	if !strings.Contains(req.Message, "My JEE rank is 4000") || !strings.Contains(req.Message, `"preferred_stream": "Engineering"`) {
		t.Fatalf("prompt misses message or profile:\n%s", req.Message)
	}
	if !req.JSON || req.Temperature == nil || *req.Temperature != extractionTemperature {
		t.Fatalf("unexpected request options: %+v", req)
	}
}

func TestExtractorPropagatesGeneratorErrors(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{err: errors.New("boom")}
	e := NewExtractor(gen, nil, 0)

	if _, err := e.Extract(context.Background(), "hello", nil); err == nil {
		t.Fatal("expected error")
	}

	facts, err := e.Extract(context.Background(), "   ", nil)
	if err != nil || facts.Len() != 0 {
		t.Fatalf("expected empty facts for blank message, got %v, %v", facts, err)
	}
}
