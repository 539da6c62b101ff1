package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input  string
		limit  int
		expect string
	}{
		"disabled preview": {
			input:  `{"academic_performance": {"jee_score": {"value": 4000}}}`,
			limit:  0,
			expect: "",
		},
		"short student message kept whole": {
			input:  "I scored 92 in 12th",
			limit:  40,
			expect: "I scored 92 in 12th",
		},
		"oracle response cut at limit": {
			input:  "```json\n{\"sufficient_for_recommendations\": true}\n```",
			limit:  7,
			expect: "```json...",
		},
		"rupee amounts are cut on rune boundaries": {
			input:  "₹8,00,000 बजट",
			limit:  3,
			expect: "₹8,...",
		},
		"surrounding whitespace trimmed first": {
			input:  "\n  budget 8 lakhs  \n",
			limit:  16,
			expect: "budget 8 lakhs",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}
