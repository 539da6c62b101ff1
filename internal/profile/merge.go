package profile

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DefaultConfidence is assigned to facts the oracle returned without a confidence.
const DefaultConfidence = 0.5

// Fact is a single value extracted from a message.
type Fact struct {
	Value      any     `json:"value" mapstructure:"value"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
}

// Facts groups extracted facts by category and field.
type Facts map[string]map[string]Fact

// Len counts facts over all categories.
func (f Facts) Len() int {
	n := 0
	for _, fields := range f {
		n += len(fields)
	}
	return n
}

// HistoryEntry is the audit record of one accepted merge.
type HistoryEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	Message         string    `json:"message"`
	ExtractedFields []string  `json:"extracted_fields"`
	TotalFieldsNow  int       `json:"total_fields_now"`
}

// MergeResult holds the merged profile and its audit entry.
type MergeResult struct {
	Profile *Profile
	Entry   HistoryEntry
}

// Updated reports whether the merge changed anything.
func (r *MergeResult) Updated() bool {
	return r != nil && len(r.Entry.ExtractedFields) > 0
}

// Merge folds facts into a copy of p. Facts are applied in sorted category and field order with
// last-write-wins semantics. Facts under the additional category, an unknown category or an unmapped
// field are kept in additional_info. Any invalid fact rejects the whole merge and p is left untouched.
func Merge(p *Profile, facts Facts, message string, at time.Time) (*MergeResult, error) {
	merged := p.Clone()
	updates := make([]string, 0, facts.Len())

	var errs error
	for _, category := range sortedKeys(facts) {
		canonical := CanonicalCategory(category)
		fields := facts[category]

		for _, name := range sortedKeys(fields) {
			fact := fields[name]
			key := normalizeName(name)
			if key == "" || isBlank(fact.Value) {
				continue
			}
			confidence := clampConfidence(fact.Confidence)

			field, ok := Lookup(canonical, key)
			if !ok {
				bookkeeping := AdditionalPrefix + key
				merged.AdditionalInfo[key] = fact.Value
				merged.ConfidenceScores[bookkeeping] = confidence
				merged.ExtractionTimestamps[bookkeeping] = at
				updates = append(updates, fmt.Sprintf("%s: %v", bookkeeping, fact.Value))
				continue
			}

			value, err := field.Coerce(fact.Value)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}

			merged.set(field.Name, value)
			merged.ConfidenceScores[field.Name] = confidence
			merged.ExtractionTimestamps[field.Name] = at
			updates = append(updates, fmt.Sprintf("%s: %v", field.Name, value))
		}
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	return &MergeResult{
		Profile: merged,
		Entry: HistoryEntry{
			Timestamp:       at,
			Message:         message,
			ExtractedFields: updates,
			TotalFieldsNow:  merged.FilledCount(),
		},
	}, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return DefaultConfidence
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

func sortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Summary renders the known fields as "name: value" lines in schema order.
func (p *Profile) Summary() string {
	var b strings.Builder
	for _, f := range Fields {
		v, ok := p.Get(f.Name)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", f.Name, v)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
