package profile

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/multierr"
)

// ErrValidation marks a profile or merge that failed field validation.
var ErrValidation = errors.New("profile validation failed")

// FieldError describes a single rejected field value.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Coerce converts a raw oracle value into the field's type and range-checks it.
// The result is a float64, int or string.
func (f Field) Coerce(value any) (any, error) {
	var (
		out any
		err error
	)

	switch f.Kind {
	case KindFloat:
		out, err = coerceFloat(value)
	case KindInt:
		out, err = coerceInt(value)
	case KindBudget:
		out, err = NormalizeBudget(value)
	case KindGender:
		out, err = NormalizeGender(value)
	case KindText:
		out, err = coerceText(value)
	default:
		err = fmt.Errorf("unsupported kind %s", f.Kind)
	}
	if err != nil {
		return nil, &FieldError{Field: f.Name, Value: value, Reason: err.Error()}
	}

	if s, ok := out.(string); ok && s == "" {
		return nil, &FieldError{Field: f.Name, Value: value, Reason: "empty text"}
	}

	if err := f.checkRange(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f Field) checkRange(value any) error {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	default:
		return nil
	}

	if f.Min != nil && n < *f.Min {
		return &FieldError{Field: f.Name, Value: value, Reason: "must be at least " + formatBound(*f.Min)}
	}
	if f.Max != nil && n > *f.Max {
		return &FieldError{Field: f.Name, Value: value, Reason: "must be at most " + formatBound(*f.Max)}
	}
	return nil
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Validate range-checks every set scalar field and every stored confidence. All failures are
// reported together and the returned error wraps ErrValidation.
func (p *Profile) Validate() error {
	if p == nil {
		return nil
	}

	var errs error
	for _, f := range Fields {
		v, ok := p.Get(f.Name)
		if !ok {
			continue
		}
		errs = multierr.Append(errs, f.checkRange(v))
	}

	for _, key := range sortedKeys(p.ConfidenceScores) {
		c := p.ConfidenceScores[key]
		if c < 0 || c > 1 {
			errs = multierr.Append(errs, &FieldError{Field: "confidence_scores." + key, Value: c, Reason: "must be within [0, 1]"})
		}
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrValidation, errs)
	}
	return nil
}
