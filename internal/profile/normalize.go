package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	lakh  = 100_000
	crore = 10_000_000
)

// amountPattern finds the first number and the unit written right after it, once spaces and separators
// are removed.
var amountPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)(crores?|cr|lakhs?|lacs?)?`)

// NormalizeBudget converts an amount in rupees, optionally written in lakh or crore, into an integer.
// Negative amounts and ranges are rejected.
func NormalizeBudget(value any) (int, error) {
	s, ok := value.(string)
	if !ok {
		return coerceInt(value)
	}

	cleaned := strings.ToLower(s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	if strings.Contains(cleaned, "-") {
		return 0, fmt.Errorf("negative amount or range in %q", s)
	}

	m := amountPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, fmt.Errorf("no amount in %q", s)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}

	unit := 1.0
	switch {
	case strings.HasPrefix(m[2], "cr"):
		unit = crore
	case m[2] != "":
		unit = lakh
	case strings.Contains(cleaned, "lakh") || strings.Contains(cleaned, "lac"):
		unit = lakh
	case strings.Contains(cleaned, "crore"):
		unit = crore
	case f != math.Trunc(f):
		return 0, fmt.Errorf("fractional rupee amount in %q", s)
	}
	return int(math.Round(f * unit)), nil
}

// NormalizeGender maps common spellings onto Male and Female and title-cases anything else.
func NormalizeGender(value any) (string, error) {
	s, err := coerceText(value)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(s) {
	case "male", "boy", "m", "man":
		return "Male", nil
	case "female", "girl", "f", "woman":
		return "Female", nil
	}
	// A Caser keeps state between calls and must not be shared.
	return cases.Title(language.Und).String(s), nil
}

func coerceFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v.String())
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}

func coerceInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		value = s
	}

	f, err := coerceFloat(value)
	if err != nil {
		return 0, fmt.Errorf("expected an integer: %w", err)
	}
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("expected an integer, got %v", f)
	}
	return int(f), nil
}

func coerceText(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("expected text, got %T", value)
	}
}

// isBlank reports whether a raw value carries no information.
func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}
