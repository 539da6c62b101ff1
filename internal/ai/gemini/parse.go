package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// extractJSON strips code fences and surrounding prose, returning the outermost JSON object when one is present.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	if start == -1 {
		return raw
	}
	if end := strings.LastIndex(raw, "}"); end > start {
		return raw[start : end+1]
	}
	return raw[start:]
}

// decodeObject parses a JSON object, closing brackets left open by a truncated response.
func decodeObject(raw string) (map[string]any, error) {
	var data map[string]any
	err := json.Unmarshal([]byte(raw), &data)
	if err == nil {
		return data, nil
	}

	repaired, ok := closeTruncated(raw)
	if !ok {
		return nil, err
	}
	if repairErr := json.Unmarshal([]byte(repaired), &data); repairErr != nil {
		return nil, err
	}
	return data, nil
}

func closeTruncated(raw string) (string, bool) {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) == 0 && !inString {
		return "", false
	}

	var b strings.Builder
	b.WriteString(raw)
	if inString {
		b.WriteByte('"')
	}
	out := strings.TrimRight(b.String(), " \n\r\t")
	out = strings.TrimSuffix(out, ",")
	out = strings.TrimSuffix(out, ":")
	b.Reset()
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String(), true
}

// isNothingFound reports the explicit empty answers the oracle uses.
func isNothingFound(cleaned string) bool {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(cleaned), `"'.`)) {
	case "", "{}", "null", "none", "nothing", "no information", "n/a":
		return true
	}
	return false
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case nil:
		return nil
	default:
		if s := coerceString(val); s != "" {
			return []string{s}
		}
		return nil
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0.5
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
