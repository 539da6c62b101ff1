package ranking

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}

// overlaps reports a case-insensitive substring match in either direction.
func overlaps(a, b string) bool {
	a, b = fold(a), fold(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
