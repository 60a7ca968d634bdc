package resolver

import (
	"strings"
	"unicode"
)

// NormalizeName Unicode case-folds, collapses internal whitespace, and trims
// a display name for comparison, per spec §4.1.
func NormalizeName(name string) string {
	folded := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(folded))
	prevSpace := false
	for _, r := range strings.TrimSpace(folded) {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			prevSpace = true
			b.WriteRune(' ')
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// NormalizeEmail lowercases and trims an email address for equality checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCompany applies the same fold/collapse/trim rule as NormalizeName;
// company names are compared using the identical normalization.
func NormalizeCompany(company string) string {
	return NormalizeName(company)
}
