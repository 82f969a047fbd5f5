package util

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace and strips control characters.
// Applied to free-form values headed for logs or reports.
func SanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// SanitizeEnvValue cleans a parameter value the way shells hand them over:
// whitespace trimmed and one layer of matching surrounding quotes removed.
// Run parameters pass through this at binding time.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
