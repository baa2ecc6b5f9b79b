package validators

import (
	"strings"
	"unicode/utf8"
)

// CleanText collapses internal whitespace runs and truncates to at most
// limit bytes without splitting a UTF-8 sequence. A limit of zero keeps
// the full string.
func CleanText(raw string, limit int) string {
	s := strings.Join(strings.Fields(raw), " ")
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], " ")
}
