package strings

import (
	"strings"
)

// DefaultMessageMaxLen is the width error messages are cut to in tabular CLI output.
const DefaultMessageMaxLen = 100

// minMaxLen leaves room for one character plus the ellipsis.
const minMaxLen = 4

// SingleLine collapses all whitespace in s, including newlines, into single
// spaces and cuts the result to at most maxLen runes, ending in "..." when
// something was cut. API server errors often span several lines, which
// breaks table layouts.
func SingleLine(s string, maxLen int) string {
	if maxLen < minMaxLen {
		maxLen = minMaxLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
