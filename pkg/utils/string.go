package utils

import "strings"

// Truncate shortens s to at most maxLen runes, appending "..." when anything
// was cut. Runs of whitespace, including newlines, collapse to single spaces
// so the result fits on one table row.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRight(string(runes[:maxLen]), " ") + "..."
}
