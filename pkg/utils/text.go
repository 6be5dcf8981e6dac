package utils

import "strings"

// CapWords shortens free text to at most max words, appending an
// ellipsis when anything was dropped. Empty input passes through.
func CapWords(s string, max int) string {
	if max <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ") + "…"
}
