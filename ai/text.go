package ai

import "unicode/utf8"

// TruncateText caps text at max runes. Provider token budgets are opaque
// from out here; a rune cap is the conservative stand-in applied before
// each request.
func TruncateText(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	return string([]rune(text)[:max])
}
