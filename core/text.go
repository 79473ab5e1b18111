package core

import (
	"regexp"
	"strings"
)

var (
	whitespaceRE = regexp.MustCompile(`\s+`)

	// Letters, digits, underscore, whitespace and basic punctuation stay;
	// everything else becomes a space.
	disallowedRE = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:\-'"()]`)
)

// CleanText normalizes raw catalog text: whitespace runs collapse to a
// single space, characters outside letters/digits/basic punctuation are
// replaced with spaces, and the result is trimmed.
func CleanText(text string) string {
	text = whitespaceRE.ReplaceAllString(strings.TrimSpace(text), " ")
	text = disallowedRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// BuildFullText assembles the text a song's embedding is computed from.
// The layout is fixed so re-embedding an unchanged song is reproducible.
func BuildFullText(title, artist, lyrics string) string {
	return "Title: " + title + ". Artist: " + artist + ". Lyrics: " + lyrics
}
