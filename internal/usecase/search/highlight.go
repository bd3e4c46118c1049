package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minHighlightToken is the shortest query word (in runes) that gets highlighted.
const minHighlightToken = 2

// Segment is a run of display text that either matched the query or not.
type Segment struct {
	Text    string
	IsMatch bool
}

// Highlight splits text into segments, marking case-insensitive occurrences
// of query words with at least two runes. Concatenating every Segment.Text
// reproduces text byte for byte, including invalid UTF-8.
func Highlight(text, query string) []Segment {
	if text == "" {
		return []Segment{}
	}
	tokens := highlightTokens(query)
	if len(tokens) == 0 {
		return []Segment{{Text: text}}
	}

	// offsets[i] is the byte offset of rune i; the final entry is len(text).
	offsets := make([]int, 0, len(text)+1)
	folded := make([]rune, 0, len(text))
	for i, r := range text {
		offsets = append(offsets, i)
		folded = append(folded, unicode.ToLower(r))
	}
	offsets = append(offsets, len(text))

	marked := make([]bool, len(folded))
	for _, tok := range tokens {
		for i := 0; i+len(tok) <= len(folded); i++ {
			if runesEqual(folded[i:i+len(tok)], tok) {
				for j := i; j < i+len(tok); j++ {
					marked[j] = true
				}
			}
		}
	}

	segments := make([]Segment, 0, 3)
	start := 0
	for i := 1; i <= len(folded); i++ {
		if i == len(folded) || marked[i] != marked[start] {
			segments = append(segments, Segment{
				Text:    text[offsets[start]:offsets[i]],
				IsMatch: marked[start],
			})
			start = i
		}
	}
	return segments
}

func highlightTokens(query string) [][]rune {
	seen := make(map[string]struct{})
	var tokens [][]rune
	for _, w := range strings.Fields(query) {
		if utf8.RuneCountInString(w) < minHighlightToken {
			continue
		}
		tok := make([]rune, 0, len(w))
		for _, r := range w {
			tok = append(tok, unicode.ToLower(r))
		}
		key := string(tok)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
