package search

import "github.com/hbollon/go-edlib"

// Distance returns the Levenshtein edit distance between a and b in runes:
// the minimum number of single-rune insertions, deletions or substitutions
// turning a into b. An empty side yields the length of the other.
func Distance(a, b string) int {
	return edlib.LevenshteinDistance(a, b)
}
