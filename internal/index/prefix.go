package index

import "strings"

// Prefixes derives the complete set of index keys for a normalized term:
// every non-empty leading substring of every space-separated word. A word of
// length L contributes exactly L prefixes, the longest being the word
// itself; empty words from repeated spaces contribute nothing. Duplicates
// across words are permitted, they collapse at the store.
//
// Storing every prefix as its own ranked set trades index size for a single
// O(1) range read per suggest query, with no prefix scan against the store.
func Prefixes(normalized string) []string {
	words := strings.Split(normalized, " ")
	var keys []string
	for _, word := range words {
		word = strings.TrimSpace(word)
		// normalized is ASCII, so byte slicing is rune-safe here.
		for i := 1; i <= len(word); i++ {
			keys = append(keys, word[:i])
		}
	}
	return keys
}
