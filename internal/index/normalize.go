package index

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer converts raw terms into the canonical ASCII form used for both
// indexing and lookup: accented characters are reduced to their base letter,
// anything without an ASCII equivalent is dropped, and the result is
// lowercased. Normalization is deterministic, so a query written the same
// way as an indexed term always produces the same key.
//
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct{}

// NewNormalizer returns a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Term normalizes text for indexing. Word boundaries (spaces) are preserved
// so the caller can derive per-word prefixes; per-word trimming happens
// during splitting, not here.
func (n *Normalizer) Term(text string) string {
	return transliterate(text)
}

// Lookup normalizes text into a single lookup key: the whole string is
// trimmed, then transliterated and lowercased. No word splitting or prefix
// expansion is applied.
func (n *Normalizer) Lookup(text string) string {
	return transliterate(strings.TrimSpace(text))
}

// transliterate decomposes the input (NFD), strips combining marks, drops
// any remaining non-ASCII runes, and lowercases ASCII letters.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	decomposed, _, err := transform.String(t, s)
	if err != nil {
		// NFD cannot fail on valid UTF-8; fall back to the raw input
		// so malformed bytes are handled by the ASCII filter below.
		decomposed = s
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r > unicode.MaxASCII {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
