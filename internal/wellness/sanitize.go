package wellness

import (
	"strings"
	"unicode"
)

// kept alongside letters, digits and marks; everything else is dropped
const keptPunctuation = ".,!?;:'-/&()"

var quoteFolder = strings.NewReplacer("‘", "'", "’", "'", "“", "", "”", "", "\"", "")

// Sanitize reduces raw generator output to at most MaxWords plain words: wrapping
// quotes, emoji and symbols, repeated whitespace and trailing punctuation are
// removed. It is pure.
func Sanitize(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'“”‘’")
	s = quoteFolder.Replace(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.Is(unicode.Variation_Selector, r):
			return -1
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.In(r, unicode.Mn, unicode.Mc):
			return r
		case strings.ContainsRune(keptPunctuation, r):
			return r
		}
		return -1
	}, s)
	words := strings.Fields(s)
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	s = strings.Join(words, " ")
	trim := func(r rune) bool { return r == ' ' || strings.ContainsRune(keptPunctuation, r) }
	return strings.TrimLeftFunc(strings.TrimRightFunc(s, trim), trim)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int { return len(strings.Fields(s)) }
