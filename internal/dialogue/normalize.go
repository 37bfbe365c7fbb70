package dialogue

import (
	"strings"
	"unicode"
)

// normalize lowercases the text, strips punctuation and emoji and collapses
// whitespace, so button titles, free text and sloppy typing compare equal.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// deaccent folds the accented vowels and ç that show up in Portuguese input,
// so "convênio" and "convenio" match the same branch.
func deaccent(s string) string {
	return accentReplacer.Replace(s)
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// matchable returns the normalized, accent-folded form used by all branch
// predicates.
func matchable(s string) string {
	return deaccent(normalize(s))
}

// containsAny reports whether the matchable form of s contains any of the
// (already matchable) needles.
func containsAny(s string, needles ...string) bool {
	m := matchable(s)
	for _, n := range needles {
		if strings.Contains(m, n) {
			return true
		}
	}
	return false
}
