package release

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ligatures are distinct letters in Nordic/Germanic alphabets that NFKD
// does not decompose to ASCII, handled before the transform chain runs.
var ligatures = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "TH",
)

// separators maps release-name punctuation to spaces. Apostrophes are
// removed rather than spaced so "Baldur's" tokenizes as "baldurs".
var separators = strings.NewReplacer(
	".", " ", "_", " ", "-", " ",
	":", " ", "!", " ", ",", " ", ";", " ",
	"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
	"'", "", "’", "", "‘", "", "`", "",
	"&", " and ",
)

// Fold strips diacritics down to ASCII base letters so accented titles
// compare equal to their release-name spellings.
func Fold(s string) string {
	s = ligatures.Replace(s)
	// transform.Chain is not safe for concurrent use, build per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Tokens canonicalizes a title or release name into a comparable token set.
// Order never matters; the set is the unit of comparison everywhere.
func Tokens(s string) map[string]struct{} {
	s = strings.ToLower(Fold(s))
	s = separators.Replace(s)
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// stopTokens are generic edition/language/packaging markers that carry no
// identity. Excluded from the title side of similarity comparisons.
var stopTokens = map[string]struct{}{
	"goty":       {},
	"gold":       {},
	"deluxe":     {},
	"premium":    {},
	"complete":   {},
	"definitive": {},
	"ultimate":   {},
	"enhanced":   {},
	"anniversary": {},
	"remastered": {},
	"edition":    {},
	"multi":      {},
	"repack":     {},
	"proper":     {},
	"the":        {},
	"of":         {},
	"and":        {},
}

var yearToken = regexp.MustCompile(`^(19|20)\d{2}$`)

func isStopToken(tok string) bool {
	if _, ok := stopTokens[tok]; ok {
		return true
	}
	return yearToken.MatchString(tok)
}

// Similarity returns the fraction of the game title's meaningful tokens
// present in the candidate name's token set. 0 when either side is empty.
func Similarity(gameTitle, candidateName string) float64 {
	title := Tokens(gameTitle)
	cand := Tokens(candidateName)
	if len(title) == 0 || len(cand) == 0 {
		return 0
	}

	var total, hits int
	for tok := range title {
		if isStopToken(tok) {
			continue
		}
		total++
		if _, ok := cand[tok]; ok {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// romanNumerals covers sequel numbering II through X. "I" is excluded, it
// collides with the English pronoun far too often.
var romanNumerals = map[string]struct{}{
	"ii": {}, "iii": {}, "iv": {}, "v": {},
	"vi": {}, "vii": {}, "viii": {}, "ix": {}, "x": {},
}

// NumeralGuard rejects cross-sequel matches. When the game title carries a
// Roman numeral token the candidate must carry the exact same numeral and
// no different one. Titles without numerals are not guarded; "v" style
// version markers tokenize as "v1" and never trip it. Returns true when
// the match is allowed.
func NumeralGuard(gameTitle, candidateName string) bool {
	title := Tokens(gameTitle)
	titleHasNumeral := false
	for num := range romanNumerals {
		if _, ok := title[num]; ok {
			titleHasNumeral = true
			break
		}
	}
	if !titleHasNumeral {
		return true
	}

	cand := Tokens(candidateName)
	for num := range romanNumerals {
		_, inTitle := title[num]
		_, inCand := cand[num]
		if inTitle != inCand {
			return false
		}
	}
	return true
}
