package engine

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Spanish-language vocabularies need accent folding before any matching:
// "interventoría" and "interventoria" must collide.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds text for matching: lowercase, diacritics stripped,
// punctuation collapsed to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if folded, _, err := transform.String(accentFolder, s); err == nil {
		s = folded
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)

	return strings.Join(strings.Fields(cleaned), " ")
}

// Tokenize splits normalized text into tokens.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// ExtractKeywords derives the matching keyword set of an experience from
// its textual fields: every vocabulary token found in the text, plus up
// to ten significant tokens (longer than five runes, not stopwords). The
// result is deduplicated and sorted, so identical inputs always produce
// an identical set.
func (e *Engine) ExtractKeywords(texts ...string) []string {
	tokens := Tokenize(strings.Join(texts, " "))
	if len(tokens) == 0 {
		return nil
	}

	vocab := tokenSet(e.cfg.Vocabulary)
	stop := tokenSet(e.cfg.Stopwords)

	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, len(tokens))
	significant := 0

	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		if _, ok := vocab[tok]; ok {
			seen[tok] = struct{}{}
			keywords = append(keywords, tok)
			continue
		}
		if _, ok := stop[tok]; ok {
			continue
		}
		if len([]rune(tok)) > 5 && significant < 10 {
			seen[tok] = struct{}{}
			keywords = append(keywords, tok)
			significant++
		}
	}

	sort.Strings(keywords)
	return keywords
}
