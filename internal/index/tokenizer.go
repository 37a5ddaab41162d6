package index

import (
	"regexp"
	"strings"
)

// tokenRe matches word tokens of two or more letters/digits, matching
// the fitted behavior of the original vectorizer.
var tokenRe = regexp.MustCompile(`[\pL\pN][\pL\pN]+`)

// ngramSeparator joins the tokens of a multi-token term.
const ngramSeparator = " "

// Tokenize lowercases the text, extracts word tokens, drops stopwords
// and emits every n-gram with n in [ngramMin, ngramMax] (inclusive).
// Multi-token terms are joined by a single space.
func Tokenize(text string, ngramMin, ngramMax int) []string {
	raw := tokenRe.FindAllString(strings.ToLower(text), -1)

	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}

	if ngramMin <= 1 && ngramMax <= 1 {
		return tokens
	}

	var terms []string
	for n := ngramMin; n <= ngramMax; n++ {
		if n < 1 {
			continue
		}
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				terms = append(terms, tokens[i])
			} else {
				terms = append(terms, strings.Join(tokens[i:i+n], ngramSeparator))
			}
		}
	}
	return terms
}
