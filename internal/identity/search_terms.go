package identity

import (
	"strings"
	"unicode/utf8"
)

// orgPrefixes are short organizational prefixes the lookup service often omits.
var orgPrefixes = []string{"FC ", "CF ", "AC ", "AS ", "SC ", "US ", "RC "}

// minTokenLength guards against noisy single-word queries like "Real" or "Man".
const minTokenLength = 3

// GenerateSearchTerms returns the lookup terms to try for a canonical name,
// most likely first, without duplicates:
//
//  1. the alias table entry, if any
//  2. the name itself
//  3. the first word, if it differs from the name and is longer than 3
//  4. the last word, under the same rule
//  5. the name without a leading "FC "/"AC "/... prefix
func GenerateSearchTerms(name string, aliases AliasTable) []string {
	terms := make([]string, 0, 5)
	seen := make(map[string]struct{}, 5)
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	if alias, ok := aliases.Lookup(name); ok {
		add(alias)
	}
	add(name)

	words := strings.Fields(name)
	if len(words) > 0 {
		if first := words[0]; first != name && utf8.RuneCountInString(first) > minTokenLength {
			add(first)
		}
		if last := words[len(words)-1]; last != name && utf8.RuneCountInString(last) > minTokenLength {
			add(last)
		}
	}

	for _, prefix := range orgPrefixes {
		if strings.HasPrefix(name, prefix) {
			add(strings.TrimPrefix(name, prefix))
			break
		}
	}

	return terms
}
