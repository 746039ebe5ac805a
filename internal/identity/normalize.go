// Package identity resolves the visual identity of teams and leagues: canonical
// names, lookup search terms, badge URLs with caching, and synthesized placeholders.
package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// legalSuffixes are trailing legal-form tokens dropped from display names.
var legalSuffixes = []string{" AFC", " FC", " CF"}

// Normalize turns a raw team name into its canonical display form:
// "Manchester United FC" -> "Manchester United". It is total and idempotent.
func Normalize(raw string) string {
	name := strings.TrimSpace(norm.NFC.String(raw))

	for {
		stripped := false
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSpace(strings.TrimSuffix(name, suffix))
				stripped = true
			}
		}
		if !stripped {
			return name
		}
	}
}
