package identity

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf16"
)

const maxInitials = 3

// Placeholder is a synthesized badge for a team without a real one.
type Placeholder struct {
	Initials string `json:"initials"`
	Hue      int    `json:"hue"`
	Fill     string `json:"fill"`
	Stroke   string `json:"stroke"`
	SVG      string `json:"-"`
}

// DataURI returns the badge as an inline image URL.
func (p Placeholder) DataURI() string {
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(p.SVG))
}

// Synthesize builds the placeholder badge for name. The same name always
// yields the same initials and color.
func Synthesize(name string) Placeholder {
	initials := Initials(name)
	hue := Hue(name)

	p := Placeholder{
		Initials: initials,
		Hue:      hue,
		Fill:     fmt.Sprintf("hsl(%d, 65%%, 45%%)", hue),
		Stroke:   fmt.Sprintf("hsl(%d, 65%%, 30%%)", hue),
	}
	p.SVG = renderSVG(p)
	return p
}

// Initials takes the first character of each word (words split on spaces and
// hyphens), uppercased, at most three: "Paris Saint-Germain" -> "PSG".
func Initials(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})

	var out []rune
	for _, w := range words {
		first := []rune(w)[0]
		out = append(out, unicode.ToUpper(first))
		if len(out) == maxInitials {
			break
		}
	}
	return string(out)
}

// Hue hashes name into [0, 360). The hash runs over UTF-16 code units with
// 32-bit wraparound: hash = code + ((hash << 5) - hash).
func Hue(name string) int {
	var hash int32
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int32(unit) + ((hash << 5) - hash)
	}

	hue := int(hash % 360)
	if hue < 0 {
		hue += 360
	}
	return hue
}

func renderSVG(p Placeholder) string {
	fontSize := 36
	if len([]rune(p.Initials)) >= maxInitials {
		fontSize = 28
	}

	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="100" height="100" viewBox="0 0 100 100">`+
			`<circle cx="50" cy="50" r="45" fill="%s" stroke="%s" stroke-width="4"/>`+
			`<text x="50" y="50" text-anchor="middle" dominant-baseline="central" `+
			`font-family="Arial, Helvetica, sans-serif" font-size="%d" font-weight="bold" fill="#ffffff">%s</text>`+
			`</svg>`,
		p.Fill, p.Stroke, fontSize, html.EscapeString(p.Initials),
	)
}
