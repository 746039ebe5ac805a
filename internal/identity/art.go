package identity

import "context"

// Art is what the game shows for a team: a real badge or a placeholder.
type Art struct {
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name"`
	BadgeURL      string `json:"badge_url"`
	Placeholder   bool   `json:"placeholder"`
	Initials      string `json:"initials,omitempty"`
}

// TeamArt picks the art for a raw team name. A badge supplied with the match
// data wins; otherwise the resolver is asked; a placeholder covers the rest.
func (r *Resolver) TeamArt(ctx context.Context, rawName, knownBadge string) Art {
	canonical := Normalize(rawName)
	art := Art{Name: rawName, CanonicalName: canonical}

	if knownBadge != "" {
		art.BadgeURL = knownBadge
		return art
	}

	if url, ok := r.Resolve(ctx, canonical); ok {
		art.BadgeURL = url
		return art
	}

	p := Synthesize(canonical)
	art.BadgeURL = p.DataURI()
	art.Placeholder = true
	art.Initials = p.Initials
	return art
}
