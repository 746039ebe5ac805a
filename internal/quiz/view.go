package quiz

import (
	"context"

	"github.com/fortuna/footyguess/internal/identity"
)

// ArtResolver picks the art shown for a team.
type ArtResolver interface {
	TeamArt(ctx context.Context, rawName, knownBadge string) identity.Art
}

// LeagueBadges resolves league badges.
type LeagueBadges interface {
	Resolve(ctx context.Context, league string) (string, bool)
}

// RoundView is a round as shown to the player: teams with art, no score.
type RoundView struct {
	Number      int          `json:"number"`
	Of          int          `json:"of"`
	League      string       `json:"league"`
	Flag        string       `json:"flag"`
	LeagueBadge string       `json:"league_badge,omitempty"`
	Date        string       `json:"date"`
	Home        identity.Art `json:"home"`
	Away        identity.Art `json:"away"`
}

// Presenter turns rounds into views. Either resolver may be nil.
type Presenter struct {
	teams   ArtResolver
	leagues LeagueBadges
}

// NewPresenter creates a presenter.
func NewPresenter(teams ArtResolver, leagues LeagueBadges) *Presenter {
	return &Presenter{teams: teams, leagues: leagues}
}

// Round builds the view of r for a game of total rounds.
func (p *Presenter) Round(ctx context.Context, r Round, total int) RoundView {
	m := r.Match
	v := RoundView{
		Number: r.Number,
		Of:     total,
		League: m.League,
		Flag:   m.Flag,
		Date:   m.Date,
		Home:   p.art(ctx, m.Home.Name, m.Home.Badge),
		Away:   p.art(ctx, m.Away.Name, m.Away.Badge),
	}
	if p.leagues != nil {
		if badge, ok := p.leagues.Resolve(ctx, m.League); ok {
			v.LeagueBadge = badge
		}
	}
	return v
}

func (p *Presenter) art(ctx context.Context, name, badge string) identity.Art {
	if p.teams != nil {
		return p.teams.TeamArt(ctx, name, badge)
	}
	art := identity.Art{Name: name, CanonicalName: identity.Normalize(name), BadgeURL: badge}
	if badge == "" {
		ph := identity.Synthesize(art.CanonicalName)
		art.BadgeURL = ph.DataURI()
		art.Placeholder = true
		art.Initials = ph.Initials
	}
	return art
}
