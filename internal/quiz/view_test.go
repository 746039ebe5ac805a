package quiz

import (
	"context"
	"testing"

	"github.com/fortuna/footyguess/internal/matches"
	"github.com/stretchr/testify/assert"
)

type stubLeagues struct{}

func (stubLeagues) Resolve(ctx context.Context, league string) (string, bool) {
	return "https://badges/" + league + ".png", true
}

func TestPresenter_Round(t *testing.T) {
	round := Round{Number: 3, Match: matches.Match{
		ID: "1", League: "Ligue 1", Flag: "🇫🇷", Date: "2024-10-05",
		Home: matches.Side{Name: "Paris Saint-Germain FC", Score: 3},
		Away: matches.Side{Name: "Olympique Lyonnais", Badge: "https://b/ol.png", Score: 1},
	}}

	v := NewPresenter(nil, stubLeagues{}).Round(context.Background(), round, 10)
	assert.Equal(t, 3, v.Number)
	assert.Equal(t, 10, v.Of)
	assert.Equal(t, "https://badges/Ligue 1.png", v.LeagueBadge)
	assert.True(t, v.Home.Placeholder)
	assert.Equal(t, "PSG", v.Home.Initials)
	assert.Equal(t, "Paris Saint-Germain", v.Home.CanonicalName)
	assert.False(t, v.Away.Placeholder)
	assert.Equal(t, "https://b/ol.png", v.Away.BadgeURL)
}
