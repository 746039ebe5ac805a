package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Manchester United FC", "Manchester United"},
		{"  Arsenal FC  ", "Arsenal"},
		{"Bournemouth AFC", "Bournemouth"},
		{"Valencia CF", "Valencia"},
		{"Club FC CF", "Club"},
		{"FC Barcelona", "FC Barcelona"},
		{"Atlético Madrid", "Atlético Madrid"},
		{"", ""},
		{"FC", "FC"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Normalize(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalizing twice changes nothing")
		})
	}
}

func TestGenerateSearchTerms(t *testing.T) {
	aliases := AliasTable{"Tottenham Hotspur": "Tottenham"}

	tests := []struct {
		name    string
		aliases AliasTable
		want    []string
	}{
		{"Hellas Verona", nil, []string{"Hellas Verona", "Hellas", "Verona"}},
		{"Tottenham Hotspur", aliases, []string{"Tottenham", "Tottenham Hotspur", "Hotspur"}},
		{"Arsenal", nil, []string{"Arsenal"}},
		{"Real Betis", nil, []string{"Real Betis", "Real", "Betis"}},
		{"AC Milan", nil, []string{"AC Milan", "Milan"}},
		{"FC Porto Town", nil, []string{"FC Porto Town", "Town", "Porto Town"}},
		{"Man Utd", nil, []string{"Man Utd"}},
		{"", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSearchTerms(tt.name, tt.aliases))
		})
	}
}

func TestGenerateSearchTerms_NoDuplicates(t *testing.T) {
	terms := GenerateSearchTerms("Verona", AliasTable{"Verona": "Verona"})
	assert.Equal(t, []string{"Verona"}, terms)
}
