package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortuna/footyguess/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatArt(t *testing.T) {
	placeholder := identity.Synthesize("Obscure Town")

	tests := []struct {
		name string
		art  identity.Art
		want string
		not  string
	}{
		{
			name: "resolved badge",
			art:  identity.Art{CanonicalName: "Arsenal", BadgeURL: "https://badges/arsenal.png"},
			want: "✓ Arsenal",
		},
		{
			name: "placeholder shows initials",
			art: identity.Art{
				CanonicalName: "Obscure Town",
				BadgeURL:      placeholder.DataURI(),
				Placeholder:   true,
				Initials:      placeholder.Initials,
			},
			want: "✗ Obscure Town",
			not:  "data:image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatArt(tt.art)
			assert.True(t, strings.HasPrefix(got, tt.want), got)
			if tt.art.Placeholder {
				assert.True(t, strings.HasSuffix(got, "placeholder OT"), got)
			} else {
				assert.True(t, strings.HasSuffix(got, tt.art.BadgeURL), got)
			}
			if tt.not != "" {
				assert.NotContains(t, got, tt.not)
			}
		})
	}
}

func TestCollectNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.txt")
	require.NoError(t, os.WriteFile(path, []byte("Arsenal\n\n# comment\n  Real Betis  \n"), 0o644))

	names, err := collectNames([]string{"Hellas Verona"}, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hellas Verona", "Arsenal", "Real Betis"}, names)

	_, err = collectNames(nil, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
