package identity

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var defaultAliasesYAML []byte

// AliasTable maps a canonical team name to the term TheSportsDB knows it by.
// It is read-only once built; a nil table has no entries.
type AliasTable map[string]string

// Lookup returns the preferred search term for name.
func (a AliasTable) Lookup(name string) (string, bool) {
	term, ok := a[name]
	if !ok || strings.TrimSpace(term) == "" {
		return "", false
	}
	return term, true
}

// Merge returns a new table with other's entries layered over a's.
func (a AliasTable) Merge(other AliasTable) AliasTable {
	out := make(AliasTable, len(a)+len(other))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// DefaultAliases returns the alias table shipped with the binary.
func DefaultAliases() AliasTable {
	table, err := parseAliases(defaultAliasesYAML)
	if err != nil {
		panic(fmt.Sprintf("identity: embedded aliases.yaml is invalid: %v", err))
	}
	return table
}

// LoadAliases reads a YAML mapping of canonical name -> search term.
func LoadAliases(r io.Reader) (AliasTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases: %w", err)
	}
	return parseAliases(data)
}

// LoadAliasFile reads aliases from path.
func LoadAliasFile(path string) (AliasTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alias file: %w", err)
	}
	defer f.Close()
	return LoadAliases(f)
}

func parseAliases(data []byte) (AliasTable, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}

	table := make(AliasTable, len(raw))
	for name, term := range raw {
		// Keys are stored canonical so raw names in the file still match.
		table[Normalize(name)] = strings.TrimSpace(term)
	}
	return table, nil
}
