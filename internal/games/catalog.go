// Package games resolves user search queries to canonical game names.
package games

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Catalog maps canonical game names to their aliases
type Catalog struct {
	names   []string
	aliases map[string][]string
}

// NewCatalog creates a catalog from canonical name to aliases
func NewCatalog(aliases map[string][]string) *Catalog {
	c := &Catalog{aliases: make(map[string][]string, len(aliases))}
	for name, list := range aliases {
		c.names = append(c.names, name)
		lowered := make([]string, 0, len(list))
		for _, a := range list {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(a)))
		}
		c.aliases[name] = lowered
	}
	sort.Strings(c.names)
	return c
}

// LoadCatalog reads an alias file. YAML and JSON are both accepted.
// An empty path or a missing file yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(nil), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCatalog(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read aliases: %w", err)
	}

	var aliases map[string][]string
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse aliases %s: %w", path, err)
	}
	return NewCatalog(aliases), nil
}

// Len returns the number of canonical games
func (c *Catalog) Len() int {
	return len(c.names)
}

// Resolve returns the canonical name for query, or query itself when
// nothing matches. A canonical name matches when it contains the query,
// an alias matches when it equals it, and abbreviations ("gow", "rdr2")
// are tried last.
func (c *Catalog) Resolve(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return query
	}

	for _, name := range c.names {
		if strings.Contains(strings.ToLower(name), q) {
			return name
		}
		for _, alias := range c.aliases[name] {
			if alias == q {
				return name
			}
		}
	}

	for _, name := range c.names {
		for _, abbr := range Abbreviations(name) {
			if abbr == q {
				return name
			}
		}
	}

	return strings.TrimSpace(query)
}

// Matches reports whether a stored game name refers to canonical
func (c *Catalog) Matches(game, canonical string) bool {
	if strings.EqualFold(strings.TrimSpace(game), canonical) {
		return true
	}
	return strings.EqualFold(c.Resolve(game), canonical)
}

// Abbreviations returns short forms of a game name: the name without
// punctuation, the initials, and the initials keeping numbers.
func Abbreviations(name string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, name)
	words := strings.Fields(clean)
	if len(words) == 0 {
		return nil
	}

	var initials, withNumbers strings.Builder
	for _, w := range words {
		first := []rune(w)[0]
		initials.WriteRune(first)
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			withNumbers.WriteString(w)
		} else {
			withNumbers.WriteRune(first)
		}
	}

	seen := map[string]bool{}
	var out []string
	for _, abbr := range []string{strings.Join(words, " "), initials.String(), withNumbers.String()} {
		if !seen[abbr] {
			seen[abbr] = true
			out = append(out, abbr)
		}
	}
	return out
}
