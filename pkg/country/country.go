// Package country resolves ISO 3166-1 country identifiers (alpha-2, alpha-3 or
// numeric-3) against a bundled table.
package country

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/iso3166.yaml
var embedded embed.FS

// ErrUnknown reports a code absent from the table.
var ErrUnknown = errors.New("country: unknown code")

// Country is a single ISO 3166-1 entry.
type Country struct {
	Name     string `yaml:"name" json:"name"`
	Alpha2   string `yaml:"alpha2" json:"alpha2"`
	Alpha3   string `yaml:"alpha3" json:"alpha3"`
	Numeric3 string `yaml:"numeric3" json:"numeric3"`
	FIPS     string `yaml:"fips" json:"fips"`
}

func (c Country) String() string {
	return c.Name
}

// Table indexes countries by every identifier form.
type Table struct {
	entries []Country
	index   map[string]Country
}

// Load parses a YAML list of countries from fsys.
func Load(fsys fs.FS, name string) (*Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("country: read %s: %w", name, err)
	}
	var entries []Country
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("country: parse %s: %w", name, err)
	}

	t := &Table{entries: entries, index: make(map[string]Country, len(entries)*3)}
	for _, c := range entries {
		for _, key := range []string{c.Alpha2, c.Alpha3, c.Numeric3} {
			if key == "" {
				continue
			}
			t.index[strings.ToUpper(key)] = c
		}
	}
	return t, nil
}

// Lookup resolves an alpha-2, alpha-3 or numeric-3 code, case-insensitively.
func (t *Table) Lookup(code string) (Country, error) {
	c, ok := t.index[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Country{}, fmt.Errorf("%w: %q", ErrUnknown, code)
	}
	return c, nil
}

// All returns the entries in table order.
func (t *Table) All() []Country {
	return append([]Country(nil), t.entries...)
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Load(embedded, "data/iso3166.yaml")
	if err != nil {
		// The embedded table is part of the build.
		panic(err)
	}
	return t
})

// Default returns the bundled table.
func Default() *Table {
	return defaultTable()
}

// Lookup resolves code against the bundled table.
func Lookup(code string) (Country, error) {
	return Default().Lookup(code)
}
