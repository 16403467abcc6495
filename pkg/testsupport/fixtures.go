package testsupport

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/country"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rendition"
)

// Fixture is one rendering conformance case. Data holds element codes;
// Fields holds mnemonic names converted for Country (or the template's
// country). Both may be set, in which case Data wins on conflicts.
type Fixture struct {
	Name        string            `yaml:"name"`
	Country     string            `yaml:"country"`
	Data        map[string]string `yaml:"data"`
	Fields      map[string]string `yaml:"fields"`
	Lines       []string          `yaml:"lines"`
	IsPopulated []string          `yaml:"is_populated"`
	Skip        bool              `yaml:"skip"`
}

// AddressData builds the fixture's address data. fallbackCountry is used for
// mnemonic conversion when the fixture names no country.
func (f Fixture) AddressData(fallbackCountry string) (*address.Data, error) {
	if len(f.Fields) == 0 {
		return address.FromMap(f.Data)
	}

	iso := f.Country
	if iso == "" {
		iso = fallbackCountry
	}
	c, err := country.Lookup(iso)
	if err != nil {
		return nil, fmt.Errorf("testsupport: fixture %q: %w", f.Name, err)
	}
	fromFields, err := address.FromFields(c, f.Fields)
	if err != nil {
		return nil, fmt.Errorf("testsupport: fixture %q: %w", f.Name, err)
	}
	if len(f.Data) == 0 {
		return fromFields, nil
	}

	merged := fromFields.Map()
	for k, v := range f.Data {
		parsed, err := code.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("testsupport: fixture %q: %w", f.Name, err)
		}
		merged[parsed.String()] = v
	}
	return address.FromMap(merged)
}

// Result is the outcome of checking one fixture.
type Result struct {
	Fixture Fixture
	Got     []string
	// Unpopulated lists is_populated codes the data does not populate.
	Unpopulated []string
	Skipped     bool
	Err         error
}

// Passed reports whether the fixture rendered its expected lines and every
// is_populated code holds.
func (r Result) Passed() bool {
	if r.Skipped {
		return true
	}
	return r.Err == nil && len(r.Unpopulated) == 0 && cmp.Equal(r.Fixture.Lines, r.Got)
}

// Diff returns the line diff between the expected and rendered lines.
func (r Result) Diff() string {
	return DiffLines(r.Fixture.Lines, r.Got)
}

// Check renders the fixture with tpl and compares the result.
func Check(tpl *patdl.Template, f Fixture, opts ...rendition.Option) Result {
	res := Result{Fixture: f}
	if f.Skip {
		res.Skipped = true
		return res
	}

	data, err := f.AddressData(tpl.Country())
	if err != nil {
		res.Err = err
		return res
	}
	for _, raw := range f.IsPopulated {
		c, err := code.Parse(raw)
		if err != nil {
			res.Err = fmt.Errorf("testsupport: fixture %q: is_populated: %w", f.Name, err)
			return res
		}
		if !data.IsPopulated(c) {
			res.Unpopulated = append(res.Unpopulated, raw)
		}
	}

	r, err := rendition.Render(tpl, data, opts...)
	if err != nil {
		res.Err = err
		return res
	}
	res.Got = r.Lines()
	return res
}

// DiffLines returns a cmp diff of two line slices, empty when equal. A nil
// and an empty slice compare equal.
func DiffLines(want, got []string) string {
	if len(want) == 0 && len(got) == 0 {
		return ""
	}
	return cmp.Diff(want, got)
}

// ParseFixtures decodes a YAML or JSON fixture list.
func ParseFixtures(doc []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := yaml.Unmarshal(doc, &fixtures); err != nil {
		return nil, fmt.Errorf("testsupport: decode fixtures: %w", err)
	}
	for i := range fixtures {
		if strings.TrimSpace(fixtures[i].Name) == "" {
			fixtures[i].Name = fmt.Sprintf("fixture %d", i+1)
		}
	}
	return fixtures, nil
}

// LoadFixtures reads a fixture file from disk.
func LoadFixtures(path string) ([]Fixture, error) {
	if path == "" {
		return nil, errors.New("testsupport: fixture path is required")
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixtures: %w", err)
	}
	return ParseFixtures(doc)
}

// LoadFixturesFS reads a fixture file from fsys.
func LoadFixturesFS(fsys fs.FS, name string) ([]Fixture, error) {
	doc, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixtures: %w", err)
	}
	return ParseFixtures(doc)
}

// FindFixtures returns the fixture file for a country in dir, trying the
// .yaml, .yml and .json extensions in that order.
func FindFixtures(dir, iso string) (string, error) {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, iso+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("testsupport: no fixtures for %s in %s: %w", iso, dir, fs.ErrNotExist)
}
