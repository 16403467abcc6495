package patdl

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
)

// Preprocessor transforms an element value before it is placed on a line. It
// must be a pure function of its input.
type Preprocessor func(value string) (string, error)

// Procedure computes the result compared by hasResult trigger conditions.
type Procedure func(data *address.Data) (string, error)

// SelectionMode controls how a lineSelect block treats its trigger groups.
type SelectionMode int

const (
	// SelectAllGroups evaluates every trigger group of a lineSelect block and
	// selects the lines of each satisfied group.
	SelectAllGroups SelectionMode = iota
	// SelectFirstGroup stops at the first satisfied group, as the PATDL prose
	// describes ("whenever one set of trigger conditions has been satisfied,
	// none of the others are evaluated").
	SelectFirstGroup
)

func (m SelectionMode) String() string {
	switch m {
	case SelectAllGroups:
		return "all-groups"
	case SelectFirstGroup:
		return "first-group"
	default:
		return fmt.Sprintf("SelectionMode(%d)", int(m))
	}
}

// ParseSelectionMode accepts the names returned by SelectionMode.String.
func ParseSelectionMode(raw string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all-groups", "all":
		return SelectAllGroups, nil
	case "first-group", "first":
		return SelectFirstGroup, nil
	default:
		return SelectAllGroups, fmt.Errorf("patdl: unknown selection mode %q", raw)
	}
}

// Config carries the country preprocessors and procedures templates consult
// while rendering. It is built once through NewConfig and never changes
// afterwards, so a single Config can back any number of templates and
// concurrent renders.
type Config struct {
	preprocessors map[string]map[code.Code][]Preprocessor
	procedures    map[string]map[string]Procedure
	selection     SelectionMode
}

// ConfigOption registers configuration while NewConfig builds a Config.
type ConfigOption func(*Config) error

// NewConfig applies options in order and freezes the result.
func NewConfig(options ...ConfigOption) (*Config, error) {
	cfg := &Config{
		preprocessors: make(map[string]map[code.Code][]Preprocessor),
		procedures:    make(map[string]map[string]Procedure),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// MustConfig is NewConfig for init-time wiring; it panics on error.
func MustConfig(options ...ConfigOption) *Config {
	cfg, err := NewConfig(options...)
	if err != nil {
		panic(err)
	}
	return cfg
}

// WithPreprocessor appends fn to the preprocessors of (country, c).
// Preprocessors for the same key run in registration order.
func WithPreprocessor(country string, c code.Code, fn Preprocessor) ConfigOption {
	return func(cfg *Config) error {
		if fn == nil {
			return errors.New("patdl: preprocessor is required")
		}
		key := normaliseCountry(country)
		if key == "" {
			return errors.New("patdl: preprocessor country is required")
		}
		if cfg.preprocessors[key] == nil {
			cfg.preprocessors[key] = make(map[code.Code][]Preprocessor)
		}
		cfg.preprocessors[key][c] = append(cfg.preprocessors[key][c], fn)
		return nil
	}
}

// WithProcedure registers fn under (country, name). Registering the same name
// twice for a country is an error.
func WithProcedure(country, name string, fn Procedure) ConfigOption {
	return func(cfg *Config) error {
		if fn == nil {
			return errors.New("patdl: procedure is required")
		}
		key := normaliseCountry(country)
		name = strings.TrimSpace(name)
		if key == "" || name == "" {
			return errors.New("patdl: procedure country and name are required")
		}
		if cfg.procedures[key] == nil {
			cfg.procedures[key] = make(map[string]Procedure)
		}
		if _, exists := cfg.procedures[key][name]; exists {
			return fmt.Errorf("patdl: procedure %q already registered for %s", name, key)
		}
		cfg.procedures[key][name] = fn
		return nil
	}
}

// WithSelectionMode sets how lineSelect blocks evaluate their trigger groups.
func WithSelectionMode(mode SelectionMode) ConfigOption {
	return func(cfg *Config) error {
		cfg.selection = mode
		return nil
	}
}

// SelectionMode returns the configured selector behaviour.
func (c *Config) SelectionMode() SelectionMode {
	if c == nil {
		return SelectAllGroups
	}
	return c.selection
}

// Preprocessors returns the preprocessors registered for (country, code),
// falling back to those registered for the element code.
func (c *Config) Preprocessors(country string, el code.Code) []Preprocessor {
	if c == nil {
		return nil
	}
	byCode := c.preprocessors[normaliseCountry(country)]
	if fns, ok := byCode[el]; ok {
		return fns
	}
	return byCode[el.Base()]
}

// Procedure looks up the procedure registered for (country, name).
func (c *Config) Procedure(country, name string) (Procedure, bool) {
	if c == nil {
		return nil, false
	}
	fn, ok := c.procedures[normaliseCountry(country)][name]
	return fn, ok
}

// Procedures lists the procedure names registered for country, sorted.
func (c *Config) Procedures(country string) []string {
	if c == nil {
		return nil
	}
	byName := c.procedures[normaliseCountry(country)]
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func normaliseCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
