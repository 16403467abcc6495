package patdl

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/xmltree"
)

// ControlChars are the characters used to split composite arguments inside a
// template.
type ControlChars struct {
	Delimiter string
	Separator string
	Sequencer string
	Collector string
}

// Template is a parsed PATDL template for one country. It is immutable after
// construction and may be shared by concurrent renders.
type Template struct {
	controls   ControlChars
	country    string
	identifier map[string]string
	selectors  []*LineSelector
	lines      map[LineIdentifier]*Line
	lineOrder  []LineIdentifier
	config     *Config
}

// Ensure the template can back hasResult conditions.
var _ ProcedureInvoker = (*Template)(nil)

// Parse decodes an XML template from r.
func Parse(r io.Reader, cfg *Config) (*Template, error) {
	root, err := xmltree.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateMalformed, err)
	}
	return New(root, cfg)
}

// New builds a Template from a parsed document. A nil cfg means no
// preprocessors or procedures and the SelectAllGroups selection mode.
func New(root *xmltree.Element, cfg *Config) (*Template, error) {
	if root == nil {
		return nil, malformed("document is empty")
	}
	if cfg == nil {
		cfg = MustConfig()
	}

	t := &Template{
		identifier: make(map[string]string),
		lines:      make(map[LineIdentifier]*Line),
		config:     cfg,
	}

	controls, err := parseControls(root)
	if err != nil {
		return nil, err
	}
	t.controls = controls

	for _, el := range root.Find("contentDefinition/templateIdentifier/*") {
		t.identifier[el.Tag] = el.TrimmedText()
		if el.Tag == "countryCode" {
			t.country = el.TrimmedText()
		}
	}
	if t.country == "" {
		return nil, malformed("contentDefinition/templateIdentifier/countryCode is required")
	}

	for _, el := range root.Find("//triggerConditions/lineSelect") {
		selector, err := parseSelector(el, t.controls, cfg.SelectionMode(), t)
		if err != nil {
			return nil, err
		}
		t.selectors = append(t.selectors, selector)
	}

	for _, el := range root.Find("//lineData") {
		line, err := parseLine(el)
		if err != nil {
			return nil, err
		}
		if _, exists := t.lines[line.Identifier]; exists {
			return nil, malformed("line %s defined twice", line.Identifier)
		}
		t.lines[line.Identifier] = line
		t.lineOrder = append(t.lineOrder, line.Identifier)
	}

	return t, nil
}

func parseControls(root *xmltree.Element) (ControlChars, error) {
	lookup := func(tag string) (string, error) {
		el := root.First("//" + tag)
		if el == nil {
			return "", malformed("missing %s", tag)
		}
		return strings.Trim(el.Text, "'"), nil
	}

	var (
		ctrl ControlChars
		err  error
	)
	if ctrl.Delimiter, err = lookup("defaultDelimiter"); err != nil {
		return ControlChars{}, err
	}
	if ctrl.Separator, err = lookup("defaultSeparator"); err != nil {
		return ControlChars{}, err
	}
	if ctrl.Sequencer, err = lookup("defaultSequencer"); err != nil {
		return ControlChars{}, err
	}
	if ctrl.Collector, err = lookup("defaultCollector"); err != nil {
		return ControlChars{}, err
	}
	return ctrl, nil
}

// Country returns the template's country code as declared by the template.
func (t *Template) Country() string {
	return t.country
}

// Controls returns the template's control characters.
func (t *Template) Controls() ControlChars {
	return t.controls
}

// Identifier returns a copy of the templateIdentifier fields.
func (t *Template) Identifier() map[string]string {
	out := make(map[string]string, len(t.identifier))
	for k, v := range t.identifier {
		out[k] = v
	}
	return out
}

// Config returns the configuration the template was built with.
func (t *Template) Config() *Config {
	return t.config
}

// Selectors returns the lineSelect blocks in document order.
func (t *Template) Selectors() []*LineSelector {
	return append([]*LineSelector(nil), t.selectors...)
}

// Lines returns the line definitions in document order.
func (t *Template) Lines() []*Line {
	out := make([]*Line, 0, len(t.lineOrder))
	for _, id := range t.lineOrder {
		out = append(out, t.lines[id])
	}
	return out
}

// Line resolves a line definition by identifier.
func (t *Template) Line(id LineIdentifier) (*Line, bool) {
	line, ok := t.lines[id]
	return line, ok
}

// SelectedLines runs every selector in order and resolves the selected
// identifiers to their definitions.
func (t *Template) SelectedLines(data *address.Data) ([]*Line, error) {
	var lines []*Line
	for _, selector := range t.selectors {
		ids, err := selector.Lines(data)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			line, ok := t.lines[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLine, id)
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Validate reports selector references to undefined lines without needing
// address data.
func (t *Template) Validate() error {
	for _, selector := range t.selectors {
		for _, trigger := range selector.Triggers {
			for _, id := range trigger.Lines {
				if _, ok := t.lines[id]; !ok {
					return fmt.Errorf("%w: %s", ErrUnknownLine, id)
				}
			}
		}
	}
	return nil
}

// InvokeProcedure runs the procedure registered for the template's country.
func (t *Template) InvokeProcedure(name string, data *address.Data) (string, error) {
	fn, ok := t.config.Procedure(t.country, name)
	if !ok {
		return "", fmt.Errorf("%w: %q for country %s", ErrUnknownProcedure, name, t.country)
	}
	out, err := fn(data)
	if err != nil {
		return "", fmt.Errorf("patdl: procedure %q: %w", name, err)
	}
	return out, nil
}

// PreprocessValue passes value through the preprocessors registered for the
// template's country and c, in registration order.
func (t *Template) PreprocessValue(c code.Code, value string) (string, error) {
	for _, fn := range t.config.Preprocessors(t.country, c) {
		next, err := fn(value)
		if err != nil {
			return "", fmt.Errorf("patdl: preprocess %s: %w", c, err)
		}
		value = next
	}
	return value, nil
}
