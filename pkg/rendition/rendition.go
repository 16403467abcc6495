package rendition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/patdl"
)

// LineBreak joins the lines returned by Rendition.String.
const LineBreak = "\n"

// Option customises a render.
type Option func(*options)

type options struct {
	abstract bool
}

// WithAbstract renders element names instead of their values, which shows
// the layout a template would produce for the data.
func WithAbstract() Option {
	return func(o *options) {
		o.abstract = true
	}
}

// Rendition is the rendered form of one address under one template.
type Rendition struct {
	country  string
	abstract bool
	tree     *Tree
	lines    []string
}

// Render selects the template lines for data and renders each one. Lines
// without any rendered node are left out.
func Render(tpl *patdl.Template, data *address.Data, opts ...Option) (*Rendition, error) {
	if tpl == nil {
		return nil, errors.New("rendition: template is required")
	}
	if data == nil {
		data = address.MustFromMap(nil)
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	selected, err := tpl.SelectedLines(data)
	if err != nil {
		return nil, fmt.Errorf("rendition: select lines: %w", err)
	}

	r := &Rendition{
		country:  tpl.Country(),
		abstract: cfg.abstract,
		tree:     NewTree(),
	}
	for _, line := range selected {
		idx, err := r.addLine(tpl, data, line)
		if err != nil {
			return nil, err
		}
		if len(r.tree.Atoms(idx)) == 0 {
			continue
		}
		r.lines = append(r.lines, r.tree.Text(idx))
	}
	return r, nil
}

func (r *Rendition) addLine(tpl *patdl.Template, data *address.Data, line *patdl.Line) (int, error) {
	tree := r.tree
	lineIdx := tree.Add(tree.Root(), Node{Kind: LineNode})
	for _, component := range line.ValidComponents(data) {
		componentIdx := tree.Add(lineIdx, Node{Kind: ComponentNode})
		for _, element := range component.Elements {
			value, ok := data.Get(element.Code)
			if !ok {
				continue
			}
			text, err := r.valueText(tpl, element, value)
			if err != nil {
				return 0, fmt.Errorf("rendition: line %s: %w", line.Identifier, err)
			}
			elementIdx := tree.Add(componentIdx, Node{Kind: ElementNode, Code: element.Code})
			tree.Add(elementIdx, Node{Kind: ValueNode, Code: element.Code, Text: text})
			tree.Add(elementIdx, Node{Kind: SeparatorNode, Text: element.Separator()})
		}
	}
	return lineIdx, nil
}

func (r *Rendition) valueText(tpl *patdl.Template, element *patdl.ElementData, value string) (string, error) {
	if r.abstract {
		if element.Name != "" {
			return element.Name, nil
		}
		return element.Code.String(), nil
	}
	return tpl.PreprocessValue(element.Code, value)
}

// Lines returns the rendered lines in order.
func (r *Rendition) Lines() []string {
	return append([]string(nil), r.lines...)
}

// String joins the lines with LineBreak.
func (r *Rendition) String() string {
	return strings.Join(r.lines, LineBreak)
}

// Country returns the country code of the template used.
func (r *Rendition) Country() string {
	return r.country
}

// Abstract reports whether element names were rendered instead of values.
func (r *Rendition) Abstract() bool {
	return r.abstract
}

// Tree exposes the node tree the lines were rendered from.
func (r *Rendition) Tree() *Tree {
	return r.tree
}
