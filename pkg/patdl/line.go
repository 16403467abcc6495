package patdl

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/xmltree"
)

// OperatorConcat is the only rendition operator PATDL templates use.
const OperatorConcat = "CONCAT"

// DefaultSeparator follows an element that has no rendition operator.
const DefaultSeparator = " "

// Line is a lineData definition: the components of one output line.
type Line struct {
	Identifier LineIdentifier
	Components []*LineComponent
}

// ValidComponents returns the components whose required elements are all
// populated, in definition order.
func (l *Line) ValidComponents(data *address.Data) []*LineComponent {
	var out []*LineComponent
	for _, c := range l.Components {
		if c.Valid(data) {
			out = append(out, c)
		}
	}
	return out
}

// LineComponent groups the elements of a line. Priority is carried as
// declared; nothing orders components by it.
type LineComponent struct {
	ID       string
	Elements []*ElementData
	Priority string
	Required bool
}

// RequiredCodes lists the codes of the elements flagged requiredIfSelected.
func (c *LineComponent) RequiredCodes() []code.Code {
	var out []code.Code
	for _, el := range c.Elements {
		if el.Required {
			out = append(out, el.Code)
		}
	}
	return out
}

// Valid reports whether all required elements are populated.
func (c *LineComponent) Valid(data *address.Data) bool {
	for _, el := range c.Elements {
		if el.Required && !data.IsPopulated(el.Code) {
			return false
		}
	}
	return true
}

// ElementData is an elementData definition inside a line component.
type ElementData struct {
	Code                code.Code
	Name                string
	Description         string
	Justify             string
	Position            string
	MigrationPrecedence string
	Required            bool

	// Operator is the rendition operator following the element, if any.
	Operator *RenditionOperator
}

// Separator returns the text placed after the element's value: the operator
// text when an operator follows the element, a single space otherwise.
func (e *ElementData) Separator() string {
	if e.Operator == nil {
		return DefaultSeparator
	}
	return e.Operator.Text
}

// RenditionOperator joins an element to whatever follows it on the line.
type RenditionOperator struct {
	Kind    string
	Text    string
	Justify string
}

func parseLine(el *xmltree.Element) (*Line, error) {
	names := el.Find(tagLineName)
	if len(names) != 1 {
		return nil, malformed("lineData must declare exactly one lineName, found %d", len(names))
	}
	id, err := parseLineIdentifier(names[0])
	if err != nil {
		return nil, err
	}

	line := &Line{Identifier: id}
	for _, child := range el.Find("lineComponent") {
		component, err := parseComponent(child)
		if err != nil {
			return nil, err
		}
		line.Components = append(line.Components, component)
	}
	return line, nil
}

func parseComponent(el *xmltree.Element) (*LineComponent, error) {
	component := &LineComponent{}
	for _, child := range el.Children {
		switch child.Tag {
		case "elementData":
			element, err := parseElement(child)
			if err != nil {
				return nil, err
			}
			component.Elements = append(component.Elements, element)
		case "componentId":
			component.ID = child.TrimmedText()
		case "requiredIfSelected":
			component.Required = isYes(child)
		case "priority":
			component.Priority = child.TrimmedText()
		case "renditionOperator":
			if len(component.Elements) == 0 {
				return nil, malformed("renditionOperator before any elementData in component %q", component.ID)
			}
			op, err := parseOperator(child)
			if err != nil {
				return nil, err
			}
			component.Elements[len(component.Elements)-1].Operator = op
		default:
			return nil, malformed("unrecognized tag %s in lineComponent", child.Tag)
		}
	}
	return component, nil
}

func parseElement(el *xmltree.Element) (*ElementData, error) {
	element := &ElementData{Justify: "L"}
	hasCode := false
	for _, child := range el.Children {
		switch child.Tag {
		case "elementId":
			c, err := code.Parse(child.TrimmedText())
			if err != nil {
				return nil, fmt.Errorf("%w: elementId: %w", ErrTemplateMalformed, err)
			}
			element.Code = c
			hasCode = true
		case "elementDef":
			element.Name = child.TrimmedText()
		case "elementDesc":
			element.Description = child.TrimmedText()
		case "fldJustify":
			element.Justify = child.TrimmedText()
		case "posStart":
			element.Position = child.TrimmedText()
		case "requiredIfSelected":
			element.Required = isYes(child)
		case "migrationPrecedence":
			element.MigrationPrecedence = child.TrimmedText()
		default:
			return nil, malformed("unrecognized tag %s in elementData", child.Tag)
		}
	}
	if !hasCode {
		return nil, malformed("elementData without elementId")
	}
	return element, nil
}

func parseOperator(el *xmltree.Element) (*RenditionOperator, error) {
	op := &RenditionOperator{}
	for _, child := range el.Children {
		switch child.Tag {
		case "operatorId":
			op.Kind = child.TrimmedText()
		case "fldJustify":
			op.Justify = child.TrimmedText()
		case "fldText":
			op.Text = strings.Trim(child.Text, "'")
		default:
			return nil, malformed("unrecognized tag %s in renditionOperator", child.Tag)
		}
	}
	if op.Kind != OperatorConcat {
		return nil, malformed("unsupported rendition operator %q", op.Kind)
	}
	return op, nil
}

func isYes(el *xmltree.Element) bool {
	return el.TrimmedText() == "Y"
}
