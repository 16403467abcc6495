package patdl

import (
	"fmt"

	"github.com/goliatone/go-s42/pkg/xmltree"
)

const tagLineName = "lineName"

// LineIdentifier names one output line by its number and symbolic name.
// Identifiers compare structurally.
type LineIdentifier struct {
	Number string
	Name   string
}

func (id LineIdentifier) String() string {
	return fmt.Sprintf("%s (%s)", id.Number, id.Name)
}

func parseLineIdentifier(el *xmltree.Element) (LineIdentifier, error) {
	if el == nil || el.Tag != tagLineName {
		return LineIdentifier{}, malformed("expected %s element", tagLineName)
	}
	return LineIdentifier{Number: el.Attr("lineNumber"), Name: el.TrimmedText()}, nil
}
