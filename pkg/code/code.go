package code

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultIssuer is assigned to codes parsed without an issuer letter.
const DefaultIssuer = "U"

// Pattern matches a single element code anywhere in a document. Parse anchors
// it; the hierarchy scanner uses it unanchored.
const Pattern = `([A-Z])?([0-9]{2})\.([0-9]{2})(?:-([0-9])-([0-9]))?`

var (
	// ErrInvalidFormat reports a string that does not follow the element code
	// grammar.
	ErrInvalidFormat = errors.New("code: invalid format")

	codeRE = regexp.MustCompile(`^` + Pattern + `$`)
)

// Code identifies an S42 address element, optionally narrowed to an element
// sub-type through the instance and part digits. The zero value is not a valid
// code; obtain one through Parse.
type Code struct {
	Issuer   string
	Element  string
	Subtype  string
	Instance string
	Part     string
}

// Parse converts a string such as "U40.13" or "40.21-1-1" into a Code.
//
// An element sub-type code is the code of its element followed by a hyphen,
// a single instance digit, another hyphen and a single part digit. The issuer
// letter is optional and defaults to DefaultIssuer.
func Parse(raw string) (Code, error) {
	m := codeRE.FindStringSubmatch(raw)
	if m == nil {
		return Code{}, fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
	return newCode(m[1], m[2], m[3], m[4], m[5]), nil
}

// MustParse is Parse for static codes; it panics on malformed input.
func MustParse(raw string) Code {
	c, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func newCode(issuer, element, subtype, instance, part string) Code {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return Code{
		Issuer:   issuer,
		Element:  element,
		Subtype:  subtype,
		Instance: instance,
		Part:     part,
	}
}

// Base strips the instance and part, returning the element code.
func (c Code) Base() Code {
	return Code{Issuer: c.Issuer, Element: c.Element, Subtype: c.Subtype}
}

// IsBase reports whether the code carries no sub-type digits.
func (c Code) IsBase() bool {
	return c.Instance == ""
}

// String renders the canonical form, always including the issuer.
func (c Code) String() string {
	s := c.Issuer + c.Element + "." + c.Subtype
	if c.Instance != "" {
		s += "-" + c.Instance + "-" + c.Part
	}
	return s
}

// MarshalText implements encoding.TextMarshaler so codes can key JSON/YAML maps.
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Code) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
