package rules

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/patdl"
)

// ProcedureRuralRoute is the hasResult procedure US templates use to tell
// rural route addresses apart from street addresses.
const ProcedureRuralRoute = "US-RuralRouteTypeTest"

var (
	nlPostcode  = regexp.MustCompile(`^[0-9]{4}[A-Z]{2}`)
	usRuralName = regexp.MustCompile(`^(RR|HC)\s[0-9]`)

	codePostcode    = code.MustParse("40.13")
	codeCountryName = code.MustParse("40.14")
	codeTown        = code.MustParse("40.16")
	codeSector      = code.MustParse("40.17")
	codeStreetName  = code.MustParse("40.21-1-1")
	codeStreetType  = code.MustParse("40.21-2-2")
	codeStreetNo    = code.MustParse("40.24")
	codeExtension   = code.MustParse("40.28")
)

// Builtin returns the rules shipped for every supported country.
func Builtin() []patdl.ConfigOption {
	return append(Netherlands(), UnitedStates()...)
}

// Netherlands returns the NL preprocessors.
func Netherlands() []patdl.ConfigOption {
	return []patdl.ConfigOption{
		patdl.WithPreprocessor("NL", codePostcode, nlFormatPostcode),
		patdl.WithPreprocessor("NL", codeTown, nlTown),
		patdl.WithPreprocessor("NL", codeSector, nlUpper),
		patdl.WithPreprocessor("NL", codeCountryName, nlUpper),
		patdl.WithPreprocessor("NL", codeExtension, nlExtension),
	}
}

// UnitedStates returns the US procedures.
func UnitedStates() []patdl.ConfigOption {
	return []patdl.ConfigOption{
		patdl.WithProcedure("US", ProcedureRuralRoute, usRuralRouteTypeTest),
	}
}

// upper builds a caser per call; cases.Caser is not safe for concurrent use.
func upper(tag language.Tag, value string) string {
	return cases.Upper(tag).String(value)
}

// nlFormatPostcode upper-cases the postcode and separates digits from letters:
// "1234ab" becomes "1234 AB". Lower-case input is spaced too because the case
// is folded before matching; a match-then-upper order would give "1234AB".
func nlFormatPostcode(value string) (string, error) {
	value = upper(language.Dutch, value)
	if nlPostcode.MatchString(value) {
		value = value[:4] + " " + value[4:]
	}
	return value, nil
}

// nlTown carries the space that separates it from the postcode.
func nlTown(value string) (string, error) {
	return " " + nlUpperString(value), nil
}

func nlUpper(value string) (string, error) {
	return nlUpperString(value), nil
}

func nlUpperString(value string) string {
	return upper(language.Dutch, strings.TrimSpace(value))
}

// nlExtension joins numeric extensions with a hyphen ("12-2") and any other
// extension with a space ("12 A").
func nlExtension(value string) (string, error) {
	first, _ := utf8.DecodeRuneInString(value)
	switch {
	case value == "":
		return value, nil
	case unicode.IsDigit(first):
		return "-" + value, nil
	default:
		return " " + value, nil
	}
}

// usRuralRouteTypeTest answers "Y" for rural route and highway contract
// addresses: no street number, no thoroughfare type, and a thoroughfare name
// of the form "RR 2 ..." or "HC 12 ...".
func usRuralRouteTypeTest(data *address.Data) (string, error) {
	switch {
	case data.IsPopulated(codeStreetNo):
		return "N", nil
	case data.IsPopulated(codeStreetType):
		return "N", nil
	case data.IsPopulated(codeStreetName):
		if usRuralName.MatchString(data.Value(codeStreetName)) {
			return "Y", nil
		}
		return "N", nil
	default:
		return "N", nil
	}
}
