package address

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-s42/pkg/country"
)

// Field names with special meaning during mnemonic conversion.
const (
	FieldCountry     = "country"
	FieldCountryName = "country_name"
)

// ErrNoMnemonics reports a country without a mnemonic map.
var ErrNoMnemonics = errors.New("address: no mnemonic map for country")

// Mnemonics maps ISO numeric country codes to friendly field names and the
// element codes they stand for.
var Mnemonics = map[string]map[string]string{
	"528": { // Netherlands
		"thoroughfare":  "40.21-1-1",
		"street_number": "40.24",
		"postcode":      "40.13",
		"town":          "40.16",
		"country_name":  "40.14",
		"door":          "40.32",
		"building":      "40.26-0-2",
	},
	"840": { // United States
		"predirectional":    "40.21-1-3",
		"postdirectional":   "40.21-2-3",
		"thoroughfare":      "40.21-1-1",
		"thoroughfare_type": "40.21-2-2",
		"street_number":     "40.24",
		"postcode":          "40.13-0-1",
		"postcode4":         "40.13-0-2",
		"town":              "40.16",
		"region":            "40.15",
		"country_name":      "40.14",
	},
}

// MnemonicsFor returns the mnemonic map of iso.
func MnemonicsFor(iso country.Country) (map[string]string, error) {
	names, ok := Mnemonics[iso.Numeric3]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMnemonics, iso.Alpha2)
	}
	return names, nil
}

// FromFields converts friendly field names into address data for iso. The
// country's ISO name is supplied as country_name unless fields already sets
// it; the "country" field and names without a mapping are ignored. fields is
// never modified.
func FromFields(iso country.Country, fields map[string]string) (*Data, error) {
	names, err := MnemonicsFor(iso)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]string, len(fields)+1)
	if _, ok := fields[FieldCountryName]; !ok {
		if c, mapped := names[FieldCountryName]; mapped {
			codes[c] = iso.Name
		}
	}
	for name, value := range fields {
		if name == FieldCountry {
			continue
		}
		c, ok := names[name]
		if !ok {
			continue
		}
		codes[c] = value
	}
	return FromMap(codes)
}

// FromDTO resolves the "country" field through the bundled ISO table and then
// behaves like FromFields.
func FromDTO(fields map[string]string) (country.Country, *Data, error) {
	raw, ok := fields[FieldCountry]
	if !ok || raw == "" {
		return country.Country{}, nil, errors.New("address: fields must declare a country")
	}
	iso, err := country.Lookup(raw)
	if err != nil {
		return country.Country{}, nil, fmt.Errorf("address: %w", err)
	}
	data, err := FromFields(iso, fields)
	if err != nil {
		return country.Country{}, nil, err
	}
	return iso, data, nil
}
