package catalog

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// Default versions used when a Key leaves them empty.
const (
	DefaultStandard = "6"
	DefaultLayout   = "2.6"
)

var filenamePattern = regexp.MustCompile(`^S42-([^-]+)-([A-Za-z]{2})-PATDL\.v\.(.+)\.xml$`)

// Key identifies a template by ISO 3166 alpha-2 country, S42 standard version
// and PATDL layout version.
type Key struct {
	Country  string
	Standard string
	Layout   string
}

// Normalize upper-cases the country and fills in default versions.
func (k Key) Normalize() Key {
	k.Country = strings.ToUpper(strings.TrimSpace(k.Country))
	k.Standard = strings.TrimSpace(k.Standard)
	k.Layout = strings.TrimSpace(k.Layout)
	if k.Standard == "" {
		k.Standard = DefaultStandard
	}
	if k.Layout == "" {
		k.Layout = DefaultLayout
	}
	return k
}

// Filename returns the catalog file name for the key, for example
// "S42-6-NL-PATDL.v.2.6.xml".
func (k Key) Filename() string {
	k = k.Normalize()
	return fmt.Sprintf("S42-%s-%s-PATDL.v.%s.xml", k.Standard, k.Country, k.Layout)
}

func (k Key) String() string {
	k = k.Normalize()
	return fmt.Sprintf("%s (S42 %s, PATDL %s)", k.Country, k.Standard, k.Layout)
}

// ParseFilename recovers the key from a catalog file name or path.
func ParseFilename(name string) (Key, bool) {
	m := filenamePattern.FindStringSubmatch(path.Base(strings.ReplaceAll(name, "\\", "/")))
	if m == nil {
		return Key{}, false
	}
	return Key{Country: m[2], Standard: m[1], Layout: m[3]}.Normalize(), true
}
