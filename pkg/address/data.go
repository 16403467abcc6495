package address

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goliatone/go-s42/pkg/code"
)

// ErrDuplicateCode reports two input keys that normalise to the same code,
// e.g. "40.13" and "U40.13".
var ErrDuplicateCode = errors.New("address: duplicate code")

// Data maps element codes to values. It is immutable after construction and is
// the only view of address values the template engine reads.
type Data struct {
	elements map[code.Code]string
}

// FromMap parses every key through code.Parse. Keys that collide after
// normalisation are rejected rather than resolved by iteration order.
func FromMap(fields map[string]string) (*Data, error) {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	elements := make(map[code.Code]string, len(fields))
	seen := make(map[code.Code]string, len(fields))
	for _, key := range keys {
		c, err := code.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("address: key %q: %w", key, err)
		}
		if prev, exists := seen[c]; exists {
			return nil, fmt.Errorf("%w: %q and %q both resolve to %s", ErrDuplicateCode, prev, key, c)
		}
		seen[c] = key
		elements[c] = fields[key]
	}
	return &Data{elements: elements}, nil
}

// MustFromMap is FromMap for static fixtures; it panics on error.
func MustFromMap(fields map[string]string) *Data {
	d, err := FromMap(fields)
	if err != nil {
		panic(err)
	}
	return d
}

// Get returns the value stored for c, falling back to c's element code.
func (d *Data) Get(c code.Code) (string, bool) {
	if d == nil {
		return "", false
	}
	if v, ok := d.elements[c]; ok {
		return v, true
	}
	v, ok := d.elements[c.Base()]
	return v, ok
}

// Value is Get without the presence flag.
func (d *Data) Value(c code.Code) string {
	v, _ := d.Get(c)
	return v
}

// IsPopulated reports whether c or its element code was supplied, whatever the
// value, including the empty string.
func (d *Data) IsPopulated(c code.Code) bool {
	if d == nil {
		return false
	}
	if _, ok := d.elements[c]; ok {
		return true
	}
	_, ok := d.elements[c.Base()]
	return ok
}

// Len returns the number of stored elements.
func (d *Data) Len() int {
	if d == nil {
		return 0
	}
	return len(d.elements)
}

// Codes returns the stored codes sorted by their string form.
func (d *Data) Codes() []code.Code {
	if d == nil {
		return nil
	}
	out := make([]code.Code, 0, len(d.elements))
	for c := range d.elements {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Map returns a copy keyed by canonical code strings.
func (d *Data) Map() map[string]string {
	if d == nil {
		return nil
	}
	out := make(map[string]string, len(d.elements))
	for c, v := range d.elements {
		out[c.String()] = v
	}
	return out
}
