package code

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
)

var scanRE = regexp.MustCompile(Pattern)

// Hierarchy maps element codes to the ordered sub-type codes the conceptual
// hierarchy declares for them. It is read-only once built and safe to share.
type Hierarchy struct {
	subtypes map[Code][]Code
}

// ParseHierarchy scans every code occurrence in a conceptual hierarchy
// document. Element codes register themselves; sub-type codes are appended,
// in document order, under their element.
func ParseHierarchy(doc []byte) *Hierarchy {
	h := &Hierarchy{subtypes: make(map[Code][]Code)}
	for _, m := range scanRE.FindAllStringSubmatch(string(doc), -1) {
		c := newCode(m[1], m[2], m[3], m[4], m[5])
		base := c.Base()
		if c.IsBase() {
			if _, ok := h.subtypes[base]; !ok {
				h.subtypes[base] = nil
			}
			continue
		}
		if !containsCode(h.subtypes[base], c) {
			h.subtypes[base] = append(h.subtypes[base], c)
		}
	}
	return h
}

// LoadHierarchy reads and parses a hierarchy document from fsys.
func LoadHierarchy(fsys fs.FS, name string) (*Hierarchy, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("code: read hierarchy %s: %w", name, err)
	}
	return ParseHierarchy(data), nil
}

// Default resolves c to the first declared sub-type of its element when c has
// no instance and the hierarchy lists sub-types; otherwise it returns c.
func (h *Hierarchy) Default(c Code) Code {
	if h == nil || !c.IsBase() {
		return c
	}
	if subs := h.subtypes[c.Base()]; len(subs) > 0 {
		return subs[0]
	}
	return c
}

// Subtypes returns a copy of the sub-type codes declared for c's element.
func (h *Hierarchy) Subtypes(c Code) []Code {
	if h == nil {
		return nil
	}
	return append([]Code(nil), h.subtypes[c.Base()]...)
}

// Has reports whether the hierarchy declares c's element.
func (h *Hierarchy) Has(c Code) bool {
	if h == nil {
		return false
	}
	_, ok := h.subtypes[c.Base()]
	return ok
}

// Elements lists the declared element codes sorted by their string form.
func (h *Hierarchy) Elements() []Code {
	if h == nil {
		return nil
	}
	out := make([]Code, 0, len(h.subtypes))
	for c := range h.subtypes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func containsCode(list []Code, c Code) bool {
	for _, existing := range list {
		if existing == c {
			return true
		}
	}
	return false
}
