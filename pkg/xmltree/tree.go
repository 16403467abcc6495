// Package xmltree decodes XML documents into a small element tree and offers
// the handful of path lookups PATDL templates need: descendant search
// ("//a/b"), relative child paths ("a/b") and child wildcards ("a/*").
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is one node of a parsed document. Text holds the character data
// directly inside the element, before any trimming.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Element
}

// Parse decodes the first root element from r.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var (
		stack []*Element
		root  *Element
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: decode: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: t.Name.Local}
			if len(t.Attr) > 0 {
				el.Attrs = make(map[string]string, len(t.Attr))
				for _, attr := range t.Attr {
					el.Attrs[attr.Name.Local] = attr.Value
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			} else if root == nil {
				root = el
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("xmltree: document has no root element")
	}
	return root, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(doc []byte) (*Element, error) {
	return Parse(bytes.NewReader(doc))
}

// Attr returns the named attribute value.
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	return e.Attrs[name]
}

// TrimmedText returns Text without surrounding whitespace.
func (e *Element) TrimmedText() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text)
}

// Find evaluates path against e and returns matches in document order.
//
// A leading "//" searches all descendants for the first step; the remaining
// steps select children. Without the prefix every step selects children of
// e. The step "*" matches any tag.
func (e *Element) Find(path string) []*Element {
	if e == nil {
		return nil
	}
	descendant := strings.HasPrefix(path, "//")
	steps := strings.Split(strings.Trim(path, "/"), "/")
	if len(steps) == 0 || steps[0] == "" {
		return nil
	}

	var current []*Element
	if descendant {
		e.walk(func(el *Element) {
			if matchStep(el, steps[0]) {
				current = append(current, el)
			}
		})
	} else {
		current = e.children(steps[0])
	}

	for _, step := range steps[1:] {
		var next []*Element
		for _, el := range current {
			next = append(next, el.children(step)...)
		}
		current = next
	}
	return current
}

// First returns the first match of path, or nil.
func (e *Element) First(path string) *Element {
	matches := e.Find(path)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (e *Element) children(step string) []*Element {
	var out []*Element
	for _, child := range e.Children {
		if matchStep(child, step) {
			out = append(out, child)
		}
	}
	return out
}

// walk visits the descendants of e (not e itself) in document order.
func (e *Element) walk(fn func(*Element)) {
	for _, child := range e.Children {
		fn(child)
		child.walk(fn)
	}
}

func matchStep(el *Element, step string) bool {
	return step == "*" || el.Tag == step
}
