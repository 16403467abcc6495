package code

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		raw  string
		want Code
		str  string
	}{
		{raw: "U40.13", want: Code{Issuer: "U", Element: "40", Subtype: "13"}, str: "U40.13"},
		{raw: "40.13", want: Code{Issuer: "U", Element: "40", Subtype: "13"}, str: "U40.13"},
		{raw: "A01.02", want: Code{Issuer: "A", Element: "01", Subtype: "02"}, str: "A01.02"},
		{raw: "40.21-1-1", want: Code{Issuer: "U", Element: "40", Subtype: "21", Instance: "1", Part: "1"}, str: "U40.21-1-1"},
		{raw: "40.26-0-2", want: Code{Issuer: "U", Element: "40", Subtype: "26", Instance: "0", Part: "2"}, str: "U40.26-0-2"},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("code mismatch (-want +got):\n%s", diff)
			}
			if got.String() != tc.str {
				t.Fatalf("expected string %q, got %q", tc.str, got.String())
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "40", "4.13", "40.1", "u40.13", "40.13-1", "40.13-1-", "40.13-10-1", "UU40.13", " 40.13", "40.13 "} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidFormat) {
			t.Fatalf("expected ErrInvalidFormat for %q, got %v", raw, err)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, raw := range []string{"40.13", "U40.13", "Z99.00", "40.21-2-3", "B10.20-9-9"} {
		first := MustParse(raw)
		second, err := Parse(first.String())
		if err != nil {
			t.Fatalf("reparse %q: %v", first, err)
		}
		if first != second {
			t.Fatalf("round trip changed %q into %q", first, second)
		}
	}
}

func TestBase(t *testing.T) {
	c := MustParse("40.21-1-1")
	if got := c.Base(); got != MustParse("U40.21") {
		t.Fatalf("expected base U40.21, got %s", got)
	}
	if !c.Base().IsBase() || c.IsBase() {
		t.Fatalf("unexpected IsBase results for %s", c)
	}
	if MustParse("40.13") != MustParse("U40.13") {
		t.Fatalf("expected default issuer to normalise equality")
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParse("bogus")
}

func TestTextMarshalling(t *testing.T) {
	var c Code
	if err := c.UnmarshalText([]byte("40.13-0-1")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := c.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "U40.13-0-1" {
		t.Fatalf("unexpected text %q", out)
	}
	if err := c.UnmarshalText([]byte("nope")); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestHierarchy_Default(t *testing.T) {
	doc := []byte(`<hierarchy>
  <element code="40.13"><subtype code="40.13-0-1"/><subtype code="40.13-0-2"/></element>
  <element code="40.16"/>
  <element code="40.21"><subtype code="40.21-1-1"/><subtype code="40.21-1-1"/><subtype code="40.21-2-2"/></element>
</hierarchy>`)
	h := ParseHierarchy(doc)

	cases := []struct {
		in   string
		want string
	}{
		{in: "40.13", want: "U40.13-0-1"},
		{in: "U40.21", want: "U40.21-1-1"},
		{in: "40.16", want: "U40.16"},
		{in: "40.99", want: "U40.99"},
		{in: "40.13-0-2", want: "U40.13-0-2"},
	}
	for _, tc := range cases {
		if got := h.Default(MustParse(tc.in)).String(); got != tc.want {
			t.Fatalf("default(%s): expected %s, got %s", tc.in, tc.want, got)
		}
	}

	subs := h.Subtypes(MustParse("40.21-2-2"))
	want := []Code{MustParse("40.21-1-1"), MustParse("40.21-2-2")}
	if diff := cmp.Diff(want, subs); diff != "" {
		t.Fatalf("subtypes mismatch (-want +got):\n%s", diff)
	}
	if !h.Has(MustParse("40.16")) || h.Has(MustParse("40.99")) {
		t.Fatalf("unexpected Has results")
	}
	if got := len(h.Elements()); got != 3 {
		t.Fatalf("expected 3 elements, got %d", got)
	}
}

func TestHierarchy_NilIsIdentity(t *testing.T) {
	var h *Hierarchy
	c := MustParse("40.13")
	if h.Default(c) != c {
		t.Fatalf("nil hierarchy must return the code unchanged")
	}
}

func TestLoadHierarchy(t *testing.T) {
	h, err := LoadHierarchy(os.DirFS(filepath.Join("..", "..", "testdata")), "hierarchy.xml")
	if err != nil {
		t.Fatalf("load hierarchy: %v", err)
	}
	if got := h.Default(MustParse("40.21")).String(); got != "U40.21-1-1" {
		t.Fatalf("expected U40.21-1-1, got %s", got)
	}
	if _, err := LoadHierarchy(os.DirFS("."), "missing.xml"); err == nil {
		t.Fatalf("expected error for missing hierarchy")
	}
}
