package rendition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/country"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rules"
)

func loadTemplate(t *testing.T, iso string) *patdl.Template {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "..", "testdata", "patdl", "S42-6-"+iso+"-PATDL.v.2.6.xml"))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()

	tpl, err := patdl.Parse(f, patdl.MustConfig(rules.Builtin()...))
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	return tpl
}

func fromFields(t *testing.T, iso string, fields map[string]string) *address.Data {
	t.Helper()
	c, err := country.Lookup(iso)
	if err != nil {
		t.Fatalf("lookup %s: %v", iso, err)
	}
	data, err := address.FromFields(c, fields)
	if err != nil {
		t.Fatalf("from fields: %v", err)
	}
	return data
}

func TestRender_Netherlands(t *testing.T) {
	tpl := loadTemplate(t, "NL")

	cases := []struct {
		name   string
		fields map[string]string
		want   []string
	}{
		{
			name: "street address",
			fields: map[string]string{
				"thoroughfare":  "Dorpsstraat",
				"street_number": "12",
				"postcode":      "1234AB",
				"town":          "Amsterdam",
				"country":       "NL",
			},
			want: []string{"Dorpsstraat 12", "1234 AB AMSTERDAM", "NETHERLANDS"},
		},
		{
			name: "building and extension",
			fields: map[string]string{
				"building":      "De Kroon",
				"thoroughfare":  "Dorpsstraat",
				"street_number": "12",
				"postcode":      "1234ab",
				"town":          "Amsterdam",
				"country_name":  "Nederland",
			},
			want: []string{"De Kroon", "Dorpsstraat 12", "1234 AB AMSTERDAM", "NEDERLAND"},
		},
		{
			name: "no street number",
			fields: map[string]string{
				"thoroughfare": "Dorpsstraat",
				"town":         "Amsterdam",
			},
			want: []string{"Dorpsstraat", " AMSTERDAM", "NETHERLANDS"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Render(tpl, fromFields(t, "NL", tc.fields))
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tc.want, r.Lines()); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
			if r.String() != strings.Join(tc.want, "\n") {
				t.Fatalf("unexpected text %q", r.String())
			}
		})
	}
}

func TestRender_NetherlandsExtension(t *testing.T) {
	tpl := loadTemplate(t, "NL")
	for ext, want := range map[string]string{"2": "Dorpsstraat 12-2", "A": "Dorpsstraat 12 A"} {
		data := address.MustFromMap(map[string]string{"40.21-1-1": "Dorpsstraat", "40.24": "12", "40.28": ext})
		r, err := Render(tpl, data)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if got := r.Lines()[0]; got != want {
			t.Fatalf("extension %q: expected %q, got %q", ext, want, got)
		}
	}
}

func TestRender_UnitedStates(t *testing.T) {
	tpl := loadTemplate(t, "US")

	cases := []struct {
		name   string
		fields map[string]string
		want   []string
	}{
		{
			name: "street",
			fields: map[string]string{
				"street_number":     "1600",
				"predirectional":    "N",
				"thoroughfare":      "Main",
				"thoroughfare_type": "St",
				"town":              "Springfield",
				"region":            "IL",
				"postcode":          "62704",
				"postcode4":         "1234",
				"country":           "US",
			},
			want: []string{"1600 N Main St", "Springfield, IL 62704-1234", "United States"},
		},
		{
			name: "rural route without zip+4",
			fields: map[string]string{
				"thoroughfare": "RR 2 Box 152",
				"town":         "Ames",
				"region":       "IA",
				"postcode":     "50010",
				"country_name": "USA",
			},
			want: []string{"RR 2 Box 152", "Ames, IA 50010", "USA"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := Render(tpl, fromFields(t, "US", tc.fields))
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tc.want, r.Lines()); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_NoTrailingSeparator(t *testing.T) {
	tpl := loadTemplate(t, "US")
	data := address.MustFromMap(map[string]string{"40.16": "Springfield", "40.13-0-1": "62704"})

	r, err := Render(tpl, data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// City is followed by ", " and the ZIP by "-": both would end the line
	// without the trailing separator rule.
	if diff := cmp.Diff([]string{"Springfield, 62704"}, r.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	only := address.MustFromMap(map[string]string{"40.16": "Springfield"})
	r, err = Render(tpl, only)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range r.Lines() {
		if strings.HasSuffix(line, ",") || strings.HasSuffix(line, " ") {
			t.Fatalf("line %q ends with a separator", line)
		}
	}
}

func TestRender_OmitsLinesWithoutComponents(t *testing.T) {
	tpl := loadTemplate(t, "US")
	r, err := Render(tpl, address.MustFromMap(nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(r.Lines()) != 0 || r.String() != "" {
		t.Fatalf("expected no lines, got %q", r.Lines())
	}
	// The last line was selected and added to the tree, but produced no atoms.
	if len(r.Tree().Lines()) != 1 {
		t.Fatalf("expected one selected line in the tree, got %d", len(r.Tree().Lines()))
	}
}

func TestRender_Abstract(t *testing.T) {
	tpl := loadTemplate(t, "NL")
	data := address.MustFromMap(map[string]string{"40.21-1-1": "Dorpsstraat", "40.24": "12", "40.13": "1234AB", "40.16": "Amsterdam"})

	r, err := Render(tpl, data, WithAbstract())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"Thoroughfare name Street number", "PostcodeTown"}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if !r.Abstract() || r.Country() != "NL" {
		t.Fatalf("unexpected rendition metadata abstract=%v country=%q", r.Abstract(), r.Country())
	}
}

func TestTree_Structure(t *testing.T) {
	tree := NewTree()
	line := tree.Add(tree.Root(), Node{Kind: LineNode})
	component := tree.Add(line, Node{Kind: ComponentNode})
	first := tree.Add(component, Node{Kind: ElementNode})
	tree.Add(first, Node{Kind: ValueNode, Text: "A"})
	tree.Add(first, Node{Kind: SeparatorNode, Text: "+"})
	second := tree.Add(component, Node{Kind: ElementNode})
	tree.Add(second, Node{Kind: ValueNode, Text: "B"})
	tree.Add(second, Node{Kind: SeparatorNode, Text: "+"})

	if got := tree.Text(line); got != "A+B" {
		t.Fatalf("expected A+B, got %q", got)
	}
	if got := len(tree.Atoms(line)); got != 4 {
		t.Fatalf("expected 4 atoms, got %d", got)
	}
	if diff := cmp.Diff([]int{first, second}, tree.Siblings(second)); diff != "" {
		t.Fatalf("siblings mismatch (-want +got):\n%s", diff)
	}
	if tree.Node(second).Parent != component || tree.Node(tree.Root()).Parent != NoParent {
		t.Fatalf("unexpected parent indices")
	}
}
