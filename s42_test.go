package s42

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-s42/pkg/catalog"
)

func TestEmbeddedTemplates(t *testing.T) {
	names, err := fs.Glob(EmbeddedTemplates(), catalog.DefaultPattern)
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	want := []string{"S42-6-NL-PATDL.v.2.6.xml", "S42-6-US-PATDL.v.2.6.xml"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("templates mismatch (-want +got):\n%s", diff)
	}
	if _, err := fs.ReadFile(EmbeddedLabelTemplates(), "templates/label.tpl"); err != nil {
		t.Fatalf("expected label template: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	out, err := Generate(context.Background(), "NL", map[string]string{
		"thoroughfare":  "Dorpsstraat",
		"street_number": "12",
		"postcode":      "1234AB",
		"town":          "Amsterdam",
	}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "Dorpsstraat 12\n1234 AB AMSTERDAM\nNETHERLANDS"
	if string(out) != want {
		t.Fatalf("want %q, got %q", want, string(out))
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := c.Preload(context.Background()); err != nil {
		t.Fatalf("preload: %v", err)
	}
	if len(c.Cached()) != 2 {
		t.Fatalf("expected two cached templates, got %v", c.Cached())
	}
}

func TestParseTemplateAndRender(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "patdl", "S42-6-NL-PATDL.v.2.6.xml"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	tpl, err := ParseTemplate(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lines, err := Render(tpl, map[string]string{"40.13": "1234AB", "40.16": "Amsterdam"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"1234 AB AMSTERDAM"}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if _, err := Render(tpl, map[string]string{"bad": "x"}); err == nil {
		t.Fatalf("expected invalid code error")
	}
}
