package html

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/rendition"
	"github.com/goliatone/go-s42/pkg/rules"
	"github.com/goliatone/go-s42/pkg/testsupport"
)

func renderNL(t *testing.T, data map[string]string) *rendition.Rendition {
	t.Helper()
	tpl := testsupport.MustLoadTemplate(t,
		filepath.Join("..", "..", "..", "testdata", "patdl", "S42-6-NL-PATDL.v.2.6.xml"),
		patdl.MustConfig(rules.Builtin()...))
	result, err := rendition.Render(tpl, address.MustFromMap(data))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return result
}

func TestRenderer_Render(t *testing.T) {
	result := renderNL(t, map[string]string{
		"40.21-1-1": "Dorpsstraat",
		"40.24":     "12",
		"40.13":     "1234AB",
		"40.16":     "Amsterdam",
	})

	got, err := New().Render(context.Background(), result, render.RenderOptions{Recipient: []string{"J. Jansen"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<address class="s42-address" data-country="NL">J. Jansen<br>Dorpsstraat 12<br>1234 AB AMSTERDAM</address>`
	if string(got) != want {
		t.Fatalf("want %s\n got %s", want, got)
	}
}

func TestRenderer_SanitizesValues(t *testing.T) {
	result := renderNL(t, map[string]string{
		"40.21-1-1": `<script>alert(1)</script>Dorpsstraat`,
		"40.24":     "12",
	})

	got, err := New(WithClass("")).Render(context.Background(), result, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(got)
	if strings.Contains(out, "<script") {
		t.Fatalf("expected script to be stripped, got %s", out)
	}
	if !strings.HasPrefix(out, `<address data-country="NL">`) || !strings.Contains(out, "Dorpsstraat 12") {
		t.Fatalf("unexpected output %s", out)
	}
}
