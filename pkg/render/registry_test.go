package render

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-s42/pkg/rendition"
)

type stubRenderer struct{ name string }

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, *rendition.Rendition, RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	registry, err := NewRegistryWith(stubRenderer{"text"}, stubRenderer{"html"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	if err := registry.Register(stubRenderer{"text"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}

	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("html") || registry.Has("pdf") {
		t.Fatalf("unexpected Has results")
	}
	if _, err := registry.Get("pdf"); !errors.Is(err, ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if registry.MustGet("text").Name() != "text" {
		t.Fatalf("unexpected renderer")
	}
}

func TestRenderOptions(t *testing.T) {
	opts := RenderOptions{Recipient: []string{"J. Jansen", "", "ACME BV"}}
	if opts.Break() != "\n" {
		t.Fatalf("expected default line break")
	}
	got := opts.AllLines([]string{"Dorpsstraat 12"})
	want := []string{"J. Jansen", "ACME BV", "Dorpsstraat 12"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if (RenderOptions{LineBreak: "\r\n"}).Break() != "\r\n" {
		t.Fatalf("expected custom line break")
	}
}
