package s42

import (
	"context"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/orchestrator"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/rendition"
)

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// RenderOptions describes per-request output options such as recipient lines
// and line breaks.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module. The built-in rules are applied unless options set a config.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	defaults := []orchestrator.Option{}
	if cfg, err := DefaultConfig(); err == nil {
		defaults = append(defaults, orchestrator.WithConfig(cfg))
	}
	return orchestrator.New(append(defaults, options...)...)
}

// Generate renders mnemonic fields for a country with the bundled templates
// and the named renderer ("text" when empty).
func Generate(ctx context.Context, country string, fields map[string]string, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := NewOrchestrator(append([]orchestrator.Option{WithEmbeddedTemplates()}, options...)...)
	return gen.Generate(ctx, orchestrator.Request{
		Country:  country,
		Fields:   fields,
		Renderer: rendererName,
	})
}

// Render renders code-keyed address data with tpl and returns the lines.
func Render(tpl *patdl.Template, data map[string]string) ([]string, error) {
	d, err := address.FromMap(data)
	if err != nil {
		return nil, err
	}
	r, err := rendition.Render(tpl, d)
	if err != nil {
		return nil, err
	}
	return r.Lines(), nil
}
