// Package label renders an address rendition through a pongo2 template, for
// fixed-width mailing labels and similar layouts.
package label

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-s42/pkg/render"
	rendertemplate "github.com/goliatone/go-s42/pkg/render/template"
	gotemplate "github.com/goliatone/go-s42/pkg/render/template/gotemplate"
	"github.com/goliatone/go-s42/pkg/rendition"
)

const (
	// Name identifies the renderer in a render.Registry.
	Name = "label"
	// DefaultTemplate is rendered when no other template is selected.
	DefaultTemplate = "templates/label.tpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	templateName     string
	justify          string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplate selects the template rendered for every address.
func WithTemplate(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.templateName = name
		}
	}
}

// WithJustify pads every line using a justification code such as "L40",
// "R40" or "C40". RenderOptions.Extras["justify"] overrides it per request.
func WithJustify(code string) Option {
	return func(cfg *config) {
		cfg.justify = code
	}
}

type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	templateName string
	justify      string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the label renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), templateName: DefaultTemplate}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("label renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		templateName: cfg.templateName,
		justify:      cfg.justify,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, result *rendition.Rendition, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, errors.New("label renderer: template renderer is nil")
	}
	if result == nil {
		return nil, errors.New("label renderer: rendition is nil")
	}

	justify := r.justify
	if v, ok := opts.Extras["justify"].(string); ok {
		justify = v
	}
	extras := opts.Extras
	if extras == nil {
		extras = map[string]any{}
	}

	lines := opts.AllLines(result.Lines())
	out, err := r.templates.RenderTemplate(r.templateName, map[string]any{
		"lines":     lines,
		"country":   result.Country(),
		"abstract":  result.Abstract(),
		"text":      result.String(),
		"justify":   justify,
		"recipient": opts.Recipient,
		"extras":    extras,
	})
	if err != nil {
		return nil, fmt.Errorf("label renderer: render template: %w", err)
	}
	return []byte(out), nil
}
