// Package html renders an address rendition as an HTML <address> block.
package html

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/rendition"
)

// Name identifies the renderer in a render.Registry.
const Name = "html"

var (
	linePolicyOnce sync.Once
	linePolicy     *bluemonday.Policy
)

// lineSanitizer strips every tag and escapes what is left, so address values
// can never inject markup.
func lineSanitizer() *bluemonday.Policy {
	linePolicyOnce.Do(func() {
		linePolicy = bluemonday.StrictPolicy()
	})
	return linePolicy
}

// Option configures the HTML renderer.
type Option func(*Renderer)

// WithClass sets the class attribute of the <address> element.
func WithClass(class string) Option {
	return func(r *Renderer) {
		r.class = strings.TrimSpace(class)
	}
}

// Renderer emits one sanitized line per address line joined with <br>.
type Renderer struct {
	class string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{class: "s42-address"}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, result *rendition.Rendition, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("html renderer: rendition is nil")
	}

	policy := lineSanitizer()
	lines := opts.AllLines(result.Lines())
	clean := make([]string, 0, len(lines))
	for _, line := range lines {
		clean = append(clean, strings.TrimSpace(policy.Sanitize(line)))
	}

	var b strings.Builder
	b.WriteString("<address")
	if r.class != "" {
		b.WriteString(` class="`)
		b.WriteString(policy.Sanitize(r.class))
		b.WriteString(`"`)
	}
	if country := result.Country(); country != "" {
		b.WriteString(` data-country="`)
		b.WriteString(policy.Sanitize(country))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(strings.Join(clean, "<br>"))
	b.WriteString("</address>")
	return []byte(b.String()), nil
}
