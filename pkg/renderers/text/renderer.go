// Package text renders an address rendition as plain text lines.
package text

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/rendition"
)

// Name identifies the renderer in a render.Registry.
const Name = "text"

// Renderer joins recipient and address lines with RenderOptions.LineBreak.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the text renderer.
func New() *Renderer {
	return &Renderer{}
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
	if result == nil {
		return nil, errors.New("text renderer: rendition is nil")
	}
	return []byte(strings.Join(opts.AllLines(result.Lines()), opts.Break())), nil
}
