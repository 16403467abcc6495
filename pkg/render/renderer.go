package render

import (
	"context"

	"github.com/goliatone/go-s42/pkg/rendition"
)

// Renderer converts a rendition into an output format (plain text, HTML,
// label templates).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, r *rendition.Rendition, options RenderOptions) ([]byte, error)
}
