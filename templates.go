package s42

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-s42/pkg/orchestrator"
	"github.com/goliatone/go-s42/pkg/renderers/label"
)

//go:embed templates/*.xml
var embeddedTemplates embed.FS

// EmbeddedTemplates exposes the bundled PATDL templates, named
// S42-{standard}-{country}-PATDL.v.{layout}.xml at the root of the fs.FS.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// EmbeddedLabelTemplates exposes the label renderer templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedLabelTemplates() fs.FS {
	return label.TemplatesFS()
}

// WithEmbeddedTemplates points the orchestrator's default catalog at the
// bundled templates.
func WithEmbeddedTemplates() orchestrator.Option {
	return orchestrator.WithTemplateFS(EmbeddedTemplates())
}
