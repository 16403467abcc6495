package label

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded label templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
