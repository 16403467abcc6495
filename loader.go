package s42

import (
	"fmt"
	"io"

	internalLoader "github.com/goliatone/go-s42/internal/loader"
	"github.com/goliatone/go-s42/pkg/catalog"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rules"
)

// NewLoader constructs a template loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...catalog.LoaderOption) catalog.Loader {
	cfg := catalog.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// DefaultConfig returns a template configuration with the built-in country
// rules plus options.
func DefaultConfig(options ...patdl.ConfigOption) (*patdl.Config, error) {
	return patdl.NewConfig(append(rules.Builtin(), options...)...)
}

// NewCatalog constructs a catalog over the bundled templates with the
// built-in rules. Options are applied afterwards and may replace both.
func NewCatalog(options ...catalog.Option) (*catalog.Catalog, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	fsys := EmbeddedTemplates()
	opts := append([]catalog.Option{catalog.WithFS(fsys), catalog.WithConfig(cfg)}, options...)
	return catalog.New(NewLoader(catalog.WithFileSystem(fsys)), opts...)
}

// ParseTemplate parses a PATDL document with the built-in rules.
func ParseTemplate(r io.Reader) (*patdl.Template, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	tpl, err := patdl.Parse(r, cfg)
	if err != nil {
		return nil, fmt.Errorf("s42: %w", err)
	}
	return tpl, nil
}
