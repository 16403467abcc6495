package loader

import (
	"context"
	"errors"
	"io/fs"

	"github.com/goliatone/go-s42/pkg/catalog"
)

// Loader implements catalog.Loader by delegating to file or fs.FS
// strategies. Construction helpers live in the top-level s42 package.
type Loader struct {
	fs fs.FS
}

// Ensure the implementation satisfies the public interface.
var _ catalog.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options catalog.LoaderOptions) catalog.Loader {
	return &Loader{fs: options.FileSystem}
}

// Load fetches the raw template document for src.
func (l *Loader) Load(ctx context.Context, src catalog.Source) ([]byte, error) {
	if src == nil {
		return nil, errors.New("template loader: source is nil")
	}

	switch src.Kind() {
	case catalog.SourceKindFile:
		return loadFile(ctx, src.Location())
	case catalog.SourceKindFS:
		return loadFromFS(ctx, l.fs, src.Location())
	default:
		return nil, errors.New("template loader: unsupported source kind")
	}
}
