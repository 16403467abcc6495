package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
)

// SourceKind distinguishes where template bytes live.
type SourceKind int

const (
	SourceKindFile SourceKind = iota
	SourceKindFS
)

func (k SourceKind) String() string {
	switch k {
	case SourceKindFile:
		return "file"
	case SourceKindFS:
		return "fs"
	default:
		return "unknown"
	}
}

// Source identifies a template document.
type Source interface {
	Location() string
	Kind() SourceKind
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source naming a file inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// Loader fetches raw template bytes. A missing document must be reported
// with an error matching fs.ErrNotExist. Implementations live under
// internal/loader.
type Loader interface {
	Load(ctx context.Context, src Source) ([]byte, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS sources; nil disables them.
	FileSystem fs.FS
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects the fs.FS used for SourceKindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// NewLoaderOptions applies options in order.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
