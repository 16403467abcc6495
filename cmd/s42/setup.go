package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	s42 "github.com/goliatone/go-s42"
	internalLoader "github.com/goliatone/go-s42/internal/loader"
	"github.com/goliatone/go-s42/pkg/catalog"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rules"
)

// config builds the template configuration: built-in rules, rule files and
// the selection mode.
func (g *globals) config() (*patdl.Config, error) {
	mode, err := patdl.ParseSelectionMode(g.selectionMode)
	if err != nil {
		return nil, err
	}

	opts := rules.Builtin()
	for _, pattern := range g.rules {
		loaded, err := loadRules(pattern)
		if err != nil {
			return nil, err
		}
		opts = append(opts, loaded...)
	}
	opts = append(opts, patdl.WithSelectionMode(mode))
	return patdl.NewConfig(opts...)
}

func loadRules(pattern string) ([]patdl.ConfigOption, error) {
	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	opts, err := rules.LoadFS(os.DirFS(filepath.FromSlash(base)), rest)
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		slog.Warn("rule pattern matched no rules", "pattern", pattern)
	}
	return opts, nil
}

func (g *globals) catalog(extra ...catalog.Option) (*catalog.Catalog, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	opts := []catalog.Option{catalog.WithConfig(cfg), catalog.WithLogger(slog.Default())}
	loaderOpts := catalog.NewLoaderOptions()
	if g.templates == "" {
		fsys := s42.EmbeddedTemplates()
		opts = append(opts, catalog.WithFS(fsys))
		loaderOpts = catalog.NewLoaderOptions(catalog.WithFileSystem(fsys))
	} else {
		opts = append(opts, catalog.WithDir(g.templates))
	}
	opts = append(opts, extra...)

	c, err := catalog.New(internalLoader.New(loaderOpts), opts...)
	if err != nil {
		return nil, fmt.Errorf("open template catalog: %w", err)
	}
	return c, nil
}
