package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-s42/pkg/code"
)

// Transformer rewrites code-keyed address data before lines are selected.
// Keys are canonical code strings ("U40.16"); implementations that add keys
// should use code.Code.String for them.
type Transformer interface {
	Transform(ctx context.Context, codes map[string]string) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, codes map[string]string) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, codes map[string]string) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, codes)
}

// Chain runs transformers in order, stopping at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, codes map[string]string) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, codes); err != nil {
				return err
			}
		}
		return nil
	})
}

// PresetTransformer applies declarative rewrites loaded from a YAML or JSON
// document:
//
//	rename:   {"40.21": "40.21-1-1"}   # move a value to another code
//	drop:     ["40.32"]                # remove codes
//	defaults: {"40.14": "NEDERLAND"}   # set when absent
//	set:      {"40.26-0-2": ""}        # always set
//
// Steps run in the order rename, drop, defaults, set.
type PresetTransformer struct {
	rename   [][2]string
	drop     []string
	defaults map[string]string
	set      map[string]string
}

type presetDocument struct {
	Rename   map[string]string `yaml:"rename"`
	Drop     []string          `yaml:"drop"`
	Defaults map[string]string `yaml:"defaults"`
	Set      map[string]string `yaml:"set"`
}

// NewPresetTransformer constructs a transformer from raw YAML or JSON bytes.
// Every code in the document is validated and normalised.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}

	t := &PresetTransformer{
		defaults: make(map[string]string, len(document.Defaults)),
		set:      make(map[string]string, len(document.Set)),
	}
	for from, to := range document.Rename {
		src, err := canonical(from)
		if err != nil {
			return nil, err
		}
		dst, err := canonical(to)
		if err != nil {
			return nil, err
		}
		t.rename = append(t.rename, [2]string{src, dst})
	}
	sort.Slice(t.rename, func(i, j int) bool { return t.rename[i][0] < t.rename[j][0] })

	for _, raw := range document.Drop {
		c, err := canonical(raw)
		if err != nil {
			return nil, err
		}
		t.drop = append(t.drop, c)
	}
	for raw, value := range document.Defaults {
		c, err := canonical(raw)
		if err != nil {
			return nil, err
		}
		t.defaults[c] = value
	}
	for raw, value := range document.Set {
		c, err := canonical(raw)
		if err != nil {
			return nil, err
		}
		t.set[c] = value
	}
	return t, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the declarative rewrites onto codes.
func (t *PresetTransformer) Transform(ctx context.Context, codes map[string]string) error {
	if codes == nil {
		return errors.New("preset transformer: address data is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, pair := range t.rename {
		value, ok := codes[pair[0]]
		if !ok {
			continue
		}
		delete(codes, pair[0])
		codes[pair[1]] = value
	}
	for _, c := range t.drop {
		delete(codes, c)
	}
	for c, value := range t.defaults {
		if _, ok := codes[c]; !ok {
			codes[c] = value
		}
	}
	for c, value := range t.set {
		codes[c] = value
	}
	return nil
}

func canonical(raw string) (string, error) {
	c, err := code.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("preset transformer: %w", err)
	}
	return c.String(), nil
}
