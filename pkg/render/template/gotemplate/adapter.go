package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-s42/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	options   []gotemplatepkg.Option
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default ".tpl" template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(ext); trimmed != "" {
			cfg.extension = trimmed
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) > 0 {
			cfg.options = append(cfg.options, gotemplatepkg.WithGlobalData(data))
		}
	}
}

// WithGoTemplateOptions passes options straight to the go-template engine,
// e.g. gotemplatepkg.WithTemplateFunc for extra filters and functions.
func WithGoTemplateOptions(options ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.options = append(cfg.options, options...)
	}
}

// Engine satisfies template.TemplateRenderer with a go-template engine that
// carries the address filters "trim" and "justify".
type Engine struct {
	engine *gotemplatepkg.Engine
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Either a base directory or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithExtension(cfg.extension),
		gotemplatepkg.WithTemplateFunc(map[string]any{
			"justify": filterJustify,
		}),
	}
	if cfg.baseDir != "" {
		opts = append(opts, gotemplatepkg.WithBaseDir(cfg.baseDir))
	}
	if cfg.templates != nil {
		opts = append(opts, gotemplatepkg.WithFS(cfg.templates))
	}
	opts = append(opts, cfg.options...)

	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: configure engine: %w", err)
	}
	return &Engine{engine: engine}, nil
}

func (e *Engine) ready() error {
	if e == nil || e.engine == nil {
		return errors.New("gotemplate: engine is nil")
	}
	return nil
}

// Render treats name as inline template content when it contains template
// tags and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	rendered, err := e.engine.Render(name, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render: %w", err)
	}
	return rendered, nil
}

// RenderTemplate executes the named template, appending the extension when
// missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	rendered, err := e.engine.RenderTemplate(name, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render %q: %w", name, err)
	}
	return rendered, nil
}

// RenderString parses and executes inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	rendered, err := e.engine.RenderString(templateContent, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: render string: %w", err)
	}
	return rendered, nil
}

// RegisterFilter registers a filter. Filters are process-wide in pongo2, so
// registering an existing name is an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if err := e.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if err := e.engine.RegisterFilter(name, fn); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	return nil
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.engine.GlobalContext(data); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	return nil
}

// filterJustify pads a line to a fixed label width using a PATDL justification
// code: "L40" left-aligns in 40 columns, "R40" right-aligns, "C40" centres.
// Lines wider than the column are returned unchanged.
func filterJustify(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	text := in.String()
	justification := strings.ToUpper(strings.TrimSpace(param.String()))
	if justification == "" {
		return pongo2.AsValue(text), nil
	}

	mode := justification[:1]
	width, err := strconv.Atoi(justification[1:])
	if err != nil || (mode != "L" && mode != "R" && mode != "C") {
		return nil, &pongo2.Error{Sender: "filter:justify", OrigError: fmt.Errorf("invalid justification %q", justification)}
	}

	pad := width - utf8.RuneCountInString(text)
	if pad <= 0 {
		return pongo2.AsValue(text), nil
	}
	switch mode {
	case "R":
		text = strings.Repeat(" ", pad) + text
	case "C":
		left := pad / 2
		text = strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
	default:
		text += strings.Repeat(" ", pad)
	}
	return pongo2.AsValue(text), nil
}
