package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	internalLoader "github.com/goliatone/go-s42/internal/loader"
	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/catalog"
	"github.com/goliatone/go-s42/pkg/country"
	"github.com/goliatone/go-s42/pkg/metrics"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/render"
	"github.com/goliatone/go-s42/pkg/renderers/html"
	"github.com/goliatone/go-s42/pkg/renderers/label"
	"github.com/goliatone/go-s42/pkg/renderers/text"
	"github.com/goliatone/go-s42/pkg/rendition"
)

const defaultRendererName = text.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalog injects the template catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// WithTemplateDir builds the default catalog over a directory of template
// files. Ignored when WithCatalog is supplied.
func WithTemplateDir(dir string) Option {
	return func(o *Orchestrator) {
		o.templateDir = dir
	}
}

// WithTemplateFS builds the default catalog over an fs.FS. Ignored when
// WithCatalog is supplied.
func WithTemplateFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.templateFS = fsys
	}
}

// WithConfig sets the preprocessors, procedures and selection mode of the
// default catalog.
func WithConfig(cfg *patdl.Config) Option {
	return func(o *Orchestrator) {
		o.config = cfg
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that rewrites address data after
// it is assembled and before lines are selected.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records render outcomes. The default catalog shares it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// Orchestrator coordinates the full pipeline from address data to rendered
// output. It applies defaults (text, html and label renderers, a catalog
// over the configured template location) while remaining open to dependency
// injection for advanced callers.
type Orchestrator struct {
	catalog         *catalog.Catalog
	templateDir     string
	templateFS      fs.FS
	config          *patdl.Config
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	logger          *slog.Logger
	metrics         *metrics.Metrics
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render one address.
type Request struct {
	// Country selects the template (ISO alpha-2). Optional when Template is
	// supplied or Fields carries a "country" entry.
	Country string
	// Standard and Layout select the S42 and PATDL versions; empty values use
	// the catalog defaults.
	Standard string
	Layout   string

	// Template bypasses the catalog when the caller already holds a parsed
	// template.
	Template *patdl.Template

	// Data is used as is when set; Fields and Codes are ignored.
	Data *address.Data
	// Fields holds mnemonic field names ("town", "postcode").
	Fields map[string]string
	// Codes holds element codes and overrides Fields on conflicts.
	Codes map[string]string

	// Abstract renders element names instead of values.
	Abstract bool

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request output options.
	RenderOptions render.RenderOptions
}

// Generate runs Rendition and passes the result to the selected renderer.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()
	result, err := o.Rendition(ctx, req)
	if err != nil {
		o.metrics.ObserveRender(o.countryLabel(req), metrics.StatusError, 0, time.Since(start))
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		o.metrics.ObserveRender(result.Country(), metrics.StatusError, 0, time.Since(start))
		return nil, err
	}

	output, err := renderer.Render(ctx, result, req.RenderOptions)
	if err != nil {
		o.metrics.ObserveRender(result.Country(), metrics.StatusError, 0, time.Since(start))
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	o.metrics.ObserveRender(result.Country(), metrics.StatusOK, len(result.Lines()), time.Since(start))
	o.logger.Debug("address rendered",
		"country", result.Country(),
		"renderer", renderer.Name(),
		"lines", len(result.Lines()),
		"duration", time.Since(start))
	return output, nil
}

// DefaultBatchLimit bounds the concurrent renders of GenerateBatch.
const DefaultBatchLimit = 8

// GenerateBatch runs Generate for every request with at most limit renders
// in flight (DefaultBatchLimit when limit <= 0). Outputs are returned in
// request order; the first error cancels the remaining renders.
func (o *Orchestrator) GenerateBatch(ctx context.Context, reqs []Request, limit int) ([][]byte, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	outputs := make([][]byte, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range reqs {
		i := i
		g.Go(func() error {
			out, err := o.Generate(ctx, reqs[i])
			if err != nil {
				return fmt.Errorf("orchestrator: request %d: %w", i, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Rendition resolves the template and address data of req and renders the
// address lines without an output renderer.
func (o *Orchestrator) Rendition(ctx context.Context, req Request) (*rendition.Rendition, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	tpl, err := o.resolveTemplate(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := o.resolveData(ctx, tpl.Country(), req)
	if err != nil {
		return nil, err
	}

	var opts []rendition.Option
	if req.Abstract {
		opts = append(opts, rendition.WithAbstract())
	}
	result, err := rendition.Render(tpl, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return result, nil
}

// Catalog returns the catalog templates are resolved through, or nil.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) resolveTemplate(ctx context.Context, req Request) (*patdl.Template, error) {
	if req.Template != nil {
		return req.Template, nil
	}
	if o.catalog == nil {
		return nil, errors.New("orchestrator: template or catalog is required")
	}

	iso := req.Country
	if iso == "" {
		iso = req.Fields[address.FieldCountry]
	}
	if strings.TrimSpace(iso) == "" {
		return nil, errors.New("orchestrator: country is required")
	}
	c, err := country.Lookup(iso)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	tpl, err := o.catalog.Template(ctx, catalog.Key{
		Country:  c.Alpha2,
		Standard: req.Standard,
		Layout:   req.Layout,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve template: %w", err)
	}
	return tpl, nil
}

func (o *Orchestrator) resolveData(ctx context.Context, templateCountry string, req Request) (*address.Data, error) {
	if req.Data != nil && o.transformer == nil {
		return req.Data, nil
	}

	var codes map[string]string
	switch {
	case req.Data != nil:
		codes = req.Data.Map()
	case len(req.Fields) > 0:
		iso := req.Fields[address.FieldCountry]
		if iso == "" {
			iso = templateCountry
		}
		c, err := country.Lookup(iso)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: fields: %w", err)
		}
		fromFields, err := address.FromFields(c, req.Fields)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: fields: %w", err)
		}
		codes = fromFields.Map()
	default:
		codes = make(map[string]string, len(req.Codes))
	}

	if req.Data == nil && len(req.Codes) > 0 {
		overrides, err := address.FromMap(req.Codes)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: codes: %w", err)
		}
		for key, value := range overrides.Map() {
			codes[key] = value
		}
	}

	if err := o.applyTransformer(ctx, codes); err != nil {
		return nil, err
	}

	data, err := address.FromMap(codes)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: address data: %w", err)
	}
	return data, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, codes map[string]string) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, codes); err != nil {
		return fmt.Errorf("orchestrator: transform address: %w", err)
	}
	return nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) countryLabel(req Request) string {
	switch {
	case req.Template != nil:
		return req.Template.Country()
	case req.Country != "":
		return strings.ToUpper(strings.TrimSpace(req.Country))
	default:
		return strings.ToUpper(strings.TrimSpace(req.Fields[address.FieldCountry]))
	}
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		registry, err := defaultRegistry()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderers: %w", err)
			return
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	if o.catalog == nil && (o.templateDir != "" || o.templateFS != nil) {
		loaderOpts := catalog.NewLoaderOptions(catalog.WithFileSystem(o.templateFS))
		options := []catalog.Option{
			catalog.WithConfig(o.config),
			catalog.WithLogger(o.logger),
			catalog.WithMetrics(o.metrics),
		}
		if o.templateFS != nil {
			options = append(options, catalog.WithFS(o.templateFS))
		} else {
			options = append(options, catalog.WithDir(o.templateDir))
		}
		c, err := catalog.New(internalLoader.New(loaderOpts), options...)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default catalog: %w", err)
			return
		}
		o.catalog = c
	}
}

func defaultRegistry() (*render.Registry, error) {
	labelRenderer, err := label.New()
	if err != nil {
		return nil, err
	}
	return render.NewRegistryWith(text.New(), html.New(), labelRenderer)
}
