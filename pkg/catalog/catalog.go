package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-s42/pkg/metrics"
	"github.com/goliatone/go-s42/pkg/patdl"
)

// DefaultPattern matches catalog file names during discovery.
const DefaultPattern = "S42-*-*-PATDL.v.*.xml"

var (
	// ErrTemplateNotFound reports a key without a template document.
	ErrTemplateNotFound = errors.New("catalog: template not found")

	// ErrNoLocation reports a catalog built without a directory or fs.FS.
	ErrNoLocation = errors.New("catalog: template directory or filesystem is required")
)

// Option customises a Catalog.
type Option func(*Catalog)

// WithDir reads templates from dir on disk. It also enables Watch.
func WithDir(dir string) Option {
	return func(c *Catalog) {
		c.dir = dir
	}
}

// WithFS reads templates from fsys. It takes precedence over WithDir for
// loading and discovery; the loader must be configured with the same fs.FS.
func WithFS(fsys fs.FS) Option {
	return func(c *Catalog) {
		c.fsys = fsys
	}
}

// WithConfig sets the preprocessors and procedures templates are built with.
func WithConfig(cfg *patdl.Config) Option {
	return func(c *Catalog) {
		if cfg != nil {
			c.config = cfg
		}
	}
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records cache lookups and parse latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) {
		c.metrics = m
	}
}

// WithPattern overrides DefaultPattern for Discover. Patterns use doublestar
// syntax.
func WithPattern(pattern string) Option {
	return func(c *Catalog) {
		if pattern != "" {
			c.pattern = pattern
		}
	}
}

// WithStrictValidation rejects templates whose selectors name undefined
// lines when they are loaded. By default such templates load with a warning
// and fail only when a render selects the undefined line.
func WithStrictValidation() Option {
	return func(c *Catalog) {
		c.strict = true
	}
}

// Catalog resolves keys to parsed templates and caches them. It is safe for
// concurrent use.
type Catalog struct {
	loader  Loader
	dir     string
	fsys    fs.FS
	pattern string
	config  *patdl.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	strict  bool

	mu    sync.RWMutex
	cache map[Key]*patdl.Template
	loads singleflight.Group
	// generation counts invalidations per key and epoch counts purges; a load
	// that raced either is returned but not cached.
	generation map[Key]uint64
	epoch      uint64

	changes chan Key
}

// New constructs a Catalog around loader.
func New(loader Loader, options ...Option) (*Catalog, error) {
	if loader == nil {
		return nil, errors.New("catalog: loader is required")
	}
	c := &Catalog{
		loader:  loader,
		pattern: DefaultPattern,
		config:  patdl.MustConfig(),
		logger:  slog.Default(),
		cache:   make(map[Key]*patdl.Template),
		changes: make(chan Key, 16),

		generation: make(map[Key]uint64),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.dir == "" && c.fsys == nil {
		return nil, ErrNoLocation
	}
	return c, nil
}

// Config returns the configuration templates are built with.
func (c *Catalog) Config() *patdl.Config {
	return c.config
}

// Template returns the template for key, loading and caching it on first
// use. Concurrent misses for one key share a single load. Empty versions
// default to DefaultStandard and DefaultLayout.
func (c *Catalog) Template(ctx context.Context, key Key) (*patdl.Template, error) {
	key = key.Normalize()
	if key.Country == "" {
		return nil, errors.New("catalog: country is required")
	}

	c.mu.RLock()
	tpl, ok := c.cache[key]
	c.mu.RUnlock()
	c.metrics.ObserveCacheLookup(ok)
	if ok {
		return tpl, nil
	}

	v, err, shared := c.loads.Do(key.String(), func() (any, error) {
		c.mu.RLock()
		gen, epoch := c.generation[key], c.epoch
		c.mu.RUnlock()

		start := time.Now()
		tpl, err := c.load(ctx, key)
		if err != nil {
			return nil, err
		}
		c.metrics.ObserveTemplateParse(time.Since(start))

		c.mu.Lock()
		stale := c.generation[key] != gen || c.epoch != epoch
		if !stale {
			c.cache[key] = tpl
		}
		c.mu.Unlock()

		if stale {
			c.logger.Debug("template changed while loading, not cached", "key", key.String())
		} else {
			c.logger.Debug("template loaded", "key", key.String(), "duration", time.Since(start))
		}
		return tpl, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("template load shared", "key", key.String())
	}
	return v.(*patdl.Template), nil
}

func (c *Catalog) load(ctx context.Context, key Key) (*patdl.Template, error) {
	src := c.source(key.Filename())
	raw, err := c.loader.Load(ctx, src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s at %s", ErrTemplateNotFound, key, src.Location())
		}
		return nil, fmt.Errorf("catalog: load %s: %w", key, err)
	}

	tpl, err := patdl.Parse(bytes.NewReader(raw), c.config)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", src.Location(), err)
	}
	if err := tpl.Validate(); err != nil {
		if c.strict {
			return nil, fmt.Errorf("catalog: validate %s: %w", src.Location(), err)
		}
		c.logger.Warn("template selects undefined lines", "file", src.Location(), "error", err)
	}
	if !strings.EqualFold(tpl.Country(), key.Country) {
		c.logger.Warn("template country does not match its file name",
			"file", src.Location(), "declared", tpl.Country(), "expected", key.Country)
	}
	return tpl, nil
}

func (c *Catalog) source(name string) Source {
	if c.fsys != nil {
		return SourceFromFS(name)
	}
	return SourceFromFile(filepath.Join(c.dir, name))
}

func (c *Catalog) discoveryFS() fs.FS {
	if c.fsys != nil {
		return c.fsys
	}
	return os.DirFS(c.dir)
}

// Discover lists the keys of every template matching the catalog pattern,
// sorted by file name.
func (c *Catalog) Discover(ctx context.Context) ([]Key, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	matches, err := doublestar.Glob(c.discoveryFS(), c.pattern)
	if err != nil {
		return nil, fmt.Errorf("catalog: discover %q: %w", c.pattern, err)
	}
	sort.Strings(matches)

	keys := make([]Key, 0, len(matches))
	for _, name := range matches {
		key, ok := ParseFilename(name)
		if !ok {
			c.logger.Debug("skipping file with unrecognised name", "file", name)
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Preload parses every discovered template, failing on the first error.
func (c *Catalog) Preload(ctx context.Context) error {
	keys, err := c.Discover(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := c.Template(ctx, key); err != nil {
			return err
		}
	}
	c.logger.Info("templates preloaded", "count", len(keys))
	return nil
}

// Invalidate drops cached templates; the next lookup reloads them. Loads
// already in flight for these keys are not cached.
func (c *Catalog) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		key = key.Normalize()
		delete(c.cache, key)
		c.generation[key]++
		c.loads.Forget(key.String())
	}
}

// Changes delivers the keys Watch invalidates. Keys are dropped when the
// channel is full.
func (c *Catalog) Changes() <-chan Key {
	return c.changes
}

// Purge drops every cached template.
func (c *Catalog) Purge() {
	c.mu.Lock()
	c.cache = make(map[Key]*patdl.Template)
	c.epoch++
	c.mu.Unlock()
}

// Cached lists the keys currently cached, sorted by file name.
func (c *Catalog) Cached() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]Key, 0, len(c.cache))
	for key := range c.cache {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Filename() < keys[j].Filename()
	})
	return keys
}
