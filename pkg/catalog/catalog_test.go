package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-s42/internal/loader"
	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/catalog"
	"github.com/goliatone/go-s42/pkg/metrics"
	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rendition"
)

var templateDir = filepath.Join("..", "..", "testdata", "patdl")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDirCatalog(t *testing.T, dir string, opts ...catalog.Option) *catalog.Catalog {
	t.Helper()
	opts = append([]catalog.Option{catalog.WithDir(dir), catalog.WithLogger(quietLogger())}, opts...)
	c, err := catalog.New(loader.New(catalog.NewLoaderOptions()), opts...)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	return c
}

func TestKey(t *testing.T) {
	key := catalog.Key{Country: " nl "}
	if got := key.Filename(); got != "S42-6-NL-PATDL.v.2.6.xml" {
		t.Fatalf("unexpected filename %q", got)
	}
	parsed, ok := catalog.ParseFilename("/templates/S42-7-us-PATDL.v.3.0.xml")
	if !ok {
		t.Fatalf("expected filename to parse")
	}
	want := catalog.Key{Country: "US", Standard: "7", Layout: "3.0"}
	if diff := cmp.Diff(want, parsed); diff != "" {
		t.Fatalf("key mismatch (-want +got):\n%s", diff)
	}
	if _, ok := catalog.ParseFilename("notes.xml"); ok {
		t.Fatalf("expected unrelated file name to be rejected")
	}
}

func TestCatalog_TemplateAndCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := newDirCatalog(t, templateDir, catalog.WithMetrics(m))
	ctx := context.Background()

	first, err := c.Template(ctx, catalog.Key{Country: "nl"})
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if first.Country() != "NL" {
		t.Fatalf("expected NL template, got %q", first.Country())
	}
	second, err := c.Template(ctx, catalog.Key{Country: "NL", Standard: "6", Layout: "2.6"})
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if first != second {
		t.Fatalf("expected cached template to be reused")
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected one cache hit, got %v", got)
	}

	c.Invalidate(catalog.Key{Country: "nl"})
	if len(c.Cached()) != 0 {
		t.Fatalf("expected empty cache after invalidate, got %v", c.Cached())
	}
}

func TestCatalog_ConcurrentLoadsShareTemplate(t *testing.T) {
	c := newDirCatalog(t, templateDir)
	const workers = 16

	results := make(chan *patdl.Template, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl, err := c.Template(context.Background(), catalog.Key{Country: "US"})
			if err != nil {
				t.Errorf("template: %v", err)
				return
			}
			results <- tpl
		}()
	}
	wg.Wait()
	close(results)

	var first *patdl.Template
	for tpl := range results {
		if first == nil {
			first = tpl
		}
		if tpl != first {
			t.Fatalf("expected every caller to receive the same template")
		}
	}
}

func TestCatalog_NotFound(t *testing.T) {
	c := newDirCatalog(t, templateDir)
	_, err := c.Template(context.Background(), catalog.Key{Country: "FR"})
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestCatalog_MalformedTemplate(t *testing.T) {
	fsys := fstest.MapFS{"S42-6-BE-PATDL.v.2.6.xml": {Data: []byte("<PATDL></PATDL>")}}
	c, err := catalog.New(loader.New(catalog.NewLoaderOptions(catalog.WithFileSystem(fsys))),
		catalog.WithFS(fsys), catalog.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if _, err := c.Template(context.Background(), catalog.Key{Country: "BE"}); !errors.Is(err, patdl.ErrTemplateMalformed) {
		t.Fatalf("expected ErrTemplateMalformed, got %v", err)
	}
}

func TestCatalog_UndefinedLineFailsOnlyWhenSelected(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join(templateDir, "S42-6-NL-PATDL.v.2.6.xml"))
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	doc := strings.Replace(string(raw), "<triggerConditions>", `<triggerConditions>
    <lineSelect>
      <isPopulated>40.99</isPopulated>
      <lineName lineNumber="9">Missing</lineName>
    </lineSelect>`, 1)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "S42-6-NL-PATDL.v.2.6.xml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	ctx := context.Background()

	tpl, err := newDirCatalog(t, dir).Template(ctx, catalog.Key{Country: "NL"})
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	result, err := rendition.Render(tpl, address.MustFromMap(map[string]string{"40.13": "1234AB", "40.16": "Amsterdam"}))
	if err != nil {
		t.Fatalf("render without the undefined line: %v", err)
	}
	if len(result.Lines()) == 0 {
		t.Fatalf("expected rendered lines")
	}
	if _, err := rendition.Render(tpl, address.MustFromMap(map[string]string{"40.99": "x"})); !errors.Is(err, patdl.ErrUnknownLine) {
		t.Fatalf("expected ErrUnknownLine once the line is selected, got %v", err)
	}

	strict := newDirCatalog(t, dir, catalog.WithStrictValidation())
	if _, err := strict.Template(ctx, catalog.Key{Country: "NL"}); !errors.Is(err, patdl.ErrUnknownLine) {
		t.Fatalf("expected strict catalog to reject the template, got %v", err)
	}
}

// gatedLoader holds its first Load until release is closed.
type gatedLoader struct {
	inner   catalog.Loader
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *gatedLoader) Load(ctx context.Context, src catalog.Source) ([]byte, error) {
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.started)
		<-l.release
	}
	return l.inner.Load(ctx, src)
}

func TestCatalog_InvalidateDuringLoadSkipsCache(t *testing.T) {
	gated := &gatedLoader{
		inner:   loader.New(catalog.NewLoaderOptions()),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c, err := catalog.New(gated, catalog.WithDir(templateDir), catalog.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	ctx := context.Background()
	key := catalog.Key{Country: "NL"}

	done := make(chan error, 1)
	go func() {
		_, err := c.Template(ctx, key)
		done <- err
	}()

	<-gated.started
	c.Invalidate(key)
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("template: %v", err)
	}
	if cached := c.Cached(); len(cached) != 0 {
		t.Fatalf("expected the raced load to stay uncached, got %v", cached)
	}

	if _, err := c.Template(ctx, key); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cached := c.Cached(); len(cached) != 1 {
		t.Fatalf("expected the reload to be cached, got %v", cached)
	}
}

func TestCatalog_DiscoverAndPreload(t *testing.T) {
	c := newDirCatalog(t, templateDir)
	ctx := context.Background()

	keys, err := c.Discover(ctx)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []catalog.Key{
		{Country: "NL", Standard: "6", Layout: "2.6"},
		{Country: "US", Standard: "6", Layout: "2.6"},
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	if err := c.Preload(ctx); err != nil {
		t.Fatalf("preload: %v", err)
	}
	if diff := cmp.Diff(want, c.Cached()); diff != "" {
		t.Fatalf("cached mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_RequiresLocation(t *testing.T) {
	if _, err := catalog.New(loader.New(catalog.NewLoaderOptions())); !errors.Is(err, catalog.ErrNoLocation) {
		t.Fatalf("expected ErrNoLocation, got %v", err)
	}
	if _, err := catalog.New(nil, catalog.WithDir(".")); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

func TestCatalog_WatchInvalidates(t *testing.T) {
	dir := t.TempDir()
	raw, err := os.ReadFile(filepath.Join(templateDir, "S42-6-NL-PATDL.v.2.6.xml"))
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	path := filepath.Join(dir, "S42-6-NL-PATDL.v.2.6.xml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	c := newDirCatalog(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := c.Template(ctx, catalog.Key{Country: "NL"}); err != nil {
		t.Fatalf("template: %v", err)
	}

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, ready) }()
	<-ready

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for len(c.Cached()) != 0 {
		select {
		case <-deadline:
			t.Fatalf("cache was not invalidated after the template changed")
		case <-time.After(20 * time.Millisecond):
		}
	}

	select {
	case key := <-c.Changes():
		if key.Country != "NL" {
			t.Fatalf("unexpected change key %v", key)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("expected a change notification")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch: %v", err)
	}
}
