package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rendition"
)

// MustLoadTemplate parses a template file with cfg.
func MustLoadTemplate(t *testing.T, path string, cfg *patdl.Config) *patdl.Template {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()

	tpl, err := patdl.Parse(f, cfg)
	if err != nil {
		t.Fatalf("parse template %s: %v", path, err)
	}
	return tpl
}

// MustLoadFixtures loads a fixture file or fails the test.
func MustLoadFixtures(t *testing.T, path string) []Fixture {
	t.Helper()

	fixtures, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return fixtures
}

// RunFixtures runs every fixture as a subtest.
func RunFixtures(t *testing.T, tpl *patdl.Template, fixtures []Fixture, opts ...rendition.Option) {
	t.Helper()

	for _, fixture := range fixtures {
		fixture := fixture
		t.Run(fixture.Name, func(t *testing.T) {
			res := Check(tpl, fixture, opts...)
			switch {
			case res.Skipped:
				t.Skip("fixture marked skip")
			case res.Err != nil:
				t.Fatalf("render: %v", res.Err)
			case len(res.Unpopulated) > 0:
				t.Fatalf("expected populated codes %v", res.Unpopulated)
			}
			if diff := res.Diff(); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// WriteGolden writes value as YAML to a golden file when UPDATE_GOLDENS is
// set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := yaml.Marshal(value)
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
