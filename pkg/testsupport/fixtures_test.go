package testsupport

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-s42/pkg/patdl"
	"github.com/goliatone/go-s42/pkg/rules"
)

var testdata = filepath.Join("..", "..", "testdata")

func templatePath(iso string) string {
	return filepath.Join(testdata, "patdl", "S42-6-"+iso+"-PATDL.v.2.6.xml")
}

func TestFixtures_Conformance(t *testing.T) {
	cfg := patdl.MustConfig(rules.Builtin()...)
	for _, iso := range []string{"NL", "US"} {
		t.Run(iso, func(t *testing.T) {
			path, err := FindFixtures(filepath.Join(testdata, "fixtures"), iso)
			if err != nil {
				t.Fatalf("find fixtures: %v", err)
			}
			tpl := MustLoadTemplate(t, templatePath(iso), cfg)
			RunFixtures(t, tpl, MustLoadFixtures(t, path))
		})
	}
}

func TestCheck_ReportsMismatch(t *testing.T) {
	tpl := MustLoadTemplate(t, templatePath("NL"), patdl.MustConfig(rules.Builtin()...))
	res := Check(tpl, Fixture{
		Name:        "wrong",
		Data:        map[string]string{"40.13": "1234AB", "40.16": "Amsterdam"},
		Lines:       []string{"1234AB AMSTERDAM"},
		IsPopulated: []string{"40.24"},
	})
	if res.Passed() {
		t.Fatalf("expected mismatch to fail")
	}
	if len(res.Unpopulated) != 1 || res.Unpopulated[0] != "40.24" {
		t.Fatalf("expected 40.24 to be reported unpopulated, got %v", res.Unpopulated)
	}
	if !strings.Contains(res.Diff(), "1234 AB AMSTERDAM") {
		t.Fatalf("expected diff to show rendered line, got:\n%s", res.Diff())
	}
}

func TestFixture_AddressDataMerges(t *testing.T) {
	f := Fixture{
		Country: "NL",
		Fields:  map[string]string{"town": "Amsterdam"},
		Data:    map[string]string{"U40.16": "Haarlem", "40.17": "Centrum"},
	}
	data, err := f.AddressData("")
	if err != nil {
		t.Fatalf("address data: %v", err)
	}
	got := data.Map()
	if got["U40.16"] != "Haarlem" || got["U40.17"] != "Centrum" || got["U40.14"] != "Netherlands" {
		t.Fatalf("unexpected merged data %v", got)
	}
}

func TestParseFixtures_DefaultsNames(t *testing.T) {
	fixtures, err := ParseFixtures([]byte(`[{"data": {"40.13": "x"}, "lines": ["x"]}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fixtures[0].Name != "fixture 1" {
		t.Fatalf("expected default name, got %q", fixtures[0].Name)
	}
}
