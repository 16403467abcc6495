package rules

import (
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/patdl"
)

func TestNetherlandsPreprocessors(t *testing.T) {
	cases := []struct {
		name string
		fn   patdl.Preprocessor
		in   string
		want string
	}{
		{name: "postcode", fn: nlFormatPostcode, in: "1234AB", want: "1234 AB"},
		{name: "postcode lower case", fn: nlFormatPostcode, in: "1234ab", want: "1234 AB"},
		{name: "postcode already spaced", fn: nlFormatPostcode, in: "1234 ab", want: "1234 AB"},
		{name: "town", fn: nlTown, in: " Amsterdam ", want: " AMSTERDAM"},
		{name: "town ij", fn: nlTown, in: "ijmuiden", want: " IJMUIDEN"},
		{name: "sector", fn: nlUpper, in: " centrum", want: "CENTRUM"},
		{name: "numeric extension", fn: nlExtension, in: "2", want: "-2"},
		{name: "letter extension", fn: nlExtension, in: "A", want: " A"},
		{name: "empty extension", fn: nlExtension, in: "", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.fn(tc.in)
			if err != nil {
				t.Fatalf("preprocess %q: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestUnitedStatesRuralRoute(t *testing.T) {
	cases := []struct {
		name string
		data map[string]string
		want string
	}{
		{name: "rural route", data: map[string]string{"40.21-1-1": "RR 2 Box 152"}, want: "Y"},
		{name: "highway contract", data: map[string]string{"40.21-1-1": "HC 68 Box 23A"}, want: "Y"},
		{name: "street number", data: map[string]string{"40.21-1-1": "RR 2", "40.24": "12"}, want: "N"},
		{name: "thoroughfare type", data: map[string]string{"40.21-1-1": "RR 2", "40.21-2-2": "Rd"}, want: "N"},
		{name: "plain street", data: map[string]string{"40.21-1-1": "Main"}, want: "N"},
		{name: "no space", data: map[string]string{"40.21-1-1": "RR2"}, want: "N"},
		{name: "empty", data: nil, want: "N"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := usRuralRouteTypeTest(address.MustFromMap(tc.data))
			if err != nil {
				t.Fatalf("procedure: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuiltinConfig(t *testing.T) {
	cfg, err := patdl.NewConfig(Builtin()...)
	if err != nil {
		t.Fatalf("builtin config: %v", err)
	}
	if _, ok := cfg.Procedure("US", ProcedureRuralRoute); !ok {
		t.Fatalf("expected %s to be registered", ProcedureRuralRoute)
	}
	if got := len(cfg.Preprocessors("NL", code.MustParse("40.13"))); got != 1 {
		t.Fatalf("expected one NL postcode preprocessor, got %d", got)
	}
}

func TestLoadFS(t *testing.T) {
	opts, err := LoadFS(os.DirFS("../../testdata"), "rules/*.yaml")
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	cfg, err := patdl.NewConfig(opts...)
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	fns := cfg.Preprocessors("NL", code.MustParse("40.26-0-2"))
	if len(fns) != 1 {
		t.Fatalf("expected one building preprocessor, got %d", len(fns))
	}
	if got, err := fns[0]("  de kroon "); err != nil || got != "DE KROON" {
		t.Fatalf("expected DE KROON, got %q (%v)", got, err)
	}

	has, ok := cfg.Procedure("NL", "NL-HasBuilding")
	if !ok {
		t.Fatalf("expected NL-HasBuilding procedure")
	}
	for data, want := range map[string]string{"": "N", "De Kroon": "Y"} {
		fields := map[string]string{}
		if data != "" {
			fields["40.26-0-2"] = data
		}
		got, err := has(address.MustFromMap(fields))
		if err != nil || got != want {
			t.Fatalf("building %q: expected %q, got %q (%v)", data, want, got, err)
		}
	}

	name, _ := cfg.Procedure("NL", "NL-BuildingName")
	if got, err := name(address.MustFromMap(map[string]string{"40.26": "Toren"})); err != nil || got != "Toren" {
		t.Fatalf("expected base fallback Toren, got %q (%v)", got, err)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"no country":   "preprocessors: []",
		"bad code":     "country: NL\npreprocessors:\n  - code: \"4.1\"\n    expr: value",
		"bad syntax":   "country: NL\nprocedures:\n  - name: X\n    expr: 'populated(\"40.13\") ?'",
		"unknown name": "country: NL\nprocedures:\n  - name: X\n    expr: missing(\"40.13\")",
		"no name":      "country: NL\nprocedures:\n  - expr: '\"Y\"'",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			file, err := Parse([]byte(doc))
			if err == nil {
				_, err = file.Options()
			}
			if !errors.Is(err, ErrInvalidRule) {
				t.Fatalf("expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestProcedure_NonStringResult(t *testing.T) {
	fsys := fstest.MapFS{
		"bool.yaml": {Data: []byte("country: NL\nprocedures:\n  - name: Bool\n    expr: populated(\"40.13\")\n")},
	}
	opts, err := LoadFS(fsys, "*.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := patdl.MustConfig(opts...)
	fn, _ := cfg.Procedure("NL", "Bool")
	if _, err := fn(address.MustFromMap(nil)); err == nil {
		t.Fatalf("expected error for non-string result")
	}
}
