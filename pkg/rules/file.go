package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/patdl"
)

// ErrInvalidRule reports a rule file entry that cannot be compiled.
var ErrInvalidRule = errors.New("rules: invalid rule")

// File is a declarative rule file. Expressions use expr-lang syntax.
//
//	country: NL
//	preprocessors:
//	  - code: "40.17"
//	    expr: upper(trim(value))
//	procedures:
//	  - name: NL-HasBuilding
//	    expr: 'populated("40.26-0-2") ? "Y" : "N"'
//
// Preprocessor expressions see the element value as `value`. Procedure
// expressions call populated(code) and get(code) against the address data.
// Both must evaluate to a string.
type File struct {
	Country       string             `yaml:"country"`
	Preprocessors []PreprocessorRule `yaml:"preprocessors"`
	Procedures    []ProcedureRule    `yaml:"procedures"`
}

// PreprocessorRule binds an expression to an element code.
type PreprocessorRule struct {
	Code string `yaml:"code"`
	Expr string `yaml:"expr"`
}

// ProcedureRule binds an expression to a procedure name.
type ProcedureRule struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// Parse decodes a YAML rule file.
func Parse(doc []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if strings.TrimSpace(file.Country) == "" {
		return nil, fmt.Errorf("%w: country is required", ErrInvalidRule)
	}
	return &file, nil
}

// Options compiles every rule of the file into configuration options.
func (f *File) Options() ([]patdl.ConfigOption, error) {
	var out []patdl.ConfigOption
	for _, rule := range f.Preprocessors {
		c, err := code.Parse(strings.TrimSpace(rule.Code))
		if err != nil {
			return nil, fmt.Errorf("%w: preprocessor code: %w", ErrInvalidRule, err)
		}
		fn, err := compilePreprocessor(rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: preprocessor %s: %w", ErrInvalidRule, c, err)
		}
		out = append(out, patdl.WithPreprocessor(f.Country, c, fn))
	}
	for _, rule := range f.Procedures {
		if strings.TrimSpace(rule.Name) == "" {
			return nil, fmt.Errorf("%w: procedure name is required", ErrInvalidRule)
		}
		fn, err := compileProcedure(rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("%w: procedure %s: %w", ErrInvalidRule, rule.Name, err)
		}
		out = append(out, patdl.WithProcedure(f.Country, rule.Name, fn))
	}
	return out, nil
}

// LoadFS compiles every rule file in fsys matching pattern, in lexical
// order. Patterns accept doublestar syntax ("rules/**/*.yaml").
func LoadFS(fsys fs.FS, pattern string) ([]patdl.ConfigOption, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("rules: glob %q: %w", pattern, err)
	}
	var out []patdl.ConfigOption
	for _, name := range matches {
		doc, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("rules: read %s: %w", name, err)
		}
		file, err := Parse(doc)
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %w", name, err)
		}
		opts, err := file.Options()
		if err != nil {
			return nil, fmt.Errorf("rules: %s: %w", name, err)
		}
		out = append(out, opts...)
	}
	return out, nil
}

func preprocessorEnv(value string) map[string]any {
	return map[string]any{"value": value}
}

func procedureEnv(data *address.Data) map[string]any {
	return map[string]any{
		"populated": func(raw string) (bool, error) {
			c, err := code.Parse(raw)
			if err != nil {
				return false, err
			}
			return data.IsPopulated(c), nil
		},
		"get": func(raw string) (string, error) {
			c, err := code.Parse(raw)
			if err != nil {
				return "", err
			}
			return data.Value(c), nil
		},
	}
}

func compilePreprocessor(src string) (patdl.Preprocessor, error) {
	program, err := expr.Compile(src, expr.Env(preprocessorEnv("")))
	if err != nil {
		return nil, err
	}
	return func(value string) (string, error) {
		out, err := vm.Run(program, preprocessorEnv(value))
		if err != nil {
			return "", err
		}
		return asString(out)
	}, nil
}

func compileProcedure(src string) (patdl.Procedure, error) {
	program, err := expr.Compile(src, expr.Env(procedureEnv(nil)))
	if err != nil {
		return nil, err
	}
	return func(data *address.Data) (string, error) {
		out, err := vm.Run(program, procedureEnv(data))
		if err != nil {
			return "", err
		}
		return asString(out)
	}, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expression returned %T, expected string", v)
	}
	return s, nil
}
