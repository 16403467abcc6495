package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-s42/pkg/address"
	"github.com/goliatone/go-s42/pkg/code"
	"github.com/goliatone/go-s42/pkg/country"
	"github.com/goliatone/go-s42/pkg/orchestrator"
	"github.com/goliatone/go-s42/pkg/prompt"
	"github.com/goliatone/go-s42/pkg/render"
)

type renderFlags struct {
	country     string
	standard    string
	layout      string
	dataFile    string
	fields      []string
	renderer    string
	abstract    bool
	interactive bool
	recipient   []string
	lineBreak   string
	justify     string
	output      string
}

func renderCmd(g *globals) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one address",
		Long: `Render one address. Input keys may be element codes ("40.16",
"U40.21-1-1") or mnemonic field names ("town", "street_number"); codes win
when both name the same element.`,
		Example: `  s42 render --country NL --field town=Amsterdam --field postcode=1234AB
  s42 render --data address.yaml --renderer html
  s42 render --interactive`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, g, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.country, "country", "", "Country (ISO alpha-2, alpha-3 or numeric)")
	flags.StringVar(&f.standard, "standard", "", "S42 standard version (default 6)")
	flags.StringVar(&f.layout, "layout", "", "PATDL layout version (default 2.6)")
	flags.StringVar(&f.dataFile, "data", "", "YAML or JSON file with address values")
	flags.StringArrayVar(&f.fields, "field", nil, "Address value as key=value, repeatable")
	flags.StringVar(&f.renderer, "renderer", "text", "Output renderer (text, html, label)")
	flags.BoolVar(&f.abstract, "abstract", false, "Render element names instead of values")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "Prompt for address fields")
	flags.StringArrayVar(&f.recipient, "recipient", nil, "Recipient line printed above the address, repeatable")
	flags.StringVar(&f.lineBreak, "line-break", "", "Line separator for text output")
	flags.StringVar(&f.justify, "justify", "", "Label justification such as L40, R40 or C40")
	flags.StringVarP(&f.output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

func runRender(cmd *cobra.Command, g *globals, f *renderFlags) error {
	ctx := cmd.Context()

	values := map[string]string{}
	if f.dataFile != "" {
		fromFile, err := readValues(f.dataFile)
		if err != nil {
			return err
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}
	assigned, err := parseAssignments(f.fields)
	if err != nil {
		return err
	}
	for k, v := range assigned {
		values[k] = v
	}

	iso := f.country
	if f.interactive {
		collector := prompt.New(
			prompt.WithDriver(prompt.NewSurveyDriver(cmd.ErrOrStderr())),
			prompt.WithDefaults(values),
			prompt.WithConfirm(),
		)
		chosen, err := collector.ChooseCountry(ctx, iso)
		if err != nil {
			return err
		}
		collected, err := collector.Collect(ctx, chosen)
		if err != nil {
			return err
		}
		values, iso = collected, chosen.Alpha2
	}

	fields, codes := splitValues(values)
	if iso == "" {
		iso = fields[address.FieldCountry]
	}
	if iso == "" {
		return fmt.Errorf("country is required: pass --country or a %q field", address.FieldCountry)
	}
	if _, err := country.Lookup(iso); err != nil {
		return err
	}
	if len(fields) == 1 && fields[address.FieldCountry] != "" {
		delete(fields, address.FieldCountry)
	}

	c, err := g.catalog()
	if err != nil {
		return err
	}
	gen := orchestrator.New(
		orchestrator.WithCatalog(c),
		orchestrator.WithLogger(slog.Default()),
	)

	extras := map[string]any{}
	if f.justify != "" {
		extras["justify"] = f.justify
	}
	out, err := gen.Generate(ctx, orchestrator.Request{
		Country:  iso,
		Standard: f.standard,
		Layout:   f.layout,
		Fields:   fields,
		Codes:    codes,
		Abstract: f.abstract,
		Renderer: f.renderer,
		RenderOptions: render.RenderOptions{
			LineBreak: unescape(f.lineBreak),
			Recipient: f.recipient,
			Extras:    extras,
		},
	})
	if err != nil {
		return err
	}

	if f.output != "" {
		if err := os.WriteFile(f.output, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		slog.Info("address written", "file", f.output)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func readValues(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode data %s: %w", path, err)
	}
	return values, nil
}

// parseAssignments turns key=value pairs into a map. Later pairs win.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q: want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// splitValues separates element codes from mnemonic field names.
func splitValues(values map[string]string) (fields, codes map[string]string) {
	fields = map[string]string{}
	codes = map[string]string{}
	for key, value := range values {
		if _, err := code.Parse(key); err == nil {
			codes[key] = value
			continue
		}
		fields[key] = value
	}
	return fields, codes
}

func unescape(s string) string {
	return strings.NewReplacer(`\r`, "\r", `\n`, "\n", `\t`, "\t").Replace(s)
}
