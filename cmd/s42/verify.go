package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-s42/pkg/catalog"
	"github.com/goliatone/go-s42/pkg/rendition"
	"github.com/goliatone/go-s42/pkg/testsupport"
)

// errVerifyFailed is returned when at least one fixture fails.
var errVerifyFailed = errors.New("verify: fixtures failed")

type verifyFlags struct {
	fixtures string
	colour   string
	abstract bool
	verbose  bool
}

func verifyCmd(g *globals) *cobra.Command {
	f := &verifyFlags{}
	cmd := &cobra.Command{
		Use:   "verify [COUNTRY...]",
		Short: "Check templates against conformance fixtures",
		Long: `Render every fixture in {fixtures}/{COUNTRY}.yaml (or .json) and compare
the result with its expected lines. Without arguments every fixture file in
the directory is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, g, f, args)
		},
	}
	cmd.Flags().StringVar(&f.fixtures, "fixtures", "fixtures", "Fixture directory")
	cmd.Flags().StringVar(&f.colour, "color", "auto", "Colour output (auto, always, never)")
	cmd.Flags().BoolVar(&f.abstract, "abstract", false, "Render element names instead of values")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Report passing fixtures too")
	return cmd
}

func runVerify(cmd *cobra.Command, g *globals, f *verifyFlags, countries []string) error {
	out := cmd.OutOrStdout()
	configureColour(f.colour, out)

	if len(countries) == 0 {
		found, err := fixtureCountries(f.fixtures)
		if err != nil {
			return err
		}
		countries = found
	}
	if len(countries) == 0 {
		return fmt.Errorf("no fixture files in %s", f.fixtures)
	}

	c, err := g.catalog()
	if err != nil {
		return err
	}

	var opts []rendition.Option
	if f.abstract {
		opts = append(opts, rendition.WithAbstract())
	}

	var total tally
	for _, iso := range countries {
		path, err := testsupport.FindFixtures(f.fixtures, iso)
		if err != nil {
			return err
		}
		fixtures, err := testsupport.LoadFixtures(path)
		if err != nil {
			return err
		}
		tpl, err := c.Template(cmd.Context(), catalog.Key{Country: iso})
		if err != nil {
			return err
		}

		for _, fixture := range fixtures {
			res := testsupport.Check(tpl, fixture, opts...)
			total.add(res)
			reportResult(out, strings.ToUpper(iso), res, f.verbose)
		}
	}

	fmt.Fprintln(out, total.summary())
	if total.failed > 0 {
		return errVerifyFailed
	}
	return nil
}

func configureColour(mode string, out io.Writer) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		file, ok := out.(*os.File)
		color.NoColor = !ok || !isatty.IsTerminal(file.Fd())
	}
}

// fixtureCountries lists the country codes of the fixture files in dir.
func fixtureCountries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	seen := map[string]bool{}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		iso := strings.ToUpper(strings.TrimSuffix(entry.Name(), ext))
		if !seen[iso] {
			seen[iso] = true
			out = append(out, iso)
		}
	}
	sort.Strings(out)
	return out, nil
}

type tally struct {
	passed, failed, skipped int
}

func (t *tally) add(res testsupport.Result) {
	switch {
	case res.Skipped:
		t.skipped++
	case res.Passed():
		t.passed++
	default:
		t.failed++
	}
}

func (t tally) summary() string {
	line := fmt.Sprintf("%d passed, %d failed, %d skipped", t.passed, t.failed, t.skipped)
	if t.failed > 0 {
		return color.RedString(line)
	}
	return color.GreenString(line)
}

func reportResult(w io.Writer, iso string, res testsupport.Result, verbose bool) {
	name := res.Fixture.Name
	switch {
	case res.Skipped:
		if verbose {
			fmt.Fprintf(w, "%s %s: %s\n", color.YellowString("SKIP"), iso, name)
		}
	case res.Passed():
		if verbose {
			fmt.Fprintf(w, "%s %s: %s\n", color.GreenString("PASS"), iso, name)
		}
	default:
		fmt.Fprintf(w, "%s %s: %s\n", color.RedString("FAIL"), iso, name)
		if res.Err != nil {
			fmt.Fprintf(w, "    error: %v\n", res.Err)
			return
		}
		if len(res.Unpopulated) > 0 {
			fmt.Fprintf(w, "    not populated: %s\n", strings.Join(res.Unpopulated, ", "))
		}
		if diff := lineDiff(res.Fixture.Lines, res.Got); diff != "" {
			fmt.Fprint(w, diff)
		}
	}
}

// lineDiff renders a character level diff of the expected and rendered
// address, one "-" line for the expectation and one "+" line for the result
// per differing address line.
func lineDiff(want, got []string) string {
	if testsupport.DiffLines(want, got) == "" {
		return ""
	}

	dmp := diffmatchpatch.New()
	var b strings.Builder
	n := len(want)
	if len(got) > n {
		n = len(got)
	}
	for i := 0; i < n; i++ {
		var w, g string
		if i < len(want) {
			w = want[i]
		}
		if i < len(got) {
			g = got[i]
		}
		if w == g {
			fmt.Fprintf(&b, "      %s\n", w)
			continue
		}
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(w, g, false))
		var minus, plus strings.Builder
		for _, d := range diffs {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				minus.WriteString(d.Text)
				plus.WriteString(d.Text)
			case diffmatchpatch.DiffDelete:
				minus.WriteString(color.New(color.FgRed, color.Underline).Sprint(d.Text))
			case diffmatchpatch.DiffInsert:
				plus.WriteString(color.New(color.FgGreen, color.Underline).Sprint(d.Text))
			}
		}
		if i < len(want) {
			fmt.Fprintf(&b, "    - %s\n", minus.String())
		}
		if i < len(got) {
			fmt.Fprintf(&b, "    + %s\n", plus.String())
		}
	}
	return b.String()
}
