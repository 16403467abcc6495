package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-s42/pkg/catalog"
)

func templatesCmd(g *globals) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates in the template directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts []catalog.Option
			if validate {
				opts = append(opts, catalog.WithStrictValidation())
			}
			c, err := g.catalog(opts...)
			if err != nil {
				return err
			}
			keys, err := c.Discover(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range keys {
				if !validate {
					fmt.Fprintf(out, "%s\t%s\n", key, key.Filename())
					continue
				}
				if err := describeTemplate(cmd, c, key); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "Parse each template strictly and list its lines")
	return cmd
}

func describeTemplate(cmd *cobra.Command, c *catalog.Catalog, key catalog.Key) error {
	tpl, err := c.Template(cmd.Context(), key)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\t%s\n", key, key.Filename())

	lines := tpl.Lines()
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		names = append(names, line.Identifier.String())
	}
	fmt.Fprintf(out, "  selectors: %d\n", len(tpl.Selectors()))
	fmt.Fprintf(out, "  lines: %s\n", strings.Join(names, ", "))
	if procs := tpl.Config().Procedures(tpl.Country()); len(procs) > 0 {
		fmt.Fprintf(out, "  procedures: %s\n", strings.Join(procs, ", "))
	}
	return nil
}
