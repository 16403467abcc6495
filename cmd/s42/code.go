package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-s42/pkg/code"
)

func codeCmd() *cobra.Command {
	var hierarchyPath string
	cmd := &cobra.Command{
		Use:   "code CODE...",
		Short: "Parse element codes and resolve their hierarchy defaults",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var hierarchy *code.Hierarchy
			if hierarchyPath != "" {
				h, err := code.LoadHierarchy(os.DirFS(filepath.Dir(hierarchyPath)), filepath.Base(hierarchyPath))
				if err != nil {
					return err
				}
				hierarchy = h
			}

			out := cmd.OutOrStdout()
			for _, raw := range args {
				c, err := code.Parse(raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\tbase=%s", c, c.Base())
				if !c.IsBase() {
					fmt.Fprintf(out, "\tinstance=%s\tpart=%s", c.Instance, c.Part)
				}
				if hierarchy != nil {
					fmt.Fprintf(out, "\tdefault=%s", hierarchy.Default(c))
					if subs := hierarchy.Subtypes(c); len(subs) > 0 {
						fmt.Fprintf(out, "\tsubtypes=%v", subs)
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hierarchyPath, "hierarchy", "", "Conceptual hierarchy XML document")
	return cmd
}
