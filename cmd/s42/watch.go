package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-s42/pkg/catalog"
)

func watchCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Preload templates and revalidate them when they change",
		Long: `Parse every template in the template directory, then watch the directory
and re-parse templates as they are written. Errors are logged and watching
continues; stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.catalog(catalog.WithStrictValidation())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.Preload(ctx); err != nil {
				slog.Error("preload failed", "error", err)
			}

			ready := make(chan struct{})
			done := make(chan error, 1)
			go func() { done <- c.Watch(ctx, ready) }()

			select {
			case <-ready:
			case err := <-done:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", g.templates)

			for {
				select {
				case err := <-done:
					return err
				case <-c.Changes():
					if err := c.Preload(ctx); err != nil {
						slog.Error("template invalid", "error", err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d templates valid\n", len(c.Cached()))
				}
			}
		},
	}
}
