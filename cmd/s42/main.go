// Package main provides the s42 binary: render postal addresses from PATDL
// templates, verify templates against fixtures, and inspect element codes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "s42"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals holds the flags shared by every subcommand.
type globals struct {
	templates     string
	rules         []string
	selectionMode string
	logLevel      string
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Render postal addresses with S42 PATDL templates",
		Long: `s42 renders structured address data into country specific postal
address lines using UPU S42 PATDL templates.

Templates are looked up in the templates directory by file name:
S42-{standard}-{country}-PATDL.v.{layout}.xml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd, g.logLevel)
			slog.SetDefault(logger)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&g.templates, "templates", os.Getenv("S42_TEMPLATES"), "Template directory (bundled templates when empty)")
	flags.StringSliceVar(&g.rules, "rules", nil, "Rule file glob patterns (YAML), repeatable")
	flags.StringVar(&g.selectionMode, "selection-mode", "all-groups", "Line selector mode (all-groups, first-group)")
	flags.StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		renderCmd(g),
		verifyCmd(g),
		templatesCmd(g),
		watchCmd(g),
		codeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func newLogger(cmd *cobra.Command, logLevel string) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
