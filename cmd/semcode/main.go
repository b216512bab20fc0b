// Package main provides the semcode binary entry point.
// Semcode extracts code entities from source repositories into an
// ontology-constrained knowledge graph persisted as N-Triples.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semcode/config"
	"github.com/c360studio/semcode/export"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semcode"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errStagesFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	repoPath   string
	logLevel   string
	output     string
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		g     globalFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Extract code entities into a semantic knowledge graph",
		Long: `Semcode walks a source tree, parses every supported file and writes
its classes, functions, parameters, variables, imports, call sites and
their relationships as triples constrained by an ontology.

The graph is merged into the output file of the previous run, so repeated
runs over the same input are idempotent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.app(stdout, stderr)
			if err != nil {
				return err
			}
			if watch {
				return app.Watch(cmd.Context())
			}
			_, err = app.RunOnce(cmd.Context())
			return err
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.repoPath, "repo", "", "Input root (default: git root or current directory)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", "", "Graph file (N-Triples)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run when files under the input root change")

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})
	cmd.AddCommand(exportCmd(&g, stdout, stderr))

	return cmd
}

func exportCmd(g *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		format  string
		profile string
		input   string
		dest    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the persisted graph to another RDF format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			p := export.Profile(profile)
			if _, ok := export.Profiles[p]; !ok {
				return fmt.Errorf("unknown profile: %s", profile)
			}

			app, err := g.app(io.Discard, stderr)
			if err != nil {
				return err
			}

			w := stdout
			if dest != "" {
				file, err := os.Create(dest)
				if err != nil {
					return fmt.Errorf("create %s: %w", dest, err)
				}
				defer file.Close()
				w = file
			}
			return app.Export(w, input, f, p)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "turtle", "Output format (turtle, ntriples, jsonld)")
	cmd.Flags().StringVarP(&profile, "profile", "p", string(export.ProfileFull), "Export profile (full, structure, minimal)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Graph to convert (default: the configured output)")
	cmd.Flags().StringVar(&dest, "to", "", "Write to this file instead of stdout")
	return cmd
}

// app configures logging, loads the layered configuration and builds the
// application.
func (g *globalFlags) app(stdout, stderr io.Writer) (*App, error) {
	logger := newLogger(stderr, g.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(config.LoadOptions{
		Root:       g.repoPath,
		ConfigPath: g.configPath,
		Overrides:  &config.Config{Root: g.repoPath, Output: g.output},
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	app, err := NewApp(cfg, logger, stdout)
	if err != nil {
		return nil, err
	}
	logger.Debug("Semcode ready", "version", Version, "root", cfg.Root, "output", cfg.Output)
	return app, nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
