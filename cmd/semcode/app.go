package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/c360studio/semcode/config"
	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/graph"
	"github.com/c360studio/semcode/ontology"
	"github.com/c360studio/semcode/pipeline"
)

// errStagesFailed is returned when a run finished with failed stages.
var errStagesFailed = errors.New("one or more stages failed")

// App wires the configuration, the ontology and the pipeline together.
type App struct {
	cfg    *config.Config
	onto   *ontology.Ontology
	logger *slog.Logger

	// out receives the stage summary table
	out io.Writer
}

// NewApp resolves the input root and loads the ontology. A configured
// ontology file that does not exist is fatal.
func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", root)
	}
	cfg.Root = root

	var onto *ontology.Ontology
	if cfg.Ontology == "" {
		onto, err = ontology.Default()
	} else {
		onto, err = ontology.Load(cfg.Ontology)
	}
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}

	return &App{cfg: cfg, onto: onto, logger: logger, out: out}, nil
}

// RunOnce runs the enabled stages and prints the summary table. It returns
// errStagesFailed when any stage failed.
func (a *App) RunOnce(ctx context.Context) (pipeline.Report, error) {
	report, err := pipeline.Run(ctx, a.cfg, a.onto, a.logger)
	if err != nil {
		return report, err
	}
	if err := report.WriteTable(a.out); err != nil {
		return report, err
	}
	if !report.Succeeded() {
		return report, fmt.Errorf("%w: %v", errStagesFailed, report.Failed())
	}
	return report, nil
}

// Watch runs once and then again after every batch of changed files until
// ctx is cancelled. Failed runs are logged and watching continues.
func (a *App) Watch(ctx context.Context) error {
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("Initial run failed", "error", err)
	}

	var ignore []string
	for _, p := range []string{a.cfg.Output, a.cfg.MetricsFile} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			ignore = append(ignore, abs)
		}
	}

	w, err := pipeline.NewWatcher(pipeline.WatcherConfig{
		Root:         a.cfg.Root,
		ExcludedDirs: a.cfg.ExcludedDirs,
		Ignore:       ignore,
		Logger:       a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for batch := range w.Changes() {
		a.logger.Info("Files changed", "count", len(batch), "first", batch[0])
		if _, err := a.RunOnce(ctx); err != nil {
			a.logger.Error("Run failed", "error", err)
		}
	}
	return nil
}

// Export converts the persisted graph at input into format.
func (a *App) Export(w io.Writer, input string, format export.Format, profile export.Profile) error {
	if input == "" {
		input = a.cfg.Output
	}
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("graph not found: %w", err)
	}
	g, err := graph.Load(input)
	if err != nil {
		return err
	}

	exp := export.NewExporter()
	exp.SetPrefix("entity", a.cfg.EntityNamespace)
	exp.SetProfile(profile)
	return exp.Export(w, g.Triples(), format)
}
