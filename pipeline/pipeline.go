// Package pipeline runs the extraction stages over an input root and merges
// their output into the persisted graph.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/c360studio/semcode/config"
	"github.com/c360studio/semcode/discovery"
	"github.com/c360studio/semcode/graph"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/ontology"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/processor/ast/golang"
	"github.com/c360studio/semcode/processor/ast/treesitter"
	"github.com/c360studio/semcode/writer"
)

// Stage is one step of a run. Stages share state through the RunContext.
type Stage interface {
	Name() string
	Run(ctx context.Context, rc *RunContext) error
}

// RunContext carries the run-scoped state every stage reads and extends.
type RunContext struct {
	Config     *config.Config
	IDs        *identity.Bundle
	Graph      *graph.Graph
	Writer     *writer.Writer
	Dispatcher *ast.Dispatcher
	Metrics    *Metrics
	Logger     *slog.Logger

	// Set by the files stage.
	Repositories []discovery.Repository
	Records      []discovery.FileRecord

	// baseFailed is set when the prior graph could not be read; persist
	// then refuses to replace it.
	baseFailed bool

	mu     sync.Mutex
	errors []ast.FileError
}

// NewRunContext wires the registries, writer and extractors for one run.
// A nil ontology, an invalid config or a bad query table is fatal.
func NewRunContext(cfg *config.Config, onto *ontology.Ontology, logger *slog.Logger) (*RunContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ids := identity.NewBundle()
	w, err := writer.New(onto, ids, identity.NewURIs(cfg.EntityNamespace), writer.Options{
		MaxLabelLength: cfg.MaxLabelLength,
		Frameworks:     cfg.Frameworks,
	}, logger)
	if err != nil {
		return nil, err
	}

	d := ast.NewDispatcher(logger)
	d.Timeout = cfg.FileTimeout
	d.Register("go", golang.NewParser(logger))
	if err := treesitter.Register(d, cfg.QueryDir, logger); err != nil {
		return nil, fmt.Errorf("register grammar parsers: %w", err)
	}

	return &RunContext{
		Config:     cfg,
		IDs:        ids,
		Graph:      graph.New(),
		Writer:     w,
		Dispatcher: d,
		Metrics:    NewMetrics(),
		Logger:     logger,
	}, nil
}

// RecordError records a per-file failure. Safe for concurrent use.
func (rc *RunContext) RecordError(fe ast.FileError) {
	rc.mu.Lock()
	rc.errors = append(rc.errors, fe)
	rc.mu.Unlock()
	rc.Metrics.FileErrors.WithLabelValues(string(fe.Operation)).Inc()
}

// Errors returns the per-file failures recorded so far.
func (rc *RunContext) Errors() []ast.FileError {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return append([]ast.FileError(nil), rc.errors...)
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Name     string
	Success  bool
	Err      error
	Duration time.Duration
}

// Report collects the stage results of a run in execution order.
type Report struct {
	Results []StageResult
	Triples int
	Files   int
	Errors  int
}

// Succeeded reports whether every stage succeeded.
func (r Report) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Success {
			return false
		}
	}
	return true
}

// Failed returns the names of the failed stages.
func (r Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res.Name)
		}
	}
	return out
}

// WriteTable renders the report as an aligned table.
func (r Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATUS\tDURATION\tERROR")
	for _, res := range r.Results {
		status, msg := "ok", ""
		if !res.Success {
			status = "FAILED"
			if res.Err != nil {
				msg = res.Err.Error()
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Name, status, res.Duration.Round(time.Millisecond), msg)
	}
	fmt.Fprintf(tw, "\nfiles: %d\tfile errors: %d\ttriples: %d\t\n", r.Files, r.Errors, r.Triples)
	return tw.Flush()
}

// Runner executes stages in order. A failing or panicking stage is recorded
// and the next stage still runs.
type Runner struct {
	stages []Stage
	logger *slog.Logger
}

// NewRunner creates a runner over stages, which run in the given order.
func NewRunner(logger *slog.Logger, stages ...Stage) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stages: stages, logger: logger}
}

// Run executes every stage and returns the report.
func (r *Runner) Run(ctx context.Context, rc *RunContext) Report {
	var report Report
	for _, s := range r.stages {
		if ctx.Err() != nil {
			report.Results = append(report.Results, StageResult{Name: s.Name(), Err: ctx.Err()})
			continue
		}

		r.logger.Info("Stage started", "stage", s.Name())
		start := time.Now()
		err := r.runStage(ctx, s, rc)
		res := StageResult{Name: s.Name(), Success: err == nil, Err: err, Duration: time.Since(start)}
		report.Results = append(report.Results, res)

		rc.Metrics.StageDuration.WithLabelValues(res.Name).Observe(res.Duration.Seconds())
		if err != nil {
			rc.Metrics.StageFailures.WithLabelValues(res.Name).Inc()
			r.logger.Error("Stage failed", "stage", res.Name, "duration", res.Duration, "error", err)
			continue
		}
		r.logger.Info("Stage finished", "stage", res.Name, "duration", res.Duration)
	}

	report.Triples = rc.Graph.Len()
	report.Files = len(rc.Records)
	report.Errors = len(rc.Errors())
	return report
}

func (r *Runner) runStage(ctx context.Context, s Stage, rc *RunContext) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Stage panicked", "stage", s.Name(), "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("stage %s panicked: %v", s.Name(), p)
		}
	}()
	return s.Run(ctx, rc)
}

// Stages returns the stages enabled by cfg in canonical order.
func Stages(cfg *config.Config) []Stage {
	all := []Stage{LoadStage{}, FilesStage{}, ContentStage{}, CodeStage{}, PersistStage{}}
	var out []Stage
	for _, s := range all {
		if cfg.StageEnabled(s.Name()) {
			out = append(out, s)
		}
	}
	return out
}

// Run builds a run context and executes the enabled stages.
func Run(ctx context.Context, cfg *config.Config, onto *ontology.Ontology, logger *slog.Logger) (Report, error) {
	rc, err := NewRunContext(cfg, onto, logger)
	if err != nil {
		return Report{}, err
	}
	return NewRunner(rc.Logger, Stages(cfg)...).Run(ctx, rc), nil
}
