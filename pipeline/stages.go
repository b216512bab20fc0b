package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semcode/config"
	"github.com/c360studio/semcode/discovery"
	"github.com/c360studio/semcode/graph"
	"github.com/c360studio/semcode/processor/ast"
)

// ErrBaseUnreadable is returned by persist when the prior graph could not be
// loaded; replacing it would discard its triples.
var ErrBaseUnreadable = errors.New("prior graph is unreadable; refusing to overwrite it")

// LoadStage merges the previously persisted graph into the run's graph.
type LoadStage struct{}

func (LoadStage) Name() string { return config.StageLoad }

func (LoadStage) Run(_ context.Context, rc *RunContext) error {
	prior, err := graph.Load(rc.Config.Output)
	if err != nil {
		rc.baseFailed = true
		return err
	}
	n := rc.Graph.Merge(prior)
	rc.Logger.Info("Loaded prior graph", "path", rc.Config.Output, "triples", n)
	return nil
}

// FilesStage discovers and classifies files and writes the repository and
// file entities.
type FilesStage struct{}

func (FilesStage) Name() string { return config.StageFiles }

func (FilesStage) Run(ctx context.Context, rc *RunContext) error {
	cfg := rc.Config
	rules := make([]discovery.Rule, 0, len(cfg.Classifiers))
	for _, c := range cfg.Classifiers {
		rules = append(rules, discovery.Rule{Class: c.Class, Pattern: c.Pattern})
	}
	classifier, err := discovery.NewClassifier(rules, cfg.IgnorePatterns, cfg.DefaultClass)
	if err != nil {
		return fmt.Errorf("build classifier: %w", err)
	}

	repos, err := discovery.ResolveRepositories(cfg.Root, cfg.Repositories, cfg.Repository)
	if err != nil {
		return err
	}
	rc.Repositories = repos

	buf := graph.NewBuffer()
	e := rc.Writer.NewEmitter(buf)
	var records []discovery.FileRecord
	for _, repo := range repos {
		recs, stats, err := discovery.DiscoverWithStats(ctx, repo.Root, discovery.Options{
			Repository:   repo.Name,
			ExcludedDirs: cfg.ExcludedDirs,
			Classifier:   classifier,
			Languages:    cfg.Languages,
			Logger:       rc.Logger,
		})
		if err != nil {
			return fmt.Errorf("discover %s: %w", repo.Name, err)
		}
		for conf, n := range stats.ByConfidence {
			rc.Metrics.FilesDiscovered.WithLabelValues(string(conf)).Add(float64(n))
		}
		rc.Logger.Info("Discovered files",
			"repository", repo.Name,
			"files", stats.Files,
			"ignored", stats.Ignored,
			"unreadable", stats.Unreadable)

		rc.Writer.WriteRepository(e, repo.Name)
		for _, rec := range recs {
			if ownOutput(cfg, rec.AbsPath) {
				continue
			}
			rc.Writer.WriteFileRecord(e, rec)
			records = append(records, rec)
		}
	}
	rc.Records = records

	buf.FlushTo(rc.Graph)
	return nil
}

// ownOutput reports whether path is a file the run itself writes.
func ownOutput(cfg *config.Config, path string) bool {
	for _, out := range []string{cfg.Output, cfg.MetricsFile} {
		if out == "" {
			continue
		}
		if abs, err := filepath.Abs(out); err == nil && abs == path {
			return true
		}
	}
	return false
}

// ContentStage registers a content entity per file with its xxh3 digest.
type ContentStage struct{}

func (ContentStage) Name() string { return config.StageContent }

func (ContentStage) Run(ctx context.Context, rc *RunContext) error {
	hashes := make([]string, len(rc.Records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.Workers)
	for i, rec := range rc.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := fileHash(rec.AbsPath)
			if err != nil {
				rc.Logger.Warn("Failed to hash file", "file", rec.RelPath, "error", err)
				rc.RecordError(ast.FileError{File: rec.RelPath, Operation: ast.OpRead, Cause: err})
				return nil
			}
			hashes[i] = hash
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	buf := graph.NewBuffer()
	e := rc.Writer.NewEmitter(buf)
	for i, rec := range rc.Records {
		rc.Writer.WriteContent(e, rec, hashes[i])
	}
	buf.FlushTo(rc.Graph)
	return nil
}

// fileHash returns the hex xxh3-128 digest of a file.
func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := xxh3.Hash128(data).Bytes()
	return fmt.Sprintf("%x", sum[:]), nil
}

// CodeStage extracts constructs from every file with a registered language
// and writes their entities and relationships.
type CodeStage struct{}

func (CodeStage) Name() string { return config.StageCode }

func (CodeStage) Run(ctx context.Context, rc *RunContext) error {
	var files []discovery.FileRecord
	for _, rec := range rc.Records {
		if rec.Language != "" && rc.Dispatcher.Supports(rec.Language) {
			files = append(files, rec)
		}
	}
	rc.Logger.Info("Extracting code", "files", len(files), "workers", rc.Config.Workers)

	buffers := make([]*graph.Buffer, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Config.Workers)
	for i, rec := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buffers[i] = extractFile(gctx, rc, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Merge in file order so the graph does not depend on scheduling.
	var triples int
	for _, buf := range buffers {
		if buf != nil {
			triples += buf.FlushTo(rc.Graph)
		}
	}
	rc.Logger.Info("Code written", "files", len(files), "new_triples", triples)
	return nil
}

// extractFile extracts and writes one file into its own buffer. Failures
// are recorded against the file and never abort the batch.
func extractFile(ctx context.Context, rc *RunContext, rec discovery.FileRecord) (buf *graph.Buffer) {
	buf = graph.NewBuffer()
	defer func() {
		if p := recover(); p != nil {
			rc.Logger.Error("Writer panicked", "file", rec.RelPath, "panic", p, "stack", string(debug.Stack()))
			rc.RecordError(ast.FileError{File: rec.RelPath, Operation: ast.OpPanic, Cause: fmt.Errorf("%v", p)})
			buf = nil
		}
	}()

	s := rc.Dispatcher.Extract(ctx, ast.FileInput{
		AbsPath:  rec.AbsPath,
		RelPath:  rec.RelPath,
		Language: rec.Language,
	})
	if s == nil {
		return nil
	}
	for _, fe := range s.Errors {
		rc.Logger.Warn("File error", "file", fe.File, "operation", fe.Operation, "error", fe.Cause)
		rc.RecordError(fe)
	}
	if s.Count() == 0 {
		return buf
	}

	res := rc.Writer.WriteFile(buf, rc.Writer.File(rec), s)
	rc.Metrics.FilesExtracted.WithLabelValues(rec.Language).Inc()
	for kind, n := range s.Counts() {
		rc.Metrics.Constructs.WithLabelValues(string(kind)).Add(float64(n))
	}
	rc.Metrics.Fallbacks.Add(float64(res.Fallbacks))
	return buf
}

// PersistStage writes the graph back to the output file and, when
// configured, the run's metrics.
type PersistStage struct{}

func (PersistStage) Name() string { return config.StagePersist }

func (PersistStage) Run(_ context.Context, rc *RunContext) error {
	if rc.baseFailed {
		return ErrBaseUnreadable
	}
	rc.Metrics.Triples.Set(float64(rc.Graph.Len()))
	if err := graph.Save(rc.Graph, rc.Config.Output); err != nil {
		return err
	}
	rc.Logger.Info("Graph saved", "path", rc.Config.Output, "triples", rc.Graph.Len())

	if rc.Config.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(rc.Config.MetricsFile, rc.Metrics.Registry()); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
