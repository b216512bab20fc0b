// Package discovery walks an input tree and produces one classified record
// per file.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultExcludedDirs are directory names pruned at every depth.
var DefaultExcludedDirs = []string{
	".cache", ".git", ".gradle", ".hg", ".idea", ".mypy_cache", ".nox",
	".npm", ".pytest_cache", ".ruff_cache", ".svn", ".tox", ".venv",
	".vscode", ".yarn", "__pycache__", "bower_components", "build",
	"coverage", "dist", "node_modules", "target", "vendor", "venv",
}

// FileRecord describes one discovered file. It is a value type and is not
// modified after discovery.
type FileRecord struct {
	Repository string
	RelPath    string // slash separated, relative to the repository root
	Name       string
	Ext        string // lower case, with the leading dot
	Size       int64
	AbsPath    string
	Class      string // ontology class name; empty when unknown
	Confidence Confidence
	Language   string // empty when the extension is not mapped
	ModTime    time.Time
}

// Options configures a walk.
type Options struct {
	// Repository is the id recorded on every FileRecord.
	Repository string

	// ExcludedDirs are directory names skipped wherever they occur.
	ExcludedDirs []string

	// Classifier decides file classes. A nil classifier yields unknown.
	Classifier *Classifier

	// Languages maps lower-case extensions (".py") to language names.
	Languages map[string]string

	Logger *slog.Logger
}

// Stats summarizes a walk.
type Stats struct {
	Files        int
	Ignored      int
	Unreadable   int
	ByConfidence map[Confidence]int
	ByLanguage   map[string]int
}

// Discover walks root and returns the kept files sorted by relative path.
func Discover(ctx context.Context, root string, opts Options) ([]FileRecord, error) {
	records, _, err := DiscoverWithStats(ctx, root, opts)
	return records, err
}

// DiscoverWithStats is Discover that also returns walk statistics.
// Unreadable entries are logged and skipped; only cancellation or an
// unusable root aborts the walk.
func DiscoverWithStats(ctx context.Context, root string, opts Options) ([]FileRecord, Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stats := Stats{ByConfidence: make(map[Confidence]int), ByLanguage: make(map[string]int)}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, stats, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	excluded := make(map[string]bool, len(opts.ExcludedDirs))
	for _, d := range opts.ExcludedDirs {
		excluded[d] = true
	}

	var records []FileRecord
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			stats.Unreadable++
			logger.Warn("Skipping unreadable entry", "path", path, "error", walkErr)
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != absRoot && excluded[d.Name()] {
				logger.Debug("Pruning excluded directory", "path", path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			stats.Unreadable++
			logger.Warn("Skipping entry outside root", "path", path, "error", err)
			return nil
		}
		rel = filepath.ToSlash(rel)

		cls := Classification{Confidence: ConfidenceUnknown}
		if opts.Classifier != nil {
			cls = opts.Classifier.Classify(d.Name(), rel)
		}
		if cls.Confidence == ConfidenceIgnored {
			stats.Ignored++
			logger.Debug("Ignoring file", "path", rel)
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			stats.Unreadable++
			logger.Warn("Skipping file without info", "path", rel, "error", err)
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		rec := FileRecord{
			Repository: opts.Repository,
			RelPath:    rel,
			Name:       d.Name(),
			Ext:        ext,
			Size:       fi.Size(),
			AbsPath:    path,
			Class:      cls.Class,
			Confidence: cls.Confidence,
			Language:   opts.Languages[ext],
			ModTime:    fi.ModTime(),
		}
		records = append(records, rec)
		stats.ByConfidence[rec.Confidence]++
		if rec.Language != "" {
			stats.ByLanguage[rec.Language]++
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].RelPath < records[j].RelPath })
	stats.Files = len(records)

	logger.Info("Discovery complete",
		"repository", opts.Repository,
		"files", stats.Files,
		"high", stats.ByConfidence[ConfidenceHigh],
		"low", stats.ByConfidence[ConfidenceLow],
		"unknown", stats.ByConfidence[ConfidenceUnknown],
		"ignored", stats.Ignored,
		"unreadable", stats.Unreadable)

	return records, stats, nil
}
