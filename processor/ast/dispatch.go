package ast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"
)

// FileInput is one file handed to an extractor.
type FileInput struct {
	AbsPath  string
	RelPath  string
	Language string
	Source   []byte // UTF-8; read by the dispatcher when nil
}

// Extractor turns one file into a Summary. It must not return nil and must
// record failures on the Summary rather than abort.
type Extractor interface {
	Extract(ctx context.Context, in FileInput) *Summary
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, in FileInput) *Summary

// Extract calls f.
func (f ExtractorFunc) Extract(ctx context.Context, in FileInput) *Summary {
	return f(ctx, in)
}

// Dispatcher routes files to the extractor registered for their language.
// Safe for concurrent use.
type Dispatcher struct {
	mu         sync.RWMutex
	extractors map[string]Extractor

	// Timeout bounds a single file's extraction. Zero means no limit.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		extractors: make(map[string]Extractor),
		Logger:     logger,
	}
}

// Register binds an extractor to a language. The first registration wins.
func (d *Dispatcher) Register(language string, e Extractor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.extractors[language]; !exists {
		d.extractors[language] = e
	}
}

// Supports reports whether an extractor is registered for language.
func (d *Dispatcher) Supports(language string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.extractors[language]
	return ok
}

// Languages returns the registered languages, sorted.
func (d *Dispatcher) Languages() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.extractors))
	for l := range d.extractors {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Extract reads and extracts one file. It returns nil when no extractor is
// registered for the file's language. Read, decode, timeout and panic
// failures are recorded on the returned Summary.
func (d *Dispatcher) Extract(ctx context.Context, in FileInput) *Summary {
	d.mu.RLock()
	e, ok := d.extractors[in.Language]
	d.mu.RUnlock()
	if !ok {
		return nil
	}

	if in.Source == nil {
		src, err := ReadSource(in.AbsPath)
		if err != nil {
			s := NewSummary(in.RelPath, in.Language)
			var fe FileError
			if errors.As(err, &fe) {
				s.Fail(fe.Operation, fe.Cause)
			} else {
				s.Fail(OpRead, err)
			}
			return s
		}
		in.Source = src
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	done := make(chan *Summary, 1)
	go func() {
		done <- d.safeExtract(ctx, e, in)
	}()

	select {
	case s := <-done:
		return s
	case <-ctx.Done():
		s := NewSummary(in.RelPath, in.Language)
		s.Fail(OpTimeout, ctx.Err())
		d.Logger.Warn("Extraction abandoned", "file", in.RelPath, "error", ctx.Err())
		return s
	}
}

func (d *Dispatcher) safeExtract(ctx context.Context, e Extractor, in FileInput) (s *Summary) {
	defer func() {
		if r := recover(); r != nil {
			d.Logger.Error("Extractor panicked", "file", in.RelPath, "panic", r, "stack", string(debug.Stack()))
			s = NewSummary(in.RelPath, in.Language)
			s.Fail(OpPanic, fmt.Errorf("%v", r))
		}
	}()
	s = e.Extract(ctx, in)
	if s == nil {
		s = NewSummary(in.RelPath, in.Language)
	}
	return s
}
