package commands

import (
	"context"
	"runtime"
	"time"

	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single document compilation.
const DefaultCommandTimeout = 30 * time.Second

// EnsureContext returns ctx, or context.Background when ctx is nil.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns logger, or the no-op logger when nil.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// WorkerCount picks the concurrency for a batch of jobs: the first positive
// of requested and configured, else GOMAXPROCS. The result never exceeds
// limit (when positive) or jobs, and is at least 1.
func WorkerCount(requested, configured, limit, jobs int) int {
	workers := requested
	if workers <= 0 {
		workers = configured
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	if jobs > 0 && workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
