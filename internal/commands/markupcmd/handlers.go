package markupcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	command "github.com/goliatone/go-command"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-docmark/internal/commands"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

const (
	compileDocumentOperation   = "markup.compile_document"
	compileDirectoryOperation  = "markup.compile_directory"
	affectedDocumentsOperation = "markup.affected_documents"

	defaultPattern = "*.md"
)

var (
	// ErrNoService is returned when a handler is built without a markup service.
	ErrNoService = errors.New("markup command: markup service is required")
	// ErrNoStore is returned by AffectedDocumentsHandler when no dependency store is configured.
	ErrNoStore = errors.New("markup command: dependency store is not configured")
	// ErrDocumentsFailed reports that at least one document in a directory failed to compile.
	ErrDocumentsFailed = errors.New("markup command: documents failed to compile")
)

var (
	_ command.Commander[CompileDocumentCommand]  = (*CompileDocumentHandler)(nil)
	_ command.Commander[CompileDirectoryCommand] = (*CompileDirectoryHandler)(nil)
	_ command.Commander[AffectedDocumentsQuery]  = (*AffectedDocumentsHandler)(nil)
)

// Config carries the filesystem layout shared by the markup handlers.
type Config struct {
	// BaseDir anchors logical document paths.
	BaseDir string
	// OutputDir receives rendered HTML when set. Each document is written to
	// the same relative location with an .html extension.
	OutputDir string
	// Workers is the default directory compilation concurrency.
	Workers int
}

// DocumentOutcome is the result of compiling one document.
type DocumentOutcome struct {
	Path         string                  `json:"path"`
	Output       string                  `json:"output,omitempty"`
	Dependencies []string                `json:"dependencies,omitempty"`
	Diagnostics  []interfaces.Diagnostic `json:"diagnostics,omitempty"`
	Err          error                   `json:"-"`
}

// CompileSummary aggregates a directory compilation.
type CompileSummary struct {
	Compiled     int               `json:"compiled"`
	Failed       int               `json:"failed"`
	Diagnostics  int               `json:"diagnostics"`
	Dependencies int               `json:"dependencies"`
	Documents    []DocumentOutcome `json:"documents"`
}

// compiler compiles documents from disk and records their dependencies.
type compiler struct {
	service interfaces.MarkupService
	store   interfaces.DependencyStore
	cfg     Config
	logger  interfaces.Logger
}

func newCompiler(service interfaces.MarkupService, store interfaces.DependencyStore, cfg Config, logger interfaces.Logger) *compiler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers > MaxWorkers {
		cfg.Workers = MaxWorkers
	}
	return &compiler{
		service: service,
		store:   store,
		cfg:     cfg,
		logger:  commands.EnsureLogger(logger),
	}
}

func (c *compiler) compile(ctx context.Context, logical string, skipValidation bool) DocumentOutcome {
	logical = markup.NormalizePath(logical)
	outcome := DocumentOutcome{Path: logical}

	source, err := os.ReadFile(filepath.Join(c.cfg.BaseDir, filepath.FromSlash(logical)))
	if err != nil {
		outcome.Err = fmt.Errorf("read %s: %w", logical, err)
		return outcome
	}

	result, err := c.service.Markup(ctx, string(source), logical, interfaces.WithValidation(!skipValidation))
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Dependencies = result.Dependencies
	outcome.Diagnostics = result.Diagnostics

	if c.cfg.OutputDir != "" {
		target := strings.TrimSuffix(logical, path.Ext(logical)) + ".html"
		absolute := filepath.Join(c.cfg.OutputDir, filepath.FromSlash(target))
		if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
			outcome.Err = fmt.Errorf("create output dir: %w", err)
			return outcome
		}
		if err := os.WriteFile(absolute, []byte(result.HTML), 0o644); err != nil {
			outcome.Err = fmt.Errorf("write %s: %w", target, err)
			return outcome
		}
		outcome.Output = target
	}

	if c.store != nil {
		if err := c.store.Record(ctx, logical, result.Dependencies); err != nil {
			outcome.Err = err
			return outcome
		}
	}

	logging.WithFields(c.logger, map[string]any{
		"document_path": logical,
		"dependencies":  len(outcome.Dependencies),
		"diagnostics":   len(outcome.Diagnostics),
	}).Debug("markup.command.document_compiled")
	return outcome
}

// CompileDocumentHandler compiles a single document.
type CompileDocumentHandler struct {
	inner *commands.Handler[CompileDocumentCommand]
}

// NewCompileDocumentHandler creates a handler bound to service. store may be nil.
func NewCompileDocumentHandler(service interfaces.MarkupService, store interfaces.DependencyStore, cfg Config, logger interfaces.Logger, opts ...commands.HandlerOption[CompileDocumentCommand]) (*CompileDocumentHandler, error) {
	if service == nil {
		return nil, ErrNoService
	}
	baseLogger := commands.EnsureLogger(logger)
	c := newCompiler(service, store, cfg, baseLogger)

	exec := func(ctx context.Context, msg CompileDocumentCommand) error {
		outcome := c.compile(ctx, msg.Path, msg.SkipValidation)
		if msg.Outcome != nil {
			*msg.Outcome = outcome
		}
		return outcome.Err
	}

	handlerOpts := []commands.HandlerOption[CompileDocumentCommand]{
		commands.WithLogger[CompileDocumentCommand](baseLogger),
		commands.WithOperation[CompileDocumentCommand](compileDocumentOperation),
		commands.WithMessageFields(func(msg CompileDocumentCommand) map[string]any {
			return map[string]any{"document_path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CompileDocumentCommand](baseLogger, commands.DefaultSlowThreshold)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CompileDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}, nil
}

// Execute satisfies command.Commander[CompileDocumentCommand].
func (h *CompileDocumentHandler) Execute(ctx context.Context, msg CompileDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CompileDirectoryHandler compiles every matching document below a directory
// concurrently.
type CompileDirectoryHandler struct {
	inner *commands.Handler[CompileDirectoryCommand]
}

// NewCompileDirectoryHandler creates a handler bound to service. store may be nil.
func NewCompileDirectoryHandler(service interfaces.MarkupService, store interfaces.DependencyStore, cfg Config, logger interfaces.Logger, opts ...commands.HandlerOption[CompileDirectoryCommand]) (*CompileDirectoryHandler, error) {
	if service == nil {
		return nil, ErrNoService
	}
	baseLogger := commands.EnsureLogger(logger)
	c := newCompiler(service, store, cfg, baseLogger)

	exec := func(ctx context.Context, msg CompileDirectoryCommand) error {
		summary, err := c.compileDirectory(ctx, msg)
		if msg.Summary != nil {
			*msg.Summary = summary
		}
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"compiled_count":   summary.Compiled,
			"failed_count":     summary.Failed,
			"diagnostic_count": summary.Diagnostics,
		}).Info("markup.command.compile_directory.completed")
		if summary.Failed > 0 {
			return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, summary.Failed, summary.Compiled+summary.Failed)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CompileDirectoryCommand]{
		commands.WithLogger[CompileDirectoryCommand](baseLogger),
		commands.WithOperation[CompileDirectoryCommand](compileDirectoryOperation),
		commands.WithMessageFields(func(msg CompileDirectoryCommand) map[string]any {
			fields := map[string]any{"directory": msg.Directory}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.Workers > 0 {
				fields["workers"] = msg.Workers
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CompileDirectoryCommand](baseLogger, 0)),
		// the caller's context bounds directory runs
		commands.WithTimeout[CompileDirectoryCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CompileDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}, nil
}

// Execute satisfies command.Commander[CompileDirectoryCommand].
func (h *CompileDirectoryHandler) Execute(ctx context.Context, msg CompileDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (c *compiler) compileDirectory(ctx context.Context, msg CompileDirectoryCommand) (CompileSummary, error) {
	documents, err := c.discover(msg.Directory, msg.Pattern)
	if err != nil {
		return CompileSummary{}, err
	}

	workers := commands.WorkerCount(msg.Workers, c.cfg.Workers, MaxWorkers, len(documents))

	var (
		mu       sync.Mutex
		outcomes = make([]DocumentOutcome, 0, len(documents))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, doc := range documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := c.compile(gctx, doc, msg.SkipValidation)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CompileSummary{}, err
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Path < outcomes[j].Path })

	summary := CompileSummary{Documents: outcomes}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			summary.Failed++
			c.logger.Warn("markup.command.document_failed", "document_path", outcome.Path, "error", outcome.Err)
			continue
		}
		summary.Compiled++
		summary.Diagnostics += len(outcome.Diagnostics)
		summary.Dependencies += len(outcome.Dependencies)
	}
	return summary, nil
}

// discover returns the logical paths of matching documents, sorted.
func (c *compiler) discover(directory, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = defaultPattern
	}
	root := filepath.Join(c.cfg.BaseDir, filepath.FromSlash(markup.NormalizePath(directory)))

	var documents []string
	err := filepath.WalkDir(root, func(current string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if current != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		matched, err := path.Match(pattern, d.Name())
		if err != nil || !matched {
			return err
		}
		rel, err := filepath.Rel(c.cfg.BaseDir, current)
		if err != nil {
			return err
		}
		documents = append(documents, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(documents)
	return documents, nil
}

// AffectedDocumentsHandler lists the documents depending on changed files.
type AffectedDocumentsHandler struct {
	inner *commands.Handler[AffectedDocumentsQuery]
}

// NewAffectedDocumentsHandler creates a handler backed by store.
func NewAffectedDocumentsHandler(store interfaces.DependencyStore, logger interfaces.Logger, opts ...commands.HandlerOption[AffectedDocumentsQuery]) (*AffectedDocumentsHandler, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg AffectedDocumentsQuery) error {
		docs, err := store.Dependents(ctx, msg.Files...)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = docs
		}
		baseLogger.Debug("markup.command.affected_documents.completed", "document_count", len(docs))
		return nil
	}

	handlerOpts := []commands.HandlerOption[AffectedDocumentsQuery]{
		commands.WithLogger[AffectedDocumentsQuery](baseLogger),
		commands.WithOperation[AffectedDocumentsQuery](affectedDocumentsOperation),
		commands.WithMessageFields(func(msg AffectedDocumentsQuery) map[string]any {
			return map[string]any{"file_count": len(msg.Files)}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AffectedDocumentsHandler{inner: commands.NewHandler(exec, handlerOpts...)}, nil
}

// Execute satisfies command.Commander[AffectedDocumentsQuery].
func (h *AffectedDocumentsHandler) Execute(ctx context.Context, msg AffectedDocumentsQuery) error {
	return h.inner.Execute(ctx, msg)
}
