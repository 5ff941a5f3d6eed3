package markupcmd

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-docmark/internal/depstore"
	"github.com/goliatone/go-docmark/internal/markup/engine"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

func TestCompileDirectoryRecordsDependencies(t *testing.T) {
	base := t.TempDir()
	out := t.TempDir()
	writeFile(t, base, "shared/note.md", "Shared note.\n")
	writeFile(t, base, "guide/intro.md", "# Intro\n\n[!include[note](../shared/note.md)]\n")
	writeFile(t, base, "guide/setup.md", "# Setup\n\n[!include[note](../shared/note.md)]\n")
	writeFile(t, base, "readme.md", "# Readme\n")
	writeFile(t, base, "guide/notes.txt", "not markdown")

	service := newService(t, base)
	store := newStore(t, "compile_directory")

	handler, err := NewCompileDirectoryHandler(service, store, Config{BaseDir: base, OutputDir: out, Workers: 2}, nil)
	if err != nil {
		t.Fatalf("NewCompileDirectoryHandler() error = %v", err)
	}

	var summary CompileSummary
	if err := handler.Execute(context.Background(), CompileDirectoryCommand{Directory: "guide", Summary: &summary}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if summary.Compiled != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Documents[0].Path != "guide/intro.md" || summary.Documents[1].Path != "guide/setup.md" {
		t.Fatalf("expected documents sorted by path, got %+v", summary.Documents)
	}
	if summary.Dependencies != 2 {
		t.Fatalf("expected 2 recorded dependencies, got %d", summary.Dependencies)
	}

	html, err := os.ReadFile(filepath.Join(out, "guide", "intro.html"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), "Shared note.") {
		t.Fatalf("expected included content in output, got %q", html)
	}

	affected, err := NewAffectedDocumentsHandler(store, nil)
	if err != nil {
		t.Fatalf("NewAffectedDocumentsHandler() error = %v", err)
	}
	var docs []string
	if err := affected.Execute(context.Background(), AffectedDocumentsQuery{Files: []string{"shared/note.md"}, Result: &docs}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if want := []string{"guide/intro.md", "guide/setup.md"}; !reflect.DeepEqual(docs, want) {
		t.Fatalf("affected = %v, want %v", docs, want)
	}
}

func TestCompileDocumentReportsOutcome(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "index.md", "# Index\n\n[!include[missing](missing.md)]\n")

	handler, err := NewCompileDocumentHandler(newService(t, base), nil, Config{BaseDir: base}, nil)
	if err != nil {
		t.Fatalf("NewCompileDocumentHandler() error = %v", err)
	}

	var outcome DocumentOutcome
	if err := handler.Execute(context.Background(), CompileDocumentCommand{Path: "index.md", Outcome: &outcome}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if outcome.Path != "index.md" || outcome.Output != "" {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if len(outcome.Diagnostics) == 0 {
		t.Fatal("expected unresolved include diagnostic")
	}
	if outcome.Dependencies != nil {
		t.Fatalf("expected no dependencies, got %v", outcome.Dependencies)
	}
}

func TestCompileDocumentMissingFile(t *testing.T) {
	base := t.TempDir()
	handler, err := NewCompileDocumentHandler(newService(t, base), nil, Config{BaseDir: base}, nil)
	if err != nil {
		t.Fatalf("NewCompileDocumentHandler() error = %v", err)
	}

	err = handler.Execute(context.Background(), CompileDocumentCommand{Path: "missing.md"})
	if err == nil {
		t.Fatal("expected missing file error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category, got %v", err)
	}
}

func TestCompileDirectoryCountsFailures(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "ok.md", "fine\n")
	writeFile(t, base, "bad.md", "broken\n")

	service := &stubService{fail: map[string]error{"bad.md": errors.New("render failed")}}
	handler, err := NewCompileDirectoryHandler(service, nil, Config{BaseDir: base}, nil)
	if err != nil {
		t.Fatalf("NewCompileDirectoryHandler() error = %v", err)
	}

	var summary CompileSummary
	err = handler.Execute(context.Background(), CompileDirectoryCommand{Summary: &summary})
	if err == nil {
		t.Fatal("expected failure to surface")
	}
	if summary.Compiled != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Documents[0].Path != "bad.md" || summary.Documents[0].Err == nil {
		t.Fatalf("expected bad.md failure first, got %+v", summary.Documents)
	}
}

func TestHandlersRequireCollaborators(t *testing.T) {
	if _, err := NewCompileDocumentHandler(nil, nil, Config{}, nil); !errors.Is(err, ErrNoService) {
		t.Fatalf("expected ErrNoService, got %v", err)
	}
	if _, err := NewCompileDirectoryHandler(nil, nil, Config{}, nil); !errors.Is(err, ErrNoService) {
		t.Fatalf("expected ErrNoService, got %v", err)
	}
	if _, err := NewAffectedDocumentsHandler(nil, nil); !errors.Is(err, ErrNoStore) {
		t.Fatalf("expected ErrNoStore, got %v", err)
	}
}

type stubService struct {
	fail map[string]error
}

func (s *stubService) Name() string { return "stub" }

func (s *stubService) Markup(_ context.Context, source, path string, _ ...interfaces.MarkupOption) (*interfaces.MarkupResult, error) {
	if err := s.fail[path]; err != nil {
		return nil, err
	}
	return &interfaces.MarkupResult{HTML: "<p>" + strings.TrimSpace(source) + "</p>\n"}, nil
}

func (s *stubService) Close() error { return nil }

func newService(t *testing.T, base string) interfaces.MarkupService {
	t.Helper()
	service, err := engine.NewRegistry().CreateService(engine.ServiceLatest, engine.ServiceParameters{BaseDir: base})
	if err != nil {
		t.Fatalf("CreateService() error = %v", err)
	}
	t.Cleanup(func() { _ = service.Close() })
	return service
}

func newStore(t *testing.T, name string) *depstore.Store {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", "file:markupcmd_"+name+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	store, err := depstore.Open(sqldb, depstore.DriverSQLite)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func writeFile(t *testing.T, base, rel, content string) {
	t.Helper()
	target := filepath.Join(base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}
