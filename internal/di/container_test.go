package di_test

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

	"github.com/goliatone/go-docmark/internal/commands/markupcmd"
	"github.com/goliatone/go-docmark/internal/di"
	"github.com/goliatone/go-docmark/internal/markup/engine"
	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/runtimeconfig"
)

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.Provider = ""

	if _, err := di.NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrMarkupProviderRequired) {
		t.Fatalf("expected ErrMarkupProviderRequired, got %v", err)
	}
}

func TestNewContainerRejectsUnknownService(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()
	cfg.Markup.Provider = "dfm-1.0"

	_, err := di.NewContainer(cfg)
	if !errors.Is(err, engine.ErrUnknownService) && !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected unknown service error, got %v", err)
	}
}

func TestContainerWithoutDependencyStore(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if container.DependencyStore() != nil {
		t.Fatal("expected no dependency store when tracking is disabled")
	}
	if container.AffectedDocumentsHandler() != nil {
		t.Fatal("expected no affected documents handler without a store")
	}
	if container.CompileDocumentHandler() == nil || container.CompileDirectoryHandler() == nil {
		t.Fatal("expected compile handlers to be wired")
	}
	if container.MarkupService().Name() != engine.ServiceLatest {
		t.Fatalf("unexpected service %s", container.MarkupService().Name())
	}
}

func TestContainerWiresStoreFromConfig(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "shared/note.md", "Shared.\n")
	writeFile(t, base, "index.md", "# Index\n\n[!include[note](shared/note.md)]\n")

	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.BaseDir = base
	cfg.Dependencies.Enabled = true
	cfg.Dependencies.Driver = "sqlite3"
	cfg.Dependencies.DSN = "file:di_container_store?mode=memory&cache=shared&_fk=1"

	container, err := di.NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	ctx := context.Background()
	if err := container.CompileDocumentHandler().Execute(ctx, markupcmd.CompileDocumentCommand{Path: "index.md"}); err != nil {
		t.Fatalf("compile: %v", err)
	}

	var docs []string
	query := markupcmd.AffectedDocumentsQuery{Files: []string{"shared/note.md"}, Result: &docs}
	if err := container.AffectedDocumentsHandler().Execute(ctx, query); err != nil {
		t.Fatalf("affected: %v", err)
	}
	if !reflect.DeepEqual(docs, []string{"index.md"}) {
		t.Fatalf("unexpected affected documents %v", docs)
	}
}

func TestContainerUsesSuppliedDatabase(t *testing.T) {
	sqldb, err := sql.Open("sqlite3", "file:di_supplied_db?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer sqldb.Close()

	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()

	container, err := di.NewContainer(cfg, di.WithSQLDB(sqldb))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.DependencyStore() == nil {
		t.Fatal("expected store backed by the supplied database")
	}
	if err := container.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		t.Fatalf("expected supplied database to stay open, got %v", err)
	}
}

func TestContainerForwardsExtensions(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()
	cfg.Markup.Parameters = map[string]any{render.ParamCodeClassPrefix: "language-"}

	container, err := di.NewContainer(cfg, di.WithExtensions(engine.Extensions{
		Providers: []render.Provider{render.CodeLanguageProvider{}},
	}))
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	result, err := container.MarkupService().Markup(context.Background(), "```go\nx := 1\n```\n", "code.md")
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	if !strings.Contains(result.HTML, `class="language-go"`) {
		t.Fatalf("expected configured class prefix, got %q", result.HTML)
	}
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
