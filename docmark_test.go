package docmark_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/internal/di"
)

func TestModuleCompileAndTrack(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "shared", "note.md"), "Remember the {{product}} motto.\n")
	writeFile(t, filepath.Join(base, "guide", "intro.md"), "# Intro\n\n[!include[note](../shared/note.md)]\n")

	cfg := docmark.DefaultConfig()
	cfg.Markup.BaseDir = base
	cfg.Markup.Tokens = map[string]string{"product": "Docmark"}
	cfg.Dependencies.Enabled = true
	cfg.Dependencies.DSN = "file:docmark_module?mode=memory&cache=shared&_fk=1"

	module, err := docmark.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	outcome, err := module.CompileDocument(ctx, "guide/intro.md")
	if err != nil {
		t.Fatalf("CompileDocument: %v", err)
	}
	if !reflect.DeepEqual(outcome.Dependencies, []string{"shared/note.md"}) {
		t.Fatalf("unexpected dependencies %v", outcome.Dependencies)
	}

	docs, err := module.AffectedDocuments(ctx, "shared/note.md")
	if err != nil {
		t.Fatalf("AffectedDocuments: %v", err)
	}
	if !reflect.DeepEqual(docs, []string{"guide/intro.md"}) {
		t.Fatalf("unexpected affected documents %v", docs)
	}

	summary, err := module.CompileDirectory(ctx, "", "")
	if err != nil {
		t.Fatalf("CompileDirectory: %v", err)
	}
	if summary.Compiled != 2 {
		t.Fatalf("expected both documents compiled, got %+v", summary)
	}
}

func TestModuleCompileWithBlockingRule(t *testing.T) {
	cfg := docmark.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()

	noTodo := docmark.NewRule("no-todo", func(tree *docmark.Tree) []docmark.Diagnostic {
		if strings.Contains(string(tree.Source()), "TODO") {
			return []docmark.Diagnostic{{Code: "todo", Severity: docmark.SeverityError, Message: "unfinished"}}
		}
		return nil
	})

	module, err := docmark.New(cfg, di.WithExtensions(docmark.Extensions{
		Validators: []docmark.Rule{docmark.Blocking(noTodo)},
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	ctx := context.Background()
	if _, err := module.Compile(ctx, "TODO write\n", "draft.md"); err == nil {
		t.Fatal("expected blocking rule to reject the document")
	}
	result, err := module.Compile(ctx, "TODO write\n", "draft.md", docmark.WithValidation(false))
	if err != nil {
		t.Fatalf("Compile without validation: %v", err)
	}
	if !strings.Contains(result.HTML, "TODO write") {
		t.Fatalf("unexpected html %q", result.HTML)
	}
}

func TestModuleAffectedDocumentsRequiresStore(t *testing.T) {
	cfg := docmark.DefaultConfig()
	cfg.Markup.BaseDir = t.TempDir()

	module, err := docmark.New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer module.Close()

	if _, err := module.AffectedDocuments(context.Background(), "a.md"); !errors.Is(err, docmark.ErrDependencyTrackingDisabled) {
		t.Fatalf("expected ErrDependencyTrackingDisabled, got %v", err)
	}
}

func TestConfigValidateExported(t *testing.T) {
	cfg := docmark.DefaultConfig()
	cfg.Dependencies.Enabled = true
	cfg.Dependencies.DSN = ""

	if err := cfg.Validate(); !errors.Is(err, docmark.ErrDependenciesDSNRequired) {
		t.Fatalf("expected ErrDependenciesDSNRequired, got %v", err)
	}
}

func writeFile(t *testing.T, target, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
