package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-docmark/internal/logging"
)

func TestNewProviderFormats(t *testing.T) {
	for _, format := range []string{"", "json", "console", "pretty"} {
		p, err := NewProvider(Config{Level: "debug", Format: format, Focus: []string{" docmark.engine ", ""}})
		if err != nil {
			t.Fatalf("NewProvider(%q) error = %v", format, err)
		}
		if p.GetLogger("docmark.engine") == nil || p.GetLogger("") == nil {
			t.Fatalf("expected loggers for format %q", format)
		}
	}

	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNilProviderFallsBackToNoOp(t *testing.T) {
	var p *Provider
	logger := p.GetLogger("docmark.engine")
	if logger == nil {
		t.Fatal("expected no-op logger")
	}
	logger.Info("discarded")
}

func TestAdapterForwardsLevels(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("t")
	adapted.Debug("d")
	adapted.Info("i")
	adapted.Warn("w")
	adapted.Error("e")
	adapted.Fatal("f")

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", stub.calls, want)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, stub.calls[i], want[i])
		}
	}
}

func TestAdapterCopiesDocumentFields(t *testing.T) {
	stub := &stubLogger{}
	fields := map[string]any{"document_path": "guide/intro.md"}
	logging.WithFields(wrap(stub), fields)
	fields["document_path"] = "changed.md"

	if len(stub.fields) != 1 || stub.fields[0]["document_path"] != "guide/intro.md" {
		t.Fatalf("expected copied document fields, got %v", stub.fields)
	}
}

func TestAdapterMergesContextFields(t *testing.T) {
	stub := &stubLogger{}
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"command": "docmark.markup.compile_document",
	})

	wrap(stub).WithContext(ctx)

	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context forwarded once, got %d", len(stub.contexts))
	}
	if len(stub.fields) != 1 || stub.fields[0]["command"] != "docmark.markup.compile_document" {
		t.Fatalf("expected context fields applied, got %v", stub.fields)
	}

	plain := &stubLogger{}
	wrap(plain).WithContext(context.Background())
	if len(plain.fields) != 0 {
		t.Fatalf("expected no fields for a bare context, got %v", plain.fields)
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var (
	_ glog.Logger       = (*stubLogger)(nil)
	_ glog.FieldsLogger = (*stubLogger)(nil)
)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
