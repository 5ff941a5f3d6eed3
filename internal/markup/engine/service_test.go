package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

func TestRegistryDefaults(t *testing.T) {
	registry := NewRegistry()
	if !reflect.DeepEqual(registry.Names(), []string{ServiceLatest, ServiceLegacy}) {
		t.Fatalf("unexpected providers %v", registry.Names())
	}
	provider, ok := registry.Lookup("")
	if !ok || provider.Name() != ServiceLatest {
		t.Fatal("expected empty name to select the latest provider")
	}
	if err := registry.Register(LatestProvider()); !errors.Is(err, ErrDuplicateService) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := registry.CreateService("dfm-1.0", ServiceParameters{}); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("expected unknown service error, got %v", err)
	}
}

func TestCreateServiceAppliesParameters(t *testing.T) {
	base := t.TempDir()
	registry := NewRegistry()

	latest, err := registry.CreateService(ServiceLatest, ServiceParameters{
		BaseDir: base,
		Tokens:  map[string]string{"product": "Docmark"},
	})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	defer latest.Close()

	opts := latest.Builder().Options()
	if opts.LegacyMode || !opts.ShouldFixID || !opts.XHTML || opts.BaseDir != base {
		t.Fatalf("unexpected latest options %+v", opts)
	}

	var service interfaces.MarkupService = latest
	result, err := service.Markup(context.Background(), "{{product}}\n", "index.md")
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	if !strings.Contains(result.HTML, "Docmark") {
		t.Fatalf("unexpected html %q", result.HTML)
	}

	legacy, err := registry.CreateService(ServiceLegacy, ServiceParameters{BaseDir: base, Options: &Options{}})
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if legacy.Name() != ServiceLegacy || !legacy.Builder().Options().LegacyMode {
		t.Fatal("expected legacy service to enable legacy mode")
	}
	result, err = legacy.Markup(context.Background(), "#Old\n", "index.md")
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	if !strings.Contains(result.HTML, ">Old</h1>") {
		t.Fatalf("unexpected legacy html %q", result.HTML)
	}
}
