package markup

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

func TestDependencySetDeduplicatesNormalizedPaths(t *testing.T) {
	set := NewDependencySet()

	if !set.Add("docs/a.md") {
		t.Fatal("expected first add to report a new path")
	}
	if set.Add("./docs//a.md") {
		t.Fatal("expected equivalent path to be collapsed")
	}
	if set.Add(`docs\a.md`) {
		t.Fatal("expected backslash path to be collapsed")
	}
	set.Add("b.md")
	set.Add("  ")

	want := []string{"b.md", "docs/a.md"}
	if got := set.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	if !set.Contains("docs/./a.md") {
		t.Fatal("expected Contains to normalize its argument")
	}
}

func TestDependencySetEmptySnapshotIsNil(t *testing.T) {
	var set DependencySet
	if got := set.Snapshot(); got != nil {
		t.Fatalf("expected nil snapshot, got %v", got)
	}
	var nilSet *DependencySet
	if nilSet.Len() != 0 || nilSet.Contains("a.md") {
		t.Fatal("expected nil set to behave as empty")
	}
}

func TestDiagnosticsHasErrors(t *testing.T) {
	var diags Diagnostics
	diags.Report(interfaces.Diagnostic{Severity: interfaces.SeverityWarning, Message: "w"})
	if diags.HasErrors() {
		t.Fatal("warnings alone must not count as errors")
	}
	diags.Report(interfaces.Diagnostic{Severity: interfaces.SeverityError, Message: "e"})
	if !diags.HasErrors() || diags.Len() != 2 {
		t.Fatalf("unexpected state: %+v", diags.List())
	}
}
