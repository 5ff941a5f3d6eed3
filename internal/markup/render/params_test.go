package render

import (
	"reflect"
	"testing"
)

func TestParametersLookups(t *testing.T) {
	params := Parameters{
		ParamShouldFixID:     "false",
		"depth":              "3",
		"broken":             map[string]any{},
		ParamFallbackFolders: []any{"a", "b"},
		"mixed":              []any{"a", 1},
		"nil":                nil,
	}

	if params.Bool(ParamShouldFixID, true) {
		t.Fatal("expected string bool to be coerced")
	}
	if !params.Bool("broken", true) {
		t.Fatal("expected malformed bool to fall back to default")
	}
	if params.Int("depth", 0) != 3 {
		t.Fatal("expected string int to be coerced")
	}
	if params.String("nil", "def") != "def" {
		t.Fatal("expected nil value to be absent")
	}

	folders, ok := params.StringSlice(ParamFallbackFolders)
	if !ok || !reflect.DeepEqual(folders, []string{"a", "b"}) {
		t.Fatalf("unexpected folders %v (%v)", folders, ok)
	}
	if _, ok := params.StringSlice("mixed"); ok {
		t.Fatal("expected mixed slice to be treated as absent")
	}
	if _, ok := params.StringSlice(ParamShouldFixID); ok {
		t.Fatal("expected scalar to be treated as absent")
	}
}

func TestParametersCloneIsIndependent(t *testing.T) {
	var empty Parameters
	if empty.Clone() == nil {
		t.Fatal("expected clone of nil to be usable")
	}
	params := Parameters{"a": 1}
	clone := params.Clone()
	clone["a"] = 2
	if params["a"] != 1 {
		t.Fatal("clone must not alias the original")
	}
}
