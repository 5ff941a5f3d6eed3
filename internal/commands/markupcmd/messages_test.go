package markupcmd

import "testing"

func TestCompileDocumentCommandValidate(t *testing.T) {
	cases := []struct {
		path  string
		valid bool
	}{
		{path: "docs/index.md", valid: true},
		{path: "./index.md", valid: true},
		{path: "", valid: false},
		{path: "   ", valid: false},
		{path: "/etc/passwd", valid: false},
		{path: "../outside.md", valid: false},
		{path: "docs/../../outside.md", valid: false},
	}
	for _, tc := range cases {
		err := CompileDocumentCommand{Path: tc.path}.Validate()
		if tc.valid && err != nil {
			t.Fatalf("Validate(%q) unexpected error: %v", tc.path, err)
		}
		if !tc.valid && err == nil {
			t.Fatalf("Validate(%q) expected error", tc.path)
		}
	}
}

func TestCompileDirectoryCommandValidate(t *testing.T) {
	if err := (CompileDirectoryCommand{}).Validate(); err != nil {
		t.Fatalf("expected empty directory to select the base, got %v", err)
	}
	if err := (CompileDirectoryCommand{Directory: "guide", Pattern: "*.md", Workers: 4}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := []CompileDirectoryCommand{
		{Directory: "../up"},
		{Pattern: "[md"},
		{Workers: -1},
		{Workers: MaxWorkers + 1},
	}
	for _, cmd := range invalid {
		if err := cmd.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", cmd)
		}
	}
}

func TestAffectedDocumentsQueryValidate(t *testing.T) {
	if err := (AffectedDocumentsQuery{}).Validate(); err == nil {
		t.Fatal("expected files to be required")
	}
	if err := (AffectedDocumentsQuery{Files: []string{"a.md", " "}}).Validate(); err == nil {
		t.Fatal("expected blank file to be rejected")
	}
	if err := (AffectedDocumentsQuery{Files: []string{"shared/note.md"}}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMessageTypes(t *testing.T) {
	if (CompileDocumentCommand{}).Type() != "docmark.markup.compile_document" {
		t.Fatal("unexpected compile document type")
	}
	if (CompileDirectoryCommand{}).Type() != "docmark.markup.compile_directory" {
		t.Fatal("unexpected compile directory type")
	}
	if (AffectedDocumentsQuery{}).Type() != "docmark.markup.affected_documents" {
		t.Fatal("unexpected affected documents type")
	}
}
