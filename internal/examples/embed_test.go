package examples

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/6flow-studio/6flow-convergence-sub000/pkg/workflow"
)

func TestListReturnsAllExamples(t *testing.T) {
	examples, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(examples) != 3 {
		t.Fatalf("List() returned %d examples, want 3", len(examples))
	}
	for _, ex := range examples {
		if ex.Description == "" {
			t.Errorf("example %q has no description", ex.Name)
		}
	}
}

func TestEveryExampleParses(t *testing.T) {
	examples, err := List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	dir := t.TempDir()
	for _, ex := range examples {
		content, err := Get(ex.Name)
		if err != nil {
			t.Fatalf("Get(%q) error: %v", ex.Name, err)
		}

		path := filepath.Join(dir, ex.FilePath)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}

		doc, err := workflow.LoadFile(path)
		if err != nil {
			t.Errorf("example %q does not parse: %v", ex.Name, err)
			continue
		}
		if len(doc.Nodes) == 0 {
			t.Errorf("example %q has no nodes", ex.Name)
		}
	}
}

func TestExists(t *testing.T) {
	if !Exists("erc20-balance") {
		t.Error("expected erc20-balance to exist")
	}
	if Exists("no-such-example") {
		t.Error("did not expect no-such-example to exist")
	}
}

func TestCopyTo(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "doc.yaml")
	if err := CopyTo("http-status-check", dest); err != nil {
		t.Fatalf("CopyTo() error: %v", err)
	}

	copied, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	original, err := Get("http-status-check")
	if err != nil {
		t.Fatal(err)
	}
	if string(copied) != string(original) {
		t.Error("copied content differs from embedded content")
	}

	if err := CopyTo("no-such-example", dest); err == nil {
		t.Error("expected error for unknown example")
	}
}
