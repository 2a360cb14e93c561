package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileSuccess(t *testing.T) {
	entry := writeSource(t, "main.flr", "x = 42\nprint(x)\n")
	result := Compile(Options{EntryFile: entry, Quiet: true})
	if !result.Success {
		t.Fatalf("compilation failed:\n%s", result.Report)
	}
	if result.Errors != 0 {
		t.Errorf("errors = %d, want 0", result.Errors)
	}
}

func TestCompileReportsErrors(t *testing.T) {
	entry := writeSource(t, "main.flr", "print(missing)\n")
	result := Compile(Options{EntryFile: entry, Quiet: true})
	if result.Success {
		t.Fatal("compilation should fail")
	}
	if !strings.Contains(result.Report, "R0001") {
		t.Errorf("report missing the undefined-name code:\n%s", result.Report)
	}
}

func TestCompileMissingFile(t *testing.T) {
	result := Compile(Options{EntryFile: "/no/such/file.flr", Quiet: true})
	if result.Success {
		t.Error("missing entry file should fail")
	}
}
