package suite

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTextCasesBuildsOneChunkPerPair(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_case.test"), "SELECT 1;\n")
	writeFile(t, filepath.Join(dir, "b_case.result"), "1\n")
	writeFile(t, filepath.Join(dir, "a_case.test"), "SELECT 2;\n")
	writeFile(t, filepath.Join(dir, "a_case.result"), "2\n")

	cases, err := LoadTextCases(dir)
	if err != nil {
		t.Fatalf("LoadTextCases: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].Name != "a_case" || cases[1].Name != "b_case" {
		t.Fatalf("expected lexicographic order, got %s, %s", cases[0].Name, cases[1].Name)
	}
	if len(cases[0].Groups) != 1 || len(cases[0].Groups[0].Instructions) != 1 {
		t.Fatalf("expected a single chunk instruction per case")
	}
}

func TestLoadTextCasesMissingResultErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "orphan.test"), "SELECT 1;\n")

	if _, err := LoadTextCases(dir); err == nil {
		t.Fatalf("expected an error for a .test file with no matching .result")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
