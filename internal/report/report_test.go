package report

import (
	"archive/tar"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestNewCaseCreatesDirectory(t *testing.T) {
	r := New(t.TempDir())
	c, err := r.NewCase()
	if err != nil {
		t.Fatalf("NewCase: %v", err)
	}
	info, err := os.Stat(c.Dir)
	if err != nil {
		t.Fatalf("case dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("case dir is not a directory")
	}
	if c.ID == "" {
		t.Fatalf("case id is empty")
	}
}

func TestWriteSummaryOrdersDetailsDeterministically(t *testing.T) {
	r := New(t.TempDir())
	c, err := r.NewCase()
	if err != nil {
		t.Fatalf("NewCase: %v", err)
	}
	summary := Summary{
		CaseName: "connection_isolation",
		Passed:   false,
		Message:  "row 2 mismatch",
		Details: map[string]any{
			"zeta":  1,
			"alpha": 2,
			"mid":   []any{"b", "a"},
		},
	}
	if err := r.WriteSummary(c, summary); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(c.Dir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary.json: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode summary.json: %v", err)
	}
	if decoded.CaseName != summary.CaseName || decoded.Message != summary.Message {
		t.Fatalf("round-tripped summary mismatch: %+v", decoded)
	}

	alphaIdx := strings.Index(string(raw), `"alpha"`)
	midIdx := strings.Index(string(raw), `"mid"`)
	zetaIdx := strings.Index(string(raw), `"zeta"`)
	if !(alphaIdx < midIdx && midIdx < zetaIdx) {
		t.Fatalf("details keys not written in lexicographic order: %s", raw)
	}
}

func TestWriteStatementsJoinsWithSemicolons(t *testing.T) {
	r := New(t.TempDir())
	c, err := r.NewCase()
	if err != nil {
		t.Fatalf("NewCase: %v", err)
	}
	statements := []string{"CREATE TABLE t (a int)", "INSERT INTO t VALUES (1)"}
	if err := r.WriteStatements(c, statements); err != nil {
		t.Fatalf("WriteStatements: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(c.Dir, StatementsFile))
	if err != nil {
		t.Fatalf("read statements.sql: %v", err)
	}
	want := "CREATE TABLE t (a int);\nINSERT INTO t VALUES (1);\n"
	if string(raw) != want {
		t.Fatalf("statements.sql = %q, want %q", raw, want)
	}
}

func TestWriteCaseArchiveProducesReadableZstdTar(t *testing.T) {
	r := New(t.TempDir())
	c, err := r.NewCase()
	if err != nil {
		t.Fatalf("NewCase: %v", err)
	}
	if err := r.WriteText(c, "message.txt", "row 2 mismatch"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if err := r.WriteStatements(c, []string{"SELECT 1"}); err != nil {
		t.Fatalf("WriteStatements: %v", err)
	}

	name, codec, err := r.WriteCaseArchive(c)
	if err != nil {
		t.Fatalf("WriteCaseArchive: %v", err)
	}
	if name != CaseArchiveName || codec != CaseArchiveCodec {
		t.Fatalf("unexpected archive name/codec: %s/%s", name, codec)
	}

	f, err := os.Open(filepath.Join(c.Dir, name))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	found := map[string]bool{}
	for {
		header, err := tr.Next()
		if err != nil {
			break
		}
		found[header.Name] = true
	}
	if !found["message.txt"] || !found[StatementsFile] {
		t.Fatalf("archive missing expected entries: %v", found)
	}
	if found[CaseArchiveName] {
		t.Fatalf("archive must not include itself")
	}
}
