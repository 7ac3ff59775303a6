// Package report writes CaseArtifact directories for failing (or,
// optionally, every) suite case: a JSON summary, the replayable SQL
// statements, and the rendered failure message, compressed into a single
// case.tar.zst archive inside a case directory whose name carries a UUID.
package report

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"miniobench/internal/util"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Reporter writes case artifacts to disk under OutputDir.
type Reporter struct {
	OutputDir string
	caseSeq   int
}

// Case is one allocated artifact directory.
type Case struct {
	ID  string
	Dir string
}

// Summary captures the persisted metadata for one case artifact.
type Summary struct {
	CaseName      string         `json:"case_name"`
	Passed        bool           `json:"passed"`
	Timestamp     string         `json:"timestamp"`
	Message       string         `json:"message"`
	UserException string         `json:"user_exception,omitempty"`
	TestException string         `json:"test_exception,omitempty"`
	CoreBacktrace string         `json:"core_backtrace,omitempty"`
	UploadLocation string        `json:"upload_location,omitempty"`
	ArchiveName   string         `json:"archive_name,omitempty"`
	ArchiveCodec  string         `json:"archive_codec,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

const (
	// CaseArchiveName is the filename of the compressed case directory.
	CaseArchiveName = "case.tar.zst"
	// CaseArchiveCodec names the compression codec used for CaseArchiveName.
	CaseArchiveCodec = "zstd"
	// StatementsFile holds every SQL statement run during the case, one per
	// split, for later replay by the Repro CLI.
	StatementsFile = "statements.sql"
)

// New creates a reporter that writes to outputDir.
func New(outputDir string) *Reporter {
	return &Reporter{OutputDir: outputDir}
}

// NewCase allocates a new case artifact directory named case_%04d_<uuid>.
func (r *Reporter) NewCase() (Case, error) {
	r.caseSeq++
	caseID := uuid.New().String()
	if v7, err := uuid.NewV7(); err == nil {
		caseID = v7.String()
	}
	dir := filepath.Join(r.OutputDir, fmt.Sprintf("case_%04d_%s", r.caseSeq, caseID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Case{}, err
	}
	return Case{ID: caseID, Dir: dir}, nil
}

// WriteSummary writes summary.json into the case directory with a
// deterministic key order inside Details, so archives are byte-identical
// across re-runs of the same failure.
func (r *Reporter) WriteSummary(c Case, summary Summary) error {
	f, err := os.Create(filepath.Join(c.Dir, "summary.json"))
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "summary output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return encodeSummaryStable(enc, summary)
}

// WriteStatements writes statements.sql from the SQL payloads issued
// during the case, in execution order.
func (r *Reporter) WriteStatements(c Case, statements []string) error {
	content := strings.Join(statements, ";\n")
	if content != "" {
		content += ";\n"
	}
	return os.WriteFile(filepath.Join(c.Dir, StatementsFile), []byte(content), 0o644)
}

// WriteText writes raw text content into the case directory, creating any
// intermediate directories the name implies.
func (r *Reporter) WriteText(c Case, name string, content string) error {
	path := filepath.Join(c.Dir, name)
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// WriteCaseArchive tars and zstd-compresses the case directory in place.
func (r *Reporter) WriteCaseArchive(c Case) (name string, codec string, err error) {
	archivePath := filepath.Join(c.Dir, CaseArchiveName)
	if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
		return "", "", removeErr
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()
	file, err := os.Create(archivePath)
	if err != nil {
		return "", "", err
	}
	defer util.CloseWithErr(file, "archive output")

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := zw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(zw)
	defer func() {
		if closeErr := tw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(c.Dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, src); err != nil {
			util.CloseWithErr(src, "archive source")
			return err
		}
		util.CloseWithErr(src, "archive source")
		return nil
	})
	if walkErr != nil {
		return "", "", walkErr
	}
	return CaseArchiveName, CaseArchiveCodec, nil
}

func encodeSummaryStable(enc *json.Encoder, summary Summary) error {
	type summaryAlias Summary
	alias := summaryAlias(summary)
	rawDetails, err := encodeOrderedValue(alias.Details)
	if err != nil {
		return err
	}
	alias.Details = nil
	payload := struct {
		summaryAlias
		Details json.RawMessage `json:"details,omitempty"`
	}{
		summaryAlias: alias,
		Details:      rawDetails,
	}
	return enc.Encode(payload)
}

func encodeOrderedValue(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	buf := &strings.Builder{}
	if err := writeOrderedJSON(buf, v); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.String()), nil
}

func writeOrderedJSON(w io.Writer, v any) error {
	if v == nil {
		_, err := io.WriteString(w, "null")
		return err
	}
	switch val := v.(type) {
	case map[string]any:
		return writeOrderedMap(w, val)
	case []any:
		return writeOrderedSlice(w, val)
	}
	rv := reflect.ValueOf(v)
	if rv.IsValid() {
		switch rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return writeOrderedMapValue(w, rv)
			}
		case reflect.Slice, reflect.Array:
			return writeOrderedSliceValue(w, rv)
		}
	}
	return writeScalarJSON(w, v)
}

func writeOrderedMap(w io.Writer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, k := range keys {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return err
		}
		if _, err := w.Write(keyJSON); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		if err := writeOrderedJSON(w, m[k]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

func writeOrderedMapValue(w io.Writer, rv reflect.Value) error {
	keys := rv.MapKeys()
	strKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		strKeys = append(strKeys, k.String())
	}
	sort.Strings(strKeys)
	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i, key := range strKeys {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeScalarJSON(w, key); err != nil {
			return err
		}
		if _, err := io.WriteString(w, ":"); err != nil {
			return err
		}
		val := rv.MapIndex(reflect.ValueOf(key))
		if err := writeOrderedJSON(w, val.Interface()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}")
	return err
}

func writeOrderedSlice(w io.Writer, vals []any) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, item := range vals {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeOrderedJSON(w, item); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeOrderedSliceValue(w io.Writer, rv reflect.Value) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if err := writeOrderedJSON(w, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeScalarJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
