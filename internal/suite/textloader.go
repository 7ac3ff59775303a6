package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"miniobench/internal/instruction"
)

const (
	testSuffix   = ".test"
	resultSuffix = ".result"
)

// LoadTextCases walks dir for <name>.test/<name>.result pairs and builds one
// TestCase per pair, its whole body wrapped in a single ChunkInstruction.
// Pairs are returned in lexicographic order by name. A .test file with no
// matching .result file is an error: a stray fixture left behind by a
// half-finished case authoring session should fail the run, not vanish
// silently.
func LoadTextCases(dir string) ([]*instruction.TestCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), testSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), testSuffix))
	}
	sort.Strings(names)

	cases := make([]*instruction.TestCase, 0, len(names))
	for _, name := range names {
		tc, err := loadTextCase(dir, name)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func loadTextCase(dir, name string) (*instruction.TestCase, error) {
	testBody, err := os.ReadFile(filepath.Join(dir, name+testSuffix))
	if err != nil {
		return nil, err
	}
	resultBody, err := os.ReadFile(filepath.Join(dir, name+resultSuffix))
	if err != nil {
		return nil, fmt.Errorf("suite: %s.test has no matching %s.result: %w", name, name, err)
	}

	expected := splitNonEmptyLines(string(resultBody))
	tc := instruction.NewTestCase(name)
	group, err := tc.AddExecutionGroup("body")
	if err != nil {
		return nil, err
	}
	group.Add(instruction.NewChunk(string(testBody), expected))
	return tc, nil
}

func splitNonEmptyLines(s string) []string {
	var lines []string
	for _, raw := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lines = append(lines, trimmed)
	}
	return lines
}
