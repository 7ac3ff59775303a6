package instruction

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	maxDebugLines    = 20
	maxDiffHunkLines = 12
	maxAssociateLines = 5
)

// InstructionResult is the outcome of executing one Instruction: the
// (possibly rewritten — see RuntimeSqlExecutor) Instruction, the actual
// Response, an optional numeric score (Executable benchmarks), and an
// exception message. The trimmed line-lists used for comparison and diffing
// are derived on demand by expectedLines/actualLines.
type InstructionResult struct {
	Instruction Instruction
	Actual      Response
	Score       *float64
	Exception   string
}

// expectedLines/actualLines return the upper-case, whitespace-trimmed Normal
// message text used for comparison. Debug messages never participate.
func (r InstructionResult) expectedLines() []string {
	return normalLines(r.Instruction.ExpectedResponse())
}

func (r InstructionResult) actualLines() []string {
	return normalLines(r.Actual)
}

func normalLines(resp Response) []string {
	normal := resp.NormalOnly()
	out := make([]string, 0, len(normal))
	for _, m := range normal {
		out = append(out, strings.ToUpper(strings.TrimSpace(m.Message)))
	}
	return out
}

// Check reports whether the actual Response matches the expected Response.
// Debug messages are never compared.
func (r InstructionResult) Check() bool {
	if r.Exception != "" {
		return false
	}
	expected := r.expectedLines()
	actual := r.actualLines()
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return false
		}
	}
	return true
}

// ShowMessage renders the failure diagnostics for this result: up to
// maxDebugLines Debug lines from the actual response, then a unified-diff
// style comparison (up to maxDiffHunkLines lines) between expected and
// actual Normal messages.
func (r InstructionResult) ShowMessage() string {
	var b strings.Builder
	debug := r.Actual.DebugOnly()
	if len(debug) > 0 {
		b.WriteString("debug:\n")
		for i, m := range debug {
			if i >= maxDebugLines {
				b.WriteString("  ...\n")
				break
			}
			fmt.Fprintf(&b, "  %s\n", truncate(m.Message, 256))
		}
	}
	if r.Exception != "" {
		fmt.Fprintf(&b, "exception:\n  %s\n", truncate(r.Exception, 4096))
	}
	diffText := unifiedDiff(r.expectedLines(), r.actualLines())
	if diffText != "" {
		b.WriteString("diff:\n")
		b.WriteString(diffText)
	}
	return b.String()
}

func unifiedDiff(expected, actual []string) string {
	diff := difflib.UnifiedDiff{
		A:        expected,
		B:        actual,
		FromFile: "expected",
		ToFile:   "actual",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > maxDiffHunkLines {
		lines = lines[:maxDiffHunkLines]
		lines = append(lines, "...")
	}
	return strings.Join(lines, "\n") + "\n"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

// InstructionResultGroup is the per-InstructionGroup outcome: the results of
// every instruction executed before the group either completed or hit its
// first failure. len(Results) never exceeds len(group.Instructions).
type InstructionResultGroup struct {
	Group   *InstructionGroup
	Results []InstructionResult
}

// Check reports whether every result in the group passed.
func (g InstructionResultGroup) Check() bool {
	if len(g.Results) != len(g.Group.Instructions) {
		return false
	}
	for _, r := range g.Results {
		if !r.Check() {
			return false
		}
	}
	return true
}

// ShowMessage renders this group's failing instruction plus, for each
// associate group, up to maxAssociateLines lines of that earlier group's
// instruction requests as context.
func (g InstructionResultGroup) ShowMessage(owner *TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "group %q:\n", g.Group.Name)
	for _, idx := range g.Group.AssociateGroups {
		assoc, ok := owner.GroupByIndex(idx)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "associate group %q:\n", assoc.Name)
		for i, instr := range assoc.Instructions {
			if i >= maxAssociateLines {
				b.WriteString("  ...\n")
				break
			}
			fmt.Fprintf(&b, "  %s: %s\n", instr.Request().Tag, truncate(instr.Request().Payload, 200))
		}
	}
	if len(g.Results) > 0 {
		last := g.Results[len(g.Results)-1]
		if !last.Check() {
			fmt.Fprintf(&b, "request: %s %s\n", last.Instruction.Request().Tag, truncate(last.Instruction.Request().Payload, 200))
			b.WriteString(last.ShowMessage())
		}
	}
	return b.String()
}

// TestCaseResult is the outcome of running one TestCase: its ordered group
// results plus the two exception slots. A case passes iff both exception
// fields are empty and every group passed.
type TestCaseResult struct {
	Case           *TestCase
	GroupResults   []InstructionResultGroup
	UserException  string
	TestException  string
	CoreBacktrace  string
}

// Passed reports whether the case passed.
func (r TestCaseResult) Passed() bool {
	if r.UserException != "" || r.TestException != "" {
		return false
	}
	for _, g := range r.GroupResults {
		if !g.Check() {
			return false
		}
	}
	return true
}

// ShowMessage composes the full user-visible failure message: associate
// groups, failing instruction, debug lines, diff, optional exception text,
// optional core backtrace.
func (r TestCaseResult) ShowMessage() string {
	var b strings.Builder
	for _, g := range r.GroupResults {
		if !g.Check() {
			b.WriteString(g.ShowMessage(r.Case))
		}
	}
	if r.UserException != "" {
		fmt.Fprintf(&b, "user_exception: %s\n", truncate(r.UserException, 4096))
	}
	if r.TestException != "" {
		fmt.Fprintf(&b, "test_exception: %s\n", r.TestException)
	}
	if r.CoreBacktrace != "" {
		b.WriteString("core backtrace:\n")
		b.WriteString(r.CoreBacktrace)
	}
	return b.String()
}

// TestResult is the suite-level aggregate handed back to the Suite Runner's
// caller and to the Report CLI.
type TestResult struct {
	TaskID     string
	ReturnCode int
	Branch     string
	CommitID   string
	CaseResults []TestCaseResult
	Message    string
}

// Passed reports whether every case in the suite passed.
func (r TestResult) Passed() bool {
	for _, c := range r.CaseResults {
		if !c.Passed() {
			return false
		}
	}
	return true
}
