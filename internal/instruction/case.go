package instruction

import (
	"fmt"
	"time"
)

// InstructionGroup is a named ordered list of Instructions plus a list of
// associate groups: earlier groups (referenced by index into the owning
// TestCase's group slice, never by pointer — a lookup, not an ownership
// relation) whose contents are attached to a later failure report as
// context.
type InstructionGroup struct {
	Name            string
	Instructions    []Instruction
	AssociateGroups []int
}

// Add appends an instruction to the group and returns the group, so callers
// can chain add calls to build a case in one fluent expression.
func (g *InstructionGroup) Add(i Instruction) *InstructionGroup {
	g.Instructions = append(g.Instructions, i)
	return g
}

// AddEcho appends an EchoInstruction.
func (g *InstructionGroup) AddEcho(payload string) *InstructionGroup {
	return g.Add(NewEcho(payload))
}

// AddSql appends a SqlInstruction with a static expected response.
func (g *InstructionGroup) AddSql(sql string, expected Response, timeout int) *InstructionGroup {
	return g.Add(NewSql(sql, expected, secondsOrDefault(timeout)))
}

// AddSortSql appends a Sort-wrapped SqlInstruction.
func (g *InstructionGroup) AddSortSql(sql string, expected Response, timeout int) *InstructionGroup {
	return g.Add(NewSort(NewSql(sql, expected, secondsOrDefault(timeout))))
}

// AddRuntimeDDL appends a RuntimeSqlInstruction whose result is a boolean
// success/failure verdict from the oracle (DDL has no row output to compare).
func (g *InstructionGroup) AddRuntimeDDL(sql string) *InstructionGroup {
	return g.Add(NewRuntimeSql(sql, ResultBoolean, false, "", 0))
}

// AddRuntimeDML appends a RuntimeSqlInstruction whose result is a boolean
// success/failure verdict from the oracle.
func (g *InstructionGroup) AddRuntimeDML(sql string) *InstructionGroup {
	return g.Add(NewRuntimeSql(sql, ResultBoolean, false, "", 0))
}

// AddRuntimeDQL appends a RuntimeSqlInstruction whose result is the oracle's
// rendered result set, header included.
func (g *InstructionGroup) AddRuntimeDQL(sql string) *InstructionGroup {
	return g.Add(NewRuntimeSql(sql, ResultSet, false, "", 0))
}

// AddSortRuntimeDQL appends a Sort-wrapped result-set RuntimeSqlInstruction
// with its header stripped, for queries whose row order is unspecified.
func (g *InstructionGroup) AddSortRuntimeDQL(sql string) *InstructionGroup {
	return g.Add(NewSort(NewRuntimeSql(sql, ResultSet, true, "", 0)))
}

// AddEnsureSql appends an EnsureSqlInstruction.
func (g *InstructionGroup) AddEnsureSql(sql, predicate string) *InstructionGroup {
	return g.Add(NewEnsureSql(sql, predicate, 0))
}

// AddConnect appends a ConnectInstruction opening a new named connection.
func (g *InstructionGroup) AddConnect(clientName string) *InstructionGroup {
	return g.Add(NewConnect(clientName))
}

// AddConnection appends a ConnectionInstruction switching the current
// connection to an already-open clientName.
func (g *InstructionGroup) AddConnection(clientName string) *InstructionGroup {
	return g.Add(NewConnection(clientName))
}

// AddRestart appends a RestartInstruction.
func (g *InstructionGroup) AddRestart(force bool) *InstructionGroup {
	return g.Add(NewRestart(force))
}

// AddUnittest appends a unittest ExecutableInstruction.
func (g *InstructionGroup) AddUnittest(binary string, args []string, timeoutSeconds int) *InstructionGroup {
	return g.Add(NewExecutable(ExecutableUnittest, binary, args, secondsOrDefault(timeoutSeconds)))
}

// AddAnnBm appends an ANN-benchmark ExecutableInstruction with recall/QPS
// acceptance thresholds.
func (g *InstructionGroup) AddAnnBm(binary string, args []string, minRecall, minQPS float64, timeoutSeconds int) *InstructionGroup {
	e := NewExecutable(ExecutableAnnBm, binary, args, secondsOrDefault(timeoutSeconds))
	e.MinRecall = minRecall
	e.MinQPS = minQPS
	return g.Add(e)
}

// AddTpcc appends a TPCC-benchmark ExecutableInstruction with a minimum
// transactions-per-second acceptance threshold.
func (g *InstructionGroup) AddTpcc(binary string, args []string, minThroughput float64, timeoutSeconds int) *InstructionGroup {
	e := NewExecutable(ExecutableTpcc, binary, args, secondsOrDefault(timeoutSeconds))
	e.MinThroughput = minThroughput
	return g.Add(e)
}

// AddBlockSql parses a multi-line blob: the first non-empty line is the
// SQL, remaining non-empty lines are the expected result lines.
func (g *InstructionGroup) AddBlockSql(blob string) *InstructionGroup {
	sql, expected := splitBlockSql(blob)
	return g.AddSql(sql, expected, 0)
}

// AddSortBlockSql is AddBlockSql wrapped in a SortInstruction.
func (g *InstructionGroup) AddSortBlockSql(blob string) *InstructionGroup {
	sql, expected := splitBlockSql(blob)
	return g.AddSortSql(sql, expected, 0)
}

func splitBlockSql(blob string) (string, Response) {
	var sql string
	var lines []string
	for _, raw := range splitNonEmptyLines(blob) {
		if sql == "" {
			sql = raw
			continue
		}
		lines = append(lines, raw)
	}
	msgs := make([]ResponseMessage, 0, len(lines))
	for _, l := range lines {
		msgs = append(msgs, NewNormalMessage(l))
	}
	return sql, NewResponse(msgs...)
}

func secondsOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// TestCase is a named suite of instruction groups plus server-side knobs.
type TestCase struct {
	Name            string
	Description     string
	Groups          []*InstructionGroup
	NeedObserver    bool
	NeedMysql       bool
	TrxModel        string
	Protocol        string
	StorageEngine   string
}

// NewTestCase constructs an empty TestCase.
func NewTestCase(name string) *TestCase {
	return &TestCase{Name: name, NeedObserver: true}
}

// AddExecutionGroup appends a new named InstructionGroup, validating that
// every associateGroup name refers to a group already present earlier in
// Groups: an associate-group reference can only point backwards.
func (c *TestCase) AddExecutionGroup(name string, associateGroups ...string) (*InstructionGroup, error) {
	indices := make([]int, 0, len(associateGroups))
	for _, want := range associateGroups {
		idx := -1
		for i, g := range c.Groups {
			if g.Name == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("miniobench: associate group %q must appear earlier than group %q", want, name)
		}
		indices = append(indices, idx)
	}
	group := &InstructionGroup{Name: name, AssociateGroups: indices}
	c.Groups = append(c.Groups, group)
	return group, nil
}

// GroupByIndex resolves an associate-group index into its InstructionGroup.
// It is a lookup, never an owning reference.
func (c *TestCase) GroupByIndex(i int) (*InstructionGroup, bool) {
	if i < 0 || i >= len(c.Groups) {
		return nil, false
	}
	return c.Groups[i], true
}
