package instruction

import "testing"

func TestResponseMessageEqualCaseInsensitive(t *testing.T) {
	a := NewNormalMessage("success")
	b := NewNormalMessage("SUCCESS")
	if !a.Equal(b) {
		t.Fatalf("expected case-insensitive equality")
	}
}

func TestSortResponseDebugPrefixAndNormalOrder(t *testing.T) {
	resp := NewResponse(
		NewNormalMessage("b"),
		NewDebugMessage("# first debug"),
		NewNormalMessage("a"),
		NewDebugMessage("# second debug"),
		NewNormalMessage("c"),
	)
	sorted := SortResponse(resp)
	if len(sorted.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(sorted.Messages))
	}
	if sorted.Messages[0].Kind != Debug || sorted.Messages[0].Message != "# first debug" {
		t.Fatalf("expected first debug message preserved as prefix, got %+v", sorted.Messages[0])
	}
	if sorted.Messages[1].Kind != Debug || sorted.Messages[1].Message != "# second debug" {
		t.Fatalf("expected second debug message preserved as prefix, got %+v", sorted.Messages[1])
	}
	normals := sorted.Messages[2:]
	want := []string{"a", "b", "c"}
	for i, m := range normals {
		if m.Message != want[i] {
			t.Fatalf("normal messages not sorted: got %v, want %v", normals, want)
		}
	}
}

func TestSortResponseIdempotent(t *testing.T) {
	resp := NewResponse(NewNormalMessage("b"), NewNormalMessage("a"), NewDebugMessage("# d"))
	once := SortResponse(resp)
	twice := SortResponse(once)
	if len(once.Messages) != len(twice.Messages) {
		t.Fatalf("length changed across repeated sort")
	}
	for i := range once.Messages {
		if once.Messages[i] != twice.Messages[i] {
			t.Fatalf("sort not idempotent at index %d: %+v vs %+v", i, once.Messages[i], twice.Messages[i])
		}
	}
}

func TestRuntimeSqlBooleanExpectedLengthAndVocabulary(t *testing.T) {
	inst := NewRuntimeSql("INSERT INTO t VALUES (1)", ResultBoolean, false, "", 0)
	expected := NewResponse(NewNormalMessage("SUCCESS"))
	result := InstructionResult{Instruction: withExpected(inst, expected), Actual: expected}
	lines := result.expectedLines()
	if len(lines) != 1 {
		t.Fatalf("expected single expected line for boolean result, got %d", len(lines))
	}
	if lines[0] != "SUCCESS" && lines[0] != "FAILURE" {
		t.Fatalf("expected SUCCESS or FAILURE, got %q", lines[0])
	}
}

// withExpected rewrites a RuntimeSqlInstruction's expected response for
// tests, mirroring what RuntimeSqlExecutor produces at execution time.
func withExpected(r *RuntimeSqlInstruction, expected Response) Instruction {
	rewritten := NewSql(r.Request().Payload, expected, r.Timeout())
	return rewritten
}

func TestInstructionResultCheckIgnoresDebugMessages(t *testing.T) {
	expected := NewResponse(NewNormalMessage("1 | a"))
	actual := NewResponse(NewDebugMessage("# noise"), NewNormalMessage("1 | a"))
	inst := NewSql("SELECT * FROM t", expected, 0)
	result := InstructionResult{Instruction: inst, Actual: actual}
	if !result.Check() {
		t.Fatalf("expected check to pass: debug lines must never affect comparison")
	}
}

func TestInstructionResultCountNeverExceedsInstructionCount(t *testing.T) {
	group := &InstructionGroup{Name: "g"}
	group.AddSql("SELECT 1", NewResponse(NewNormalMessage("1")), 0)
	group.AddSql("SELECT 2", NewResponse(NewNormalMessage("2")), 0)

	resultGroup := InstructionResultGroup{
		Group: group,
		Results: []InstructionResult{
			{Instruction: group.Instructions[0], Actual: NewResponse(NewNormalMessage("1"))},
		},
	}
	if len(resultGroup.Results) > len(resultGroup.Group.Instructions) {
		t.Fatalf("more results than instructions in the group")
	}
	if resultGroup.Check() {
		t.Fatalf("partial result group (fewer results than instructions) must not report pass")
	}
}

func TestAddExecutionGroupRejectsForwardAssociateReference(t *testing.T) {
	tc := NewTestCase("basic")
	if _, err := tc.AddExecutionGroup("select", "create"); err == nil {
		t.Fatalf("expected error referencing a not-yet-declared group")
	}
}

func TestAddExecutionGroupAcceptsEarlierAssociateReference(t *testing.T) {
	tc := NewTestCase("basic")
	if _, err := tc.AddExecutionGroup("create"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tc.AddExecutionGroup("select", "create"); err != nil {
		t.Fatalf("unexpected error referencing earlier group: %v", err)
	}
}
