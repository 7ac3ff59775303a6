package executor

import (
	"context"
	"fmt"
	"strings"

	"miniobench/internal/instruction"
)

// predicateSpec names the operator token to count and the exact count the
// predicate requires.
type predicateSpec struct {
	token string
	count int
}

var predicates = map[string]predicateSpec{
	"ensure:hashjoin":   {token: "HASH_JOIN", count: 1},
	"ensure:hashjoin*2": {token: "HASH_JOIN", count: 2},
	"ensure:hashjoin*4": {token: "HASH_JOIN", count: 4},
	"ensure:nlj":        {token: "NESTED_LOOP_JOIN", count: 1},
	"ensure:nlj*2":      {token: "NESTED_LOOP_JOIN", count: 2},
}

// executeEnsureSql issues the EXPLAIN request already baked into the
// instruction's payload by instruction.NewEnsureSql, then evaluates the
// structural predicate against the returned plan text: the operator token
// must occur exactly the predicate's fixed count. Mismatch is a
// user_exception; success produces an empty Response.
func executeEnsureSql(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	ensure, ok := inst.(*instruction.EnsureSqlInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("ensuresql executor received non-EnsureSqlInstruction")
	}

	spec, ok := predicates[ensure.Predicate]
	if !ok {
		return instruction.InstructionResult{}, NewTestException(fmt.Sprintf("unknown ensure predicate %q", ensure.Predicate))
	}

	client, err := ec.CurrentClient()
	if err != nil {
		return instruction.InstructionResult{}, NewTestException(err.Error())
	}

	ok2, text := client.RunSQL(ctx, ensure.Request().Payload, ensure.Timeout())
	if !ok2 {
		return instruction.InstructionResult{}, NewUserException("failed to receive response from observer: " + text)
	}

	got := strings.Count(text, spec.token)
	if got != spec.count {
		return instruction.InstructionResult{}, NewUserException(
			fmt.Sprintf("failed to ensure sql: predicate %q expected %d occurrences of %s, got %d", ensure.Predicate, spec.count, spec.token, got))
	}

	return instruction.InstructionResult{Instruction: ensure}, nil
}
