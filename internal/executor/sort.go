package executor

import (
	"context"

	"miniobench/internal/instruction"
)

// executeSort delegates to the wrapped instruction's executor, then
// applies the canonical sort (instruction.SortResponse) to both the
// expected and received messages — Debug messages keep their relative
// order as a preserved prefix, Normal messages are sorted by upper-case
// lexicographic key.
func executeSort(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	wrapper, ok := inst.(*instruction.SortInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("sort executor received non-SortInstruction")
	}

	registry := New()
	inner, err := registry.Execute(ctx, wrapper.Wrapped, ec)
	if err != nil {
		return instruction.InstructionResult{}, err
	}

	sortedExpected := instruction.SortResponse(inner.Instruction.ExpectedResponse())
	sortedActual := instruction.SortResponse(inner.Actual)

	resolved := instruction.NewSql(inner.Instruction.Request().Payload, sortedExpected, inner.Instruction.Timeout())
	return instruction.InstructionResult{
		Instruction: resolved,
		Actual:      sortedActual,
		Score:       inner.Score,
	}, nil
}
