package executor

import (
	"context"

	"miniobench/internal/instruction"
)

// executeEcho wraps the payload as a single Normal message. Never fails.
func executeEcho(_ context.Context, inst instruction.Instruction, _ ExecuteContext) (instruction.InstructionResult, error) {
	payload := inst.Request().Payload
	return instruction.InstructionResult{
		Instruction: inst,
		Actual:      instruction.NewResponse(instruction.NewNormalMessage(payload)),
	}, nil
}
