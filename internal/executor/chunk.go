package executor

import (
	"context"

	"miniobench/internal/instruction"
)

// executeChunk runs the legacy text-loader instruction: the entire
// `<name>.test` body is sent verbatim to the current client, and the
// response is compared by InstructionResult.Check (Normal lines, upper-cased
// and whitespace-trimmed) against the static expected lines parsed from
// `<name>.result` (instruction.NewChunk already carries them).
func executeChunk(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	client, err := ec.CurrentClient()
	if err != nil {
		return instruction.InstructionResult{}, NewTestException(err.Error())
	}

	ok, text := client.RunSQL(ctx, inst.Request().Payload, inst.Timeout())
	if !ok {
		return instruction.InstructionResult{}, NewUserException("failed to receive response from observer: " + text)
	}

	return instruction.InstructionResult{
		Instruction: inst,
		Actual:      splitResponseLines(text),
	}, nil
}
