package executor

import (
	"context"

	"miniobench/internal/instruction"
)

// executeRestart instructs the context to stop and restart the supervisor,
// then rebuild the default client. On failure to restart, a user_exception
// is raised carrying the crash backtrace if one was produced.
func executeRestart(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	backtrace, err := ec.RestartServer(ctx)
	if err != nil {
		msg := "failed to restart server: " + err.Error()
		if backtrace != "" {
			msg += "\n" + backtrace
		}
		return instruction.InstructionResult{}, NewUserException(msg)
	}
	return instruction.InstructionResult{Instruction: inst}, nil
}
