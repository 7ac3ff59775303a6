package executor

import (
	"context"
	"time"

	"miniobench/internal/instruction"
)

// executeConnect creates a new named client connection via the context.
func executeConnect(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	connect, ok := inst.(*instruction.ConnectInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("connect executor received non-ConnectInstruction")
	}
	if err := ec.CreateClient(ctx, connect.ClientName); err != nil {
		return instruction.InstructionResult{}, NewUserException("failed to create connection " + connect.ClientName + ": " + err.Error())
	}
	return instruction.InstructionResult{Instruction: inst}, nil
}

// executeConnection switches the current client pointer. It sleeps 2s
// after the switch to give the peer time to settle a freshly established
// session.
func executeConnection(_ context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	conn, ok := inst.(*instruction.ConnectionInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("connection executor received non-ConnectionInstruction")
	}
	if err := ec.SetCurrentClient(conn.ClientName); err != nil {
		return instruction.InstructionResult{}, NewUserException("failed to switch connection to " + conn.ClientName + ": " + err.Error())
	}
	time.Sleep(2 * time.Second)
	return instruction.InstructionResult{Instruction: inst}, nil
}
