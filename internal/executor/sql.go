package executor

import (
	"context"
	"strings"

	"miniobench/internal/instruction"
)

// executeSql calls the current client's RunSQL. A non-ok return surfaces as
// a user_exception. The response text is split into lines; lines prefixed
// with '#' become Debug messages, the rest Normal.
func executeSql(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
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

// splitResponseLines splits raw response text into a Response: lines
// beginning with '#' are Debug, all others Normal, including blank lines
// between rows — a blank line is a real row the comparison must see, not
// noise to discard. An entirely empty response yields no messages at all.
func splitResponseLines(text string) instruction.Response {
	if text == "" {
		return instruction.NewResponse()
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	msgs := make([]instruction.ResponseMessage, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			msgs = append(msgs, instruction.NewDebugMessage(line))
		} else {
			msgs = append(msgs, instruction.NewNormalMessage(line))
		}
	}
	return instruction.NewResponse(msgs...)
}
