package executor

import (
	"context"
	"strings"

	"miniobench/internal/instruction"
	"miniobench/internal/oracle"
)

// executeRuntimeSql is the most intricate executor: it resolves its expected
// output dynamically by cross-checking the SUT against a reference engine
// instead of comparing against a fixed string. It executes the SUT payload,
// runs the oracle's statement, and rewrites the instruction to carry the
// oracle-derived expected lines:
//  1. Execute the SUT payload; split into Debug/Normal lines.
//  2. If RemoveHeader and ResultType==ResultSet and the Normal output is not
//     the single literal "FAILURE" (case-insensitive), drop the first
//     Normal line.
//  3. Execute the oracle payload.
//  4. Map to the expected-line list: boolean -> SUCCESS/FAILURE; result_set
//     -> [FAILURE] on oracle error, else rendered rows with optional header
//     removal.
//  5. Synthesize a static SqlInstruction carrying the oracle-derived
//     expected lines and return it as InstructionResult.Instruction — the
//     case is reported against the resolved expectation, not the dynamic
//     placeholder.
func executeRuntimeSql(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	rs, ok := inst.(*instruction.RuntimeSqlInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("runtimesql executor received non-RuntimeSqlInstruction")
	}

	client, err := ec.CurrentClient()
	if err != nil {
		return instruction.InstructionResult{}, NewTestException(err.Error())
	}

	sutOK, sutText := client.RunSQL(ctx, rs.Request().Payload, rs.Timeout())
	if !sutOK {
		return instruction.InstructionResult{}, NewUserException("failed to receive response from observer: " + sutText)
	}

	actual := splitResponseLines(sutText)
	actual = maybeRemoveHeader(actual, rs)

	oracleAdaptor := ec.Oracle()
	if oracleAdaptor == nil {
		return instruction.InstructionResult{}, NewTestException("runtime_sql instruction requires an oracle but none is configured")
	}
	result := oracleAdaptor.Execute(ctx, rs.OracleSQL())

	expectedLines := deriveExpectedLines(rs, result)
	expectedMsgs := make([]instruction.ResponseMessage, 0, len(expectedLines))
	for _, l := range expectedLines {
		expectedMsgs = append(expectedMsgs, instruction.NewNormalMessage(l))
	}
	resolved := instruction.NewSql(rs.Request().Payload, instruction.NewResponse(expectedMsgs...), rs.Timeout())

	return instruction.InstructionResult{
		Instruction: resolved,
		Actual:      actual,
	}, nil
}

func maybeRemoveHeader(resp instruction.Response, rs *instruction.RuntimeSqlInstruction) instruction.Response {
	if !rs.RemoveHeader || rs.ResultType != instruction.ResultSet {
		return resp
	}
	normal := resp.NormalOnly()
	if len(normal) == 1 && strings.EqualFold(strings.TrimSpace(normal[0].Message), "FAILURE") {
		return resp
	}
	debug := resp.DebugOnly()
	if len(normal) == 0 {
		return resp
	}
	rest := normal[1:]
	out := make([]instruction.ResponseMessage, 0, len(debug)+len(rest))
	out = append(out, debug...)
	out = append(out, rest...)
	return instruction.Response{Messages: out}
}

func deriveExpectedLines(rs *instruction.RuntimeSqlInstruction, result oracle.Result) []string {
	switch rs.ResultType {
	case instruction.ResultBoolean:
		if result.Err != nil {
			return []string{"FAILURE"}
		}
		return []string{"SUCCESS"}
	default:
		if result.Err != nil {
			return []string{"FAILURE"}
		}
		return result.FormatLines(rs.RemoveHeader)
	}
}
