package executor

import (
	"context"
	"regexp"
	"strconv"

	"miniobench/internal/instruction"
)

var (
	recallPattern = regexp.MustCompile(`(?i)recall[^0-9]*([0-9]+(?:\.[0-9]+)?)`)
	qpsPattern    = regexp.MustCompile(`(?i)qps[^0-9]*([0-9]+(?:\.[0-9]+)?)`)
	tpsPattern    = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*txn/s`)
)

// executeExecutable runs a host-side binary with a timeout. Non-zero exit
// is a user_exception carrying the truncated stdout+stderr. AnnBm and Tpcc
// variants additionally parse a trailing metric from the captured output
// and enforce their acceptance thresholds.
func executeExecutable(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	exe, ok := inst.(*instruction.ExecutableInstruction)
	if !ok {
		return instruction.InstructionResult{}, NewTestException("executable executor received non-ExecutableInstruction")
	}

	exitCode, output, err := ec.RunExecutable(ctx, exe.Request().Payload, exe.Args, exe.Timeout())
	if err != nil {
		return instruction.InstructionResult{}, NewUserException("failed to run executable " + exe.Request().Payload + ": " + err.Error())
	}
	if exitCode != 0 {
		return instruction.InstructionResult{}, NewUserException(truncate(output, 4096))
	}

	var score *float64
	switch exe.Kind_ {
	case instruction.ExecutableAnnBm:
		recall, recallOK := parseMetric(recallPattern, output)
		qps, qpsOK := parseMetric(qpsPattern, output)
		if !recallOK || !qpsOK {
			return instruction.InstructionResult{}, NewUserException("could not parse recall/qps from benchmark output")
		}
		if recall < exe.MinRecall || qps < exe.MinQPS {
			return instruction.InstructionResult{}, NewUserException(
				"ann benchmark below threshold: recall=" + strconv.FormatFloat(recall, 'f', -1, 64) +
					" qps=" + strconv.FormatFloat(qps, 'f', -1, 64))
		}
		score = &qps
	case instruction.ExecutableTpcc:
		tps, tpsOK := parseMetric(tpsPattern, output)
		if !tpsOK {
			return instruction.InstructionResult{}, NewUserException("could not parse txn/s from tpcc output")
		}
		if tps < exe.MinThroughput {
			return instruction.InstructionResult{}, NewUserException("tpcc throughput below threshold: " + strconv.FormatFloat(tps, 'f', -1, 64))
		}
		score = &tps
	}

	return instruction.InstructionResult{Instruction: exe, Score: score}, nil
}

func parseMetric(re *regexp.Regexp, output string) (float64, bool) {
	all := re.FindAllStringSubmatch(output, -1)
	if len(all) == 0 {
		return 0, false
	}
	m := all[len(all)-1]
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
