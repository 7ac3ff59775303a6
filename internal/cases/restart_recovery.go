package cases

import (
	"miniobench/internal/instruction"
	"miniobench/internal/suite"
)

func init() {
	suite.Register("restart_recovery", buildRestartRecovery)
}

// buildRestartRecovery writes a row, restarts the SUT, and checks the row
// survived — the one scenario that exercises the Case Executor's server
// restart path end to end instead of only its happy-path connection reuse.
func buildRestartRecovery() *instruction.TestCase {
	tc := instruction.NewTestCase("restart_recovery")
	tc.Description = "a committed write must survive a graceful server restart"

	before, _ := tc.AddExecutionGroup("before_restart")
	before.AddSql("CREATE TABLE durable (id INT PRIMARY KEY)", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	before.AddSql("INSERT INTO durable VALUES (1)", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)

	restart, _ := tc.AddExecutionGroup("restart", "before_restart")
	restart.AddRestart(false)

	after, _ := tc.AddExecutionGroup("after_restart", "before_restart")
	after.AddSql("SELECT COUNT(*) FROM durable", instruction.NewResponse(
		instruction.NewNormalMessage("count(*)"),
		instruction.NewNormalMessage("1"),
	), 0)

	return tc
}
