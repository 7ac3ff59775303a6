package cases

import (
	"miniobench/internal/instruction"
	"miniobench/internal/suite"
)

func init() {
	suite.Register("connection_isolation", buildConnectionIsolation)
}

// buildConnectionIsolation opens a second connection and checks that an
// uncommitted row on the default connection stays invisible to it, then
// switches back to confirm the default connection still sees its own write.
func buildConnectionIsolation() *instruction.TestCase {
	tc := instruction.NewTestCase("connection_isolation")
	tc.Description = "a second session must not see the first session's uncommitted write"

	setup, _ := tc.AddExecutionGroup("setup")
	setup.AddSql("CREATE TABLE visibility (id INT PRIMARY KEY)", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	setup.AddSql("BEGIN", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	setup.AddSql("INSERT INTO visibility VALUES (1)", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)

	isolated, _ := tc.AddExecutionGroup("isolated", "setup")
	isolated.AddConnect("second")
	isolated.AddConnection("second")
	isolated.AddSql("SELECT COUNT(*) FROM visibility", instruction.NewResponse(
		instruction.NewNormalMessage("count(*)"),
		instruction.NewNormalMessage("0"),
	), 0)

	backOnFirst, _ := tc.AddExecutionGroup("back_on_first", "setup")
	backOnFirst.AddConnection("default")
	backOnFirst.AddSql("SELECT COUNT(*) FROM visibility", instruction.NewResponse(
		instruction.NewNormalMessage("count(*)"),
		instruction.NewNormalMessage("1"),
	), 0)
	backOnFirst.AddSql("COMMIT", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)

	return tc
}
