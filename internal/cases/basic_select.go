package cases

import (
	"miniobench/internal/instruction"
	"miniobench/internal/suite"
)

func init() {
	suite.Register("basic_select", buildBasicSelect)
}

// buildBasicSelect checks the simplest possible round trip: one connection,
// one statement, one static expected line.
func buildBasicSelect() *instruction.TestCase {
	tc := instruction.NewTestCase("basic_select")
	tc.Description = "a single SELECT against the default connection"

	main, _ := tc.AddExecutionGroup("main")
	main.AddSql("CREATE TABLE t (id INT PRIMARY KEY, name VARCHAR(32))", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	main.AddSql("INSERT INTO t VALUES (1, 'alice')", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	main.AddSql("SELECT id, name FROM t WHERE id = 1", instruction.NewResponse(
		instruction.NewNormalMessage("id | name"),
		instruction.NewNormalMessage("1 | alice"),
	), 0)

	return tc
}
