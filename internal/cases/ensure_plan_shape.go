package cases

import (
	"miniobench/internal/instruction"
	"miniobench/internal/suite"
)

func init() {
	suite.Register("ensure_plan_shape", buildEnsurePlanShape)
}

// buildEnsurePlanShape checks that a join between two indexed tables
// actually picks a hash join, catching an optimizer regression that a plain
// row-count comparison would miss entirely.
func buildEnsurePlanShape() *instruction.TestCase {
	tc := instruction.NewTestCase("ensure_plan_shape")
	tc.Description = "structural plan-shape check via EXPLAIN"
	tc.NeedMysql = true

	main, _ := tc.AddExecutionGroup("main")
	main.AddRuntimeDDL("CREATE TABLE lhs (id INT PRIMARY KEY, val INT)")
	main.AddRuntimeDDL("CREATE TABLE rhs (id INT PRIMARY KEY, val INT)")
	main.AddEnsureSql("SELECT * FROM lhs JOIN rhs ON lhs.id = rhs.id", "ensure:hashjoin")

	return tc
}
