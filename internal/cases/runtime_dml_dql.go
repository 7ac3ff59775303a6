package cases

import (
	"miniobench/internal/instruction"
	"miniobench/internal/suite"
)

func init() {
	suite.Register("runtime_dml_dql", buildRuntimeDmlDql)
}

// buildRuntimeDmlDql drives DDL/DML/DQL through the oracle rather than a
// fixed expected string, so the case stays correct if the SUT's row
// ordering or cell formatting shifts in a way the oracle also reflects.
func buildRuntimeDmlDql() *instruction.TestCase {
	tc := instruction.NewTestCase("runtime_dml_dql")
	tc.Description = "DDL/DML/DQL verified dynamically against the reference engine"
	tc.NeedMysql = true

	main, _ := tc.AddExecutionGroup("main")
	main.AddRuntimeDDL("CREATE TABLE orders (id INT PRIMARY KEY, amount DECIMAL(10,2))")
	main.AddRuntimeDML("INSERT INTO orders VALUES (1, 9.995), (2, 3.005)")
	main.AddSortRuntimeDQL("SELECT id, amount FROM orders")

	return tc
}
