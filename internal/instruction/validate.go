package instruction

import "fmt"

// ValidateSyntax runs validate against every Sql/RuntimeSql/EnsureSql
// payload in the case, so a case-authoring typo is caught once at load
// time instead of surfacing mid-run as a confusing protocol mismatch. The
// caller supplies validate (typically *validator.Validator.Validate) so
// this package never has to import a SQL parser of its own.
func ValidateSyntax(c *TestCase, validate func(sql string) error) error {
	if validate == nil {
		return nil
	}
	for _, g := range c.Groups {
		for _, inst := range g.Instructions {
			if err := validateInstruction(inst, validate); err != nil {
				return fmt.Errorf("case %q, group %q: %w", c.Name, g.Name, err)
			}
		}
	}
	return nil
}

func validateInstruction(inst Instruction, validate func(sql string) error) error {
	switch v := inst.(type) {
	case *SqlInstruction:
		return validate(v.Request().Payload)
	case *RuntimeSqlInstruction:
		return validate(v.OracleSQL())
	case *EnsureSqlInstruction:
		return validate(v.Request().Payload)
	case *SortInstruction:
		return validateInstruction(v.Wrapped, validate)
	default:
		return nil
	}
}
