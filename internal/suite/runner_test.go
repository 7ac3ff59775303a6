package suite

import (
	"context"
	"testing"

	"miniobench/internal/config"
	"miniobench/internal/instruction"
)

func TestRunDryrunAggregatesPassingCases(t *testing.T) {
	tc := instruction.NewTestCase("passes")
	g, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("AddExecutionGroup: %v", err)
	}
	g.AddSql("SELECT 1", instruction.NewResponse(), 0)

	cfg := config.Config{Cases: config.CasesConfig{CaseTimeoutSeconds: 5}}
	result, err := Run(context.Background(), Options{
		Config: cfg,
		Cases:  []*instruction.TestCase{tc},
		Dryrun: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Passed() {
		t.Fatalf("expected suite to pass, got %s", result.CaseResults[0].ShowMessage())
	}
	if result.ReturnCode != 0 {
		t.Fatalf("expected return code 0, got %d", result.ReturnCode)
	}
}

func TestRunMarksSuiteFailedWhenAnyCaseFails(t *testing.T) {
	tc := instruction.NewTestCase("mismatch")
	g, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("AddExecutionGroup: %v", err)
	}
	g.AddSql("SELECT 1", instruction.NewResponse(instruction.NewNormalMessage("unexpected")), 0)

	cfg := config.Config{
		Cases:   config.CasesConfig{CaseTimeoutSeconds: 5},
		Storage: config.StorageConfig{OutputDir: t.TempDir()},
	}
	result, err := Run(context.Background(), Options{
		Config: cfg,
		Cases:  []*instruction.TestCase{tc},
		Dryrun: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Passed() || result.ReturnCode != 1 {
		t.Fatalf("expected a failed suite with return code 1, got passed=%v code=%d", result.Passed(), result.ReturnCode)
	}
}

func TestRunCatchesMalformedSqlAtValidationTime(t *testing.T) {
	tc := instruction.NewTestCase("typo")
	g, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("AddExecutionGroup: %v", err)
	}
	g.AddSql("SELEC 1", instruction.NewResponse(), 0)

	cfg := config.Config{Cases: config.CasesConfig{CaseTimeoutSeconds: 5}}
	result, err := Run(context.Background(), Options{
		Config: cfg,
		Cases:  []*instruction.TestCase{tc},
		Dryrun: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Passed() {
		t.Fatalf("expected malformed SQL to fail validation")
	}
	if result.CaseResults[0].TestException == "" {
		t.Fatalf("expected a test_exception for a harness-authoring typo, got none")
	}
}
