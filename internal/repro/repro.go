// Package repro replays a saved case artifact's SQL statements against a
// live SUT and oracle pair, for manual debugging of a failure that a suite
// run already reported.
package repro

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"miniobench/internal/oracle"
	"miniobench/internal/wireclient"
)

// StatementsFile is the name of the file a CaseArtifact stores its ordered
// SQL statements in, one per split by splitSQL.
const StatementsFile = "statements.sql"

// Options configures a reproduction run.
type Options struct {
	CaseDir     string
	SUTAddr     wireclient.Addr
	DialTimeout time.Duration
	OracleDSN   string
	OracleDB    string
}

// Run replays every statement in the case directory against both the SUT
// and the oracle, printing each statement followed by the SUT's output and
// then the oracle's output.
func Run(ctx context.Context, opts Options) error {
	if opts.CaseDir == "" {
		return fmt.Errorf("case_dir is required")
	}
	if opts.OracleDB == "" {
		opts.OracleDB = "miniobench_repro"
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}

	statements, err := readStatements(opts.CaseDir)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		return fmt.Errorf("no statements found in %s", filepath.Join(opts.CaseDir, StatementsFile))
	}

	client, err := wireclient.Dial(opts.SUTAddr, opts.DialTimeout)
	if err != nil {
		return fmt.Errorf("dial sut: %w", err)
	}
	defer client.Close()

	adaptor := oracle.New(oracle.Config{DSN: opts.OracleDSN, Database: opts.OracleDB})
	if err := adaptor.Init(ctx, "default"); err != nil {
		return fmt.Errorf("init oracle: %w", err)
	}
	defer adaptor.Close()

	for i, stmt := range statements {
		fmt.Printf("--- statement %d ---\n%s\n", i+1, stmt)
		ok, sutText := client.RunSQL(ctx, stmt, opts.DialTimeout)
		if !ok {
			fmt.Printf("sut: failed: %s\n", sutText)
		} else {
			fmt.Printf("sut:\n%s\n", sutText)
		}
		result := adaptor.Execute(ctx, stmt)
		if result.Err != nil {
			fmt.Printf("oracle: failed: %v\n", result.Err)
		} else {
			fmt.Printf("oracle:\n%s\n", strings.Join(result.FormatLines(false), "\n"))
		}
	}
	return nil
}

func readStatements(caseDir string) ([]string, error) {
	content, err := os.ReadFile(filepath.Join(caseDir, StatementsFile))
	if err != nil {
		return nil, err
	}
	return splitSQL(string(content)), nil
}
