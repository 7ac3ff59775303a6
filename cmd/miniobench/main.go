// Command miniobench runs a suite of scripted cases against a compiled SUT
// binary, cross-checking dynamic results against a reference engine and
// reporting a pass/fail verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "miniobench/internal/cases"
	"miniobench/internal/config"
	"miniobench/internal/instruction"
	"miniobench/internal/runinfo"
	"miniobench/internal/suite"
	"miniobench/internal/util"

	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	casesFlag := flag.String("cases", "", "comma-separated registered case names to run (default: every registered case)")
	textDir := flag.String("text-cases", "", "directory of legacy .test/.result pairs to run in addition to registered cases")
	dryrun := flag.Bool("dryrun", false, "run against mocked server/client pairs, no real SUT or oracle")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := util.InitLogging(cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
	}
	defer util.CloseLogging()

	if data, err := yaml.Marshal(&cfg); err == nil {
		util.Detailf("config:\n%s", string(data))
	}
	logRunInfo()

	names := suite.Names()
	if *casesFlag != "" {
		names = splitCommaList(*casesFlag)
	}
	cases, err := suite.Build(names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve cases: %v\n", err)
		os.Exit(1)
	}
	if *textDir != "" {
		textCases, err := suite.LoadTextCases(*textDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load text cases from %s: %v\n", *textDir, err)
			os.Exit(1)
		}
		cases = append(cases, textCases...)
	}
	if len(cases) == 0 {
		fmt.Fprintln(os.Stderr, "no cases selected")
		os.Exit(1)
	}

	util.Infof("running %d case(s), dryrun=%t", len(cases), *dryrun)
	result, err := suite.Run(context.Background(), suite.Options{
		Config: cfg,
		Cases:  cases,
		Dryrun: *dryrun,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "suite run failed: %v\n", err)
		os.Exit(1)
	}

	printSummary(result)
	os.Exit(result.ReturnCode)
}

func printSummary(result instruction.TestResult) {
	passed := 0
	for _, c := range result.CaseResults {
		if c.Passed() {
			passed++
		}
	}
	util.Infof("%d/%d case(s) passed", passed, len(result.CaseResults))
	if result.Passed() {
		return
	}
	for _, c := range result.CaseResults {
		if !c.Passed() {
			util.Errorf("case %s failed:\n%s", c.Case.Name, c.ShowMessage())
		}
	}
}

func logRunInfo() {
	info := runinfo.FromEnv()
	if info == nil || info.IsZero() {
		return
	}
	util.Infof("run info: ci=%t provider=%s branch=%s commit=%s",
		info.CI, info.Provider, info.Branch, info.Commit)
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
