package suite

import (
	"context"
	"fmt"
	"time"

	"miniobench/internal/caseexec"
	"miniobench/internal/config"
	"miniobench/internal/instruction"
	"miniobench/internal/oracle"
	"miniobench/internal/report"
	"miniobench/internal/runinfo"
	"miniobench/internal/supervisor"
	"miniobench/internal/uploader"
	"miniobench/internal/util"
	"miniobench/internal/validator"
	"miniobench/internal/wireclient"
)

// Options configures one suite run.
type Options struct {
	Config   config.Config
	Cases    []*instruction.TestCase
	Dryrun   bool
	Uploader uploader.Uploader

	// ArchiveOnPass, when true, writes a CaseArtifact for every case, not
	// only failing ones. Overrides Config.Storage.OnPass when set.
	ArchiveOnPass *bool
}

// Run executes every case in order, aggregating their results into one
// TestResult. It never returns a non-nil error for a case failure — that is
// recorded in the result — only for a harness-internal problem that
// prevented the suite from running at all (e.g. a suite-level initiator
// failing).
func Run(ctx context.Context, opts Options) (instruction.TestResult, error) {
	result := instruction.TestResult{}
	if info := runinfo.FromEnv(); info != nil {
		result.Branch = info.Branch
		result.CommitID = info.Commit
	}

	if err := runInitiators(); err != nil {
		result.ReturnCode = 1
		result.Message = "suite initiator failed: " + err.Error()
		return result, err
	}

	rep := report.New(opts.Config.Storage.OutputDir)
	uploaderImpl := opts.Uploader
	if uploaderImpl == nil {
		uploaderImpl = chooseUploader(opts.Config.Storage)
	}
	archiveOnPass := opts.Config.Storage.OnPass
	if opts.ArchiveOnPass != nil {
		archiveOnPass = *opts.ArchiveOnPass
	}

	validate := validator.New().Validate

	for _, tc := range opts.Cases {
		if err := instruction.ValidateSyntax(tc, validate); err != nil {
			caseResult := instruction.TestCaseResult{Case: tc, TestException: err.Error()}
			result.CaseResults = append(result.CaseResults, caseResult)
			util.Errorf("case %s: %s", tc.Name, err.Error())
			continue
		}

		caseResult := runOneCase(ctx, opts.Config, tc, opts.Dryrun, validate)
		result.CaseResults = append(result.CaseResults, caseResult)

		if caseResult.Passed() {
			util.Infof("case %s: passed", tc.Name)
		} else {
			util.Warnf("case %s: failed\n%s", tc.Name, caseResult.ShowMessage())
		}

		if !opts.Dryrun && (archiveOnPass || !caseResult.Passed()) {
			if err := archiveCase(ctx, rep, uploaderImpl, caseResult); err != nil {
				util.Errorf("case %s: failed to write artifact: %s", tc.Name, err.Error())
			}
		}
	}

	if !result.Passed() {
		result.ReturnCode = 1
	}
	return result, nil
}

func runOneCase(ctx context.Context, cfg config.Config, tc *instruction.TestCase, dryrun bool, validate func(string) error) instruction.TestCaseResult {
	timeout := time.Duration(cfg.Cases.CaseTimeoutSeconds) * time.Second
	caseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialAddr := wireclient.UnixAddr(cfg.SUT.UnixSocket)
	if cfg.SUT.UnixSocket == "" {
		dialAddr = wireclient.TCPAddr(fmt.Sprintf("127.0.0.1:%d", cfg.SUT.TCPPort))
	}

	execCfg := caseexec.Config{
		Supervisor: supervisor.Config{
			ExecutablePath: cfg.SUT.ExecutablePath,
			ConfigFile:     cfg.SUT.ConfigFile,
			DataDir:        cfg.SUT.DataDir,
			CorePath:       cfg.SUT.CorePath,
			UnixSocket:     cfg.SUT.UnixSocket,
			TCPPort:        cfg.SUT.TCPPort,
			TrxModel:       tc.TrxModel,
			Protocol:       tc.Protocol,
			StorageEngine:  tc.StorageEngine,
		},
		DialAddr:    dialAddr,
		DialTimeout: time.Duration(cfg.SUT.DialTimeoutSeconds) * time.Second,
		Validate:    validate,
	}
	if tc.NeedMysql {
		execCfg.Oracle = &oracle.Config{DSN: cfg.Oracle.DSN, Database: cfg.Oracle.Database}
	}

	ce := caseexec.New(execCfg, tc)
	var (
		result instruction.TestCaseResult
		err    error
	)
	if dryrun {
		result, err = ce.Dryrun(caseCtx)
	} else {
		result, err = ce.Execute(caseCtx)
	}
	if err != nil {
		result.TestException = err.Error()
	}
	if caseCtx.Err() == context.DeadlineExceeded && result.TestException == "" && result.UserException == "" {
		result.TestException = fmt.Sprintf("case exceeded its %s timeout", timeout)
	}
	return result
}

func archiveCase(ctx context.Context, rep *report.Reporter, up uploader.Uploader, result instruction.TestCaseResult) error {
	c, err := rep.NewCase()
	if err != nil {
		return err
	}

	summary := report.Summary{
		CaseName:      result.Case.Name,
		Passed:        result.Passed(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Message:       result.ShowMessage(),
		UserException: result.UserException,
		TestException: result.TestException,
		CoreBacktrace: result.CoreBacktrace,
	}

	var statements []string
	for _, g := range result.GroupResults {
		for _, r := range g.Results {
			statements = append(statements, r.Instruction.Request().Payload)
		}
	}
	if err := rep.WriteStatements(c, statements); err != nil {
		return err
	}
	if err := rep.WriteText(c, "message.txt", summary.Message); err != nil {
		return err
	}

	archiveName, codec, err := rep.WriteCaseArchive(c)
	if err != nil {
		return err
	}
	summary.ArchiveName = archiveName
	summary.ArchiveCodec = codec

	if up != nil && up.Enabled() {
		location, err := up.UploadDir(ctx, c.Dir)
		if err != nil {
			util.Errorf("case %s: upload failed: %s", result.Case.Name, err.Error())
		} else {
			summary.UploadLocation = location
		}
	}

	return rep.WriteSummary(c, summary)
}

func chooseUploader(cfg config.StorageConfig) uploader.Uploader {
	if cfg.S3.Enabled {
		if u, err := uploader.NewS3(cfg.S3); err == nil {
			return u
		}
	}
	if cfg.GCS.Enabled {
		if u, err := uploader.NewGCS(cfg.GCS); err == nil {
			return u
		}
	}
	return uploader.NoopUploader{}
}
