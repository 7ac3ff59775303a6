// Package caseexec drives one TestCase through its full lifecycle: server
// start, default connection, oracle init, group-by-group execution with
// fail-fast semantics, diagnostics composition, and unconditional teardown.
package caseexec

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"miniobench/internal/executor"
	"miniobench/internal/instruction"
	"miniobench/internal/oracle"
	"miniobench/internal/supervisor"
	"miniobench/internal/wireclient"
)

const defaultClientName = "default"

// serverController is the subset of *supervisor.Supervisor's contract the
// case executor depends on; dryrun substitutes a fake satisfying the same
// interface instead of subclassing.
type serverController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	StopAll() error
	CoredumpInfo() (string, error)
	Clean() error
}

// clientConn is the subset of *wireclient.Client's contract the case
// executor depends on.
type clientConn interface {
	RunSQL(ctx context.Context, sql string, totalTimeout time.Duration) (bool, string)
	Close() error
}

// Config wires together everything one case run needs to reach a live SUT
// and (optionally) an oracle.
type Config struct {
	Supervisor  supervisor.Config
	DialAddr    wireclient.Addr
	DialTimeout time.Duration
	Oracle      *oracle.Config

	// Validate, when set, is wired into the oracle adaptor so every
	// statement is parsed before it reaches the reference connection.
	Validate func(sql string) error
}

// CaseExecutor runs exactly one TestCase per instance.
type CaseExecutor struct {
	cfg      Config
	tc       *instruction.TestCase
	registry executor.Registry

	newServer func(supervisor.Config) serverController
	newClient func(wireclient.Addr, time.Duration) (clientConn, error)
	runExec   func(ctx context.Context, binary string, args []string, timeout time.Duration) (int, string, error)

	server  serverController
	clients map[string]clientConn
	current string
	adaptor *oracle.Adaptor
}

// New builds a CaseExecutor for a real run against a real SUT and oracle.
func New(cfg Config, tc *instruction.TestCase) *CaseExecutor {
	return &CaseExecutor{
		cfg:      cfg,
		tc:       tc,
		registry: executor.New(),
		newServer: func(c supervisor.Config) serverController {
			return supervisor.New(c)
		},
		newClient: func(addr wireclient.Addr, timeout time.Duration) (clientConn, error) {
			return wireclient.Dial(addr, timeout)
		},
		runExec: runHostExecutable,
		clients: make(map[string]clientConn),
	}
}

// Execute runs the full case lifecycle against the real server and oracle.
func (c *CaseExecutor) Execute(ctx context.Context) (instruction.TestCaseResult, error) {
	return c.run(ctx)
}

// Dryrun runs the same flow with mocked client/supervisor pairs and no
// oracle side effects, for fast iteration on case authoring.
func (c *CaseExecutor) Dryrun(ctx context.Context) (instruction.TestCaseResult, error) {
	c.newServer = func(supervisor.Config) serverController { return newFakeServer() }
	c.newClient = func(wireclient.Addr, time.Duration) (clientConn, error) { return newFakeClient(), nil }
	c.runExec = func(context.Context, string, []string, time.Duration) (int, string, error) { return 0, "", nil }
	c.cfg.Oracle = nil
	return c.run(ctx)
}

func (c *CaseExecutor) run(ctx context.Context) (result instruction.TestCaseResult, err error) {
	result.Case = c.tc
	c.server = c.newServer(c.cfg.Supervisor)
	c.clients = make(map[string]clientConn)

	defer c.teardown()

	if c.tc.NeedObserver {
		if startErr := c.server.Start(ctx); startErr != nil {
			result.UserException = "failed to start server: " + startErr.Error()
			return result, nil
		}
		if dialErr := c.createClient(ctx, defaultClientName); dialErr != nil {
			result.UserException = "failed to connect default client: " + dialErr.Error()
			return result, nil
		}
	}

	if c.tc.NeedMysql && c.cfg.Oracle != nil {
		c.adaptor = oracle.New(*c.cfg.Oracle)
		c.adaptor.Validate = c.cfg.Validate
		if initErr := c.adaptor.Init(ctx, defaultClientName); initErr != nil {
			result.UserException = "failed to init oracle: " + initErr.Error()
			return result, nil
		}
	}

	for _, group := range c.tc.Groups {
		groupResult, exception, testException := c.runGroup(ctx, group)
		result.GroupResults = append(result.GroupResults, groupResult)
		if testException != "" {
			result.TestException = testException
			return result, nil
		}
		if exception != "" {
			result.UserException = exception
			if c.server != nil {
				bt, _ := c.server.CoredumpInfo()
				result.CoreBacktrace = bt
			}
			return result, nil
		}
		if !groupResult.Check() {
			return result, nil
		}
	}

	return result, nil
}

// runGroup executes every instruction in a group in order, stopping at the
// first exception or comparison failure.
func (c *CaseExecutor) runGroup(ctx context.Context, group *instruction.InstructionGroup) (instruction.InstructionResultGroup, string, string) {
	groupResult := instruction.InstructionResultGroup{Group: group}

	for _, inst := range group.Instructions {
		res, err := c.registry.Execute(ctx, inst, c)
		if err != nil {
			if msg, ok := executor.AsUserException(err); ok {
				groupResult.Results = append(groupResult.Results, instruction.InstructionResult{
					Instruction: inst,
					Exception:   msg,
				})
				return groupResult, msg, ""
			}
			if msg, ok := executor.AsTestException(err); ok {
				groupResult.Results = append(groupResult.Results, instruction.InstructionResult{
					Instruction: inst,
					Exception:   msg,
				})
				return groupResult, "", msg
			}
			return groupResult, "", err.Error()
		}

		groupResult.Results = append(groupResult.Results, res)
		if !res.Check() {
			return groupResult, "", ""
		}
	}

	return groupResult, "", ""
}

func (c *CaseExecutor) teardown() {
	for _, client := range c.clients {
		client.Close()
	}
	if c.adaptor != nil {
		c.adaptor.Close()
	}
	if c.server != nil {
		c.server.StopAll()
		c.server.Clean()
	}
}

// --- executor.ExecuteContext ---

func (c *CaseExecutor) CurrentClient() (executor.Client, error) {
	conn, ok := c.clients[c.current]
	if !ok {
		return nil, errors.Errorf("no current client (current=%q)", c.current)
	}
	return conn, nil
}

func (c *CaseExecutor) CreateClient(ctx context.Context, name string) error {
	return c.createClient(ctx, name)
}

func (c *CaseExecutor) createClient(ctx context.Context, name string) error {
	if _, exists := c.clients[name]; exists {
		return errors.Errorf("client %q already exists", name)
	}
	conn, err := c.newClient(c.cfg.DialAddr, c.cfg.DialTimeout)
	if err != nil {
		return err
	}
	c.clients[name] = conn
	if c.current == "" {
		c.current = name
	}
	if c.adaptor != nil && name != defaultClientName {
		if err := c.adaptor.NewConnect(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *CaseExecutor) SetCurrentClient(name string) error {
	if _, ok := c.clients[name]; !ok {
		return errors.Errorf("no such client %q", name)
	}
	c.current = name
	if c.adaptor != nil {
		return c.adaptor.SetCurrent(name)
	}
	return nil
}

func (c *CaseExecutor) RestartServer(ctx context.Context) (string, error) {
	if c.server == nil {
		return "", errors.New("no server to restart")
	}
	if err := c.server.Stop(ctx); err != nil {
		bt, _ := c.server.CoredumpInfo()
		return bt, err
	}
	if err := c.server.Start(ctx); err != nil {
		bt, _ := c.server.CoredumpInfo()
		return bt, err
	}
	for _, client := range c.clients {
		client.Close()
	}
	c.clients = make(map[string]clientConn)
	c.current = ""
	return "", c.createClient(ctx, defaultClientName)
}

func (c *CaseExecutor) Oracle() *oracle.Adaptor {
	return c.adaptor
}

func (c *CaseExecutor) RunExecutable(ctx context.Context, binary string, args []string, timeout time.Duration) (int, string, error) {
	return c.runExec(ctx, binary, args, timeout)
}
