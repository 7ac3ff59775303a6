// Package executor implements one pure Execute function per Instruction
// variant, dispatched through a map keyed by instruction.Kind built once — a
// bounded implementation list, never reflection.
package executor

import (
	"context"
	"time"

	"miniobench/internal/instruction"
	"miniobench/internal/oracle"
)

// Client is the subset of a Wire Client's contract the executors depend on.
// *wireclient.Client satisfies it; a dryrun fake can too, without
// subclassing.
type Client interface {
	RunSQL(ctx context.Context, sql string, totalTimeout time.Duration) (ok bool, text string)
}

// ExecuteContext is what an executor consumes beyond the Instruction
// itself: the current client connection, the ability to create/switch
// connections, control the server, and reach the oracle when one is wired.
type ExecuteContext interface {
	CurrentClient() (Client, error)
	CreateClient(ctx context.Context, name string) error
	SetCurrentClient(name string) error
	RestartServer(ctx context.Context) (backtrace string, err error)
	Oracle() *oracle.Adaptor
	RunExecutable(ctx context.Context, binary string, args []string, timeout time.Duration) (exitCode int, output string, err error)
}

// Executor executes one Instruction against an ExecuteContext.
type Executor func(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error)

// UserException marks a failure as blamed on the SUT: caught by the case
// executor and recorded on the case result, never fatal to the harness
// process itself.
type UserException struct {
	msg string
}

func (e *UserException) Error() string { return e.msg }

// NewUserException builds a UserException with the given message.
func NewUserException(msg string) error { return &UserException{msg: msg} }

// AsUserException reports whether err is a UserException and returns its
// message.
func AsUserException(err error) (string, bool) {
	ue, ok := err.(*UserException)
	if !ok {
		return "", false
	}
	return ue.msg, true
}

// Registry is the bounded map.instruction.Kind -> Executor built once in
// New and reused for the lifetime of a case executor.
type Registry map[instruction.Kind]Executor

// defaultRegistry is the single bounded dispatch map built once and reused
// by every caller, including the Sort executor's delegation to the wrapped
// instruction's own executor.
var defaultRegistry = buildRegistry()

// New returns the shared Registry covering every Instruction variant.
func New() Registry {
	return defaultRegistry
}

func buildRegistry() Registry {
	return Registry{
		instruction.KindEcho:       executeEcho,
		instruction.KindSql:        executeSql,
		instruction.KindEnsureSql:  executeEnsureSql,
		instruction.KindRuntimeSql: executeRuntimeSql,
		instruction.KindSort:       executeSort,
		instruction.KindConnect:    executeConnect,
		instruction.KindConnection: executeConnection,
		instruction.KindRestart:    executeRestart,
		instruction.KindExecutable: executeExecutable,
		instruction.KindUnittest:   executeExecutable,
		instruction.KindAnnBm:      executeExecutable,
		instruction.KindTpcc:       executeExecutable,
		instruction.KindChunk:      executeChunk,
	}
}

// Execute looks up the executor for inst.Kind() and runs it.
func (r Registry) Execute(ctx context.Context, inst instruction.Instruction, ec ExecuteContext) (instruction.InstructionResult, error) {
	fn, ok := r[inst.Kind()]
	if !ok {
		return instruction.InstructionResult{}, NewTestException("no executor registered for instruction kind " + inst.Kind().String())
	}
	return fn(ctx, inst, ec)
}

// TestException marks a failure as a harness bug or environment fault —
// never the SUT's responsibility — and is fatal to the case.
type TestException struct {
	msg string
}

func (e *TestException) Error() string { return e.msg }

// NewTestException builds a TestException with the given message.
func NewTestException(msg string) error { return &TestException{msg: msg} }

// AsTestException reports whether err is a TestException and returns its
// message.
func AsTestException(err error) (string, bool) {
	te, ok := err.(*TestException)
	if !ok {
		return "", false
	}
	return te.msg, true
}
