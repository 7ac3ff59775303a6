package executor

import (
	"context"
	"testing"
	"time"

	"miniobench/internal/instruction"
	"miniobench/internal/oracle"
)

// fakeContext is a minimal ExecuteContext stand-in for unit tests; it never
// dials a real client.
type fakeContext struct {
	runSQLResult map[string]string
	ensureOK     bool
	restartErr   error
}

func (f *fakeContext) CurrentClient() (Client, error)             { return nil, nil }
func (f *fakeContext) CreateClient(context.Context, string) error { return nil }
func (f *fakeContext) SetCurrentClient(string) error              { return nil }
func (f *fakeContext) RestartServer(context.Context) (string, error) {
	return "", f.restartErr
}
func (f *fakeContext) Oracle() *oracle.Adaptor { return nil }
func (f *fakeContext) RunExecutable(context.Context, string, []string, time.Duration) (int, string, error) {
	return 0, "", nil
}

func TestEchoExecutorNeverFails(t *testing.T) {
	inst := instruction.NewEcho("hello")
	result, err := executeEcho(context.Background(), inst, &fakeContext{})
	if err != nil {
		t.Fatalf("echo must never fail: %v", err)
	}
	if len(result.Actual.Messages) != 1 || result.Actual.Messages[0].Message != "hello" {
		t.Fatalf("unexpected echo result: %+v", result.Actual)
	}
}

func TestRestartExecutorSurfacesUserException(t *testing.T) {
	inst := instruction.NewRestart(false)
	_, err := executeRestart(context.Background(), inst, &fakeContext{restartErr: errBoom})
	if err == nil {
		t.Fatalf("expected error when restart fails")
	}
	if _, ok := AsUserException(err); !ok {
		t.Fatalf("expected a user_exception, got %v", err)
	}
}

var errBoom = testError("boom")

type testError string

func (e testError) Error() string { return string(e) }
