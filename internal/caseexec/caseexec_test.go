package caseexec

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"miniobench/internal/instruction"
	"miniobench/internal/supervisor"
	"miniobench/internal/wireclient"
)

// scriptedServer is a tiny NUL-framed server that replies to a fixed set of
// SQL payloads. It stands in for a real SUT binary so the case executor's
// group-by-group state machine can be exercised without spawning a process.
type scriptedServer struct {
	ln      net.Listener
	replies map[string]string
	crashOn string
}

func startScriptedServer(t *testing.T, replies map[string]string, crashOn string) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &scriptedServer{ln: ln, replies: replies, crashOn: crashOn}
	t.Cleanup(func() { ln.Close() })
	go s.serve()
	return ln.Addr()
}

func (s *scriptedServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *scriptedServer) handle(conn net.Conn) {
	defer conn.Close()
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		data := buf[:n]
		if idx := bytes.IndexByte(data, 0); idx >= 0 {
			data = data[:idx]
		}
		payload := strings.TrimSpace(string(data))
		if s.crashOn != "" && strings.EqualFold(payload, s.crashOn) {
			return
		}
		reply, ok := s.replies[strings.ToUpper(payload)]
		if !ok {
			reply = "SUCCESS"
		}
		conn.Write(append([]byte(reply+"\n"), 0))
	}
}

// alreadyRunning satisfies serverController for a scriptedServer that the
// test started ahead of time; Start/Stop are no-ops since the listener
// above owns the process lifecycle.
type alreadyRunning struct{}

func (alreadyRunning) Start(context.Context) error   { return nil }
func (alreadyRunning) Stop(context.Context) error    { return nil }
func (alreadyRunning) StopAll() error                { return nil }
func (alreadyRunning) CoredumpInfo() (string, error) { return "", nil }
func (alreadyRunning) Clean() error                  { return nil }

func newExecutorAgainst(tc *instruction.TestCase, addr net.Addr) *CaseExecutor {
	ce := New(Config{
		DialAddr:    wireclient.TCPAddr(addr.String()),
		DialTimeout: 2 * time.Second,
	}, tc)
	ce.newServer = func(supervisor.Config) serverController { return alreadyRunning{} }
	ce.newClient = func(a wireclient.Addr, timeout time.Duration) (clientConn, error) {
		return wireclient.Dial(a, timeout)
	}
	return ce
}

func TestRunPassesWhenEveryGroupMatches(t *testing.T) {
	addr := startScriptedServer(t, map[string]string{
		"CREATE TABLE T(ID INT, NAME CHAR(4))": "SUCCESS",
		"SELECT * FROM T":                      "1 | A",
	}, "")

	tc := instruction.NewTestCase("basic")
	tc.NeedMysql = false
	group, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	group.AddSql("create table t(id int, name char(4))", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)
	group.AddSql("select * from t", instruction.NewResponse(instruction.NewNormalMessage("1 | A")), 0)

	ce := newExecutorAgainst(tc, addr)
	result, err := ce.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.Passed() {
		t.Fatalf("expected case to pass, got: %s", result.ShowMessage())
	}
}

func TestRunFailsFastOnFirstMismatch(t *testing.T) {
	addr := startScriptedServer(t, map[string]string{
		"SELECT 1": "1",
		"SELECT 2": "WRONG",
	}, "")

	tc := instruction.NewTestCase("fail-fast")
	tc.NeedMysql = false
	group, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	group.AddSql("select 2", instruction.NewResponse(instruction.NewNormalMessage("2")), 0)
	group.AddSql("select 1", instruction.NewResponse(instruction.NewNormalMessage("1")), 0)

	ce := newExecutorAgainst(tc, addr)
	result, err := ce.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Passed() {
		t.Fatalf("expected case to fail on the first mismatching instruction")
	}
	if len(result.GroupResults) != 1 || len(result.GroupResults[0].Results) != 1 {
		t.Fatalf("expected the group to stop after its first instruction, got %+v", result.GroupResults)
	}
}

func TestRunSurfacesUserExceptionOnServerCrash(t *testing.T) {
	addr := startScriptedServer(t, map[string]string{}, "DROP TABLE T")

	tc := instruction.NewTestCase("crash")
	tc.NeedMysql = false
	group, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	group.AddSql("drop table t", instruction.NewResponse(instruction.NewNormalMessage("SUCCESS")), 0)

	ce := newExecutorAgainst(tc, addr)
	result, err := ce.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.UserException == "" {
		t.Fatalf("expected a user_exception when the connection is dropped mid-case")
	}
	if result.Passed() {
		t.Fatalf("a case with a user_exception must not be reported as passed")
	}
}

func TestDryrunNeverTouchesTheNetwork(t *testing.T) {
	tc := instruction.NewTestCase("dry")
	group, err := tc.AddExecutionGroup("main")
	if err != nil {
		t.Fatalf("add group: %v", err)
	}
	group.AddSql("select anything, dryrun never checks it", instruction.NewResponse(instruction.NewNormalMessage("whatever")), 0)

	ce := New(Config{DialAddr: wireclient.TCPAddr("127.0.0.1:1"), DialTimeout: time.Millisecond}, tc)
	result, err := ce.Dryrun(context.Background())
	if err != nil {
		t.Fatalf("Dryrun: %v", err)
	}
	if result.UserException != "" || result.TestException != "" {
		t.Fatalf("expected dryrun to run without touching the network, got: %s", result.ShowMessage())
	}
	if result.Passed() {
		t.Fatalf("expected dryrun's empty response to mismatch the non-empty expectation")
	}
}

func TestCaseResultPassedRequiresAllGroupsToCheck(t *testing.T) {
	tc := instruction.NewTestCase("basic")
	group, _ := tc.AddExecutionGroup("main")
	group.AddSql("select 1", instruction.NewResponse(instruction.NewNormalMessage("1")), 0)

	passingResult := instruction.TestCaseResult{
		Case: tc,
		GroupResults: []instruction.InstructionResultGroup{
			{
				Group: group,
				Results: []instruction.InstructionResult{
					{Instruction: group.Instructions[0], Actual: instruction.NewResponse(instruction.NewNormalMessage("1"))},
				},
			},
		},
	}
	if !passingResult.Passed() {
		t.Fatalf("expected case to pass")
	}

	failingResult := passingResult
	failingResult.UserException = "boom"
	if failingResult.Passed() {
		t.Fatalf("expected case with user_exception to fail")
	}
}
