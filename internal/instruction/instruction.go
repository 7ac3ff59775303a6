package instruction

import "time"

// Kind identifies which of the closed set of Instruction variants a value
// holds. Dispatch (in internal/executor) switches on Kind rather than using
// reflection or type switches scattered across the codebase, per the
// "avoid open-ended reflection" design note: the variant set is finite and
// stable, so a bounded map keyed by Kind is sufficient.
type Kind int

const (
	KindEcho Kind = iota
	KindSql
	KindRuntimeSql
	KindEnsureSql
	KindSort
	KindConnect
	KindConnection
	KindRestart
	KindExecutable
	KindUnittest
	KindAnnBm
	KindTpcc
	KindChunk
)

func (k Kind) String() string {
	switch k {
	case KindEcho:
		return "echo"
	case KindSql:
		return "sql"
	case KindRuntimeSql:
		return "runtime_sql"
	case KindEnsureSql:
		return "ensure_sql"
	case KindSort:
		return "sort"
	case KindConnect:
		return "connect"
	case KindConnection:
		return "connection"
	case KindRestart:
		return "restart"
	case KindExecutable:
		return "executable"
	case KindUnittest:
		return "unittest"
	case KindAnnBm:
		return "annbm"
	case KindTpcc:
		return "tpcc"
	case KindChunk:
		return "chunk"
	default:
		return "unknown"
	}
}

// Instruction is the closed contract every variant below satisfies: a
// Request, a static expected Response (empty/ignored for variants whose
// expectation is computed at execution time), and a soft per-instruction
// timeout. The unexported marker keeps the set closed to this package.
type Instruction interface {
	Kind() Kind
	Request() Request
	ExpectedResponse() Response
	Timeout() time.Duration
	isInstruction()
}

const defaultTimeout = 10 * time.Second

// base carries the three contract fields common to every variant.
type base struct {
	request  Request
	expected Response
	timeout  time.Duration
}

func newBase(tag RequestTag, payload string, expected Response, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{request: NewRequest(tag, payload), expected: expected, timeout: timeout}
}

func (b base) Request() Request            { return b.request }
func (b base) ExpectedResponse() Response   { return b.expected }
func (b base) Timeout() time.Duration       { return b.timeout }
func (b base) isInstruction()               {}

// EchoInstruction emits its payload verbatim as a single Normal message.
type EchoInstruction struct {
	base
}

func NewEcho(payload string) *EchoInstruction {
	return &EchoInstruction{base: newBase(TagEcho, payload, NewResponse(NewNormalMessage(payload)), defaultTimeout)}
}

func (e *EchoInstruction) Kind() Kind { return KindEcho }

// SqlInstruction sends its payload as a SQL request against the current
// client; the expected response is static, fixed at construction.
type SqlInstruction struct {
	base
}

func NewSql(sql string, expected Response, timeout time.Duration) *SqlInstruction {
	return &SqlInstruction{base: newBase(TagSql, sql, expected, timeout)}
}

func (s *SqlInstruction) Kind() Kind { return KindSql }

// ResultType distinguishes how a RuntimeSqlInstruction's oracle result maps
// to its expected lines.
type ResultType int

const (
	ResultBoolean ResultType = iota
	ResultSet
)

// RuntimeSqlInstruction sends its payload as SQL against the current client;
// the expected response is computed at execution time from the oracle's
// result for OraclePayload (or Request().Payload if OraclePayload is empty).
type RuntimeSqlInstruction struct {
	base
	ResultType   ResultType
	RemoveHeader bool
	OraclePayload string
}

func NewRuntimeSql(sql string, resultType ResultType, removeHeader bool, oracleSQL string, timeout time.Duration) *RuntimeSqlInstruction {
	return &RuntimeSqlInstruction{
		base:          newBase(TagRuntimeSql, sql, Response{}, timeout),
		ResultType:    resultType,
		RemoveHeader:  removeHeader,
		OraclePayload: oracleSQL,
	}
}

func (r *RuntimeSqlInstruction) Kind() Kind { return KindRuntimeSql }

// OracleSQL returns the statement to run against the reference engine,
// falling back to the SUT payload when no oracle-specific dialect was given.
func (r *RuntimeSqlInstruction) OracleSQL() string {
	if r.OraclePayload != "" {
		return r.OraclePayload
	}
	return r.Request().Payload
}

// EnsureSqlInstruction issues "EXPLAIN <payload>" and checks a structural
// predicate (see PredicateVocabulary) against the textual plan.
type EnsureSqlInstruction struct {
	base
	Predicate string
}

func NewEnsureSql(sql, predicate string, timeout time.Duration) *EnsureSqlInstruction {
	return &EnsureSqlInstruction{base: newBase(TagSql, "EXPLAIN "+sql, Response{}, timeout), Predicate: predicate}
}

func (e *EnsureSqlInstruction) Kind() Kind { return KindEnsureSql }

// SortInstruction decorates another Instruction: the executor re-sorts both
// expected and received Normal messages (Debug messages stay a preserved
// prefix) after delegating to the wrapped instruction's executor.
type SortInstruction struct {
	Wrapped Instruction
}

func NewSort(wrapped Instruction) *SortInstruction {
	return &SortInstruction{Wrapped: wrapped}
}

func (s *SortInstruction) Kind() Kind                    { return KindSort }
func (s *SortInstruction) Request() Request              { return s.Wrapped.Request() }
func (s *SortInstruction) ExpectedResponse() Response     { return SortResponse(s.Wrapped.ExpectedResponse()) }
func (s *SortInstruction) Timeout() time.Duration        { return s.Wrapped.Timeout() }
func (s *SortInstruction) isInstruction()                {}

// ConnectInstruction creates a new named client connection.
type ConnectInstruction struct {
	base
	ClientName string
}

func NewConnect(clientName string) *ConnectInstruction {
	return &ConnectInstruction{base: newBase(TagConnect, clientName, Response{}, defaultTimeout), ClientName: clientName}
}

func (c *ConnectInstruction) Kind() Kind { return KindConnect }

// ConnectionInstruction switches the current client to a named connection.
type ConnectionInstruction struct {
	base
	ClientName string
}

func NewConnection(clientName string) *ConnectionInstruction {
	return &ConnectionInstruction{base: newBase(TagConnection, clientName, Response{}, defaultTimeout), ClientName: clientName}
}

func (c *ConnectionInstruction) Kind() Kind { return KindConnection }

// RestartInstruction triggers a server restart. Force is carried on the
// instruction but the restart executor does not read it: every restart stops
// the server through Supervisor.Stop's SIGTERM, grace window, SIGKILL sequence.
type RestartInstruction struct {
	base
	Force bool
}

func NewRestart(force bool) *RestartInstruction {
	return &RestartInstruction{base: newBase(TagRestart, "", Response{}, 15 * time.Second), Force: force}
}

func (r *RestartInstruction) Kind() Kind { return KindRestart }

// ExecutableKind distinguishes the flavors of host-side executable runs.
type ExecutableKind int

const (
	ExecutableUnittest ExecutableKind = iota
	ExecutableAnnBm
	ExecutableTpcc
)

// ExecutableInstruction runs a host-side binary with a timeout; success is
// exit-code==0. Benchmark variants (AnnBm, Tpcc) additionally parse a
// trailing metric from captured output, subject to acceptance thresholds.
type ExecutableInstruction struct {
	base
	Kind_         ExecutableKind
	Args          []string
	MinRecall     float64
	MinQPS        float64
	MinThroughput float64
}

// defaultMinRecall and defaultMinQPS are the ANN benchmark's acceptance
// floor when a case doesn't override them: recall >= 0.9 and qps >= 100.
const (
	defaultMinRecall = 0.9
	defaultMinQPS    = 100
)

func NewExecutable(kind ExecutableKind, binary string, args []string, timeout time.Duration) *ExecutableInstruction {
	e := &ExecutableInstruction{
		base:  newBase(TagExecutable, binary, Response{}, timeout),
		Kind_: kind,
		Args:  args,
	}
	if kind == ExecutableAnnBm {
		e.MinRecall = defaultMinRecall
		e.MinQPS = defaultMinQPS
	}
	return e
}

func (e *ExecutableInstruction) Kind() Kind {
	switch e.Kind_ {
	case ExecutableAnnBm:
		return KindAnnBm
	case ExecutableTpcc:
		return KindTpcc
	default:
		return KindUnittest
	}
}

// ChunkInstruction is the legacy text-loader representation: an entire
// `<name>.test` body paired with the matching `<name>.result` body, compared
// line-by-line upper-cased and whitespace-trimmed.
type ChunkInstruction struct {
	base
}

func NewChunk(testBody string, expectedLines []string) *ChunkInstruction {
	msgs := make([]ResponseMessage, 0, len(expectedLines))
	for _, l := range expectedLines {
		msgs = append(msgs, NewNormalMessage(l))
	}
	return &ChunkInstruction{base: newBase(TagChunk, testBody, NewResponse(msgs...), defaultTimeout)}
}

func (c *ChunkInstruction) Kind() Kind { return KindChunk }

// PredicateVocabulary enumerates the recognized EnsureSql predicates.
var PredicateVocabulary = []string{
	"ensure:hashjoin",
	"ensure:hashjoin*2",
	"ensure:hashjoin*4",
	"ensure:nlj",
	"ensure:nlj*2",
}
