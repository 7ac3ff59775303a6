package instruction

// RequestTag names the nine closed request kinds a Request can carry.
type RequestTag string

const (
	TagEcho       RequestTag = "echo"
	TagSort       RequestTag = "sort"
	TagSql        RequestTag = "sql"
	TagRuntimeSql RequestTag = "runtime_sql"
	TagConnect    RequestTag = "connect"
	TagConnection RequestTag = "connection"
	TagRestart    RequestTag = "restart"
	TagChunk      RequestTag = "chunk"
	TagExecutable RequestTag = "executable"
)

// Request is immutable after construction: a tag plus an opaque payload.
type Request struct {
	Tag     RequestTag
	Payload string
}

// NewRequest builds a Request.
func NewRequest(tag RequestTag, payload string) Request {
	return Request{Tag: tag, Payload: payload}
}
