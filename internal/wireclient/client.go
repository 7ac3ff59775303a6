// Package wireclient implements the NUL-framed line protocol the harness
// uses to talk to a SUT instance over a Unix-domain or TCP loopback socket.
package wireclient

import (
	"bytes"
	"context"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Addr is a small sum type: either a Unix-domain socket path (preferred) or
// a TCP loopback host:port.
type Addr struct {
	Network string // "unix" or "tcp"
	Address string
}

// UnixAddr builds an Addr pointing at a Unix-domain socket path.
func UnixAddr(path string) Addr { return Addr{Network: "unix", Address: path} }

// TCPAddr builds an Addr pointing at a TCP host:port.
func TCPAddr(hostPort string) Addr { return Addr{Network: "tcp", Address: hostPort} }

// Client is one bidirectional byte-stream connection to the SUT.
type Client struct {
	conn net.Conn
	addr Addr
}

// Dial opens a connection within dialTimeout.
func Dial(addr Addr, dialTimeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout(addr.Network, addr.Address, dialTimeout)
	if err != nil {
		return nil, errors.Wrap(err, "dial observer")
	}
	return &Client{conn: conn, addr: addr}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// RunSQL sends payload followed by a single NUL byte, then reads until the
// first NUL byte in the reply. ok is false when the per-call deadline
// expires, the peer closes the connection, or an unexpected I/O error
// occurs; in all three cases text carries a short diagnostic instead of SUT
// output. No data is buffered across calls: each call is a complete frame.
func (c *Client) RunSQL(ctx context.Context, sql string, totalTimeout time.Duration) (ok bool, text string) {
	deadline := time.Now().Add(totalTimeout)
	if d, has := ctx.Deadline(); has && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return false, "io error: " + err.Error()
	}
	if _, err := c.conn.Write(append([]byte(sql), 0)); err != nil {
		return false, "io error: " + err.Error()
	}

	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, "timeout waiting for response"
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(remaining)); err != nil {
			return false, "io error: " + err.Error()
		}
		n, err := c.conn.Read(chunk)
		if n > 0 {
			data := chunk[:n]
			if idx := bytes.IndexByte(data, 0); idx >= 0 {
				buf.Write(data[:idx])
				return true, frame(buf.Bytes())
			}
			buf.Write(data)
		}
		if err != nil {
			if netErr, isNet := err.(net.Error); isNet && netErr.Timeout() {
				return false, "timeout waiting for response"
			}
			if n == 0 {
				return false, "connection closed"
			}
			return false, "io error: " + err.Error()
		}
		if n == 0 {
			return false, "connection closed"
		}
	}
}

// frame drops the trailing NUL (already excluded by the caller's IndexByte
// split) and the byte immediately preceding it, whitespace-trims the
// residue, and appends exactly one trailing newline.
func frame(body []byte) string {
	if len(body) > 0 {
		body = body[:len(body)-1]
	}
	trimmed := strings.TrimSpace(string(body))
	return trimmed + "\n"
}
