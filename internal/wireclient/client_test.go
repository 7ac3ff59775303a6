package wireclient

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"
)

// startEchoServer runs a tiny NUL-framed echo server on a loopback TCP
// listener: it reads a frame and writes back its upper-cased text followed
// by a newline and a NUL byte, the way the SUT terminates a reply (the
// client drops the byte before the NUL). It exercises exactly the wire framing of the client
// without depending on a real SUT binary.
func startEchoServer(t *testing.T) net.Addr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		data := buf[:n]
		if idx := strings.IndexByte(string(data), 0); idx >= 0 {
			data = data[:idx]
		}
		reply := strings.ToUpper(string(data))
		conn.Write(append([]byte(reply+"\n"), 0))
	}()
	return ln.Addr()
}

func TestRunSQLEchoRoundTrip(t *testing.T) {
	addr := startEchoServer(t)
	c, err := Dial(TCPAddr(addr.String()), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ok, text := c.RunSQL(context.Background(), "select 1", time.Second)
	if !ok {
		t.Fatalf("expected ok, got text=%q", text)
	}
	if text != "SELECT 1\n" {
		t.Fatalf("unexpected framed text: %q", text)
	}
}

func TestRunSQLTimesOutWhenPeerNeverReplies(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(2 * time.Second)
	}()

	c, err := Dial(TCPAddr(ln.Addr().String()), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ok, _ := c.RunSQL(context.Background(), "select 1", 100*time.Millisecond)
	if ok {
		t.Fatalf("expected timeout to surface as ok=false")
	}
}

func TestRunSQLConnectionClosedByPeer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	c, err := Dial(TCPAddr(ln.Addr().String()), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	ok, _ := c.RunSQL(context.Background(), "select 1", time.Second)
	if ok {
		t.Fatalf("expected ok=false when peer closes the connection")
	}
}
