package caseexec

import (
	"context"
	"time"
)

// fakeServer satisfies serverController without spawning a real SUT
// process, for Dryrun.
type fakeServer struct{}

func newFakeServer() *fakeServer { return &fakeServer{} }

func (*fakeServer) Start(context.Context) error  { return nil }
func (*fakeServer) Stop(context.Context) error   { return nil }
func (*fakeServer) StopAll() error               { return nil }
func (*fakeServer) CoredumpInfo() (string, error) { return "", nil }
func (*fakeServer) Clean() error                  { return nil }

// fakeClient satisfies clientConn without opening a real socket, for
// Dryrun. It always reports success with an empty response, matching the
// teacher pack's dryrun-adaptor pattern of never touching the network.
type fakeClient struct{}

func newFakeClient() *fakeClient { return &fakeClient{} }

func (*fakeClient) RunSQL(context.Context, string, time.Duration) (bool, string) {
	return true, ""
}
func (*fakeClient) Close() error { return nil }
