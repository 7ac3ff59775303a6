package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStopAllIdempotent(t *testing.T) {
	dataDir := t.TempDir()
	cfg := Config{
		ExecutablePath: filepath.Join(dataDir, "does-not-exist"),
		ConfigFile:     filepath.Join(dataDir, "config.yaml"),
		DataDir:        dataDir,
		TCPPort:        1,
	}
	sup := New(cfg)

	if err := sup.StopAll(); err != nil {
		t.Fatalf("first StopAll: %v", err)
	}
	if err := sup.StopAll(); err != nil {
		t.Fatalf("second StopAll must be a no-op, got: %v", err)
	}
}

func TestStartFailsFastWhenReadinessNeverSucceeds(t *testing.T) {
	if _, err := os.Stat("/bin/false"); err != nil {
		t.Skip("/bin/false unavailable on this platform")
	}
	dataDir := t.TempDir()
	cfg := Config{
		ExecutablePath: "/bin/false",
		ConfigFile:     filepath.Join(dataDir, "config.yaml"),
		DataDir:        dataDir,
		TCPPort:        1,
	}
	if err := os.WriteFile(cfg.ConfigFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	sup := New(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Start(ctx); err == nil {
		t.Fatalf("expected start failure: /bin/false exits immediately and never becomes ready")
	}
}

func TestCoredumpInfoAbsentDirectoryReturnsNoError(t *testing.T) {
	sup := New(Config{CorePath: "", ExecutablePath: "/bin/false"})
	text, err := sup.CoredumpInfo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty backtrace, got %q", text)
	}
}

func TestCoredumpInfoNoMatchingFileReturnsNoError(t *testing.T) {
	dir := t.TempDir()
	sup := New(Config{CorePath: dir, ExecutablePath: "/bin/false"})
	text, err := sup.CoredumpInfo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty backtrace when no core file present, got %q", text)
	}
}
