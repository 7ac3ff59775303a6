// Package supervisor spawns, probes, stops, and reaps a SUT process, and
// extracts crash backtraces from the core files it leaves behind.
package supervisor

import (
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	psprocess "github.com/shirou/gopsutil/v3/process"
)

const (
	readinessBudget   = 10 * time.Second
	readinessInterval = 500 * time.Millisecond
	stopGraceWindow   = 10 * time.Second
)

// Config describes how to spawn and probe one SUT instance.
type Config struct {
	ExecutablePath string
	ConfigFile     string
	DataDir        string
	CorePath       string
	UnixSocket     string // preferred when non-empty
	TCPPort        int
	TrxModel       string
	Protocol       string
	StorageEngine  string
}

// Supervisor owns at most one live SUT process at a time.
type Supervisor struct {
	cfg Config
	cmd *exec.Cmd
}

// New builds a Supervisor for the given configuration.
func New(cfg Config) *Supervisor {
	return &Supervisor{cfg: cfg}
}

// Start spawns the SUT, in its own process group, and blocks until the
// readiness probe succeeds or the budget expires.
func (s *Supervisor) Start(ctx context.Context) error {
	if s.cmd != nil {
		return errors.New("supervisor: already started")
	}
	if s.cfg.CorePath != "" {
		if err := purgeDir(s.cfg.CorePath); err != nil {
			return errors.Wrap(err, "purge core directory")
		}
	}
	if err := os.MkdirAll(s.cfg.DataDir, 0o755); err != nil {
		return errors.Wrap(err, "ensure data directory")
	}

	args := []string{"-f", s.cfg.ConfigFile}
	if s.cfg.UnixSocket != "" {
		args = append(args, "-s", s.cfg.UnixSocket)
	} else {
		args = append(args, "-p", strconv.Itoa(s.cfg.TCPPort))
	}
	if s.cfg.TrxModel != "" {
		args = append(args, "-t", s.cfg.TrxModel)
	}
	if s.cfg.Protocol != "" {
		args = append(args, "-P", s.cfg.Protocol)
	}
	if s.cfg.StorageEngine != "" {
		args = append(args, "-E", s.cfg.StorageEngine)
	}

	cmd := exec.CommandContext(ctx, s.cfg.ExecutablePath, args...)
	cmd.Dir = s.cfg.DataDir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "start observer")
	}
	s.cmd = cmd

	if !s.waitReady(readinessBudget) {
		s.Stop(ctx)
		return errors.Errorf("observer failed to become ready within %s", readinessBudget)
	}
	return nil
}

func (s *Supervisor) waitReady(budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) {
		// ProcessState is only filled in by Wait, so poll the child directly:
		// a process that has already exited can never become ready.
		var status syscall.WaitStatus
		pid := s.cmd.Process.Pid
		if got, err := syscall.Wait4(pid, &status, syscall.WNOHANG, nil); err == nil && got == pid {
			return false
		}
		if s.probeOnce() {
			return true
		}
		time.Sleep(readinessInterval)
	}
	return false
}

func (s *Supervisor) probeOnce() bool {
	var network, address string
	if s.cfg.UnixSocket != "" {
		network, address = "unix", s.cfg.UnixSocket
	} else {
		network, address = "tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.TCPPort))
	}
	conn, err := net.DialTimeout(network, address, readinessInterval)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Stop sends SIGTERM to the process group, waits up to stopGraceWindow, and
// escalates to SIGKILL if the process is still alive. If the process
// terminated on SIGSEGV (or another crash signal), the caller should follow
// up with CoredumpInfo.
func (s *Supervisor) Stop(ctx context.Context) error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(s.cmd.Process.Pid)
	if err != nil {
		pgid = s.cmd.Process.Pid
	}
	syscall.Kill(-pgid, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	select {
	case <-done:
	case <-time.After(stopGraceWindow):
		syscall.Kill(-pgid, syscall.SIGKILL)
		<-done
	}
	s.cmd = nil
	return nil
}

// StopAll enumerates all live processes and terminates every one whose
// executable path exactly matches the supervisor's configured binary —
// name-only matching is insufficient since multiple harness instances must
// not kill each other. This is the only safe teardown when the SUT was
// launched via a runuser/su shell intermediary. Calling StopAll twice in
// succession is idempotent: the second call simply finds nothing left to
// match.
func (s *Supervisor) StopAll() error {
	procs, err := psprocess.Processes()
	if err != nil {
		return errors.Wrap(err, "enumerate processes")
	}
	for _, p := range procs {
		exe, err := p.Exe()
		if err != nil || exe != s.cfg.ExecutablePath {
			continue
		}
		if err := p.Terminate(); err != nil {
			continue
		}
		if exited := waitExit(p, stopGraceWindow); !exited {
			p.Kill()
		}
	}
	s.cmd = nil
	return nil
}

func waitExit(p *psprocess.Process, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		running, err := p.IsRunning()
		if err != nil || !running {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

// Clean removes the data directory.
func (s *Supervisor) Clean() error {
	if s.cfg.DataDir == "" {
		return nil
	}
	return os.RemoveAll(s.cfg.DataDir)
}

func purgeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
