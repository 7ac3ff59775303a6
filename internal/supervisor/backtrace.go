package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const backtraceStartMarker = "backtrace start"
const maxBacktraceLines = 15

// CoredumpInfo finds the newest regular file in the supervisor's configured
// core directory whose name matches "core", invokes gdb in batch mode, and
// returns the first maxBacktraceLines lines past the marker echo. Any of a
// missing core directory, no matching file, or a gdb failure returns ("",
// nil) — coredump introspection is best-effort, never fatal to the case.
func (s *Supervisor) CoredumpInfo() (string, error) {
	if s.cfg.CorePath == "" {
		return "", nil
	}
	coreFile, err := latestMatchingFile(s.cfg.CorePath, "core")
	if err != nil || coreFile == "" {
		return "", nil
	}
	lines, err := coreBacktrace(s.cfg.ExecutablePath, coreFile)
	if err != nil {
		return "", nil
	}
	if len(lines) > maxBacktraceLines {
		lines = lines[:maxBacktraceLines]
	}
	return strings.Join(lines, "\n"), nil
}

func latestMatchingFile(dir, namePattern string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var latestPath string
	var latestMtime time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), namePattern) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestMtime) {
			latestMtime = info.ModTime()
			latestPath = filepath.Join(dir, e.Name())
		}
	}
	return latestPath, nil
}

// coreBacktrace shells out to gdb in batch mode to extract a post-mortem
// stack trace from a crash-generated core file.
func coreBacktrace(execFile, coreFile string) ([]string, error) {
	cmd := exec.Command("gdb", execFile, coreFile,
		"-ex", "echo "+backtraceStartMarker+"\n",
		"-ex", "backtrace",
		"--batch")
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.Wrap(err, "run gdb")
	}
	lines := strings.Split(string(out), "\n")
	var backtrace []string
	started := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if started {
			backtrace = append(backtrace, line)
			continue
		}
		if strings.HasPrefix(line, backtraceStartMarker) {
			started = true
		}
	}
	if len(backtrace) == 0 {
		return nil, errors.New("backtrace information not found")
	}
	return backtrace, nil
}
