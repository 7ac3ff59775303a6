package caseexec

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// runHostExecutable runs binary with args under a hard wall-clock timeout;
// on expiry the subprocess is terminated and the call returns an error.
func runHostExecutable(ctx context.Context, binary string, args []string, timeout time.Duration) (int, string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			return exitCode, out.String(), nil
		}
		return -1, out.String(), err
	}
	return exitCode, out.String(), nil
}
