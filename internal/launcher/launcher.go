// Package launcher starts the wrapped command for one attempt and reports how
// it terminated.
//
// The command vector is executed directly, without a shell, so arguments are
// passed through verbatim. The child inherits the caller's standard streams
// and an environment extended with the retry variables built by [RetryEnv].
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

// ErrEmptyArgv is returned when a request has no executable.
var ErrEmptyArgv = errors.New("empty command vector")

// Request describes one attempt.
type Request struct {
	Argv   []string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Status is the termination status of an attempt. Exactly one of ExitCode
// and Signal is set.
type Status struct {
	ExitCode *int
	Signal   os.Signal
}

// Success reports whether the process exited with code 0.
func (s Status) Success() bool {
	return s.ExitCode != nil && *s.ExitCode == 0
}

// Signaled reports whether the process was terminated by a signal.
func (s Status) Signaled() bool {
	return s.ExitCode == nil
}

func (s Status) String() string {
	if s.ExitCode != nil {
		return "exit code " + strconv.Itoa(*s.ExitCode)
	}
	if s.Signal != nil {
		return "signal " + s.Signal.String()
	}
	return "terminated by signal"
}

// Launcher runs a request to completion.
type Launcher interface {
	Launch(ctx context.Context, req Request) (Status, error)
}

// Exec launches requests as operating system processes.
type Exec struct{}

var _ Launcher = Exec{}

// Launch starts the process, waits for it and classifies its termination.
// An error means the process could not be started or waited on; a non-zero
// exit or a signal is reported through Status.
func (Exec) Launch(ctx context.Context, req Request) (Status, error) {
	if len(req.Argv) == 0 || req.Argv[0] == "" {
		return Status{}, ErrEmptyArgv
	}
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}

	// #nosec G204
	cmd := exec.Command(req.Argv[0], req.Argv[1:]...)
	cmd.Env = req.Env
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := cmd.Start(); err != nil {
		return Status{}, fmt.Errorf("failed to execute %q: %w", req.Argv[0], err)
	}

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Status{}, fmt.Errorf("failed to wait on %q: %w", req.Argv[0], err)
	}
	return statusOf(cmd.ProcessState), nil
}

func statusOf(ps *os.ProcessState) Status {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Status{Signal: ws.Signal()}
	}
	code := ps.ExitCode()
	if code < 0 {
		return Status{}
	}
	return Status{ExitCode: &code}
}
