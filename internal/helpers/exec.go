package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result captures everything one external process run produced
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout and stderr joined for diagnostics
func (r Result) Combined() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// CommandRunner is the narrow boundary between this tool and real
// processes: command in, exit code and captured streams out.
// This allows for mocking in tests and dependency injection.
type CommandRunner interface {
	// LookPath resolves a bare command name against PATH
	LookPath(name string) (string, error)

	// Run executes a command, blocking until it exits, and returns the
	// captured streams. A non-zero exit returns both the populated
	// Result and a non-nil error wrapping *exec.ExitError.
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// OSCommandRunner is the default implementation using os/exec
type OSCommandRunner struct{}

// NewOSCommandRunner creates a new OSCommandRunner instance
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// LookPath resolves a bare command name against PATH
func (r *OSCommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes a command and captures its streams.
// Arguments are passed separately, never through a shell.
func (r *OSCommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: ExitCode(err),
	}

	if err != nil {
		return res, fmt.Errorf("command %q failed: %w", name, err)
	}

	return res, nil
}

// ExitCode extracts the exit code from a command error. It returns 0 for
// a nil error and -1 when the process never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
