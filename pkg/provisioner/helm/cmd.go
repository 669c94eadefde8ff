package helm

import (
	"context"
	"fmt"
	"os/exec"
)

// Cmd abstracts command execution for testing.
type Cmd interface {
	CombinedOutput() ([]byte, error)
}

// CommandFactory creates a Cmd for the given command and arguments.
type CommandFactory func(ctx context.Context, name string, arg ...string) Cmd

// ExecCommand runs name as a real subprocess.
func ExecCommand(ctx context.Context, name string, arg ...string) Cmd {
	return exec.CommandContext(ctx, name, arg...)
}

// CommandError is returned when helm exits unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("running helm %v (exit code %d): %v; output: %q", e.Args, e.ExitCode, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// errToExitCode extracts exit code from error if available.
func errToExitCode(err error) int {
	type exitCode interface{ ExitCode() int }

	if errWithExitCode, ok := err.(exitCode); ok {
		return errWithExitCode.ExitCode()
	}

	return 0
}
