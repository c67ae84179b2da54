// Package cli holds the pieces of the formbind command line that are worth
// testing without a process: exit codes, logger setup and the init prompts.
package cli

import (
	"errors"
	"fmt"
)

// ExitCode is the process exit status attached to an error.
type ExitCode uint8

// Exit codes used by formbind.
const (
	PassFailed    ExitCode = 1
	PassAborted   ExitCode = 2
	InvalidConfig ExitCode = 3
)

// ExitError carries an exit code and an optional hint for the user.
type ExitError struct {
	Code ExitCode
	Hint string
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WithExitCode attaches code to err unless err already carries one.
func WithExitCode(err error, code ExitCode) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: code, Err: err}
}

// CodeOf returns the exit code carried by err; 0 for nil and PassAborted
// for errors without an explicit code.
func CodeOf(err error) ExitCode {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return PassAborted
}
