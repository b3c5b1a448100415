package launcher

import (
	"errors"
	"fmt"
	"os/exec"
)

// Exit codes of the launcher
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitError carries the process exit code a failure should produce
type ExitError struct {
	Code int
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

// Fail wraps err with an exit code
func Fail(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error to the code the process should exit with.
// Codes of failed child processes pass through unchanged.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var procErr *exec.ExitError
	if errors.As(err, &procErr) && procErr.ExitCode() > 0 {
		return procErr.ExitCode()
	}
	return ExitFailure
}
