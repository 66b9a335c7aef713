package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitAborted    = 130
)

// ExitError carries a process exit code out of a command so RunE functions
// never call os.Exit themselves.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError wraps err with an exit code.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// IsExitError extracts the exit code carried by err.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
