package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pulse/pkg/application"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var notFound *application.NotFoundError
	if errors.As(err, &notFound) {
		return NewCLIError(
			notFound.Error(),
			fmt.Sprintf("Run 'pulse %ss' to list known ids", notFound.Kind),
			err,
		)
	}

	switch {
	case strings.Contains(err.Error(), "no snapshot available"):
		return NewCLIError("no snapshot available", "Run 'pulse fetch <project-id>' to pull one", err)
	case strings.Contains(err.Error(), "no tracker configured"):
		return NewCLIError("no tracker configured", "Run 'pulse token set <host> <token>' to store credentials", err)
	case strings.Contains(err.Error(), "invalid configuration"):
		return NewCLIError("configuration rejected", "Run 'pulse config show' to inspect the stored values", err)
	case strings.Contains(err.Error(), "no team configured"):
		return NewCLIError("no team configured for this scope", "Run 'pulse team add <username>' first", err)
	}

	return err
}
