// Package errors provides structured error types for vidnorm operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindNotFound represents a missing source file.
	KindNotFound
	// KindCommand represents external command execution errors.
	KindCommand
	// KindProbe represents dimension probing failures.
	KindProbe
	// KindParse represents probe output parsing errors.
	KindParse
	// KindStage represents transform stage failures.
	KindStage
	// KindTimeout represents a probe or stage exceeding its time bound.
	KindTimeout
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindCancelled represents user-cancelled operations.
	KindCancelled
	// KindUnexpected represents any other orchestration failure.
	KindUnexpected
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindNotFound:
		return "Not found"
	case KindCommand:
		return "Command error"
	case KindProbe:
		return "Probe error"
	case KindParse:
		return "Parse error"
	case KindStage:
		return "Stage failure"
	case KindTimeout:
		return "Timeout"
	case KindConfig:
		return "Configuration error"
	case KindCancelled:
		return "Operation cancelled"
	case KindUnexpected:
		return "Unexpected error"
	default:
		return "Unknown error"
	}
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandWait means waiting for the command failed.
	CommandWait
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandWait:
		return fmt.Sprintf("failed to wait for %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for vidnorm operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewNotFoundError creates an error for a missing source video.
// Callers surface the message verbatim, keep the format stable.
func NewNotFoundError(path string) *CoreError {
	return &CoreError{Kind: KindNotFound, Message: fmt.Sprintf("Video file not found: %s", path)}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewProbeError creates an error for when no probe method yields usable dimensions.
func NewProbeError(path string) *CoreError {
	return &CoreError{Kind: KindProbe, Message: fmt.Sprintf("could not determine dimensions for %s", path)}
}

// NewParseError creates a new probe output parsing error.
func NewParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindParse, Message: message, Underlying: underlying}
}

// NewStageError creates an error for a failed transform stage.
func NewStageError(stage, message string, underlying error) *CoreError {
	return &CoreError{Kind: KindStage, Message: fmt.Sprintf("%s: %s", stage, message), Underlying: underlying}
}

// NewTimeoutError creates an error for a probe or stage exceeding its bound.
func NewTimeoutError(operation string, underlying error) *CoreError {
	return &CoreError{Kind: KindTimeout, Message: fmt.Sprintf("%s timed out", operation), Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// NewUnexpectedError wraps any other orchestration failure.
func NewUnexpectedError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindUnexpected, Message: message, Underlying: underlying}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsNotFound checks if the error is a missing-source error.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// IsProbe checks if the error is a probe failure.
func IsProbe(err error) bool {
	return IsKind(err, KindProbe)
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	return IsKind(err, KindTimeout)
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
