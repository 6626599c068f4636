package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"wallet/internal/core"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected input or unknown record
	ExitCommandError = 2 // Store, broker or configuration failure
)

// Error codes shared with the HTTP API.
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeInternal     = "internal_error"
	ErrCodeConfig       = "config_error"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics, kept off Writer so JSON stays parseable
	Verbose   bool
}

// CLIResponse is the envelope for --format json.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as JSON, or calls text to render it for people.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text != nil {
		text(f.Writer)
		return nil
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

func (f *OutputFormatter) Error(code, message string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	return err
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	var (
		nf *core.NotFoundError
		ve *core.ValidationError
		ee *ExitError
	)
	switch {
	case errors.As(err, &ee):
		code := ErrCodeInternal
		if ee.Code == ExitFailure {
			code = ErrCodeInvalidInput
		}
		_ = f.Error(code, ee.Error())
		return ee
	case errors.As(err, &nf):
		_ = f.Error(ErrCodeNotFound, nf.Error())
		return WrapExitError(ExitFailure, "not found", err)
	case errors.As(err, &ve):
		_ = f.Error(ErrCodeInvalidInput, ve.Error())
		return WrapExitError(ExitFailure, "invalid input", err)
	default:
		_ = f.Error(ErrCodeInternal, err.Error())
		return WrapExitError(ExitCommandError, "command failed", err)
	}
}

// VerboseLog writes to ErrWriter only when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
