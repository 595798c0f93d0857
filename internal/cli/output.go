package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/strata/internal/loader"
	"github.com/roach88/strata/internal/querysql"
	"github.com/roach88/strata/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The definitions or the query are wrong
	ExitCommandError = 2 // The invocation is wrong: paths, flags, output files, journal
)

// Error codes for failures that carry no loader, schema or query code.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeJournal      = "E008" // DDL journal open or write failed
	ErrCodeInvalidWhere = "E009" // Malformed --where/--exclude argument
)

// ExitError is a failure that has already been written through an
// OutputFormatter. main only maps it to the process exit code.
type ExitError struct {
	Code    int    // Exit code (ExitFailure or ExitCommandError)
	ErrCode string // Reported error code, e.g. "E103"
	Message string // Reported message
	Err     error  // Cause, when the failure came from another package
}

func (e *ExitError) Error() string {
	if e.ErrCode == "" {
		return e.Message
	}
	return e.ErrCode + ": " + e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error. A nil error is
// ExitSuccess; an error that is not an ExitError is ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// textWriter is implemented by command results that have their own text
// form. Results without one are printed with fmt.Fprintln.
type textWriter interface {
	WriteText(w io.Writer)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose logs; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // DDLResult, []OrderEntry, ValidationResult or QueryResult
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // loader E0xx/E1xx, schema E2xx, query E3xx
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // e.g. {"position": "models.cue:4:8"}
}

// Success outputs a command result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if tw, ok := data.(textWriter); ok {
		tw.WriteText(f.Writer)
		return nil
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail writes an error and returns the ExitError the command should
// return.
func (f *OutputFormatter) Fail(exit int, code, message string, details any, cause error) error {
	_ = f.Error(code, message, details)
	return &ExitError{Code: exit, ErrCode: code, Message: message, Err: cause}
}

// Report writes err under the code of the package it came from and
// returns the matching ExitError. Errors already reported pass through.
func (f *OutputFormatter) Report(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		exit := ExitFailure
		switch loadErr.Code {
		case loader.ErrCodeNotFound, loader.ErrCodeScanError, loader.ErrCodeNoFiles:
			exit = ExitCommandError
		}
		if !loadErr.Pos.IsValid() {
			return f.Fail(exit, loadErr.Code, loadErr.Message, nil, err)
		}
		return f.Fail(exit, loadErr.Code,
			fmt.Sprintf("%s: %s", loadErr.Pos, loadErr.Message),
			map[string]string{"position": loadErr.Pos.String()}, err)
	}

	var predErr *predicateError
	if errors.As(err, &predErr) {
		return f.Fail(ExitCommandError, ErrCodeInvalidWhere, err.Error(), nil, err)
	}

	if code := querysql.CodeOf(err); code != "" {
		return f.Fail(ExitFailure, string(code), err.Error(), nil, err)
	}
	if code := schema.CodeOf(err); code != "" {
		return f.Fail(ExitFailure, string(code), err.Error(), nil, err)
	}
	return f.Fail(ExitFailure, ErrCodeGeneric, err.Error(), nil, err)
}

// VerboseLog writes a line to ErrWriter when verbose mode is enabled, so
// JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
