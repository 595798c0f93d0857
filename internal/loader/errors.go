package loader

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/strata/internal/schema"
)

// Error code constants for loading model definitions.
// Composition failures keep the schema package's E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No definition files found
	ErrCodeLoadFailed  = "E004" // CUE load or YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeUnknownKey   = "E101" // Key not recognized in a model definition
	ErrCodeInvalidValue = "E102" // Value has the wrong shape or type
	ErrCodeUnknownRef   = "E103" // parent/bases names an undefined model
	ErrCodeRefCycle     = "E104" // parent/bases references form a cycle
	ErrCodeDuplicate    = "E105" // Model defined twice
	ErrCodeNoModels     = "E106" // Files contain no models
)

// Position locates a definition in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position names a file.
func (p Position) IsValid() bool {
	return p.File != ""
}

func (p Position) String() string {
	switch {
	case !p.IsValid():
		return ""
	case p.Line == 0:
		return p.File
	case p.Column > 0:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	default:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
}

func cuePosition(pos token.Pos) Position {
	if !pos.IsValid() {
		return Position{}
	}
	return Position{File: pos.Filename(), Line: pos.Line(), Column: pos.Column()}
}

// LoadError represents an error that occurred while loading definitions.
type LoadError struct {
	Code    string
	Message string
	Pos     Position
	// Err is the underlying schema error for composition failures.
	Err error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsLoadError returns true if err wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// CodeOf returns the code of a *LoadError in err's chain, or "".
func CodeOf(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func loadErr(code string, pos Position, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// wrapSchemaErr attaches a model's position to a composition failure.
func wrapSchemaErr(err error, pos Position) *LoadError {
	code := string(schema.CodeOf(err))
	if code == "" {
		code = ErrCodeInvalidValue
	}
	return &LoadError{Code: code, Message: err.Error(), Pos: pos, Err: err}
}
