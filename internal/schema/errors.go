package schema

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes schema errors (E200-E299).
type ErrorCode string

const (
	// Model errors (E201-E209, E212)
	ErrCodeTableMissing      ErrorCode = "E201" // non-abstract model without table name
	ErrCodePrimaryKeyMissing ErrorCode = "E202" // non-abstract model without primary key
	ErrCodePrimaryKeyColumn  ErrorCode = "E203" // primary key column is not a field
	ErrCodeFieldClash        ErrorCode = "E204" // local field shadows a base field
	ErrCodeMultiplePrimary   ErrorCode = "E205" // more than one base declares a primary key
	ErrCodeMultipleParents   ErrorCode = "E206" // bases disagree on interleave parent
	ErrCodeTableCollision    ErrorCode = "E207" // two models share a table name
	ErrCodeInterleaveDepth   ErrorCode = "E208" // parent chain deeper than supported
	ErrCodeIndexColumn       ErrorCode = "E209" // index column is not a field
	ErrCodeInvalidParent     ErrorCode = "E212" // bad base, parent or ON DELETE action

	// Field errors (E210)
	ErrCodeInvalidField ErrorCode = "E210"

	// Index errors (E211, E213)
	ErrCodeInvalidIndex ErrorCode = "E211"
	ErrCodeUnknownIndex ErrorCode = "E213"
)

// ModelError is a composition or registration failure for one model.
// Model errors are raised at definition time and are not recoverable.
type ModelError struct {
	Code    ErrorCode
	Model   string
	Message string
}

func (e *ModelError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Model, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// FieldError is an invalid field configuration.
type FieldError struct {
	Code    ErrorCode
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] field %q: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IndexError is an invalid index configuration or a reference to an index
// that does not exist. Unknown-index errors are recoverable by the caller.
type IndexError struct {
	Code    ErrorCode
	Index   string
	Message string
}

func (e *IndexError) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("[%s] index %q: %s", e.Code, e.Index, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// IsModelError returns true if err wraps a *ModelError.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}

// IsFieldError returns true if err wraps a *FieldError.
func IsFieldError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}

// IsIndexError returns true if err wraps an *IndexError.
func IsIndexError(err error) bool {
	var ie *IndexError
	return errors.As(err, &ie)
}

// CodeOf extracts the error code from any schema error, or "".
func CodeOf(err error) ErrorCode {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Code
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func modelErr(code ErrorCode, model, format string, args ...any) *ModelError {
	return &ModelError{Code: code, Model: model, Message: fmt.Sprintf(format, args...)}
}
