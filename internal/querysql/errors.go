package querysql

import (
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/schema"
)

// ErrorCode categorizes query builder errors (E300-E399).
type ErrorCode string

const (
	ErrCodeUnknownColumn     ErrorCode = "E301" // column not on any joined model
	ErrCodeAmbiguousColumn   ErrorCode = "E302" // column on two or more joined models
	ErrCodeNotJoined         ErrorCode = "E303" // model or alias not part of the query
	ErrCodeDuplicateJoin     ErrorCode = "E304" // model joined twice without alias
	ErrCodeAliasCollision    ErrorCode = "E305" // alias already names a joined model
	ErrCodeEmptyOn           ErrorCode = "E306" // join without ON predicate
	ErrCodeUnknownLookup     ErrorCode = "E307" // lookup suffix has no operator
	ErrCodeUnsupportedValue  ErrorCode = "E308" // literal cannot be bound to the column
	ErrCodeDuplicateOperator ErrorCode = "E309" // two operators for one suffix
	ErrCodeInvalidJoinType   ErrorCode = "E310" // join type is not INNER/LEFT/RIGHT/FULL
	ErrCodeInvalidExpr       ErrorCode = "E311" // malformed predicate tree
	ErrCodeInvalidModel      ErrorCode = "E312" // nil or abstract model
	ErrCodeNoColumns         ErrorCode = "E313" // nothing projected
)

// QueryError is a builder call that references something the query
// cannot resolve. Query errors are programmer errors and are returned by
// the call that introduced them.
type QueryError struct {
	Code    ErrorCode
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func queryErr(code ErrorCode, format string, args ...any) *QueryError {
	return &QueryError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsQueryError returns true if err wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsIndexError returns true if err is an unknown-index error from Index.
func IsIndexError(err error) bool {
	return schema.IsIndexError(err)
}

// CodeOf returns the QueryError code of err, or "".
func CodeOf(err error) ErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}
