package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// SQLType is a column type of the target store.
type SQLType string

const (
	TypeInt64     SQLType = "INT64"
	TypeBool      SQLType = "BOOL"
	TypeTimestamp SQLType = "TIMESTAMP"
	TypeString    SQLType = "STRING"
	TypeBytes     SQLType = "BYTES"
)

// ValidTypes lists every supported column type.
var ValidTypes = map[SQLType]bool{
	TypeInt64:     true,
	TypeBool:      true,
	TypeTimestamp: true,
	TypeString:    true,
	TypeBytes:     true,
}

// Bounded reports whether the type requires a length, e.g. STRING(200).
func (t SQLType) Bounded() bool {
	return t == TypeString || t == TypeBytes
}

// ParseSQLType parses a type name case-insensitively.
func ParseSQLType(s string) (SQLType, error) {
	t := SQLType(strings.ToUpper(strings.TrimSpace(s)))
	if !ValidTypes[t] {
		return "", fmt.Errorf("unknown column type %q", s)
	}
	return t, nil
}

// OnDelete is the interleave ON DELETE action.
type OnDelete string

const (
	OnDeleteCascade  OnDelete = "CASCADE"
	OnDeleteNoAction OnDelete = "NO ACTION"
)

// ParseOnDelete parses an ON DELETE action. Empty input means CASCADE.
func ParseOnDelete(s string) (OnDelete, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(OnDeleteCascade):
		return OnDeleteCascade, nil
	case string(OnDeleteNoAction), "NO_ACTION":
		return OnDeleteNoAction, nil
	default:
		return "", fmt.Errorf("unknown ON DELETE action %q", s)
	}
}

var paramTypes = map[SQLType]reflect.Type{
	TypeInt64:     reflect.TypeOf(int64(0)),
	TypeBool:      reflect.TypeOf(false),
	TypeTimestamp: reflect.TypeOf(time.Time{}),
	TypeString:    reflect.TypeOf(""),
	TypeBytes:     reflect.TypeOf([]byte(nil)),
}

// ParamType returns the Go type an executor binds for a column type.
// Unmapped types fail with a *FieldError.
func ParamType(t SQLType) (reflect.Type, error) {
	pt, ok := paramTypes[t]
	if !ok {
		return nil, &FieldError{
			Code:    ErrCodeInvalidField,
			Message: fmt.Sprintf("no parameter type for column type %q", t),
		}
	}
	return pt, nil
}

// MustParamType is like ParamType but panics on error.
func MustParamType(t SQLType) reflect.Type {
	pt, err := ParamType(t)
	if err != nil {
		panic(err)
	}
	return pt
}
