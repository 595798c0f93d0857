package schema

import (
	"fmt"
	"sync/atomic"
)

// declarationCounter orders fields by construction across the process.
var declarationCounter atomic.Int64

// Field is a typed column declaration.
//
// Fields are values; copying a Field into another schema keeps its
// declaration order.
type Field struct {
	Name     string
	Type     SQLType
	Nullable bool
	// Length is required for STRING and BYTES and ignored otherwise.
	Length int

	order int64
}

// FieldOption configures a Field.
type FieldOption func(*Field)

// AllowNull marks the field as NULL-able. Fields are NOT NULL by default.
func AllowNull() FieldOption {
	return func(f *Field) {
		f.Nullable = true
	}
}

// WithLength sets the maximum length of a STRING or BYTES column.
func WithLength(n int) FieldOption {
	return func(f *Field) {
		f.Length = n
	}
}

// NewField validates and constructs a Field, assigning it the next
// declaration order.
func NewField(name string, typ SQLType, opts ...FieldOption) (Field, error) {
	f := Field{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&f)
	}

	if name == "" {
		return Field{}, &FieldError{Code: ErrCodeInvalidField, Message: "field name is required"}
	}
	if !ValidTypes[typ] {
		return Field{}, &FieldError{
			Code:    ErrCodeInvalidField,
			Field:   name,
			Message: fmt.Sprintf("unknown column type %q", typ),
		}
	}
	if typ.Bounded() && f.Length <= 0 {
		return Field{}, &FieldError{
			Code:    ErrCodeInvalidField,
			Field:   name,
			Message: fmt.Sprintf("%s columns require a positive length", typ),
		}
	}
	if f.Length < 0 {
		return Field{}, &FieldError{
			Code:    ErrCodeInvalidField,
			Field:   name,
			Message: "length must not be negative",
		}
	}

	f.order = declarationCounter.Add(1)
	return f, nil
}

// MustField is like NewField but panics on error.
// Use for package-level model declarations.
func MustField(name string, typ SQLType, opts ...FieldOption) Field {
	f, err := NewField(name, typ, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Int64 declares an INT64 column.
func Int64(name string, opts ...FieldOption) Field {
	return MustField(name, TypeInt64, opts...)
}

// Bool declares a BOOL column.
func Bool(name string, opts ...FieldOption) Field {
	return MustField(name, TypeBool, opts...)
}

// Timestamp declares a TIMESTAMP column.
func Timestamp(name string, opts ...FieldOption) Field {
	return MustField(name, TypeTimestamp, opts...)
}

// String declares a STRING(length) column.
func String(name string, length int, opts ...FieldOption) Field {
	return MustField(name, TypeString, append([]FieldOption{WithLength(length)}, opts...)...)
}

// Bytes declares a BYTES(length) column.
func Bytes(name string, length int, opts ...FieldOption) Field {
	return MustField(name, TypeBytes, append([]FieldOption{WithLength(length)}, opts...)...)
}

// Order returns the declaration order. Lower values were declared first.
func (f Field) Order() int64 {
	return f.order
}

// TypeString renders the column type with its length, e.g. STRING(200).
func (f Field) TypeString() string {
	if f.Type.Bounded() {
		return fmt.Sprintf("%s(%d)", f.Type, f.Length)
	}
	return string(f.Type)
}
