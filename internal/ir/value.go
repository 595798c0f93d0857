package ir

import (
	"fmt"
	"slices"
	"time"
	"unicode/utf16"
)

// IRValue is a sealed interface representing bindable parameter values.
// Only IRNull, IRString, IRInt, IRBool, IRBytes, IRTimestamp, IRArray and
// IRObject implement it.
// NO IRFloat - the store has no FLOAT64 columns in this model.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents SQL NULL.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString represents a STRING value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an INT64 value.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a BOOL value.
type IRBool bool

func (IRBool) irValue() {}

// IRBytes represents a BYTES value.
type IRBytes []byte

func (IRBytes) irValue() {}

// IRTimestamp represents a TIMESTAMP value. Always stored in UTC.
type IRTimestamp time.Time

func (IRTimestamp) irValue() {}

// Time returns the timestamp as a time.Time in UTC.
func (t IRTimestamp) Time() time.Time {
	return time.Time(t).UTC()
}

// IRArray represents an array of IRValue elements.
// Only used for fingerprints, never bound as a parameter.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// IRPair is a key/value pair for IRObject construction.
type IRPair struct {
	Key   string
	Value IRValue
}

// O builds an IRPair.
// Example: NewIRObject(O("table", IRString("model_a")), O("depth", IRInt(0)))
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// NewIRObject creates an IRObject from typed key-value pairs.
func NewIRObject(pairs ...IRPair) IRObject {
	obj := make(IRObject, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// FromGo converts a Go value into an IRValue.
//
// Accepted inputs: nil, IRValue, string, bool, every signed and unsigned
// integer kind that fits into int64, []byte and time.Time.
// Floats are rejected.
func FromGo(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint:
		if uint64(val) > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return IRInt(val), nil
	case []byte:
		return IRBytes(slices.Clone(val)), nil
	case time.Time:
		return IRTimestamp(val.UTC()), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not supported: %v", val)
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// Native converts a scalar IRValue back to the Go type an executor binds.
// Arrays and objects cannot be bound and return an error.
func Native(v IRValue) (any, error) {
	switch val := v.(type) {
	case IRNull:
		return nil, nil
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		return bool(val), nil
	case IRBytes:
		return []byte(val), nil
	case IRTimestamp:
		return val.Time(), nil
	case IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
