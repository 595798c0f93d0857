package querysql

import (
	"sync"
)

// Operator renders a comparison for one lookup suffix.
type Operator interface {
	// Lookup returns the suffix the operator is registered under, e.g. "gte".
	Lookup() string
	// Render renders lhs compared with rhs. Both sides are already quoted
	// column references or parameter placeholders.
	Render(lhs, rhs string) string
}

// BinaryOperator renders "lhs SYMBOL rhs".
type BinaryOperator struct {
	Suffix string
	Symbol string
}

// Lookup implements Operator.
func (o BinaryOperator) Lookup() string { return o.Suffix }

// Render implements Operator.
func (o BinaryOperator) Render(lhs, rhs string) string {
	return lhs + " " + o.Symbol + " " + rhs
}

// Operators maps lookup suffixes to operators.
//
// Register during startup; lookups afterwards are read-only.
type Operators struct {
	mu    sync.RWMutex
	ops   map[string]Operator
	order []string
}

// NewOperators creates an empty operator registry.
func NewOperators() *Operators {
	return &Operators{ops: make(map[string]Operator)}
}

// DefaultOperators creates a registry with the built-in comparisons:
// eq, gte, gt, lte and lt.
func DefaultOperators() *Operators {
	r := NewOperators()
	r.MustRegister(BinaryOperator{Suffix: "eq", Symbol: "="})
	r.MustRegister(BinaryOperator{Suffix: "gte", Symbol: ">="})
	r.MustRegister(BinaryOperator{Suffix: "gt", Symbol: ">"})
	r.MustRegister(BinaryOperator{Suffix: "lte", Symbol: "<="})
	r.MustRegister(BinaryOperator{Suffix: "lt", Symbol: "<"})
	return r
}

// builtinOperators backs queries built without WithOperators.
var builtinOperators = DefaultOperators()

// Register adds an operator. A second operator for the same suffix is a
// *QueryError.
func (r *Operators) Register(op Operator) error {
	suffix := op.Lookup()
	if suffix == "" {
		return queryErr(ErrCodeDuplicateOperator, "operator %T has an empty lookup suffix", op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.ops[suffix]; ok {
		return queryErr(ErrCodeDuplicateOperator,
			"lookup %q is already registered by %T", suffix, existing)
	}
	r.ops[suffix] = op
	r.order = append(r.order, suffix)
	return nil
}

// MustRegister is like Register but panics on error. Use at startup.
func (r *Operators) MustRegister(op Operator) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Lookup returns the operator for a suffix.
func (r *Operators) Lookup(suffix string) (Operator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[suffix]
	return op, ok
}

// Suffixes returns registered suffixes in registration order.
func (r *Operators) Suffixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
