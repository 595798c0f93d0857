package queryir

import (
	"errors"
	"fmt"
)

// Rewrite returns a new tree with every leaf replaced by fn's result.
// The input tree is not modified. The first error from fn stops the walk.
func Rewrite(e Expr, fn func(Leaf) (Leaf, error)) (Expr, error) {
	switch x := e.(type) {
	case Leaf:
		return fn(x)
	case *Node:
		if x == nil {
			return x, nil
		}
		out := &Node{Connector: x.Connector, Negated: x.Negated}
		if x.Children != nil {
			out.Children = make([]Expr, 0, len(x.Children))
		}
		for _, c := range x.Children {
			rc, err := Rewrite(c, fn)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, rc)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown expression type %T", e)
	}
}

// RewriteNode is Rewrite for a *Node root.
func RewriteNode(n *Node, fn func(Leaf) (Leaf, error)) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	out, err := Rewrite(n, fn)
	if err != nil {
		return nil, err
	}
	return out.(*Node), nil
}

// Leaves returns every leaf in depth-first order.
func Leaves(e Expr) []Leaf {
	var out []Leaf
	walk(e, func(l Leaf) {
		out = append(out, l)
	})
	return out
}

// Refs returns every column reference in depth-first order: each leaf's
// column, followed by its value when the value is a ColumnRef.
func Refs(e Expr) []ColumnRef {
	var out []ColumnRef
	walk(e, func(l Leaf) {
		out = append(out, l.Ref)
		if ref, ok := l.Value.(ColumnRef); ok {
			out = append(out, ref)
		}
	})
	return out
}

func walk(e Expr, fn func(Leaf)) {
	switch x := e.(type) {
	case Leaf:
		fn(x)
	case *Node:
		if x == nil {
			return
		}
		for _, c := range x.Children {
			walk(c, fn)
		}
	}
}

// ErrEmptyColumn is returned by Validate for a leaf without a column.
var ErrEmptyColumn = errors.New("predicate has an empty column name")

// Validate checks the tree's structure: connectors are AND or OR, no
// child is nil, and every leaf names a column and a lookup.
//
// Validate is a pure function with no side effects.
func Validate(e Expr) error {
	switch x := e.(type) {
	case Leaf:
		if x.Ref.Column == "" {
			return ErrEmptyColumn
		}
		if x.Lookup == "" {
			return fmt.Errorf("predicate on %s has an empty lookup", x.Ref)
		}
		if ref, ok := x.Value.(ColumnRef); ok && ref.Column == "" {
			return fmt.Errorf("predicate on %s: %w", x.Ref, ErrEmptyColumn)
		}
		return nil
	case *Node:
		if x == nil {
			return errors.New("nil node")
		}
		if x.Connector != AND && x.Connector != OR {
			return fmt.Errorf("unknown connector %q", x.Connector)
		}
		for i, c := range x.Children {
			if c == nil {
				return fmt.Errorf("child %d is nil", i)
			}
			if err := Validate(c); err != nil {
				return err
			}
		}
		return nil
	case nil:
		return errors.New("nil expression")
	default:
		return fmt.Errorf("unknown expression type %T", e)
	}
}
