package queryir

import (
	"slices"
)

// Connector joins the children of a Node.
type Connector string

const (
	AND Connector = "AND"
	OR  Connector = "OR"
)

// Expr is a predicate tree element: a *Node or a Leaf.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Leaf compares one column with a value using a lookup suffix.
//
// Value is a ColumnRef for column-to-column comparisons, otherwise a
// literal (nil, bool, integer, string, []byte, time.Time or ir.IRValue).
type Leaf struct {
	Ref    ColumnRef
	Lookup string
	Value  any
}

func (Leaf) exprNode() {}

// Kw builds a leaf from a "column__suffix" key, e.g. Kw("age__gte", 18).
// The key is split on its last separator. When the suffix is not a
// registered operator, the query builder reads the whole key as the column
// name, so Kw("a__b", 1) filters a column named "a__b".
func Kw(key string, value any) Leaf {
	column, lookup := ParseLookup(key)
	return Leaf{Ref: F(column), Lookup: lookup, Value: value}
}

// Cond builds a leaf with an explicit column reference and lookup. An
// empty lookup means DefaultLookup.
func Cond(ref ColumnRef, lookup string, value any) Leaf {
	if lookup == "" {
		lookup = DefaultLookup
	}
	return Leaf{Ref: ref, Lookup: lookup, Value: value}
}

// Node is a boolean combination of predicates.
type Node struct {
	Connector Connector
	Negated   bool
	Children  []Expr
}

func (*Node) exprNode() {}

// Q builds an AND node over the given children. Nil children are skipped.
func Q(children ...Expr) *Node {
	n := &Node{Connector: AND}
	for _, c := range children {
		if c == nil {
			continue
		}
		if node, ok := c.(*Node); ok && node == nil {
			continue
		}
		n.Children = append(n.Children, c)
	}
	return n
}

// Len returns the number of direct children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// IsEmpty reports whether the node has no children.
func (n *Node) IsEmpty() bool {
	return n.Len() == 0
}

// Clone returns a deep copy of the tree. Leaf values are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Connector: n.Connector, Negated: n.Negated}
	if n.Children != nil {
		out.Children = make([]Expr, len(n.Children))
	}
	for i, c := range n.Children {
		out.Children[i] = cloneExpr(c)
	}
	return out
}

func cloneExpr(e Expr) Expr {
	if node, ok := e.(*Node); ok {
		return node.Clone()
	}
	return e
}

// And returns n AND other.
func (n *Node) And(other *Node) *Node {
	return combine(n, other, AND)
}

// Or returns n OR other.
func (n *Node) Or(other *Node) *Node {
	return combine(n, other, OR)
}

// Not returns NOT n.
func (n *Node) Not() *Node {
	out := &Node{Connector: AND}
	if n.IsEmpty() {
		return out
	}
	out.add(n.Clone(), AND)
	out.Negated = true
	return out
}

// Merge returns a copy of n with data added under conn, applying the
// squashing rule. If n's connector differs from conn and n already has
// children, those children are wrapped in a new node first.
func (n *Node) Merge(data Expr, conn Connector) *Node {
	out := n.Clone()
	if out == nil {
		out = &Node{Connector: conn}
	}
	out.add(cloneExpr(data), conn)
	return out
}

func combine(a, b *Node, conn Connector) *Node {
	if b.IsEmpty() {
		if a == nil {
			return &Node{Connector: AND}
		}
		return a.Clone()
	}
	if a.IsEmpty() {
		return b.Clone()
	}
	out := &Node{Connector: conn}
	out.add(a.Clone(), conn)
	out.add(b.Clone(), conn)
	return out
}

// add mutates n. Callers must own n.
func (n *Node) add(data Expr, conn Connector) {
	if node, ok := data.(*Node); ok && slices.ContainsFunc(n.Children, func(c Expr) bool {
		other, ok := c.(*Node)
		return ok && other == node
	}) {
		return
	}

	if len(n.Children) == 0 {
		n.Connector = conn
		n.Negated = false
	}

	if n.Connector == conn && !n.Negated {
		if node, ok := data.(*Node); ok && !node.Negated &&
			(node.Connector == conn || len(node.Children) == 1) {
			n.Children = append(n.Children, node.Children...)
			return
		}
		n.Children = append(n.Children, data)
		return
	}

	inner := &Node{Connector: n.Connector, Negated: n.Negated, Children: n.Children}
	n.Connector = conn
	n.Negated = false
	n.Children = []Expr{inner}
	n.add(data, conn)
}
