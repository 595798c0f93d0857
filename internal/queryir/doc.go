// Package queryir provides the predicate tree behind the query builder.
//
// The tree is backend-neutral: it records which columns are compared to
// what, combined how. Rendering to SQL text lives in querysql.
//
// ARCHITECTURE:
//
//	Q(Kw("age__gte", 18), Kw("name", "bob"))   -> *Node{AND, [Leaf, Leaf]}
//	q1.Or(q2.Not())                            -> *Node{OR, [q1, NOT q2]}
//	Cond(FQ("users", "id"), "eq", F("owner"))  -> Leaf comparing two columns
//
// Expr is a sealed interface using the marker method pattern. Only *Node
// and Leaf implement it, so backends can switch exhaustively:
//
//	switch e := expr.(type) {
//	case *Node:
//	    // connector, negation, children
//	case Leaf:
//	    // column, lookup suffix, value
//	}
//
// SQUASHING:
//
// Combining nodes keeps the tree minimal. A child node is flattened into
// its new parent when it is not negated and either uses the same connector
// or has exactly one child:
//
//	(a AND b) AND (c AND d)  ->  AND[a, b, c, d]
//	(a AND b) OR  (c AND d)  ->  OR[AND[a, b], AND[c, d]]
//
// When a node gains a child under a different connector its existing
// children move into a new wrapping node, so the node's own connector is
// never silently changed underneath its children.
//
// IMMUTABILITY:
//
// And, Or, Not and Merge return new trees and never modify their inputs.
// Nodes built by callers should be treated as read-only once handed to a
// builder.
//
// COLUMN REFERENCES:
//
// ColumnRef (built with F or FQ) is a deferred reference to a column.
// An unqualified reference is resolved against the query's join graph
// by a Resolver before SQL is emitted. ColumnRef is a comparable value, so
// equality and map keys are structural over (model or alias, column).
//
// LITERALS:
//
// Leaf values are either a ColumnRef or a literal. Literals are converted
// with ir.FromGo when they are bound, so floats are rejected there.
package queryir
