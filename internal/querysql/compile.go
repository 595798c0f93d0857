package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/strata/internal/ddl"
	"github.com/roach88/strata/internal/ir"
	"github.com/roach88/strata/internal/queryir"
)

// Statement is compiled query text plus the parameters it references.
type Statement struct {
	SQL    string
	Params Params
}

// Fingerprint identifies the statement's shape: its text and parameter
// types, not parameter values.
func (s Statement) Fingerprint() (string, error) {
	return ir.StatementFingerprint(s.SQL, s.Params.Types())
}

// Query compiles the QuerySet:
//
//	SELECT <columns> FROM `table`[@{FORCE_INDEX=name}][ <joins>][ WHERE <predicate>]
//
// Columns are the base model's projection followed by each join's, in
// join order. Query is pure; calling it twice yields identical output.
func (qs QuerySet) Query() (Statement, error) {
	var columns []string
	for _, key := range qs.Keys() {
		for _, ref := range qs.projection(key) {
			columns = append(columns, ref.String())
		}
	}
	if len(columns) == 0 {
		return Statement{}, queryErr(ErrCodeNoColumns, "query on %q projects no columns", qs.model.Table())
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(ddl.Quote(qs.model.Table()))
	if qs.index != "" {
		fmt.Fprintf(&b, "@{FORCE_INDEX=%s}", qs.index)
	}

	for _, j := range qs.joins {
		on, err := qs.render(j.on, false, 1)
		if err != nil {
			return Statement{}, err
		}
		fmt.Fprintf(&b, " %s JOIN %s", j.joinType, ddl.Quote(j.model.Table()))
		if j.alias != "" {
			fmt.Fprintf(&b, " AS %s", ddl.Quote(j.alias))
		}
		fmt.Fprintf(&b, " ON %s", on)
	}

	if !qs.where.IsEmpty() {
		where, err := qs.render(qs.where, false, 1)
		if err != nil {
			return Statement{}, err
		}
		if where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
		}
	}

	stmt := Statement{SQL: b.String(), Params: qs.params}
	qs.logger.Debug("compiled query",
		"table", qs.model.Table(),
		"joins", len(qs.joins),
		"params", qs.params.Len())
	return stmt, nil
}

// render renders a predicate tree. A nested node is parenthesized when
// it joins several parts under a connector different from the one it sits
// in, and a negated node renders as NOT (...), parenthesized again when it
// is one of several siblings. A node with a single live child is
// transparent: the child renders as if it took the node's place.
func (qs QuerySet) render(e queryir.Expr, nested bool, siblings int) (string, error) {
	return qs.renderNested(e, nested, "", siblings)
}

func (qs QuerySet) renderNested(e queryir.Expr, nested bool, parent queryir.Connector, siblings int) (string, error) {
	switch x := e.(type) {
	case queryir.Leaf:
		return qs.renderLeaf(x)
	case *queryir.Node:
		live := liveChildren(x)
		if len(live) == 0 {
			return "", nil
		}

		if !x.Negated && len(live) == 1 {
			return qs.renderNested(live[0], nested, parent, siblings)
		}

		// NOT (...) already encloses a lone child
		childNested := !x.Negated || len(live) > 1
		parts := make([]string, 0, len(live))
		for _, c := range live {
			s, err := qs.renderNested(c, childNested, x.Connector, len(live))
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}

		body := strings.Join(parts, " "+string(x.Connector)+" ")
		if x.Negated {
			body = "NOT (" + body + ")"
			if nested && siblings > 1 {
				body = "(" + body + ")"
			}
			return body, nil
		}
		if nested && x.Connector != parent {
			body = "(" + body + ")"
		}
		return body, nil
	default:
		return "", queryErr(ErrCodeInvalidExpr, "unknown expression type %T", e)
	}
}

// liveChildren returns the children of n that render to something.
func liveChildren(n *queryir.Node) []queryir.Expr {
	if n == nil {
		return nil
	}
	var live []queryir.Expr
	for _, c := range n.Children {
		if node, ok := c.(*queryir.Node); ok && len(liveChildren(node)) == 0 {
			continue
		}
		live = append(live, c)
	}
	return live
}

func (qs QuerySet) renderLeaf(l queryir.Leaf) (string, error) {
	op, ok := qs.ops.Lookup(l.Lookup)
	if !ok {
		return "", queryErr(ErrCodeUnknownLookup, "unknown lookup %q on %s", l.Lookup, l.Ref)
	}

	var rhs string
	switch v := l.Value.(type) {
	case queryir.ColumnRef:
		rhs = v.String()
	case queryir.Param:
		rhs = v.String()
	default:
		return "", queryErr(ErrCodeUnsupportedValue, "unbound value %v on %s", v, l.Ref)
	}
	return op.Render(l.Ref.String(), rhs), nil
}
