package querysql

import (
	"github.com/roach88/strata/internal/queryir"
)

// Filter adds q to the predicate with AND.
func (qs QuerySet) Filter(q *queryir.Node) (QuerySet, error) {
	return qs.merge(q, queryir.AND, false)
}

// FilterAnd is Filter.
func (qs QuerySet) FilterAnd(q *queryir.Node) (QuerySet, error) {
	return qs.merge(q, queryir.AND, false)
}

// FilterOr adds q to the predicate with OR.
func (qs QuerySet) FilterOr(q *queryir.Node) (QuerySet, error) {
	return qs.merge(q, queryir.OR, false)
}

// Exclude adds NOT q to the predicate with AND.
func (qs QuerySet) Exclude(q *queryir.Node) (QuerySet, error) {
	return qs.merge(q, queryir.AND, true)
}

// merge resolves every reference in q against the join graph, binds its
// literals and only then combines it with the existing predicate.
func (qs QuerySet) merge(q *queryir.Node, conn queryir.Connector, negate bool) (QuerySet, error) {
	if q.IsEmpty() {
		return qs.clone(), nil
	}
	if err := queryir.Validate(q); err != nil {
		return QuerySet{}, queryErr(ErrCodeInvalidExpr, "%v", err)
	}

	out := qs.clone()
	resolved, err := queryir.RewriteNode(q, out.resolveLeaf)
	if err != nil {
		return QuerySet{}, err
	}
	if negate {
		resolved = resolved.Not()
	}
	out.where = out.where.Merge(resolved, conn)

	out.logger.Debug("filter",
		"table", qs.model.Table(),
		"connector", conn,
		"negated", negate,
		"params", out.params.Len())
	return out, nil
}

// resolveLeaf mutates qs through bind. Callers must own qs.
func (qs *QuerySet) resolveLeaf(l queryir.Leaf) (queryir.Leaf, error) {
	l, ok := qs.ops.wholeKeyColumn(l, qs.ResolveColumn)
	if !ok {
		return l, queryErr(ErrCodeUnknownLookup, "unknown lookup %q on %s", l.Lookup, l.Ref)
	}

	ref, err := qs.ResolveColumn(l.Ref)
	if err != nil {
		return l, err
	}
	l.Ref = ref

	switch v := l.Value.(type) {
	case queryir.ColumnRef:
		rhs, err := qs.ResolveColumn(v)
		if err != nil {
			return l, err
		}
		l.Value = rhs
	case queryir.Param:
		if _, ok := qs.params.Get(v.Name); !ok {
			return l, queryErr(ErrCodeUnsupportedValue, "unknown parameter %q", v.Name)
		}
	default:
		name, err := qs.bind(ref, v)
		if err != nil {
			return l, err
		}
		l.Value = queryir.Param{Name: name}
	}
	return l, nil
}

// wholeKeyColumn returns l unchanged when its lookup is registered. A
// lookup that is not an operator may instead be the tail of a column name
// containing the separator, e.g. Kw("a__b", 1) on a column "a__b"; if
// resolve finds that column, the leaf is rewritten to compare it with
// DefaultLookup.
func (r *Operators) wholeKeyColumn(l queryir.Leaf, resolve func(queryir.ColumnRef) (queryir.ColumnRef, error)) (queryir.Leaf, bool) {
	if _, ok := r.Lookup(l.Lookup); ok {
		return l, true
	}
	ref := l.Ref
	ref.Column += queryir.LookupSep + l.Lookup
	if _, err := resolve(ref); err != nil {
		return l, false
	}
	l.Ref = ref
	l.Lookup = queryir.DefaultLookup
	return l, true
}
