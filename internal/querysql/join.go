package querysql

import (
	"slices"

	"github.com/roach88/strata/internal/queryir"
	"github.com/roach88/strata/internal/schema"
)

type joinConfig struct {
	alias    string
	joinType JoinType
	fields   []string
	noFields bool
}

// JoinOption configures a join.
type JoinOption func(*joinConfig)

// WithAlias joins the model under an alias. Required to join a model that
// is already part of the query.
func WithAlias(alias string) JoinOption {
	return func(c *joinConfig) {
		c.alias = alias
	}
}

// WithJoinType sets the join type. Defaults to LEFT.
func WithJoinType(t JoinType) JoinOption {
	return func(c *joinConfig) {
		c.joinType = t
	}
}

// WithFields projects only the given columns of the joined model.
// Without it every column of the joined model is projected.
func WithFields(columns ...string) JoinOption {
	return func(c *joinConfig) {
		c.fields = append(c.fields, columns...)
	}
}

// WithoutFields projects none of the joined model's columns.
func WithoutFields() JoinOption {
	return func(c *joinConfig) {
		c.noFields = true
	}
}

// Join adds a model to the query.
//
// Leaf columns in on refer to the joined model unless qualified. Column
// values in on are resolved against the query as it was before the join,
// so F("id_a") means the already-joined owner of id_a. Literal values are
// bound as parameters of the joined column.
func (qs QuerySet) Join(model *schema.Schema, on *queryir.Node, opts ...JoinOption) (QuerySet, error) {
	if model == nil {
		return QuerySet{}, queryErr(ErrCodeInvalidModel, "join model is required")
	}
	if model.Abstract() {
		return QuerySet{}, queryErr(ErrCodeInvalidModel, "cannot join abstract model %q", model.Name())
	}

	cfg := joinConfig{joinType: JoinLeft}
	for _, opt := range opts {
		opt(&cfg)
	}
	switch cfg.joinType {
	case JoinInner, JoinLeft, JoinRight, JoinFull:
	default:
		return QuerySet{}, queryErr(ErrCodeInvalidJoinType, "unknown join type %q", cfg.joinType)
	}

	if on.IsEmpty() {
		return QuerySet{}, queryErr(ErrCodeEmptyOn, "join of %q requires an ON predicate", model.Table())
	}
	if err := queryir.Validate(on); err != nil {
		return QuerySet{}, queryErr(ErrCodeInvalidExpr, "join of %q: %v", model.Table(), err)
	}

	key := model.Table()
	if cfg.alias != "" {
		if _, taken := qs.modelFor(cfg.alias); taken {
			return QuerySet{}, queryErr(ErrCodeAliasCollision, "alias %q is already used in the query", cfg.alias)
		}
		key = cfg.alias
	} else if _, taken := qs.modelFor(key); taken {
		return QuerySet{}, queryErr(ErrCodeDuplicateJoin,
			"%q is already joined; join it again WithAlias", key)
	}

	for _, col := range cfg.fields {
		if !model.HasField(col) {
			return QuerySet{}, queryErr(ErrCodeUnknownColumn, "%q has no column %q", key, col)
		}
	}

	next := qs.clone()
	next.joins = append(next.joins, joinSpec{
		key:      key,
		model:    model,
		alias:    cfg.alias,
		joinType: cfg.joinType,
	})

	resolved, err := queryir.RewriteNode(on, func(l queryir.Leaf) (queryir.Leaf, error) {
		l, ok := next.ops.wholeKeyColumn(l, func(ref queryir.ColumnRef) (queryir.ColumnRef, error) {
			if !ref.Qualified() {
				ref = queryir.FQ(key, ref.Column)
			}
			return next.ResolveColumn(ref)
		})
		if !ok {
			return l, queryErr(ErrCodeUnknownLookup, "unknown lookup %q on %s", l.Lookup, l.Ref)
		}

		lhs := l.Ref
		if !lhs.Qualified() {
			lhs = queryir.FQ(key, lhs.Column)
		}
		ref, err := next.ResolveColumn(lhs)
		if err != nil {
			return l, err
		}
		l.Ref = ref

		switch v := l.Value.(type) {
		case queryir.ColumnRef:
			var rhs queryir.ColumnRef
			if v.Qualified() {
				rhs, err = next.ResolveColumn(v)
			} else {
				rhs, err = qs.ResolveColumn(v)
			}
			if err != nil {
				return l, err
			}
			l.Value = rhs
		case queryir.Param:
			if _, ok := next.params.Get(v.Name); !ok {
				return l, queryErr(ErrCodeUnsupportedValue, "unknown parameter %q", v.Name)
			}
		default:
			name, err := next.bind(ref, v)
			if err != nil {
				return l, err
			}
			l.Value = queryir.Param{Name: name}
		}
		return l, nil
	})
	if err != nil {
		return QuerySet{}, err
	}
	next.joins[len(next.joins)-1].on = resolved

	switch {
	case cfg.noFields:
		next.selected[key] = selection{columns: []string{}}
	case len(cfg.fields) > 0:
		var cols []string
		for _, col := range cfg.fields {
			if !slices.Contains(cols, col) {
				cols = append(cols, col)
			}
		}
		next.selected[key] = selection{columns: cols}
	}

	next.logger.Debug("join",
		"table", model.Table(),
		"key", key,
		"type", cfg.joinType)
	return next, nil
}
