// Package querysql builds parameterized SELECT statements over composed
// schemas.
//
// A QuerySet is an immutable value. Every builder method returns a new
// QuerySet and leaves its receiver untouched, so partially built queries
// can be shared and extended independently:
//
//	qs, err := querysql.New(users)
//	adults, err := qs.Filter(queryir.Q(queryir.Kw("age__gte", 18)))
//	stmt, err := adults.Query()
//	// SELECT `users`.`id`, ... FROM `users` WHERE `users`.`age` >= @age
//
// Column references are resolved when a predicate is added, so a bad
// reference fails at the call that introduced it rather than at Query.
package querysql

import (
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/strata/internal/queryir"
	"github.com/roach88/strata/internal/schema"
)

// BaseTable is the Index sentinel that forces a scan of the base table.
const BaseTable = "_BASE_TABLE"

// JoinType is the kind of SQL join.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
)

// joinSpec is one joined model. key is the alias, or the table name when
// no alias was given.
type joinSpec struct {
	key      string
	model    *schema.Schema
	alias    string
	joinType JoinType
	on       *queryir.Node
}

// selection is the projection of one model or alias. A missing selection
// projects every field.
type selection struct {
	columns []string
}

// QuerySet is an immutable SELECT builder.
type QuerySet struct {
	model    *schema.Schema
	ops      *Operators
	logger   *slog.Logger
	index    string
	joins    []joinSpec
	selected map[string]selection
	where    *queryir.Node
	params   Params
}

// Option configures a QuerySet.
type Option func(*QuerySet)

// WithOperators sets the operator registry used to render lookups.
// Defaults to the built-in operators.
func WithOperators(ops *Operators) Option {
	return func(qs *QuerySet) {
		if ops != nil {
			qs.ops = ops
		}
	}
}

// WithLogger sets the logger for builder debug records. Defaults to
// discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(qs *QuerySet) {
		if logger != nil {
			qs.logger = logger
		}
	}
}

// New starts a query over a non-abstract model.
func New(model *schema.Schema, opts ...Option) (QuerySet, error) {
	if model == nil {
		return QuerySet{}, queryErr(ErrCodeInvalidModel, "model is required")
	}
	if model.Abstract() {
		return QuerySet{}, queryErr(ErrCodeInvalidModel, "cannot query abstract model %q", model.Name())
	}

	qs := QuerySet{
		model:    model,
		ops:      builtinOperators,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		selected: make(map[string]selection),
	}
	for _, opt := range opts {
		opt(&qs)
	}
	return qs, nil
}

// Model returns the base model.
func (qs QuerySet) Model() *schema.Schema { return qs.model }

// SelectedIndex returns the forced index, or "" when none was chosen.
func (qs QuerySet) SelectedIndex() string { return qs.index }

// Where returns a copy of the accumulated predicate, or nil.
func (qs QuerySet) Where() *queryir.Node { return qs.where.Clone() }

// Params returns the parameter table.
func (qs QuerySet) Params() Params { return qs.params }

// Keys returns the base table followed by every join key, in join order.
func (qs QuerySet) Keys() []string {
	keys := make([]string, 0, 1+len(qs.joins))
	keys = append(keys, qs.model.Table())
	for _, j := range qs.joins {
		keys = append(keys, j.key)
	}
	return keys
}

// clone copies every mutable part of the QuerySet. The where tree is
// shared because predicate operations never modify it in place.
func (qs QuerySet) clone() QuerySet {
	out := qs
	out.joins = slices.Clone(qs.joins)
	out.selected = make(map[string]selection, len(qs.selected))
	for k, v := range qs.selected {
		out.selected[k] = selection{columns: slices.Clone(v.columns)}
	}
	return out
}

// modelFor returns the model joined under key.
func (qs QuerySet) modelFor(key string) (*schema.Schema, bool) {
	if key == qs.model.Table() {
		return qs.model, true
	}
	for _, j := range qs.joins {
		if j.key == key {
			return j.model, true
		}
	}
	return nil, false
}

// ResolveColumn implements queryir.Resolver against the current join graph.
func (qs QuerySet) ResolveColumn(ref queryir.ColumnRef) (queryir.ColumnRef, error) {
	if ref.Column == "" {
		return queryir.ColumnRef{}, queryErr(ErrCodeUnknownColumn, "empty column reference")
	}

	if ref.Qualified() {
		model, ok := qs.modelFor(ref.Model)
		if !ok {
			return queryir.ColumnRef{}, queryErr(ErrCodeNotJoined,
				"%q is not joined into the query on %q", ref.Model, qs.model.Table())
		}
		if !model.HasField(ref.Column) {
			return queryir.ColumnRef{}, queryErr(ErrCodeUnknownColumn,
				"%q has no column %q", ref.Model, ref.Column)
		}
		return ref, nil
	}

	var owners []string
	for _, key := range qs.Keys() {
		model, _ := qs.modelFor(key)
		if model.HasField(ref.Column) {
			owners = append(owners, key)
		}
	}
	switch len(owners) {
	case 0:
		return queryir.ColumnRef{}, queryErr(ErrCodeUnknownColumn,
			"no joined model has column %q", ref.Column)
	case 1:
		return queryir.FQ(owners[0], ref.Column), nil
	default:
		return queryir.ColumnRef{}, queryErr(ErrCodeAmbiguousColumn,
			"column %q is ambiguous between %v; qualify it with FQ", ref.Column, owners)
	}
}

func (qs QuerySet) fieldType(ref queryir.ColumnRef) schema.SQLType {
	model, _ := qs.modelFor(ref.Model)
	f, _ := model.Field(ref.Column)
	return f.Type
}

// Index forces the base table scan through a named index, or through the
// base table itself with BaseTable. Unknown names are a *schema.IndexError.
func (qs QuerySet) Index(name string) (QuerySet, error) {
	if name != BaseTable {
		if _, ok := qs.model.Index(name); !ok {
			return QuerySet{}, &schema.IndexError{
				Code:    schema.ErrCodeUnknownIndex,
				Index:   name,
				Message: "no such index on " + qs.model.Table(),
			}
		}
	}
	out := qs.clone()
	out.index = name
	out.logger.Debug("force index", "table", qs.model.Table(), "index", name)
	return out, nil
}

// Values adds base model columns to the projection.
func (qs QuerySet) Values(columns ...string) (QuerySet, error) {
	return qs.ValuesFor(qs.model.Table(), columns...)
}

// ValuesFor adds columns of a joined model or alias to the projection.
// Columns keep first-seen order and duplicates are dropped.
func (qs QuerySet) ValuesFor(modelOrAlias string, columns ...string) (QuerySet, error) {
	model, ok := qs.modelFor(modelOrAlias)
	if !ok {
		return QuerySet{}, queryErr(ErrCodeNotJoined, "%q is not joined into the query", modelOrAlias)
	}
	for _, col := range columns {
		if !model.HasField(col) {
			return QuerySet{}, queryErr(ErrCodeUnknownColumn, "%q has no column %q", modelOrAlias, col)
		}
	}

	out := qs.clone()
	if len(columns) == 0 {
		return out, nil
	}
	sel := out.selected[modelOrAlias]
	for _, col := range columns {
		if !slices.Contains(sel.columns, col) {
			sel.columns = append(sel.columns, col)
		}
	}
	out.selected[modelOrAlias] = sel
	out.logger.Debug("values", "key", modelOrAlias, "columns", sel.columns)
	return out, nil
}

// ResetValues returns a model or alias to projecting all of its fields.
func (qs QuerySet) ResetValues(modelOrAlias string) (QuerySet, error) {
	if _, ok := qs.modelFor(modelOrAlias); !ok {
		return QuerySet{}, queryErr(ErrCodeNotJoined, "%q is not joined into the query", modelOrAlias)
	}
	out := qs.clone()
	delete(out.selected, modelOrAlias)
	return out, nil
}

// ResetAllValues returns every model and alias, joins included, to
// projecting all of its fields.
func (qs QuerySet) ResetAllValues() QuerySet {
	out := qs.clone()
	out.selected = make(map[string]selection)
	return out
}

// projection returns the rendered column references of one key.
func (qs QuerySet) projection(key string) []queryir.ColumnRef {
	var columns []string
	if sel, ok := qs.selected[key]; ok {
		columns = sel.columns
	} else {
		model, _ := qs.modelFor(key)
		columns = model.FieldNames()
	}
	refs := make([]queryir.ColumnRef, len(columns))
	for i, col := range columns {
		refs[i] = queryir.FQ(key, col)
	}
	return refs
}

// AddParam registers a parameter for a column and returns its generated
// name: the column name, or column_1, column_2, ... on collision.
func (qs QuerySet) AddParam(ref queryir.ColumnRef, value any) (QuerySet, string, error) {
	resolved, err := qs.ResolveColumn(ref)
	if err != nil {
		return QuerySet{}, "", err
	}
	out := qs.clone()
	name, err := out.bind(resolved, value)
	if err != nil {
		return QuerySet{}, "", err
	}
	return out, name, nil
}

// bind mutates qs. Callers must own qs.
func (qs *QuerySet) bind(ref queryir.ColumnRef, value any) (string, error) {
	typ := qs.fieldType(ref)
	v, err := bindValue(value, typ)
	if err != nil {
		return "", err
	}
	name := qs.params.nextName(ref.Column)
	qs.params = qs.params.with(Param{Name: name, Value: v, Type: typ})
	return name, nil
}
