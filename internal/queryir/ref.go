package queryir

import (
	"github.com/roach88/strata/internal/schema"
)

// ColumnRef is a deferred reference to a column, optionally qualified by
// a model table name or join alias.
type ColumnRef struct {
	Model  string // table name or alias; empty when unqualified
	Column string
}

// F references a column by name only. It must be resolved against a
// query before it can be rendered.
func F(column string) ColumnRef {
	return ColumnRef{Column: column}
}

// FQ references a column of a specific model table or join alias.
func FQ(modelOrAlias, column string) ColumnRef {
	return ColumnRef{Model: modelOrAlias, Column: column}
}

// FOf references a column of a schema's table.
func FOf(s *schema.Schema, column string) ColumnRef {
	return ColumnRef{Model: s.Table(), Column: column}
}

// Qualified reports whether the reference names a model or alias.
func (r ColumnRef) Qualified() bool {
	return r.Model != ""
}

// String renders the reference as `model`.`column` or `column`.
func (r ColumnRef) String() string {
	if r.Model != "" {
		return "`" + r.Model + "`.`" + r.Column + "`"
	}
	return "`" + r.Column + "`"
}

// Resolver qualifies column references against a join graph.
//
// For an unqualified reference the resolver finds the single joined
// model or alias owning the column. For a qualified one it verifies the
// model or alias is joined. Either failure is returned as an error.
type Resolver interface {
	ResolveColumn(ref ColumnRef) (ColumnRef, error)
}

// Resolve returns a qualified copy of the reference. The receiver is not
// modified.
func (r ColumnRef) Resolve(res Resolver) (ColumnRef, error) {
	return res.ResolveColumn(r)
}

// Param is a bound parameter placeholder used as a leaf value. Builders
// replace literals with a Param once the literal is registered; it renders
// as @Name.
type Param struct {
	Name string
}

// String renders the placeholder, e.g. @age_1.
func (p Param) String() string {
	return "@" + p.Name
}
