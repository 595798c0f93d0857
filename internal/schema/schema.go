package schema

import (
	"slices"
)

// Options configures a model. It replaces per-model metadata blocks with an
// explicit, closed set of recognized options.
type Options struct {
	// Table is the table name. Required unless Abstract.
	Table string
	// PrimaryKey lists the model's own primary key column specs.
	// A leading "-" marks a descending column.
	PrimaryKey []string
	// Parent interleaves this table in the parent's table.
	Parent *Schema
	// OnDelete is the interleave ON DELETE action. Defaults to CASCADE.
	OnDelete OnDelete
	// Indices are the model's own secondary indices.
	Indices []Index
	// SkipIndexInheritance stops base indices from being copied.
	SkipIndexInheritance bool
	// Abstract models are never registered and may be incomplete.
	Abstract bool
}

// Definition is everything Compose needs to build one Schema.
type Definition struct {
	// Name identifies the model in error messages.
	Name    string
	Options Options
	// Fields are the model's own fields, in declaration order.
	Fields []Field
	// Bases are composed schemas this model inherits from, in order.
	Bases []*Schema
}

// Schema is the composed, validated description of one table.
// A Schema is immutable; accessors return copies.
type Schema struct {
	name       string
	table      string
	fields     []Field
	fieldIdx   map[string]int
	declaredPK []string
	pk         PrimaryKey
	indices    []Index
	parent     *Schema
	onDelete   OnDelete
	abstract   bool
}

// Name returns the model name.
func (s *Schema) Name() string { return s.name }

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// Abstract reports whether the schema is an abstract base.
func (s *Schema) Abstract() bool { return s.abstract }

// Parent returns the interleave parent, or nil.
func (s *Schema) Parent() *Schema { return s.parent }

// OnDelete returns the interleave ON DELETE action.
func (s *Schema) OnDelete() OnDelete { return s.onDelete }

// Fields returns all fields in declaration order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// FieldNames returns all field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.fieldIdx[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// HasField reports whether the schema has a field with the given name.
func (s *Schema) HasField(name string) bool {
	_, ok := s.fieldIdx[name]
	return ok
}

// PrimaryKey returns the effective primary key, including parent columns.
func (s *Schema) PrimaryKey() PrimaryKey {
	return s.pk
}

// Indices returns deep copies of the secondary indices.
func (s *Schema) Indices() []Index {
	out := make([]Index, len(s.indices))
	for i, idx := range s.indices {
		out[i] = idx.Clone()
	}
	return out
}

// Index looks up a secondary index by name.
func (s *Schema) Index(name string) (Index, bool) {
	for _, idx := range s.indices {
		if idx.Name == name {
			return idx.Clone(), true
		}
	}
	return Index{}, false
}

// Depth returns the length of the parent chain, stopping at limit.
// A root table has depth 0.
func (s *Schema) Depth(limit int) int {
	depth := 0
	for p := s.parent; p != nil && depth < limit; p = p.parent {
		depth++
	}
	return depth
}

// Ancestors returns the parent chain, nearest first, stopping at limit.
func (s *Schema) Ancestors(limit int) []*Schema {
	var chain []*Schema
	for p := s.parent; p != nil && len(chain) < limit; p = p.parent {
		chain = append(chain, p)
	}
	return chain
}

func (s *Schema) addField(f Field) {
	s.fieldIdx[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
}

func (s *Schema) sortFields() {
	slices.SortStableFunc(s.fields, func(a, b Field) int {
		switch {
		case a.order < b.order:
			return -1
		case a.order > b.order:
			return 1
		}
		return 0
	})
	for i, f := range s.fields {
		s.fieldIdx[f.Name] = i
	}
}
