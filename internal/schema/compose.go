package schema

import (
	"slices"
)

// Compose builds a Schema from a model definition.
//
// Base fields are copied in, the primary key is declared or inherited,
// base indices are deep-copied, and the parent's primary key is prepended
// when the model is interleaved. Non-abstract results are validated before
// they are returned.
func Compose(def Definition) (*Schema, error) {
	opts := def.Options
	name := def.Name
	if name == "" {
		name = opts.Table
	}

	onDelete := opts.OnDelete
	if onDelete == "" {
		onDelete = OnDeleteCascade
	}
	if onDelete != OnDeleteCascade && onDelete != OnDeleteNoAction {
		return nil, modelErr(ErrCodeInvalidParent, name, "unknown ON DELETE action %q", onDelete)
	}

	s := &Schema{
		name:       name,
		table:      opts.Table,
		fieldIdx:   make(map[string]int),
		declaredPK: slices.Clone(opts.PrimaryKey),
		onDelete:   onDelete,
		abstract:   opts.Abstract,
	}

	for _, f := range def.Fields {
		if f.Name == "" {
			return nil, &FieldError{Code: ErrCodeInvalidField, Message: "field name is required"}
		}
		if f.order == 0 {
			return nil, &FieldError{Code: ErrCodeInvalidField, Field: f.Name, Message: "field was not built with a field constructor"}
		}
		if s.HasField(f.Name) {
			return nil, modelErr(ErrCodeFieldClash, name, "field %q declared twice", f.Name)
		}
		s.addField(f)
	}
	local := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		local[f.Name] = true
	}

	for _, idx := range opts.Indices {
		if err := idx.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.Index(idx.Name); dup {
			return nil, &IndexError{Code: ErrCodeInvalidIndex, Index: idx.Name, Message: "index declared twice"}
		}
		s.indices = append(s.indices, idx.Clone())
	}

	parent := opts.Parent
	var pkFrom *Schema
	for _, base := range def.Bases {
		if base == nil {
			return nil, modelErr(ErrCodeInvalidParent, name, "nil base schema")
		}

		if base.parent != nil {
			if parent != nil && parent != base.parent {
				return nil, modelErr(ErrCodeMultipleParents, name,
					"may only have one parent: %q conflicts with %q inherited from %q",
					parent.table, base.parent.table, base.name)
			}
			parent = base.parent
		}

		for _, f := range base.fields {
			if local[f.Name] {
				return nil, modelErr(ErrCodeFieldClash, name,
					"local field %q clashes with field of the same name from base %q", f.Name, base.name)
			}
			if !s.HasField(f.Name) {
				s.addField(f)
			}
		}

		if len(opts.PrimaryKey) == 0 && len(base.declaredPK) > 0 {
			if pkFrom != nil {
				return nil, modelErr(ErrCodeMultiplePrimary, name,
					"may only inherit one primary key: both %q and %q declare one", pkFrom.name, base.name)
			}
			pkFrom = base
			s.declaredPK = slices.Clone(base.declaredPK)
		}

		if !opts.SkipIndexInheritance {
			for _, idx := range base.indices {
				if _, dup := s.Index(idx.Name); !dup {
					s.indices = append(s.indices, idx.Clone())
				}
			}
		}
	}

	if len(s.declaredPK) > 0 {
		s.pk = NewPrimaryKey(s.declaredPK...)
	}

	if parent != nil {
		if parent.abstract {
			return nil, modelErr(ErrCodeInvalidParent, name, "parent %q is abstract", parent.name)
		}
		for _, col := range parent.pk.Columns() {
			f, ok := parent.Field(col.Name)
			if !ok {
				return nil, modelErr(ErrCodePrimaryKeyColumn, parent.name,
					"primary key column %q is not a field", col.Name)
			}
			if !s.HasField(f.Name) {
				s.addField(f)
			}
		}
		s.pk = s.pk.withParent(parent.pk)
		s.parent = parent
	}

	s.sortFields()

	if !s.abstract {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustCompose is like Compose but panics on error.
// Use for package-level model declarations.
func MustCompose(def Definition) *Schema {
	s, err := Compose(def)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) validate() error {
	if s.table == "" {
		return modelErr(ErrCodeTableMissing, s.name, "table name is required")
	}
	if len(s.pk.Own()) == 0 {
		return modelErr(ErrCodePrimaryKeyMissing, s.name, "primary key is required")
	}

	own := columnNames(s.pk.Own())
	if len(uniqueStrings(own)) != len(own) {
		return modelErr(ErrCodePrimaryKeyColumn, s.name, "primary key lists a column twice")
	}
	for _, col := range s.pk.Columns() {
		if !s.HasField(col.Name) {
			return modelErr(ErrCodePrimaryKeyColumn, s.name, "primary key column %q is not a field", col.Name)
		}
	}

	for _, idx := range s.indices {
		for _, col := range idx.ColumnNames() {
			if !s.HasField(col) {
				return modelErr(ErrCodeIndexColumn, s.name, "index %q column %q is not a field", idx.Name, col)
			}
		}
		for _, col := range idx.Storing {
			if !s.HasField(col) {
				return modelErr(ErrCodeIndexColumn, s.name, "index %q storing column %q is not a field", idx.Name, col)
			}
		}
	}
	return nil
}
