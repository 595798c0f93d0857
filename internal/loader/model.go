package loader

import (
	"github.com/roach88/strata/internal/schema"
)

// ModelSpec is one model definition as written in a source file,
// before references are resolved.
type ModelSpec struct {
	Name       string
	Table      string
	Abstract   bool
	PrimaryKey []string
	Parent     string
	OnDelete   string
	// InheritIndices defaults to true.
	InheritIndices bool
	Bases          []string
	Fields         []FieldSpec // source order
	Indices        []IndexSpec
	Pos            Position
}

// FieldSpec is one column definition.
type FieldSpec struct {
	Name     string
	Type     string
	Length   int
	Nullable bool
	Pos      Position
}

// IndexSpec is one secondary index definition.
type IndexSpec struct {
	Name         string
	Columns      []string
	Unique       bool
	Storing      []string
	InterleaveIn string
	Pos          Position
}

// Recognized keys. Anything else is rejected with ErrCodeUnknownKey.
var (
	modelKeys = map[string]bool{
		"table":           true,
		"abstract":        true,
		"primary_key":     true,
		"parent":          true,
		"on_delete":       true,
		"inherit_indices": true,
		"bases":           true,
		"fields":          true,
		"indices":         true,
	}
	fieldKeys = map[string]bool{
		"type":     true,
		"length":   true,
		"nullable": true,
	}
	indexKeys = map[string]bool{
		"name":          true,
		"columns":       true,
		"unique":        true,
		"storing":       true,
		"interleave_in": true,
	}
)

// references lists the models m depends on: parent first, then bases.
func (m ModelSpec) references() []string {
	var refs []string
	if m.Parent != "" {
		refs = append(refs, m.Parent)
	}
	return append(refs, m.Bases...)
}

// definition converts m into a schema.Definition, given the
// already-composed schemas it references.
func (m ModelSpec) definition(resolved map[string]*schema.Schema) (schema.Definition, error) {
	onDelete, err := schema.ParseOnDelete(m.OnDelete)
	if err != nil {
		return schema.Definition{}, loadErr(ErrCodeInvalidValue, m.Pos, "model %s: %v", m.Name, err)
	}

	def := schema.Definition{
		Name: m.Name,
		Options: schema.Options{
			Table:                m.Table,
			PrimaryKey:           m.PrimaryKey,
			OnDelete:             onDelete,
			SkipIndexInheritance: !m.InheritIndices,
			Abstract:             m.Abstract,
		},
	}
	if m.Parent != "" {
		def.Options.Parent = resolved[m.Parent]
	}
	for _, b := range m.Bases {
		def.Bases = append(def.Bases, resolved[b])
	}

	for _, fs := range m.Fields {
		f, err := fs.field()
		if err != nil {
			return schema.Definition{}, err
		}
		def.Fields = append(def.Fields, f)
	}

	for _, is := range m.Indices {
		idx, err := is.index()
		if err != nil {
			return schema.Definition{}, err
		}
		def.Options.Indices = append(def.Options.Indices, idx)
	}
	return def, nil
}

func (fs FieldSpec) field() (schema.Field, error) {
	typ, err := schema.ParseSQLType(fs.Type)
	if err != nil {
		return schema.Field{}, loadErr(ErrCodeInvalidValue, fs.Pos, "field %s: %v", fs.Name, err)
	}
	var opts []schema.FieldOption
	if fs.Nullable {
		opts = append(opts, schema.AllowNull())
	}
	if fs.Length != 0 {
		opts = append(opts, schema.WithLength(fs.Length))
	}
	f, err := schema.NewField(fs.Name, typ, opts...)
	if err != nil {
		return schema.Field{}, wrapSchemaErr(err, fs.Pos)
	}
	return f, nil
}

func (is IndexSpec) index() (schema.Index, error) {
	var opts []schema.IndexOption
	if is.Unique {
		opts = append(opts, schema.Unique())
	}
	if len(is.Storing) > 0 {
		opts = append(opts, schema.Storing(is.Storing...))
	}
	if is.InterleaveIn != "" {
		opts = append(opts, schema.InterleaveIn(is.InterleaveIn))
	}
	idx, err := schema.NewIndex(is.Name, is.Columns, opts...)
	if err != nil {
		return schema.Index{}, wrapSchemaErr(err, is.Pos)
	}
	return idx, nil
}
