package testutil

import (
	"github.com/roach88/strata/internal/schema"
)

// Models is the A <- B <- C interleave chain plus D, which inherits from B.
//
//	model_a            pk (id_a)
//	model_b in model_a pk (id_a, id_b)
//	model_c in model_b pk (id_a, id_b, id_c)
//	model_d in model_a pk (id_a, id_b), inherited from B
type Models struct {
	A, B, C, D *schema.Schema
}

// NewModels composes a fresh set of fixture schemas.
// Panics if composition fails; the fixtures are known to be valid.
func NewModels() Models {
	a := schema.MustCompose(schema.Definition{
		Name:    "ModelA",
		Options: schema.Options{Table: "model_a", PrimaryKey: []string{"id_a"}},
		Fields: []schema.Field{
			schema.Int64("id_a"),
			schema.Int64("field_int_not_null"),
			schema.Int64("field_int_null", schema.AllowNull()),
			schema.String("field_string_not_null", 200),
			schema.String("field_string_null", 200, schema.AllowNull()),
		},
	})

	b := schema.MustCompose(schema.Definition{
		Name: "ModelB",
		Options: schema.Options{
			Table:      "model_b",
			PrimaryKey: []string{"id_b"},
			Parent:     a,
			Indices: []schema.Index{
				schema.MustIndex("over9000", []string{"-id_b", "value_field_x", "-value_field_y"}),
				schema.MustIndex("interleaved", []string{"id_a", "-id_b", "value_field_x", "value_field_y"},
					schema.InterleaveIn("model_a")),
			},
		},
		Fields: []schema.Field{
			schema.Int64("id_b"),
			schema.Int64("value_field_x", schema.AllowNull()),
			schema.Int64("value_field_y", schema.AllowNull()),
			schema.Int64("value_field_z", schema.AllowNull()),
		},
	})

	c := schema.MustCompose(schema.Definition{
		Name: "ModelC",
		Options: schema.Options{
			Table:      "model_c",
			PrimaryKey: []string{"id_c"},
			Parent:     b,
			OnDelete:   schema.OnDeleteNoAction,
			Indices: []schema.Index{
				schema.MustIndex("by_label", []string{"label"}, schema.Unique(), schema.Storing("created_at")),
			},
		},
		Fields: []schema.Field{
			schema.Int64("id_c"),
			schema.String("label", 64),
			schema.Timestamp("created_at", schema.AllowNull()),
		},
	})

	d := schema.MustCompose(schema.Definition{
		Name:    "ModelD",
		Options: schema.Options{Table: "model_d", SkipIndexInheritance: true},
		Fields:  []schema.Field{schema.Int64("id_d")},
		Bases:   []*schema.Schema{b},
	})

	return Models{A: a, B: b, C: c, D: d}
}

// All returns the fixtures in registration order: A, B, C, D.
func (m Models) All() []*schema.Schema {
	return []*schema.Schema{m.A, m.B, m.C, m.D}
}
