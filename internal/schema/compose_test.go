package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds A <- B <- C, each interleaved in the previous one.
func chain(t *testing.T) (a, b, c *Schema) {
	t.Helper()

	a, err := Compose(Definition{
		Name:    "ModelA",
		Options: Options{Table: "model_a", PrimaryKey: []string{"id_a"}},
		Fields:  []Field{Int64("id_a"), Int64("x"), Int64("y"), Int64("z")},
	})
	require.NoError(t, err)

	b, err = Compose(Definition{
		Name: "ModelB",
		Options: Options{
			Table:      "model_b",
			PrimaryKey: []string{"id_b"},
			Parent:     a,
			Indices:    []Index{MustIndex("by_z", []string{"z", "-x"}, Storing("y"))},
		},
		Fields: []Field{Int64("id_b"), Int64("x"), Int64("y"), Int64("z")},
	})
	require.NoError(t, err)

	c, err = Compose(Definition{
		Name:    "ModelC",
		Options: Options{Table: "model_c", PrimaryKey: []string{"id_c"}, Parent: b, OnDelete: OnDeleteNoAction},
		Fields:  []Field{Int64("id_c"), String("name", 200, AllowNull())},
	})
	require.NoError(t, err)
	return a, b, c
}

func TestCompose_InterleavedPrimaryKeyIsTransitive(t *testing.T) {
	a, b, c := chain(t)

	assert.Equal(t, []string{"id_a"}, a.PrimaryKey().ColumnNames())
	assert.Equal(t, []string{"id_a", "id_b"}, b.PrimaryKey().ColumnNames())
	assert.Equal(t, []string{"id_a", "id_b", "id_c"}, c.PrimaryKey().ColumnNames())

	assert.Same(t, b, c.Parent())
	assert.Same(t, a, b.Parent())
	assert.Nil(t, a.Parent())
	assert.Equal(t, OnDeleteNoAction, c.OnDelete())
	assert.Equal(t, OnDeleteCascade, b.OnDelete())
}

func TestCompose_ParentKeyFieldsCopiedFirst(t *testing.T) {
	_, b, c := chain(t)

	assert.Equal(t, []string{"id_a", "id_b", "x", "y", "z"}, b.FieldNames())
	assert.Equal(t, []string{"id_a", "id_b", "id_c", "name"}, c.FieldNames())

	f, ok := c.Field("name")
	require.True(t, ok)
	assert.True(t, f.Nullable)
}

func TestCompose_InheritsPrimaryKeyParentAndIndices(t *testing.T) {
	a, b, _ := chain(t)

	d, err := Compose(Definition{
		Name:    "ModelD",
		Options: Options{Table: "model_d"},
		Fields:  []Field{Int64("id_d")},
		Bases:   []*Schema{b},
	})
	require.NoError(t, err)

	assert.Same(t, a, d.Parent())
	assert.Equal(t, []string{"id_a", "id_b"}, d.PrimaryKey().ColumnNames())
	assert.Equal(t, []string{"id_a", "id_b", "x", "y", "z", "id_d"}, d.FieldNames())

	idx, ok := d.Index("by_z")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "x"}, idx.ColumnNames())
}

func TestCompose_InheritedIndicesAreIndependent(t *testing.T) {
	_, b, _ := chain(t)

	d := MustCompose(Definition{
		Name:    "ModelD",
		Options: Options{Table: "model_d"},
		Fields:  []Field{Int64("id_d")},
		Bases:   []*Schema{b},
	})

	got := d.Indices()
	got[0].Columns[0].Name = "changed"
	got[0].Storing[0] = "changed"

	fromB, _ := b.Index("by_z")
	fromD, _ := d.Index("by_z")
	assert.Equal(t, "z", fromB.Columns[0].Name)
	assert.Equal(t, "z", fromD.Columns[0].Name)
	assert.Equal(t, "y", fromD.Storing[0])
}

func TestCompose_SkipIndexInheritance(t *testing.T) {
	_, b, _ := chain(t)

	d := MustCompose(Definition{
		Name:    "ModelD",
		Options: Options{Table: "model_d", SkipIndexInheritance: true},
		Fields:  []Field{Int64("id_d")},
		Bases:   []*Schema{b},
	})
	assert.Empty(t, d.Indices())
}

func TestCompose_AbstractBase(t *testing.T) {
	base := MustCompose(Definition{
		Name:    "Timestamped",
		Options: Options{Abstract: true, PrimaryKey: []string{"id"}},
		Fields:  []Field{Int64("id"), Timestamp("created_at")},
	})
	assert.True(t, base.Abstract())
	assert.Empty(t, base.Table())

	user := MustCompose(Definition{
		Name:    "User",
		Options: Options{Table: "users"},
		Fields:  []Field{String("email", 320)},
		Bases:   []*Schema{base},
	})
	assert.False(t, user.Abstract())
	assert.Equal(t, []string{"id", "created_at", "email"}, user.FieldNames())
	assert.Equal(t, []string{"id"}, user.PrimaryKey().ColumnNames())
}

func TestCompose_Errors(t *testing.T) {
	a, b, _ := chain(t)

	pkBase := MustCompose(Definition{
		Name:    "WithKey",
		Options: Options{Abstract: true, PrimaryKey: []string{"k"}},
		Fields:  []Field{Int64("k")},
	})
	otherKey := MustCompose(Definition{
		Name:    "WithOtherKey",
		Options: Options{Abstract: true, PrimaryKey: []string{"j"}},
		Fields:  []Field{Int64("j")},
	})
	otherRoot := MustCompose(Definition{
		Name:    "Other",
		Options: Options{Table: "other", PrimaryKey: []string{"id_o"}},
		Fields:  []Field{Int64("id_o")},
	})
	abstractParent := MustCompose(Definition{Name: "Abstract", Options: Options{Abstract: true}})

	tests := []struct {
		name string
		def  Definition
		code ErrorCode
	}{
		{
			name: "missing table",
			def:  Definition{Name: "M", Options: Options{PrimaryKey: []string{"id"}}, Fields: []Field{Int64("id")}},
			code: ErrCodeTableMissing,
		},
		{
			name: "missing primary key",
			def:  Definition{Name: "M", Options: Options{Table: "m"}, Fields: []Field{Int64("id")}},
			code: ErrCodePrimaryKeyMissing,
		},
		{
			name: "primary key column is not a field",
			def:  Definition{Name: "M", Options: Options{Table: "m", PrimaryKey: []string{"nope"}}, Fields: []Field{Int64("id")}},
			code: ErrCodePrimaryKeyColumn,
		},
		{
			name: "primary key column repeated",
			def:  Definition{Name: "M", Options: Options{Table: "m", PrimaryKey: []string{"id", "-id"}}, Fields: []Field{Int64("id")}},
			code: ErrCodePrimaryKeyColumn,
		},
		{
			name: "local field declared twice",
			def:  Definition{Name: "M", Options: Options{Table: "m", PrimaryKey: []string{"id"}}, Fields: []Field{Int64("id"), Int64("id")}},
			code: ErrCodeFieldClash,
		},
		{
			name: "local field clashes with base field",
			def: Definition{
				Name:    "M",
				Options: Options{Table: "m", PrimaryKey: []string{"id_m"}},
				Fields:  []Field{Int64("id_m"), Int64("x")},
				Bases:   []*Schema{b},
			},
			code: ErrCodeFieldClash,
		},
		{
			name: "two inherited primary keys",
			def: Definition{
				Name:    "M",
				Options: Options{Table: "m"},
				Bases:   []*Schema{pkBase, otherKey},
			},
			code: ErrCodeMultiplePrimary,
		},
		{
			name: "conflicting parents",
			def: Definition{
				Name:    "M",
				Options: Options{Table: "m", PrimaryKey: []string{"id_m"}, Parent: otherRoot},
				Fields:  []Field{Int64("id_m")},
				Bases:   []*Schema{b},
			},
			code: ErrCodeMultipleParents,
		},
		{
			name: "abstract parent",
			def: Definition{
				Name:    "M",
				Options: Options{Table: "m", PrimaryKey: []string{"id_m"}, Parent: abstractParent},
				Fields:  []Field{Int64("id_m")},
			},
			code: ErrCodeInvalidParent,
		},
		{
			name: "nil base",
			def:  Definition{Name: "M", Options: Options{Table: "m"}, Bases: []*Schema{nil}},
			code: ErrCodeInvalidParent,
		},
		{
			name: "index column is not a field",
			def: Definition{
				Name: "M",
				Options: Options{
					Table:      "m",
					PrimaryKey: []string{"id"},
					Indices:    []Index{MustIndex("by_nope", []string{"nope"})},
				},
				Fields: []Field{Int64("id")},
			},
			code: ErrCodeIndexColumn,
		},
		{
			name: "storing column is not a field",
			def: Definition{
				Name: "M",
				Options: Options{
					Table:      "m",
					PrimaryKey: []string{"id"},
					Indices:    []Index{MustIndex("by_id", []string{"id"}, Storing("nope"))},
				},
				Fields: []Field{Int64("id")},
			},
			code: ErrCodeIndexColumn,
		},
		{
			name: "unknown on delete",
			def: Definition{
				Name:    "M",
				Options: Options{Table: "m", PrimaryKey: []string{"id"}, Parent: a, OnDelete: OnDelete("SET NULL")},
				Fields:  []Field{Int64("id")},
			},
			code: ErrCodeInvalidParent,
		},
		{
			name: "zero value field",
			def:  Definition{Name: "M", Options: Options{Table: "m"}, Fields: []Field{{Name: "id", Type: TypeInt64}}},
			code: ErrCodeInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compose(tt.def)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Equal(t, tt.code, CodeOf(err), err.Error())
		})
	}
}

func TestCompose_OwnPrimaryKeyOverridesBases(t *testing.T) {
	first := MustCompose(Definition{
		Name:    "First",
		Options: Options{Abstract: true, PrimaryKey: []string{"k"}},
		Fields:  []Field{Int64("k")},
	})
	second := MustCompose(Definition{
		Name:    "Second",
		Options: Options{Abstract: true, PrimaryKey: []string{"j"}},
		Fields:  []Field{Int64("j")},
	})

	s, err := Compose(Definition{
		Name:    "M",
		Options: Options{Table: "m", PrimaryKey: []string{"k", "j"}},
		Bases:   []*Schema{first, second},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "j"}, s.PrimaryKey().ColumnNames())
}

func TestSchema_Depth(t *testing.T) {
	a, b, c := chain(t)

	assert.Equal(t, 0, a.Depth(9))
	assert.Equal(t, 1, b.Depth(9))
	assert.Equal(t, 2, c.Depth(9))
	assert.Equal(t, 1, c.Depth(1))
	assert.Equal(t, []*Schema{b, a}, c.Ancestors(9))
}

func TestModelError_Message(t *testing.T) {
	err := &ModelError{Code: ErrCodeTableMissing, Model: "ModelA", Message: "table name is required"}
	assert.Equal(t, "[E201] ModelA: table name is required", err.Error())
	assert.True(t, IsModelError(err))
	assert.False(t, IsIndexError(err))
}
