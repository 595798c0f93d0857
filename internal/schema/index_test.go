package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIndexColumn(t *testing.T) {
	assert.Equal(t, IndexColumn{Name: "x"}, ParseIndexColumn("x"))
	assert.Equal(t, IndexColumn{Name: "x", Desc: true}, ParseIndexColumn("-x"))
	assert.Equal(t, "-x", ParseIndexColumn("-x").String())
}

func TestNewIndex_Valid(t *testing.T) {
	idx, err := NewIndex("by_z", []string{"z", "-x"}, Unique(), Storing("y"), InterleaveIn("model_a"))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "x"}, idx.ColumnNames())
	assert.True(t, idx.Columns[1].Desc)
	assert.True(t, idx.Unique)
	assert.Equal(t, []string{"y"}, idx.Storing)
	assert.Equal(t, "model_a", idx.InterleaveIn)
}

func TestNewIndex_Errors(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		columns []string
		opts    []IndexOption
	}{
		{"empty name", "", []string{"x"}, nil},
		{"reserved name", PrimaryKeyName, []string{"x"}, nil},
		{"no columns", "i", nil, nil},
		{"duplicate column", "i", []string{"x", "-x"}, nil},
		{"storing duplicates column", "i", []string{"x"}, []IndexOption{Storing("x")}},
		{"storing repeated", "i", []string{"x"}, []IndexOption{Storing("y", "y")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIndex(tt.index, tt.columns, tt.opts...)
			require.Error(t, err)
			assert.True(t, IsIndexError(err))
		})
	}
}

func TestIndex_CloneIsIndependent(t *testing.T) {
	idx := MustIndex("i", []string{"x"}, Storing("y"))
	clone := idx.Clone()
	clone.Columns[0].Name = "changed"
	clone.Storing[0] = "changed"

	assert.Equal(t, "x", idx.Columns[0].Name)
	assert.Equal(t, "y", idx.Storing[0])
}

func TestPrimaryKey_ColumnsPrependParent(t *testing.T) {
	a := NewPrimaryKey("id_a")
	b := NewPrimaryKey("id_b").withParent(a)
	c := NewPrimaryKey("id_a", "-id_c").withParent(b)

	assert.Equal(t, []string{"id_a", "id_b"}, b.ColumnNames())
	assert.Equal(t, []string{"id_a", "id_b", "id_c"}, c.ColumnNames())
	assert.True(t, c.Columns()[2].Desc)
	assert.Equal(t, []string{"id_a", "id_c"}, columnNames(c.Own()))
	assert.False(t, c.IsZero())
	assert.True(t, PrimaryKey{}.IsZero())
}
