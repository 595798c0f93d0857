package schema

import (
	"fmt"
	"slices"
	"strings"
)

// PrimaryKeyName is the reserved name of every primary key.
const PrimaryKeyName = "primary"

// IndexColumn is one column of an index or primary key.
type IndexColumn struct {
	Name string
	Desc bool
}

// ParseIndexColumn parses a column spec; a leading "-" means descending.
func ParseIndexColumn(spec string) IndexColumn {
	if name, ok := strings.CutPrefix(spec, "-"); ok {
		return IndexColumn{Name: name, Desc: true}
	}
	return IndexColumn{Name: spec}
}

// String returns the column spec form, "-name" for descending.
func (c IndexColumn) String() string {
	if c.Desc {
		return "-" + c.Name
	}
	return c.Name
}

func parseColumns(specs []string) []IndexColumn {
	cols := make([]IndexColumn, len(specs))
	for i, s := range specs {
		cols[i] = ParseIndexColumn(s)
	}
	return cols
}

func columnNames(cols []IndexColumn) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Index is a secondary index on a table.
type Index struct {
	Name    string
	Columns []IndexColumn
	Unique  bool
	// Storing lists extra columns copied into the index.
	Storing []string
	// InterleaveIn names the table the index is interleaved in, if any.
	InterleaveIn string
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// Unique marks the index UNIQUE.
func Unique() IndexOption {
	return func(i *Index) {
		i.Unique = true
	}
}

// Storing adds STORING columns.
func Storing(columns ...string) IndexOption {
	return func(i *Index) {
		i.Storing = append(i.Storing, columns...)
	}
}

// InterleaveIn interleaves the index in the given table.
func InterleaveIn(table string) IndexOption {
	return func(i *Index) {
		i.InterleaveIn = table
	}
}

// NewIndex validates and constructs an Index. Column specs use a leading
// "-" for descending order.
func NewIndex(name string, columns []string, opts ...IndexOption) (Index, error) {
	idx := Index{Name: name, Columns: parseColumns(columns)}
	for _, opt := range opts {
		opt(&idx)
	}
	if err := idx.validate(); err != nil {
		return Index{}, err
	}
	return idx, nil
}

// MustIndex is like NewIndex but panics on error.
func MustIndex(name string, columns []string, opts ...IndexOption) Index {
	idx, err := NewIndex(name, columns, opts...)
	if err != nil {
		panic(err)
	}
	return idx
}

func (i Index) validate() error {
	if i.Name == "" {
		return &IndexError{Code: ErrCodeInvalidIndex, Message: "index name is required"}
	}
	if i.Name == PrimaryKeyName {
		return &IndexError{Code: ErrCodeInvalidIndex, Index: i.Name, Message: "name is reserved for the primary key"}
	}
	if len(i.Columns) == 0 {
		return &IndexError{Code: ErrCodeInvalidIndex, Index: i.Name, Message: "at least one column is required"}
	}

	seen := make(map[string]bool, len(i.Columns))
	for _, c := range i.Columns {
		if c.Name == "" {
			return &IndexError{Code: ErrCodeInvalidIndex, Index: i.Name, Message: "empty column name"}
		}
		if seen[c.Name] {
			return &IndexError{
				Code:    ErrCodeInvalidIndex,
				Index:   i.Name,
				Message: fmt.Sprintf("column %q listed twice", c.Name),
			}
		}
		seen[c.Name] = true
	}
	for _, s := range i.Storing {
		if seen[s] {
			return &IndexError{
				Code:    ErrCodeInvalidIndex,
				Index:   i.Name,
				Message: fmt.Sprintf("storing column %q is already an index column", s),
			}
		}
	}
	if len(i.Storing) != len(uniqueStrings(i.Storing)) {
		return &IndexError{Code: ErrCodeInvalidIndex, Index: i.Name, Message: "storing columns must be distinct"}
	}
	return nil
}

// ColumnNames returns the indexed column names without direction.
func (i Index) ColumnNames() []string {
	return columnNames(i.Columns)
}

// Clone returns a deep copy of the index.
func (i Index) Clone() Index {
	i.Columns = slices.Clone(i.Columns)
	i.Storing = slices.Clone(i.Storing)
	return i
}

// PrimaryKey is the primary key of a table, optionally interleaved in a
// parent table's primary key.
type PrimaryKey struct {
	own    []IndexColumn
	parent *PrimaryKey
}

// NewPrimaryKey builds a primary key from column specs.
func NewPrimaryKey(columns ...string) PrimaryKey {
	return PrimaryKey{own: parseColumns(columns)}
}

// Own returns the columns declared on this key, excluding the parent's.
func (pk PrimaryKey) Own() []IndexColumn {
	return slices.Clone(pk.own)
}

// Parent returns the parent key, or nil if the table is not interleaved.
func (pk PrimaryKey) Parent() *PrimaryKey {
	return pk.parent
}

// Columns returns the effective key: the parent's effective columns
// followed by own columns not already present.
func (pk PrimaryKey) Columns() []IndexColumn {
	if pk.parent == nil {
		return slices.Clone(pk.own)
	}
	cols := pk.parent.Columns()
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c.Name] = true
	}
	for _, c := range pk.own {
		if !seen[c.Name] {
			cols = append(cols, c)
			seen[c.Name] = true
		}
	}
	return cols
}

// ColumnNames returns the effective key column names.
func (pk PrimaryKey) ColumnNames() []string {
	return columnNames(pk.Columns())
}

// IsZero reports whether the key has no columns at all.
func (pk PrimaryKey) IsZero() bool {
	return len(pk.Columns()) == 0
}

func (pk PrimaryKey) withParent(parent PrimaryKey) PrimaryKey {
	pk.own = slices.Clone(pk.own)
	pk.parent = &parent
	return pk
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
