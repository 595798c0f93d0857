// Package ddl renders schemas as DDL statements for an interleaved table
// store. Every function is a pure translation of its input.
package ddl

import (
	"fmt"
	"strings"

	"github.com/roach88/strata/internal/schema"
)

// Quote backtick-quotes an identifier.
func Quote(ident string) string {
	return "`" + ident + "`"
}

// Field renders a column definition: `name` TYPE[(len)] NULL|NOT NULL.
func Field(f schema.Field) string {
	null := "NOT NULL"
	if f.Nullable {
		null = "NULL"
	}
	return fmt.Sprintf("%s %s %s", Quote(f.Name), f.TypeString(), null)
}

func keyColumn(c schema.IndexColumn) string {
	if c.Desc {
		return Quote(c.Name) + " DESC"
	}
	return Quote(c.Name)
}

func keyColumns(cols []schema.IndexColumn) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = keyColumn(c)
	}
	return strings.Join(parts, ", ")
}

func quoteAll(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = Quote(n)
	}
	return strings.Join(parts, ", ")
}

// CreateTable renders the CREATE TABLE statement of a schema. Parent
// primary key columns come first and interleaved tables carry their
// INTERLEAVE IN clause.
func CreateTable(s *schema.Schema) string {
	fields := s.Fields()
	defs := make([]string, len(fields))
	for i, f := range fields {
		defs[i] = Field(f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n%s\n) PRIMARY KEY (%s)",
		Quote(s.Table()), strings.Join(defs, ",\n"), keyColumns(s.PrimaryKey().Columns()))
	if p := s.Parent(); p != nil {
		fmt.Fprintf(&b, " INTERLEAVE IN %s ON DELETE %s", Quote(p.Table()), s.OnDelete())
	}
	b.WriteString(";")
	return b.String()
}

// DropTable renders DROP TABLE for a schema.
func DropTable(s *schema.Schema) string {
	return fmt.Sprintf("DROP TABLE %s;", Quote(s.Table()))
}

// CreateIndex renders CREATE [UNIQUE] INDEX for an index on table.
func CreateIndex(table string, idx schema.Index) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s (%s)", Quote(idx.Name), Quote(table), keyColumns(idx.Columns))
	if len(idx.Storing) > 0 {
		fmt.Fprintf(&b, " STORING (%s)", quoteAll(idx.Storing))
	}
	if idx.InterleaveIn != "" {
		fmt.Fprintf(&b, ", INTERLEAVE IN %s", Quote(idx.InterleaveIn))
	}
	b.WriteString(";")
	return b.String()
}

// DropIndex renders DROP INDEX for an index.
func DropIndex(idx schema.Index) string {
	return fmt.Sprintf("DROP INDEX %s;", Quote(idx.Name))
}

// DropPrimaryKey returns "": a primary key cannot be dropped on its own.
func DropPrimaryKey(schema.PrimaryKey) string {
	return ""
}

// CreateStatements renders the table followed by its indices.
func CreateStatements(s *schema.Schema) []string {
	indices := s.Indices()
	stmts := make([]string, 0, 1+len(indices))
	stmts = append(stmts, CreateTable(s))
	for _, idx := range indices {
		stmts = append(stmts, CreateIndex(s.Table(), idx))
	}
	return stmts
}

// DropStatements renders the index drops followed by the table drop.
func DropStatements(s *schema.Schema) []string {
	indices := s.Indices()
	stmts := make([]string, 0, 1+len(indices))
	for _, idx := range indices {
		stmts = append(stmts, DropIndex(idx))
	}
	return append(stmts, DropTable(s))
}
