package cli

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/queryir"
	"github.com/roach88/strata/internal/querysql"
	"github.com/roach88/strata/internal/schema"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	From    string
	Select  []string
	Where   []string
	Exclude []string
	Index   string
}

// QueryResult is a compiled statement with its parameter table.
type QueryResult struct {
	SQL         string       `json:"sql"`
	Fingerprint string       `json:"fingerprint"`
	Params      []QueryParam `json:"params"`
}

// QueryParam is one bound parameter.
type QueryParam struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <models-dir>",
		Short: "Compile a parameterized SELECT over one table",
		Long: `Compile a SELECT statement and its parameter table.

Predicates use column__lookup=value, e.g. --where age__gte=18. The lookup
defaults to eq. Values are parsed by the column's type: INT64 as a decimal
integer, BOOL as true/false, TIMESTAMP as RFC 3339, BYTES as base64 and
STRING as-is. NULL binds SQL NULL. Repeated --where flags are ANDed;
--exclude negates its predicate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "table to select from (required)")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "columns to select (default all)")
	cmd.Flags().StringArrayVar(&opts.Where, "where", nil, "predicate column__lookup=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Exclude, "exclude", nil, "negated predicate column__lookup=value (repeatable)")
	cmd.Flags().StringVar(&opts.Index, "index", "", "force a secondary index")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

func runQuery(opts *QueryOptions, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := loadModels(opts.RootOptions, modelsDir, formatter)
	if err != nil {
		return err
	}

	model, ok := res.Registry.Lookup(opts.From)
	if !ok {
		return formatter.Fail(ExitFailure, string(querysql.ErrCodeInvalidModel),
			fmt.Sprintf("table %q is not defined in %s", opts.From, modelsDir), nil, nil)
	}

	stmt, err := buildQuery(opts, model)
	if err != nil {
		return formatter.Report(err)
	}

	fingerprint, err := stmt.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("fingerprinting statement: %v", err), nil, err)
	}
	args, err := stmt.Params.Args()
	if err != nil {
		return formatter.Fail(ExitFailure, string(querysql.ErrCodeUnsupportedValue), err.Error(), nil, err)
	}

	result := QueryResult{SQL: stmt.SQL, Fingerprint: fingerprint, Params: []QueryParam{}}
	for _, p := range stmt.Params.All() {
		result.Params = append(result.Params, QueryParam{
			Name:  p.Name,
			Type:  string(p.Type),
			Value: args[p.Name],
		})
	}

	return formatter.Success(result)
}

// buildQuery applies the command's flags to a QuerySet and compiles it.
func buildQuery(opts *QueryOptions, model *schema.Schema) (querysql.Statement, error) {
	qs, err := querysql.New(model, querysql.WithLogger(opts.logger()))
	if err != nil {
		return querysql.Statement{}, err
	}

	if len(opts.Select) > 0 {
		if qs, err = qs.Values(opts.Select...); err != nil {
			return querysql.Statement{}, err
		}
	}
	if opts.Index != "" {
		if qs, err = qs.Index(opts.Index); err != nil {
			return querysql.Statement{}, err
		}
	}

	for _, raw := range opts.Where {
		leaf, err := parsePredicate(raw, model)
		if err != nil {
			return querysql.Statement{}, err
		}
		if qs, err = qs.Filter(queryir.Q(leaf)); err != nil {
			return querysql.Statement{}, err
		}
	}
	for _, raw := range opts.Exclude {
		leaf, err := parsePredicate(raw, model)
		if err != nil {
			return querysql.Statement{}, err
		}
		if qs, err = qs.Exclude(queryir.Q(leaf)); err != nil {
			return querysql.Statement{}, err
		}
	}

	return qs.Query()
}

// predicateError is a malformed --where/--exclude argument.
type predicateError struct {
	arg string
	msg string
}

func (e *predicateError) Error() string {
	return fmt.Sprintf("invalid predicate %q: %s", e.arg, e.msg)
}

// parsePredicate parses "column__lookup=value" into a leaf, converting
// the value for the column's type. Unknown columns keep the raw string
// so the query builder reports them.
func parsePredicate(arg string, model *schema.Schema) (queryir.Leaf, error) {
	key, raw, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return queryir.Leaf{}, &predicateError{arg: arg, msg: "expected column__lookup=value"}
	}

	column, _ := queryir.ParseLookup(key)
	field, ok := model.Field(column)
	if !ok {
		// A column whose own name contains the separator
		if field, ok = model.Field(key); !ok {
			return queryir.Kw(key, raw), nil
		}
	}

	value, err := parseLiteral(raw, field.Type)
	if err != nil {
		return queryir.Leaf{}, &predicateError{arg: arg, msg: err.Error()}
	}
	return queryir.Kw(key, value), nil
}

// parseLiteral converts a command-line value for a column type.
func parseLiteral(raw string, typ schema.SQLType) (any, error) {
	if raw == "NULL" {
		return nil, nil
	}
	switch typ {
	case schema.TypeInt64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s value must be an integer", typ)
		}
		return n, nil
	case schema.TypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s value must be true or false", typ)
		}
		return b, nil
	case schema.TypeTimestamp:
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%s value must be RFC 3339", typ)
		}
		return t, nil
	case schema.TypeBytes:
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s value must be base64", typ)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// WriteText prints the SQL followed by one line per parameter.
func (r QueryResult) WriteText(w io.Writer) {
	fmt.Fprintln(w, r.SQL)
	for _, p := range r.Params {
		fmt.Fprintf(w, "  @%s = %s (%s)\n", p.Name, formatValue(p.Value), p.Type)
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strconv.Quote(val)
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
