package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/schema"
)

func TestQueryText(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "text"})

	stdout, _, err := execute(cmd, fixtureDir,
		"--from", "model_b",
		"--select", "id_b",
		"--where", "value_field_x__gte=5",
		"--exclude", "id_b=7",
	)
	require.NoError(t, err)

	want := "SELECT `model_b`.`id_b` FROM `model_b` WHERE `model_b`.`value_field_x` >= @value_field_x AND (NOT (`model_b`.`id_b` = @id_b))\n" +
		"  @value_field_x = 5 (INT64)\n" +
		"  @id_b = 7 (INT64)\n"
	assert.Equal(t, want, stdout)
}

func TestQueryJSON(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "json"})

	stdout, _, err := execute(cmd, fixtureDir,
		"--from", "model_c",
		"--select", "label",
		"--where", "label=ab",
	)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Contains(t, resp.Data.SQL, "SELECT `model_c`.`label` FROM `model_c` WHERE")
	assert.Len(t, resp.Data.Fingerprint, 64)
	require.Len(t, resp.Data.Params, 1)
	assert.Equal(t, "label", resp.Data.Params[0].Name)
	assert.Equal(t, "STRING", resp.Data.Params[0].Type)
}

func TestQueryForceIndex(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "text"})

	stdout, _, err := execute(cmd, fixtureDir, "--from", "model_b", "--select", "id_b", "--index", "over9000")
	require.NoError(t, err)
	assert.Equal(t, "SELECT `model_b`.`id_b` FROM `model_b`@{FORCE_INDEX=over9000}\n", stdout)
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
		exit int
	}{
		{
			name: "unknown table",
			args: []string{"--from", "model_z"},
			code: "E312",
			exit: ExitFailure,
		},
		{
			name: "unknown column",
			args: []string{"--from", "model_b", "--where", "nope=1"},
			code: "E301",
			exit: ExitFailure,
		},
		{
			name: "unknown lookup",
			args: []string{"--from", "model_b", "--where", "id_b__near=1"},
			code: "E307",
			exit: ExitFailure,
		},
		{
			name: "unknown index",
			args: []string{"--from", "model_b", "--index", "missing"},
			code: "E213",
			exit: ExitFailure,
		},
		{
			name: "predicate without value",
			args: []string{"--from", "model_b", "--where", "id_b"},
			code: ErrCodeInvalidWhere,
			exit: ExitCommandError,
		},
		{
			name: "value not an integer",
			args: []string{"--from", "model_b", "--where", "id_b=seven"},
			code: ErrCodeInvalidWhere,
			exit: ExitCommandError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewQueryCommand(&RootOptions{Format: "json"})
			stdout, _, err := execute(cmd, append([]string{fixtureDir}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestQueryRequiresFrom(t *testing.T) {
	cmd := NewQueryCommand(&RootOptions{Format: "text"})
	_, _, err := execute(cmd, fixtureDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"from" not set`)
}

func TestParseLiteral(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		raw  string
		typ  schema.SQLType
		want any
	}{
		{"NULL", schema.TypeInt64, nil},
		{"42", schema.TypeInt64, int64(42)},
		{"-1", schema.TypeInt64, int64(-1)},
		{"true", schema.TypeBool, true},
		{"2024-01-02T03:04:05Z", schema.TypeTimestamp, ts},
		{"aGk=", schema.TypeBytes, []byte("hi")},
		{"hello", schema.TypeString, "hello"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+"/"+tt.raw, func(t *testing.T) {
			got, err := parseLiteral(tt.raw, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteralErrors(t *testing.T) {
	tests := []struct {
		raw string
		typ schema.SQLType
	}{
		{"1.5", schema.TypeInt64},
		{"yes please", schema.TypeBool},
		{"yesterday", schema.TypeTimestamp},
		{"!!", schema.TypeBytes},
	}

	for _, tt := range tests {
		_, err := parseLiteral(tt.raw, tt.typ)
		assert.Error(t, err, "%s %q", tt.typ, tt.raw)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, `"x"`, formatValue("x"))
	assert.Equal(t, "5", formatValue(int64(5)))
	assert.Equal(t, "aGk=", formatValue([]byte("hi")))
	assert.Equal(t, "2024-01-01T00:00:00Z", formatValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParsePredicateColumnContainingSeparator(t *testing.T) {
	events := schema.MustCompose(schema.Definition{
		Name:    "Event",
		Options: schema.Options{Table: "events", PrimaryKey: []string{"id"}},
		Fields:  []schema.Field{schema.Int64("id"), schema.Int64("a__b")},
	})

	leaf, err := parsePredicate("a__b=5", events)
	require.NoError(t, err)
	assert.Equal(t, int64(5), leaf.Value)

	leaf, err = parsePredicate("a__b__gte=5", events)
	require.NoError(t, err)
	assert.Equal(t, "a__b", leaf.Ref.Column)
	assert.Equal(t, "gte", leaf.Lookup)
	assert.Equal(t, int64(5), leaf.Value)
}
