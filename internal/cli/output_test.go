package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/loader"
	"github.com/roach88/strata/internal/schema"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E201", "model A: table name is required", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E201", resp.Error.Code)
	assert.Equal(t, "model A: table name is required", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "models.cue", "line": "42"}
	err := formatter.Error("E101", "unknown key", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All models valid")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "All models valid")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E201", "model A: table name is required", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E201]")
	assert.Contains(t, buf.String(), "model A: table name is required")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "models.cue"}
	err := formatter.Error("E201", "model A: table name is required", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E201]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Processing %s", "models.cue")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Processing models.cue")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E101",
		Message: "validation failed",
		Details: []string{"unknown key: tabel"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E101", decoded.Code)
	assert.Equal(t, "validation failed", decoded.Message)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("Loaded %d model(s)", 4)
	assert.Empty(t, out.String())
	assert.Equal(t, "Loaded 4 model(s)\n", errOut.String())
}

func TestOutputFormatter_TextSuccessUsesWriteText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Success(OrderList{
		{Priority: 0, Table: "singers", Model: "Singer"},
		{Priority: 1, Table: "albums", Model: "Album", Parent: "singers"},
	})
	require.NoError(t, err)
	assert.Equal(t, "0 singers (Singer)\n1 albums (Album) in singers\n", buf.String())

	buf.Reset()
	err = formatter.Success(DDLResult{Statements: []string{"a;", "b;"}, Output: "out.sql"})
	require.NoError(t, err)
	assert.Equal(t, "Wrote 2 statement(s) to out.sql\n", buf.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	cause := errors.New("disk full")

	err := formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "writing output file: disk full", nil, cause)
	require.Error(t, err)
	assert.Equal(t, "Error [E007]: writing output file: disk full\n", buf.String())
	assert.Equal(t, "E007: writing output file: disk full", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, cause)
}

func TestOutputFormatter_Report(t *testing.T) {
	pos := loader.Position{File: "models.cue", Line: 4, Column: 8}

	tests := []struct {
		name    string
		err     error
		exit    int
		code    string
		message string
		details any
	}{
		{
			name:    "directory missing",
			err:     &loader.LoadError{Code: loader.ErrCodeNotFound, Message: "models directory not found: x"},
			exit:    ExitCommandError,
			code:    "E005",
			message: "models directory not found: x",
		},
		{
			name:    "definition error with position",
			err:     &loader.LoadError{Code: loader.ErrCodeUnknownRef, Message: "model A references undefined model B", Pos: pos},
			exit:    ExitFailure,
			code:    "E103",
			message: "models.cue:4:8: model A references undefined model B",
			details: map[string]any{"position": "models.cue:4:8"},
		},
		{
			name:    "malformed predicate",
			err:     &predicateError{arg: "id", msg: "expected column__lookup=value"},
			exit:    ExitCommandError,
			code:    ErrCodeInvalidWhere,
			message: `invalid predicate "id": expected column__lookup=value`,
		},
		{
			name:    "schema error",
			err:     &schema.IndexError{Code: schema.ErrCodeUnknownIndex, Index: "nope", Message: "unknown index"},
			exit:    ExitFailure,
			code:    "E213",
			message: `index "nope": unknown index`,
		},
		{
			name:    "other error",
			err:     errors.New("boom"),
			exit:    ExitFailure,
			code:    ErrCodeGeneric,
			message: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.Report(fmt.Errorf("running: %w", tt.err))
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.message)
			assert.Equal(t, tt.details, resp.Error.Details)
		})
	}
}

func TestOutputFormatter_ReportPassesExitErrorThrough(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	reported := NewExitError(ExitCommandError, "E003: no CUE or YAML files found in x")
	err := formatter.Report(reported)
	assert.Same(t, reported, err)
	assert.Empty(t, buf.String())
}

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "E005: models directory not found")
	assert.Equal(t, "E005: models directory not found", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("run: %w", err)))

	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
}
