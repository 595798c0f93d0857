package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/registry"
	"github.com/roach88/strata/internal/testutil"
)

var (
	fixtureDir     = filepath.Join("..", "..", "testdata", "models")
	fixtureYAMLDir = filepath.Join("..", "..", "testdata", "models_yaml")
)

// execute runs a command with args and returns stdout, stderr and the
// command error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fixtureRegistry registers the shared fixture models, which the files in
// fixtureDir describe.
func fixtureRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, s := range testutil.NewModels().All() {
		require.NoError(t, reg.Register(s))
	}
	return reg
}
