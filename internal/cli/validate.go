package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/loader"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool     `json:"valid"`
	Models      int      `json:"models"`
	Tables      []string `json:"tables"`
	Fingerprint string   `json:"fingerprint"`
}

// WriteText prints a one-line summary.
func (r ValidationResult) WriteText(w io.Writer) {
	fmt.Fprintf(w, "✓ All models valid (%d model(s), %d table(s))\n", r.Models, len(r.Tables))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <models-dir>",
		Short: "Validate model definitions without emitting DDL",
		Long: `Load and compose every model definition in a directory.

Checks syntax, unknown keys, references between models, field and index
configuration and primary keys without generating output. Faster than
ddl create for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	res, err := loader.Load(modelsDir, loader.WithLogger(opts.logger()))
	if err != nil {
		if formatter.Format != "json" {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		}
		return formatter.Report(err)
	}
	formatter.VerboseLog("Found %d file(s) in %s", res.FileCount, modelsDir)
	for _, s := range res.Schemas {
		formatter.VerboseLog("Validated model: %s", s.Name())
	}

	fingerprint, err := res.Registry.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("fingerprinting catalog: %v", err), nil, err)
	}

	result := ValidationResult{
		Valid:       true,
		Models:      len(res.Models),
		Tables:      []string{},
		Fingerprint: fingerprint,
	}
	for _, s := range res.Registry.Ordered() {
		result.Tables = append(result.Tables, s.Table())
	}

	return formatter.Success(result)
}
