package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/loader"
)

// loadModels loads and composes the definitions in dir. On failure the
// error has already been written through the formatter and the returned
// error carries the exit code.
func loadModels(opts *RootOptions, dir string, formatter *OutputFormatter) (*loader.Result, error) {
	res, err := loader.Load(dir, loader.WithLogger(opts.logger()))
	if err != nil {
		return nil, formatter.Report(err)
	}
	formatter.VerboseLog("Loaded %d model(s) from %d file(s) in %s", len(res.Models), res.FileCount, dir)
	return res, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
