package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/store"
)

// DDLOptions holds flags for the ddl subcommands.
type DDLOptions struct {
	*RootOptions
	Journal string // journal database path
	Output  string // output file path
}

// DDLResult is the output of ddl create/drop.
type DDLResult struct {
	Kind        store.Kind `json:"kind"`
	Fingerprint string     `json:"fingerprint"`
	Statements  []string   `json:"statements"`
	BatchID     string     `json:"batch_id,omitempty"`
	Seq         int64      `json:"seq,omitempty"`
	Output      string     `json:"output,omitempty"`
}

// WriteText prints one statement per line, or a summary when the
// statements went to a file.
func (r DDLResult) WriteText(w io.Writer) {
	if r.Output != "" {
		fmt.Fprintf(w, "Wrote %d statement(s) to %s\n", len(r.Statements), r.Output)
		return
	}
	for _, stmt := range r.Statements {
		fmt.Fprintln(w, stmt)
	}
}

// NewDDLCommand creates the ddl command with its create and drop
// subcommands.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Emit CREATE or DROP statements for a models directory",
	}
	cmd.AddCommand(newDDLKindCommand(rootOpts, store.KindCreate,
		"Emit CREATE TABLE and CREATE INDEX statements, parents first"))
	cmd.AddCommand(newDDLKindCommand(rootOpts, store.KindDrop,
		"Emit DROP INDEX and DROP TABLE statements, children first"))
	return cmd
}

func newDDLKindCommand(rootOpts *RootOptions, kind store.Kind, short string) *cobra.Command {
	opts := &DDLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   string(kind) + " <models-dir>",
		Short: short,
		Long: short + `.

With --journal the emitted batch is recorded in a SQLite journal together
with the catalog fingerprint.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(opts, kind, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the batch in this journal database")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runDDL(opts *DDLOptions, kind store.Kind, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	res, err := loadModels(opts.RootOptions, modelsDir, formatter)
	if err != nil {
		return err
	}

	stmts := res.Registry.CreateTableStatements()
	if kind == store.KindDrop {
		stmts = res.Registry.DropTableStatements()
	}
	fingerprint, err := res.Registry.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, fmt.Sprintf("fingerprinting catalog: %v", err), nil, err)
	}

	result := DDLResult{
		Kind:        kind,
		Fingerprint: fingerprint,
		Statements:  stmts,
		Output:      opts.Output,
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeStatements(opts.Output, stmts); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil, err)
		}
	}

	if opts.Journal != "" {
		batch, err := recordBatch(cmd, opts, result)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeJournal, err.Error(), nil, err)
		}
		result.BatchID = batch.ID
		result.Seq = batch.Seq
		formatter.VerboseLog("Recorded batch %s (seq %d) in %s", batch.ID, batch.Seq, opts.Journal)
	}

	return formatter.Success(result)
}

func recordBatch(cmd *cobra.Command, opts *DDLOptions, result DDLResult) (store.Batch, error) {
	st, err := store.Open(opts.Journal, store.WithLogger(opts.logger()))
	if err != nil {
		return store.Batch{}, fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing journal", "error", closeErr)
		}
	}()

	return st.RecordBatch(cmd.Context(), store.Batch{
		Kind:        result.Kind,
		Fingerprint: result.Fingerprint,
		Statements:  result.Statements,
	})
}

// writeStatements writes one statement per line.
func writeStatements(path string, stmts []string) error {
	return os.WriteFile(path, []byte(strings.Join(stmts, "\n")+"\n"), 0644)
}
