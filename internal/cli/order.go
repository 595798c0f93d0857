package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/strata/internal/registry"
)

// OrderEntry is one table in creation order.
type OrderEntry struct {
	Priority int    `json:"priority"`
	Table    string `json:"table"`
	Model    string `json:"model"`
	Parent   string `json:"parent,omitempty"`
}

// OrderList is the order command's result.
type OrderList []OrderEntry

// WriteText prints "priority table (Model)", plus " in parent" for
// interleaved tables.
func (l OrderList) WriteText(w io.Writer) {
	for _, e := range l {
		if e.Parent != "" {
			fmt.Fprintf(w, "%d %s (%s) in %s\n", e.Priority, e.Table, e.Model, e.Parent)
			continue
		}
		fmt.Fprintf(w, "%d %s (%s)\n", e.Priority, e.Table, e.Model)
	}
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order <models-dir>",
		Short: "List tables in creation order with their priority",
		Long: `List every table in the order its DDL is emitted.

Priority is the length of a table's interleave parent chain. Tables are
created by ascending priority, in definition order within a priority.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runOrder(opts *RootOptions, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	res, err := loadModels(opts, modelsDir, formatter)
	if err != nil {
		return err
	}

	entries := OrderList{}
	for _, s := range res.Registry.Ordered() {
		entry := OrderEntry{
			Priority: registry.Priority(s),
			Table:    s.Table(),
			Model:    s.Name(),
		}
		if p := s.Parent(); p != nil {
			entry.Parent = p.Table()
		}
		entries = append(entries, entry)
	}

	return formatter.Success(entries)
}
