package cli

import (
	"sort"

	"github.com/arthur-debert/spanruler/pkg/callbacks"
	"github.com/arthur-debert/spanruler/pkg/output"
	"github.com/arthur-debert/spanruler/pkg/rules"
	"github.com/spf13/cobra"
)

func newCallbacksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "callbacks",
		Short:   MsgCallbacksShort,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderNames(cmd, MsgTitleCallbacks, callbacks.Default().Names())
		},
	}
}

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "filters",
		Short:   MsgFiltersShort,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.renderNames(cmd, MsgTitleFilters, rules.FilterNames())
		},
	}
}

func (a *app) renderNames(cmd *cobra.Command, title string, names []string) error {
	table := &output.Table{Title: title, Header: []string{"NAME"}}
	for _, name := range names {
		table.Rows = append(table.Rows, []string{name})
	}
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.RenderTable(table)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
