package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/spanruler/pkg/output"
	"github.com/arthur-debert/spanruler/pkg/patterns"
	"github.com/arthur-debert/spanruler/pkg/pipeline"
	"github.com/arthur-debert/spanruler/pkg/rules"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/types"
	"github.com/arthur-debert/spanruler/pkg/utils"
	"github.com/spf13/cobra"
)

func newPatternsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Short:   MsgPatternsShort,
		Long:    MsgPatternsLong,
		GroupID: "core",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>...",
		Short: MsgPatternsValidate,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validatePatterns(cmd, utils.ExpandPaths(args))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list <file>...",
		Short: MsgPatternsList,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listPatterns(cmd, utils.ExpandPaths(args))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "convert <src> <dst>",
		Short: MsgPatternsConvert,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convertPatterns(cmd, utils.ExpandPath(args[0]), utils.ExpandPath(args[1]))
		},
	})
	return cmd
}

// validatePatterns compiles each file into its own ruler with validation
// on, so unknown callbacks and empty labels are caught.
func (a *app) validatePatterns(cmd *cobra.Command, files []string) error {
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	settings := a.cfg.RulerSettings()
	settings["validate"] = true

	for _, path := range files {
		pipe := pipeline.New(tokenizer.New(a.cfg.TokenizerOptions()...))
		ruler, err := rules.AddToPipeline(pipe, a.cfg.Ruler.Name, settings)
		if err != nil {
			return err
		}
		if err := addPatternFiles(ruler, []string{path}); err != nil {
			return err
		}
		if err := r.RenderMessage(fmt.Sprintf(MsgPatternsValid, ruler.Len(), output.Escape(path))); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) listPatterns(cmd *cobra.Command, files []string) error {
	table := &output.Table{
		Title:  "Patterns",
		Header: []string{"FILE", "#", "LABEL", "ID", "KIND", "PATTERN", "ON_MATCH"},
	}
	for _, path := range files {
		pats, err := patterns.Load(path)
		if err != nil {
			return err
		}
		for i, p := range pats {
			table.Rows = append(table.Rows, []string{
				path, strconv.Itoa(i), p.Label, p.ID, p.Pattern.Kind().String(),
				describePattern(p.Pattern), describeOnMatch(p.OnMatch),
			})
		}
	}
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.RenderTable(table)
}

func (a *app) convertPatterns(cmd *cobra.Command, src, dst string) error {
	pats, err := patterns.Load(src)
	if err != nil {
		return err
	}
	if err := patterns.Save(dst, pats); err != nil {
		return err
	}
	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.RenderMessage(fmt.Sprintf(MsgPatternsWritten, len(pats), output.Escape(dst)))
}

func describePattern(v types.PatternValue) string {
	if phrase, ok := v.Phrase(); ok {
		return strconv.Quote(phrase)
	}
	if specs, ok := v.Tokens(); ok {
		data, err := json.Marshal(specs)
		if err != nil {
			return fmt.Sprint(specs)
		}
		return string(data)
	}
	return ""
}

func describeOnMatch(m *types.OnMatch) string {
	if m == nil {
		return ""
	}
	var parts []string
	for _, arg := range m.Args {
		parts = append(parts, fmt.Sprint(arg))
	}
	for _, k := range sortedKeys(m.Kwargs) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m.Kwargs[k]))
	}
	return m.ID + "(" + strings.Join(parts, ", ") + ")"
}
