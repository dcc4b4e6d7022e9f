// Package cli implements the spanruler command line.
package cli

import (
	"embed"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/arthur-debert/spanruler/internal/version"
	"github.com/arthur-debert/spanruler/pkg/cobrax/topics"
	"github.com/arthur-debert/spanruler/pkg/config"
	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// globalOptions are the persistent flags.
type globalOptions struct {
	verbosity  int
	configPath string
	format     string
	noColor    bool
	set        []string
}

// app is the state shared by the commands of one invocation.
type app struct {
	opts globalOptions
	cfg  *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	cmd, a := newRoot()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		a.reportError(cmd.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func newRoot() (*cobra.Command, *app) {
	initTemplateFormatting()
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "spanruler",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(a.opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return a.loadConfig(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.opts.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.StringVarP(&a.opts.configPath, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&a.opts.format, "format", "f", "", MsgFlagFormat)
	flags.BoolVar(&a.opts.noColor, "no-color", false, MsgFlagNoColor)
	flags.StringArrayVar(&a.opts.set, "set", nil, MsgFlagSet)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return output.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "info", Title: "INFO:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newMatchCmd(a))
	rootCmd.AddCommand(newPatternsCmd(a))
	rootCmd.AddCommand(newCallbacksCmd(a))
	rootCmd.AddCommand(newFiltersCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd(a))

	help, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		renderer := topics.NewGlamourRenderer()
		if !output.ColorSupported(os.Stdout) {
			renderer.Style = "notty"
		}
		if _, err := topics.Initialize(rootCmd, help, topics.Options{Renderer: renderer}); err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}
	if hc, _, err := rootCmd.Find([]string{"help"}); err == nil && hc != rootCmd {
		hc.GroupID = "misc"
	}

	return rootCmd, a
}

// loadConfig layers the flags over the config files and environment.
func (a *app) loadConfig(cmd *cobra.Command) error {
	overrides := make(map[string]any)
	for _, kv := range a.opts.set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return errors.Newf(errors.ErrInvalidInput, "--set expects key=value, got %q", kv)
		}
		overrides[strings.TrimSpace(key)] = value
	}
	if cmd.Flags().Changed("format") {
		overrides["output.format"] = a.opts.format
	}
	if cmd.Flags().Changed("no-color") {
		overrides["output.no_color"] = a.opts.noColor
	}

	cfg, err := config.Load(config.Options{Path: a.opts.configPath, Overrides: overrides})
	if err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.Log.Verbosity > a.opts.verbosity {
		logging.SetupLogger(cfg.Log.Verbosity)
	}
	return nil
}

// renderer returns the configured renderer writing to w.
func (a *app) renderer(w io.Writer) (output.Renderer, error) {
	opts := output.Options{Format: output.FormatText}
	if a.cfg != nil {
		opts.Format = a.cfg.Output.Format
		if a.cfg.Output.Styles != "" {
			styles, err := output.LoadStyles(a.cfg.Output.Styles)
			if err != nil {
				return nil, err
			}
			opts.Styles = styles
		}
		if f, ok := w.(*os.File); ok && !a.cfg.Output.NoColor {
			opts.Color = output.ColorSupported(f)
		}
	}
	return output.New(w, opts)
}

// reportError renders err with the configured renderer, falling back to
// plain text when the configuration never loaded.
func (a *app) reportError(w io.Writer, err error) {
	var r output.Renderer
	if a.cfg != nil {
		r, _ = a.renderer(w)
	}
	if r == nil {
		r, _ = output.New(w, output.Options{Format: output.FormatText})
	}
	if werr := r.RenderError(err); werr != nil {
		log.Error().Err(err).Msg("Command failed")
	}
}
