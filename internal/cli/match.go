package cli

import (
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/arthur-debert/spanruler/pkg/errors"
	"github.com/arthur-debert/spanruler/pkg/logging"
	"github.com/arthur-debert/spanruler/pkg/output"
	"github.com/arthur-debert/spanruler/pkg/patterns"
	"github.com/arthur-debert/spanruler/pkg/pipeline"
	"github.com/arthur-debert/spanruler/pkg/rules"
	"github.com/arthur-debert/spanruler/pkg/tokenizer"
	"github.com/arthur-debert/spanruler/pkg/utils"
	"github.com/arthur-debert/spanruler/pkg/watch"
	"github.com/spf13/cobra"
)

type matchOptions struct {
	patterns []string
	inputs   []string
	lines    bool
	watch    bool
}

func newMatchCmd(a *app) *cobra.Command {
	opts := &matchOptions{}
	cmd := &cobra.Command{
		Use:     "match [text...]",
		Short:   MsgMatchShort,
		Long:    MsgMatchLong,
		Example: MsgMatchExample,
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.patterns) == 0 {
				return errors.New(errors.ErrInvalidInput, MsgErrNoPatternFiles)
			}
			opts.patterns = utils.ExpandPaths(opts.patterns)
			opts.inputs = utils.ExpandPaths(opts.inputs)
			if !opts.watch {
				return a.runMatch(cmd, opts, args)
			}
			return a.watchMatch(cmd, opts, args)
		},
	}
	cmd.Flags().StringArrayVarP(&opts.patterns, "patterns", "p", nil, MsgFlagPatterns)
	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, MsgFlagInput)
	cmd.Flags().BoolVar(&opts.lines, "lines", false, MsgFlagLines)
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, MsgFlagWatch)
	return cmd
}

// runMatch loads the patterns, processes every document and renders the
// spans stored under the ruler's spans key.
func (a *app) runMatch(cmd *cobra.Command, opts *matchOptions, args []string) error {
	logger := logging.GetLogger("cli.match")
	defer logging.LogOperationStart(logger, "match")()

	pipe, ruler, err := a.newRuler(opts.patterns)
	if err != nil {
		return err
	}
	docs, err := readDocuments(cmd.InOrStdin(), opts, args)
	if err != nil {
		return err
	}

	results := make([]*output.Result, 0, len(docs))
	for _, d := range docs {
		doc, err := pipe.Run(d.text)
		if err != nil {
			return err
		}
		results = append(results, &output.Result{
			Source: d.source,
			Doc:    doc,
			Spans:  doc.SpanGroup(ruler.SpansKey()),
		})
	}
	logger.Info().Int("documents", len(results)).Int("patterns", ruler.Len()).Msg("Matched documents")

	r, err := a.renderer(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return r.RenderResults(results)
}

// watchMatch runs the match once and again on every change until
// interrupted. Failures while watching are reported and do not stop it.
func (a *app) watchMatch(cmd *cobra.Command, opts *matchOptions, args []string) error {
	if len(opts.inputs) == 0 && len(args) == 0 {
		return errors.New(errors.ErrInvalidInput, MsgErrWatchStdin)
	}
	logger := logging.WithFields(map[string]interface{}{
		"patterns": len(opts.patterns),
		"inputs":   len(opts.inputs),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files := append(append([]string{}, opts.patterns...), opts.inputs...)
	run := func() {
		if err := a.runMatch(cmd, opts, args); err != nil {
			a.reportError(cmd.ErrOrStderr(), err)
		}
	}

	run()
	logger.Info().Int("files", len(files)).Msg("Watching for changes")
	return watch.Files(ctx, files, watch.Options{}, func(changed []string) error {
		logger.Info().Strs("changed", changed).Msg("Files changed, matching again")
		run()
		return nil
	})
}

// newRuler builds a pipeline from the configuration with a ruler stage
// holding the patterns of every file.
func (a *app) newRuler(files []string) (*pipeline.Pipeline, *rules.Ruler, error) {
	pipe := pipeline.New(tokenizer.New(a.cfg.TokenizerOptions()...))
	ruler, err := rules.AddToPipeline(pipe, a.cfg.Ruler.Name, a.cfg.RulerSettings())
	if err != nil {
		return nil, nil, err
	}
	if err := addPatternFiles(ruler, files); err != nil {
		return nil, nil, err
	}
	return pipe, ruler, nil
}

func addPatternFiles(ruler *rules.Ruler, files []string) error {
	for _, path := range files {
		pats, err := patterns.Load(path)
		if err != nil {
			return err
		}
		if err := ruler.AddPatterns(pats); err != nil {
			if details := errors.GetErrorDetails(err); details != nil {
				details["path"] = path
			}
			return err
		}
	}
	return nil
}

type document struct {
	source string
	text   string
}

// readDocuments collects the documents from --input files, the arguments
// or stdin, in that order of preference.
func readDocuments(stdin io.Reader, opts *matchOptions, args []string) ([]document, error) {
	var docs []document
	switch {
	case len(opts.inputs) > 0:
		for _, path := range opts.inputs {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to read input %s", path).
					WithDetail("path", path)
			}
			docs = append(docs, document{source: path, text: string(data)})
		}
	case len(args) > 0 && !(len(args) == 1 && args[0] == "-"):
		for _, arg := range args {
			docs = append(docs, document{text: arg})
		}
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to read standard input")
		}
		docs = append(docs, document{text: string(data)})
	}

	if opts.lines {
		return splitLines(docs), nil
	}
	for i := range docs {
		docs[i].text = strings.TrimRight(docs[i].text, "\r\n")
	}
	return docs, nil
}

// splitLines turns every non-empty line into its own document. The source
// gets a ":line" suffix.
func splitLines(docs []document) []document {
	var out []document
	for _, d := range docs {
		for i, line := range strings.Split(d.text, "\n") {
			line = strings.TrimRight(line, "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			source := strconv.Itoa(i + 1)
			if d.source != "" {
				source = d.source + ":" + source
			}
			out = append(out, document{source: source, text: line})
		}
	}
	return out
}
