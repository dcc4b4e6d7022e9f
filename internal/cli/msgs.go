package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort           = "Rule-based span matching with second-opinion callbacks"
	MsgMatchShort          = "Find spans in text"
	MsgPatternsShort       = "Work with pattern files"
	MsgPatternsValidate    = "Check that pattern files load and compile"
	MsgPatternsList        = "List the patterns in pattern files"
	MsgPatternsConvert     = "Convert a pattern file to another format"
	MsgCallbacksShort      = "List the registered match callbacks"
	MsgFiltersShort        = "List the span filters usable in settings"
	MsgConfigShort         = "Inspect the configuration"
	MsgConfigShowShort     = "Print the effective configuration"
	MsgConfigDefaultsShort = "Print the built-in defaults"
	MsgConfigPathShort     = "Print the user configuration directory"
	MsgVersionShort        = "Print version information"
	MsgCompletionShort     = "Generate shell completion script"
	MsgManShort            = "Generate man pages"

	// Output
	MsgPatternsValid   = "<Info>%d</Info> patterns in <Header>%s</Header> are valid"
	MsgPatternsWritten = "Wrote <Info>%d</Info> patterns to <Header>%s</Header>"
	MsgManWritten      = "Wrote man pages to <Header>%s</Header>"
	MsgWatching        = "Watching %d files, press Ctrl+C to stop"
	MsgTitleCallbacks  = "Callbacks"
	MsgTitleFilters    = "Span filters"

	// Errors
	MsgErrNoPatternFiles = "at least one pattern file is required (--patterns)"
	MsgErrWatchStdin     = "--watch needs --input files or text arguments, not standard input"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default is $XDG_CONFIG_HOME/spanruler/config.toml)"
	MsgFlagFormat   = "Output format: text, json or xml"
	MsgFlagNoColor  = "Disable colored output"
	MsgFlagSet      = "Override a config value, e.g. --set ruler.spans_key=dates"
	MsgFlagPatterns = "Pattern file to load (repeatable)"
	MsgFlagInput    = "Read a document from a file (repeatable)"
	MsgFlagLines    = "Treat every non-empty input line as a document"
	MsgFlagWatch    = "Match again when pattern or input files change"
	MsgFlagManDir   = "Directory to write man pages to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/match-long.txt
	msgMatchLongRaw string
	MsgMatchLong    = strings.TrimSpace(msgMatchLongRaw)

	//go:embed msgs/match-example.txt
	msgMatchExampleRaw string
	MsgMatchExample    = strings.TrimRight(msgMatchExampleRaw, "\n")

	//go:embed msgs/patterns-long.txt
	msgPatternsLongRaw string
	MsgPatternsLong    = strings.TrimSpace(msgPatternsLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
