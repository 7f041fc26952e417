package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newRootCmd builds the command tree. Running the root command without a
// subcommand lints the given paths.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "twigcs [paths...]",
		Short: "Coding standard checker for Twig templates",
		Long: `Check Twig templates against a coding standard.
Templates are tokenized and every rule of the ruleset is matched against the
raw token stream. Violations are reported with a position and a severity.`,
		Args: cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE:          runLintCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags (inherited by all subcommands)
	pf := root.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.BoolP("quiet", "q", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.StringP("config", "c", ".twigcs.yaml", "Config file path")
	pf.String("log-format", "text", "Log format: text|json")

	addLintFlags(root.Flags())

	root.AddCommand(newLintCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// addLintFlags registers the flags shared by the root and lint commands.
// Flag names match configuration keys.
func addLintFlags(f *pflag.FlagSet) {
	f.StringP("severity", "s", "warning", "Minimum severity that fails the run: ignore|info|warning|error")
	f.StringP("display", "d", "all", "Violations to display: all|blocking")
	f.StringP("reporter", "r", "", "Output format: text|json|emacs|github|checkstyle (default: auto)")
	f.StringSliceP("exclude", "e", nil, "Paths to exclude (relative to each searched path)")
	f.StringArray("rule", nil, "Override a rule: name=ignore|info|warning|error|off (repeatable)")
	f.Int("workers", 0, "Templates checked in parallel (0 = number of CPUs)")
	f.Bool("throw-syntax-error", false, "Abort on the first template that fails to tokenize")
	f.Bool("print-lines", false, "Show the offending source line under each violation")
	f.String("metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")
	f.BoolP("watch", "w", false, "Re-run when templates or configuration change")
}
