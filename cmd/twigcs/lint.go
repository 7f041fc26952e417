package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/yacobolo/twigcs"
	"github.com/yacobolo/twigcs/internal/config"
	"github.com/yacobolo/twigcs/internal/metrics"
)

// errBlocking signals exit code 1 without printing an error
var errBlocking = errors.New("blocking violations found")

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check Twig templates against the coding standard",
		Long: `Check every *.twig file under the given paths (default: the current
directory, plus any paths listed in the config file).
Exits 1 when a violation at or above --severity is found.`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: runLintCmd,
	}
	addLintFlags(cmd.Flags())
	return cmd
}

// runLintCmd is shared between `twigcs` and `twigcs lint`
func runLintCmd(cmd *cobra.Command, args []string) error {
	ruleFlags, _ := cmd.Flags().GetStringArray("rule")
	s, err := buildSettings(args, ruleFlags)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if k.Bool("watch") {
		return watch(ctx, s, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	result, err := lintOnce(ctx, s, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if result.HasBlocking {
		return errBlocking
	}
	return nil
}

// lintOnce discovers, checks and reports templates a single time.
// Verbose runs append statistics to errOut.
func lintOnce(ctx context.Context, s *settings, logger *slog.Logger, out, errOut io.Writer) (*twigcs.LintResult, error) {
	start := time.Now()

	files, stats, err := twigcs.Discover(s.paths, s.exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered templates",
		"found", stats.FilesDiscovered,
		"scanned", stats.FilesScanned,
		"skipped", stats.FilesSkipped)

	cascade, err := config.NewCascade(twigcs.StandardRuleset(), s.configRoot, s.rules)
	if err != nil {
		return nil, err
	}
	inputs, err := twigcs.LoadInputs(files, cascade.RulesetFor)
	if err != nil {
		return nil, err
	}

	opts := twigcs.Options{
		Workers:          s.workers,
		Threshold:        s.threshold,
		Display:          s.display,
		ThrowSyntaxError: s.throwSyntaxError,
		Logger:           logger,
	}
	var rec *metrics.Recorder
	if s.metricsFile != "" {
		rec = metrics.NewRecorder()
		opts.Observer = rec.Observe
	}

	result, err := twigcs.Run(ctx, inputs, opts)
	if rec != nil {
		rec.ObserveRun(time.Since(start), result)
		if werr := rec.WriteTextfile(s.metricsFile); werr != nil {
			logger.Warn("metrics not written", "error", werr)
		}
	}
	if err != nil {
		return nil, err
	}

	if !s.quiet {
		report := twigcs.ReportConfig{UseColors: s.useColors, PrintLines: s.printLines}
		if err := twigcs.WriteOutput(out, result, s.format, report); err != nil {
			return nil, err
		}
		if s.verbose {
			twigcs.NewStatsReporter(errOut, report).Write(result, stats)
		}
	}
	return result, nil
}
