package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/yacobolo/twigcs"
	"github.com/yacobolo/twigcs/internal/config"
	tlog "github.com/yacobolo/twigcs/internal/log"
)

var (
	k          = koanf.New(".")
	configPath = config.FileName
)

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	k = koanf.New(".")

	configPath, _ = cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.FileName
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// CLI flags win, defaults only fill keys nothing else set
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}
	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(path string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return &config.ConfigurationError{Path: path, Err: err}
		}
	}

	// 2. Environment variables (TWIGCS_* prefix)
	if err := k.Load(env.Provider("TWIGCS_", ".", func(s string) string {
		// TWIGCS_SEVERITY -> severity
		// TWIGCS_THROW_SYNTAX_ERROR -> throw-syntax-error
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "TWIGCS_")),
			"_", "-",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// settings is the resolved configuration of one lint invocation
type settings struct {
	paths            []string
	exclude          []string
	rules            map[string]string
	threshold        twigcs.Severity
	display          twigcs.DisplayMode
	format           twigcs.OutputFormat
	workers          int
	throwSyntaxError bool
	printLines       bool
	useColors        bool
	quiet            bool
	verbose          bool
	metricsFile      string
	configRoot       string
}

// buildSettings validates koanf state and combines it with positional paths
// and --rule overrides
func buildSettings(args, ruleFlags []string) (*settings, error) {
	cfg, err := config.Decode(k, configPath)
	if err != nil {
		return nil, err
	}

	s := &settings{
		exclude:          cfg.Exclude,
		workers:          cfg.Workers,
		throwSyntaxError: cfg.ThrowSyntaxError,
		printLines:       cfg.PrintLines,
		metricsFile:      cfg.MetricsFile,
		useColors:        k.Bool("color"),
		quiet:            k.Bool("quiet"),
		verbose:          k.Bool("verbose"),
		configRoot:       filepath.Dir(configPath),
	}

	s.paths = append(append([]string{}, args...), cfg.Paths...)
	if len(s.paths) == 0 {
		s.paths = []string{"."}
	}

	s.threshold = twigcs.SeverityWarning
	if cfg.Severity != "" {
		if s.threshold, err = twigcs.ParseSeverity(cfg.Severity); err != nil {
			return nil, err
		}
	}
	if s.display, err = twigcs.ParseDisplayMode(cfg.Display); err != nil {
		return nil, err
	}
	if s.format, err = twigcs.DetermineOutputFormat(cfg.Reporter); err != nil {
		return nil, err
	}

	s.rules = make(map[string]string, len(cfg.Rules))
	for name, value := range cfg.Rules {
		s.rules[name] = value
	}
	for _, entry := range ruleFlags {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &config.ConfigurationError{Err: fmt.Errorf("--rule %q: expected name=severity", entry)}
		}
		s.rules[strings.TrimSpace(name)] = strings.ToLower(strings.TrimSpace(value))
	}
	if err := (&config.Config{Rules: s.rules}).Validate(); err != nil {
		return nil, &config.ConfigurationError{Err: err}
	}

	return s, nil
}

// newLogger builds the CLI logger from the verbosity and log format flags
func newLogger(w io.Writer) (*slog.Logger, error) {
	format, err := tlog.ParseFormat(k.String("log-format"))
	if err != nil {
		return nil, err
	}
	return tlog.New(tlog.Config{
		Level:     tlog.LevelFor(k.Bool("verbose"), k.Bool("quiet")),
		Format:    format,
		Output:    w,
		Component: "cli",
	}), nil
}
