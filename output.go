package twigcs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputFormat selects a reporter
type OutputFormat string

const (
	OutputText       OutputFormat = "text"
	OutputJSON       OutputFormat = "json"
	OutputEmacs      OutputFormat = "emacs"
	OutputGitHub     OutputFormat = "github"
	OutputCheckstyle OutputFormat = "checkstyle"
)

// OutputFormats lists every supported reporter name
var OutputFormats = []OutputFormat{OutputText, OutputJSON, OutputEmacs, OutputGitHub, OutputCheckstyle}

// ReportConfig holds reporter presentation settings
type ReportConfig struct {
	UseColors  bool // Force colored text output (default: auto-detect)
	PrintLines bool // Show the offending source line with a caret
}

// ParseOutputFormat validates a reporter name
func ParseOutputFormat(name string) (OutputFormat, error) {
	if name == "" {
		return OutputText, nil
	}
	for _, f := range OutputFormats {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown reporter %q", name)
}

// DetermineOutputFormat selects the reporter from the flag and environment.
// Inside GitHub Actions the default becomes workflow annotations.
func DetermineOutputFormat(formatFlag string) (OutputFormat, error) {
	if formatFlag != "" {
		return ParseOutputFormat(formatFlag)
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return OutputGitHub, nil
	}
	return OutputText, nil
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(config ReportConfig, w io.Writer) bool {
	// Explicit flag wins
	if config.UseColors {
		return true
	}

	// NO_COLOR disables auto-detected colors
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	// Auto-detect TTY
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// WriteOutput renders the displayed part of result in the given format
func WriteOutput(w io.Writer, result *LintResult, format OutputFormat, config ReportConfig) error {
	switch format {
	case OutputText, "":
		return NewTextReporter(w, config).Write(result)
	case OutputJSON:
		return WriteJSON(w, result)
	case OutputEmacs:
		return WriteEmacs(w, result)
	case OutputGitHub:
		return WriteGitHub(w, result)
	case OutputCheckstyle:
		return WriteCheckstyle(w, result)
	default:
		return fmt.Errorf("unknown reporter %q", format)
	}
}
