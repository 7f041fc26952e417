// Package twigcs checks Twig templates against a coding standard.
//
// Each template is tokenized, every rule of a ruleset is matched against the
// raw token stream, and the detections are reported as positioned violations
// with a severity.
//
// # Linting a single template
//
//	result := twigcs.LintSource("page.html.twig", source, twigcs.StandardRuleset())
//	for _, v := range result.Violations {
//		fmt.Printf("l.%d c.%d : %s %s\n", v.Line, v.Column, v.Severity, v.Message)
//	}
//
// # Linting a project
//
//	files, _, err := twigcs.Discover([]string{"templates"}, []string{"vendor"})
//	inputs, err := twigcs.LoadInputs(files, func(string) (*twigcs.Ruleset, error) {
//		return twigcs.StandardRuleset(), nil
//	})
//	result, err := twigcs.Run(ctx, inputs, twigcs.Options{Threshold: twigcs.SeverityWarning})
//	twigcs.WriteOutput(os.Stdout, result, twigcs.OutputText, twigcs.ReportConfig{})
//	os.Exit(result.ExitCode())
//
// # CLI Tool
//
//	go install github.com/yacobolo/twigcs/cmd/twigcs@latest
package twigcs

import (
	"github.com/yacobolo/twigcs/internal/checker"
	"github.com/yacobolo/twigcs/internal/lexer"
	"github.com/yacobolo/twigcs/internal/rule"
)

// Engine types re-exported for callers outside this module
type (
	Severity    = rule.Severity
	Rule        = rule.Rule
	Ruleset     = rule.Ruleset
	Token       = lexer.Token
	SyntaxError = lexer.SyntaxError
	RuleError   = checker.RuleError
)

// Severity levels, lowest first
const (
	SeverityIgnore  = rule.Ignore
	SeverityInfo    = rule.Info
	SeverityWarning = rule.Warning
	SeverityError   = rule.Error
)

// SyntaxErrorRule is the rule name reported for templates that fail to tokenize
const SyntaxErrorRule = "syntax-error"

// StandardRuleset returns the built-in ruleset
func StandardRuleset() *Ruleset {
	return rule.Standard()
}

// ParseSeverity converts a severity name such as "warning"
func ParseSeverity(name string) (Severity, error) {
	return rule.ParseSeverity(name)
}
