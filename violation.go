package twigcs

import (
	"strings"

	"github.com/yacobolo/twigcs/internal/checker"
	"github.com/yacobolo/twigcs/internal/lexer"
	"github.com/yacobolo/twigcs/internal/rule"
)

// Violation is a reported coding standard breach. It is never mutated after
// NewViolations or LintSource create it.
type Violation struct {
	File       string   // Template path as given by the caller
	Line       int      // 1-based
	Column     int      // 1-based, in characters
	Severity   Severity // Effective severity after overrides
	RuleName   string   // "delimiter-spacing"
	Message    string   // Expanded rule reason
	SourceLine string   // Raw text of Line, for caret output
}

// Blocking reports whether the violation fails a run at the given threshold.
// An Ignore threshold never blocks, and neither do Ignore violations.
func (v Violation) Blocking(threshold Severity) bool {
	return threshold != rule.Ignore && v.Severity != rule.Ignore && v.Severity >= threshold
}

// NewViolations turns a file's rule errors into violations, resolving each
// rule's effective severity in rs. Order is preserved.
func NewViolations(file, source string, errs []checker.RuleError, rs *Ruleset) []Violation {
	lines := strings.Split(source, "\n")
	out := make([]Violation, 0, len(errs))
	for _, e := range errs {
		out = append(out, Violation{
			File:       file,
			Line:       e.Line(),
			Column:     e.Column(),
			Severity:   rs.EffectiveSeverity(e.Source().Name),
			RuleName:   e.Source().Name,
			Message:    e.Reason(),
			SourceLine: lineAt(lines, e.Line()),
		})
	}
	return out
}

// syntaxViolation reports a tokenizer failure as a single Error violation
func syntaxViolation(file string, err *lexer.SyntaxError) Violation {
	return Violation{
		File:     file,
		Line:     err.Line,
		Column:   err.Column,
		Severity: rule.Error,
		RuleName: SyntaxErrorRule,
		Message:  err.Message,
	}
}

func lineAt(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n-1], "\r")
}
