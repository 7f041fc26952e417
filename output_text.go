package twigcs

import (
	"fmt"
	"io"
	"strings"
)

// TextReporter prints violations grouped by file:
//
//	templates/page.html.twig
//	l.1 c.8 : WARNING Unused variable "foo".
//	1 violation(s) found
type TextReporter struct {
	w          io.Writer
	useColors  bool
	printLines bool
}

// NewTextReporter creates a text reporter writing to w
func NewTextReporter(w io.Writer, config ReportConfig) *TextReporter {
	return &TextReporter{
		w:          w,
		useColors:  shouldUseColors(config, w),
		printLines: config.PrintLines,
	}
}

// Write prints every displayed violation followed by the summary line
func (r *TextReporter) Write(result *LintResult) error {
	total := 0
	for _, file := range result.Displayed() {
		if len(file.Violations) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(r.w, RenderStyle(StyleCyan, file.File, r.useColors)); err != nil {
			return err
		}
		for _, v := range file.Violations {
			if err := r.printViolation(v); err != nil {
				return err
			}
			total++
		}
	}
	return r.printSummary(total)
}

// printViolation formats a single violation in "l.L c.C : SEVERITY message" form
func (r *TextReporter) printViolation(v Violation) error {
	position := fmt.Sprintf("l.%d c.%d :", v.Line, v.Column)
	label := strings.ToUpper(v.Severity.String())

	_, err := fmt.Fprintf(r.w, "%s %s %s\n",
		RenderStyle(StyleGray, position, r.useColors),
		RenderStyle(severityStyle(v.Severity), label, r.useColors),
		v.Message)
	if err != nil || !r.printLines || v.SourceLine == "" {
		return err
	}

	// Source line with caret indicator
	caret := buildCaretIndicator(v.SourceLine, v.Column)
	_, err = fmt.Fprintf(r.w, "\t%s\n\t%s\n", v.SourceLine, RenderStyle(StyleYellow, caret, r.useColors))
	return err
}

// buildCaretIndicator creates the "^" indicator aligned with the column
// Tabs in the prefix are kept so the caret lines up under indented source.
func buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	// Columns count characters, not bytes
	runes := []rune(sourceLine)
	prefixLen := column - 1
	if prefixLen > len(runes) {
		prefixLen = len(runes)
	}

	// Build padding that matches tabs/spaces in the prefix
	var padding strings.Builder
	for _, ch := range runes[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// printSummary outputs the violation count line
func (r *TextReporter) printSummary(total int) error {
	var err error
	if total == 0 {
		_, err = fmt.Fprintln(r.w, RenderStyle(StyleGreen, "No violation found.", r.useColors))
	} else {
		_, err = fmt.Fprintln(r.w, RenderStyle(StyleRed, fmt.Sprintf("%d violation(s) found", total), r.useColors))
	}
	return err
}
