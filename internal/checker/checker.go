// Package checker runs a ruleset over one template's token stream.
package checker

import (
	"sort"
	"strings"

	"github.com/yacobolo/twigcs/internal/lexer"
	"github.com/yacobolo/twigcs/internal/rule"
)

// Source identifies the rule that produced a RuleError.
// It refers into the ruleset by index and name and does not own the rule.
type Source struct {
	Index int
	Name  string
}

// RuleError is a single detection. It is immutable once constructed.
type RuleError struct {
	reason string
	line   int
	column int
	source Source
}

// NewRuleError builds a RuleError
func NewRuleError(reason string, line, column int, source Source) RuleError {
	return RuleError{reason: reason, line: line, column: column, source: source}
}

// Reason returns the expanded rule message
func (e RuleError) Reason() string { return e.reason }

// Line returns the 1-based line of the offending position
func (e RuleError) Line() int { return e.line }

// Column returns the 1-based column of the offending position
func (e RuleError) Column() int { return e.column }

// Source returns the originating rule reference
func (e RuleError) Source() Source { return e.source }

// hit is a raw match position before the reason is expanded
type hit struct {
	line   int
	column int
	vars   map[string]string
}

// Check applies every rule of rs to the tokens of one template.
//
// Rules run in registration order. The result is sorted by line, then column,
// then registration index, and holds at most one error per
// (line, column, rule). Check has no side effects and keeps no state between
// calls, so it can run concurrently on different templates.
func Check(tokens []lexer.Token, rs *rule.Ruleset) []RuleError {
	doc := newDocument(tokens)

	var errs []RuleError
	for i, r := range rs.Rules() {
		var hits []hit
		switch m := r.Match.(type) {
		case *rule.Pattern:
			hits = matchPattern(doc, m)
		case *rule.UnusedVariables:
			hits = findUnusedVariables(doc)
		}

		source := Source{Index: i, Name: r.Name}
		for _, h := range hits {
			errs = append(errs, NewRuleError(rule.ExpandReason(r.Reason, h.vars), h.line, h.column, source))
		}
	}

	errs = dedupe(errs)
	sort.SliceStable(errs, func(a, b int) bool {
		ea, eb := errs[a], errs[b]
		if ea.line != eb.line {
			return ea.line < eb.line
		}
		if ea.column != eb.column {
			return ea.column < eb.column
		}
		return ea.source.Index < eb.source.Index
	})
	return errs
}

type errorKey struct {
	line   int
	column int
	rule   int
}

// dedupe keeps the first error for each (line, column, rule)
func dedupe(errs []RuleError) []RuleError {
	seen := make(map[errorKey]bool, len(errs))
	out := errs[:0]
	for _, e := range errs {
		key := errorKey{e.line, e.column, e.source.Index}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// document is the per-template view shared by all matchers
type document struct {
	source string
	lines  []string
	stream *lexer.Stream
}

func newDocument(tokens []lexer.Token) *document {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok.Text)
	}
	source := b.String()

	return &document{
		source: source,
		lines:  strings.Split(source, "\n"),
		stream: lexer.NewStream(tokens),
	}
}

// line returns the raw text of a 1-based line without its newline
func (d *document) line(n int) string {
	if n < 1 || n > len(d.lines) {
		return ""
	}
	return d.lines[n-1]
}

// before returns the text of line n preceding 1-based column
func (d *document) before(n, column int) string {
	text := d.line(n)
	return text[:runeOffset(text, column-1)]
}

// after returns the text of line n from 1-based column onwards
func (d *document) after(n, column int) string {
	text := d.line(n)
	return text[runeOffset(text, column-1):]
}

// tagPrefix returns the source text from the opener of the tag or
// expression holding token i up to that token. Outside code it is empty.
func (d *document) tagPrefix(i int) string {
	open := -1
	for j := i - 1; j >= 0 && open < 0; j-- {
		switch d.stream.At(j).Kind {
		case lexer.TagOpen, lexer.ExpressionOpen:
			open = j
		case lexer.Literal, lexer.TagClose, lexer.ExpressionClose, lexer.CommentClose:
			return ""
		}
	}
	if open < 0 {
		return ""
	}

	var b strings.Builder
	for j := open; j < i; j++ {
		b.WriteString(d.stream.At(j).Text)
	}
	return b.String()
}

// runeOffset converts a rune count into a byte offset within s
func runeOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	count := 0
	for i := range s {
		if count == runes {
			return i
		}
		count++
	}
	return len(s)
}
