package rule

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/yacobolo/twigcs/internal/lexer"
)

// ErrInvalidRule marks a rule definition that can never be evaluated
var ErrInvalidRule = errors.New("invalid rule")

// Rule is a named check with a default severity and a reason template
type Rule struct {
	Name        string   // Stable identifier used in config overrides and output
	Description string   // One-line summary shown by the rules command
	Severity    Severity // Default severity when no override applies
	Reason      string   // Message template, see ExpandReason
	Match       Matcher  // What the rule looks for
}

// Matcher is the closed set of matching strategies a Rule can use.
// Implementations: *Pattern and *UnusedVariables.
type Matcher interface {
	// Kinds returns the token kinds the matcher inspects (nil for line or file scope)
	Kinds() []lexer.Kind
	validate() error
}

// Scope selects the text a Pattern is evaluated against
type Scope int

const (
	ScopeTokens Scope = iota // each token of the selected kinds
	ScopeLines               // each raw source line, without its newline
	ScopeFile                // the whole source at once
)

// Side selects which text around a token forms the subject in ScopeTokens
type Side int

const (
	SideToken  Side = iota // the token's own text
	SideAfter              // the rest of the line after the token
	SideBefore             // the line prefix before the token
)

// Mode decides whether a match or the absence of one is the violation
type Mode int

const (
	Forbid  Mode = iota // every match is a violation
	Require             // a subject that does not match is a violation
)

// Pattern is a regular-expression matcher over raw source text.
//
// For Forbid, the violation column is the start of the first participating
// capture group, or of the whole match when there are no groups.
// For Require, the column is the position right after the token (SideAfter),
// the last character before it (SideBefore), or the subject start otherwise.
type Pattern struct {
	Scope  Scope
	Tokens []lexer.Kind   // ScopeTokens only
	Texts  []string       // optional exact token texts, ScopeTokens only
	Side   Side           // ScopeTokens only
	Mode   Mode           // Forbid or Require
	Expr   *regexp.Regexp // evaluated against the subject
	Guard  *regexp.Regexp // optional, must match the enclosing tag text before the token
}

// Kinds implements Matcher
func (p *Pattern) Kinds() []lexer.Kind {
	if p.Scope != ScopeTokens {
		return nil
	}
	return p.Tokens
}

// Accepts reports whether a token falls in the pattern's token scope
func (p *Pattern) Accepts(tok lexer.Token) bool {
	for _, kind := range p.Tokens {
		if tok.Is(kind, p.Texts...) {
			return true
		}
	}
	return false
}

func (p *Pattern) validate() error {
	if p.Expr == nil {
		return errors.New("pattern has no expression")
	}
	if p.Mode != Forbid && p.Mode != Require {
		return fmt.Errorf("unknown mode %d", p.Mode)
	}

	switch p.Scope {
	case ScopeTokens:
		if len(p.Tokens) == 0 {
			return errors.New("token pattern selects no token kinds")
		}
		for _, kind := range p.Tokens {
			if !kind.Valid() {
				return fmt.Errorf("undefined token kind %s", kind)
			}
		}
		if p.Side < SideToken || p.Side > SideBefore {
			return fmt.Errorf("unknown side %d", p.Side)
		}
	case ScopeLines, ScopeFile:
		if len(p.Tokens) > 0 || p.Guard != nil {
			return errors.New("line and file patterns cannot select tokens")
		}
	default:
		return fmt.Errorf("unknown scope %d", p.Scope)
	}
	return nil
}

// UnusedVariables reports variables assigned with {% set %} that are never
// referenced anywhere else in the template. The reason template receives the
// variable as $name.
type UnusedVariables struct{}

// Kinds implements Matcher
func (*UnusedVariables) Kinds() []lexer.Kind {
	return []lexer.Kind{lexer.TagOpen, lexer.Identifier, lexer.StringLiteral}
}

func (*UnusedVariables) validate() error { return nil }

// Validate checks that the rule can be evaluated
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRule)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w %q: %s", ErrInvalidRule, r.Name, r.Severity)
	}
	if r.Match == nil {
		return fmt.Errorf("%w %q: no matcher", ErrInvalidRule, r.Name)
	}
	if err := r.Match.validate(); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRule, r.Name, err)
	}
	return nil
}
