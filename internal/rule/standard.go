package rule

import (
	"regexp"

	"github.com/yacobolo/twigcs/internal/lexer"
)

// Subjects shared by spacing rules
const (
	oneSpaceAfter  = `^(?: [^ ]|$)`
	oneSpaceBefore = `(?:[^ ] |^\s*)$`
	noSpaceAfter   = `^( +)\S`
	noSpaceBefore  = `\S( +)$`
)

// binaryOperators are checked for surrounding spaces. "-" and "+" are left
// out because they are also unary; word operators need spaces to lex at all.
var binaryOperators = []string{"==", "!=", "<=", ">=", "<", ">", "*", "/", "//", "%", "**", "~", "??", "?:"}

var standard = NewBuilder().Add(
	Rule{
		Name:        "delimiter-spacing",
		Description: "Exactly one space after an opening {{ or {% delimiter",
		Severity:    Error,
		Reason:      "There should be 1 space between the delimiter and its content.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.ExpressionOpen, lexer.TagOpen},
			Side:   SideAfter,
			Mode:   Require,
			Expr:   regexp.MustCompile(oneSpaceAfter),
		},
	},
	Rule{
		Name:        "delimiter-spacing-end",
		Description: "Exactly one space before a closing }} or %} delimiter",
		Severity:    Error,
		Reason:      "There should be 1 space between the delimiter and its content.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.ExpressionClose, lexer.TagClose},
			Side:   SideBefore,
			Mode:   Require,
			Expr:   regexp.MustCompile(oneSpaceBefore),
		},
	},
	Rule{
		Name:        "parenthesis-spacing",
		Description: "No space after an opening parenthesis",
		Severity:    Error,
		Reason:      "There should be 0 space between the opening parenthese and its content.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{"("},
			Side:   SideAfter,
			Expr:   regexp.MustCompile(noSpaceAfter),
		},
	},
	Rule{
		Name:        "parenthesis-spacing-end",
		Description: "No space before a closing parenthesis",
		Severity:    Error,
		Reason:      "There should be 0 space between the closing parenthese and its content.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{")"},
			Side:   SideBefore,
			Expr:   regexp.MustCompile(noSpaceBefore),
		},
	},
	Rule{
		Name:        "comma-spacing-before",
		Description: "No space before a comma",
		Severity:    Error,
		Reason:      "There should be 0 space before a comma.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{","},
			Side:   SideBefore,
			Expr:   regexp.MustCompile(noSpaceBefore),
		},
	},
	Rule{
		Name:        "comma-spacing-after",
		Description: "Exactly one space after a comma",
		Severity:    Error,
		Reason:      "There should be 1 space after a comma.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{","},
			Side:   SideAfter,
			Mode:   Require,
			Expr:   regexp.MustCompile(oneSpaceAfter),
		},
	},
	Rule{
		Name:        "operator-spacing-before",
		Description: "Exactly one space before a binary operator",
		Severity:    Error,
		Reason:      `There should be 1 space before the "${token}" operator.`,
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Operator},
			Texts:  binaryOperators,
			Side:   SideBefore,
			Mode:   Require,
			Expr:   regexp.MustCompile(oneSpaceBefore),
		},
	},
	Rule{
		Name:        "operator-spacing-after",
		Description: "Exactly one space after a binary operator",
		Severity:    Error,
		Reason:      `There should be 1 space after the "${token}" operator.`,
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Operator},
			Texts:  binaryOperators,
			Side:   SideAfter,
			Mode:   Require,
			Expr:   regexp.MustCompile(oneSpaceAfter),
		},
	},
	Rule{
		Name:        "filter-spacing-before",
		Description: "No space before a filter pipe",
		Severity:    Error,
		Reason:      "There should be 0 space before the filter pipe.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{"|"},
			Side:   SideBefore,
			Expr:   regexp.MustCompile(noSpaceBefore),
		},
	},
	Rule{
		Name:        "filter-spacing-after",
		Description: "No space after a filter pipe",
		Severity:    Error,
		Reason:      "There should be 0 space after the filter pipe.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Punctuation},
			Texts:  []string{"|"},
			Side:   SideAfter,
			Expr:   regexp.MustCompile(noSpaceAfter),
		},
	},
	Rule{
		Name:        "quote-style",
		Description: "Plain strings use single quotes",
		Severity:    Warning,
		Reason:      "String should be defined with single quotes.",
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.StringLiteral},
			Side:   SideToken,
			Expr:   regexp.MustCompile(`^"[^"'#\\]*"$`),
		},
	},
	Rule{
		Name:        "variable-case",
		Description: "Assigned variables are snake_case",
		Severity:    Error,
		Reason:      `The "${token}" variable should be in lower case (use _ as a separator).`,
		Match: &Pattern{
			Tokens: []lexer.Kind{lexer.Identifier},
			Side:   SideToken,
			Mode:   Require,
			Expr:   regexp.MustCompile(`^[a-z_][a-z0-9_]*$`),
			Guard:  regexp.MustCompile(`\{%[-~]?\s*(?:set|for)\s+(?:[A-Za-z_][A-Za-z0-9_]*\s*,\s*)*$`),
		},
	},
	Rule{
		Name:        "unused-variable",
		Description: "Variables assigned with set are used",
		Severity:    Warning,
		Reason:      `Unused variable "${name}".`,
		Match:       &UnusedVariables{},
	},
	Rule{
		Name:        "trailing-whitespace",
		Description: "Lines do not end with blank space",
		Severity:    Error,
		Reason:      "A line should not end with blank space(s).",
		Match: &Pattern{
			Scope: ScopeLines,
			Expr:  regexp.MustCompile(`([ \t]+)\r?$`),
		},
	},
	Rule{
		Name:        "tab-indentation",
		Description: "Indentation uses spaces",
		Severity:    Info,
		Reason:      "Indentation should not contain tabs.",
		Match: &Pattern{
			Scope: ScopeLines,
			Expr:  regexp.MustCompile(`^ *(\t)`),
		},
	},
	Rule{
		Name:        "consecutive-blank-lines",
		Description: "At most one blank line in a row",
		Severity:    Error,
		Reason:      "More than 1 empty lines are not allowed.",
		Match: &Pattern{
			Scope: ScopeFile,
			Expr:  regexp.MustCompile(`\r?\n[ \t]*\r?\n([ \t]*)\r?\n(?:[ \t]*\r?\n)*`),
		},
	},
).MustBuild()

// Standard returns the built-in ruleset
func Standard() *Ruleset {
	return standard
}
