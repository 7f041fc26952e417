package lexer

import "fmt"

// Kind identifies the lexical class of a Token
type Kind int

const (
	Literal Kind = iota
	TagOpen
	TagClose
	ExpressionOpen
	ExpressionClose
	CommentOpen
	CommentClose
	Identifier
	StringLiteral
	Number
	Operator
	Punctuation
	Whitespace
	EndOfInput

	kindCount
)

var kindNames = [kindCount]string{
	Literal:         "literal",
	TagOpen:         "tag-open",
	TagClose:        "tag-close",
	ExpressionOpen:  "expression-open",
	ExpressionClose: "expression-close",
	CommentOpen:     "comment-open",
	CommentClose:    "comment-close",
	Identifier:      "identifier",
	StringLiteral:   "string",
	Number:          "number",
	Operator:        "operator",
	Punctuation:     "punctuation",
	Whitespace:      "whitespace",
	EndOfInput:      "end-of-input",
}

// Valid reports whether k is one of the defined token kinds
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is a positioned slice of template source.
// Text is never normalized: concatenating every token's Text yields the source.
type Token struct {
	Kind   Kind
	Text   string
	Line   int // 1-based line of the first character
	Column int // 1-based column (in runes) of the first character
}

// End returns the position immediately after the token's last character
func (t Token) End() (line, column int) {
	return Advance(t.Line, t.Column, t.Text)
}

// Is reports whether the token has the given kind and, when texts are
// supplied, one of those exact texts.
func (t Token) Is(kind Kind, texts ...string) bool {
	if t.Kind != kind {
		return false
	}
	if len(texts) == 0 {
		return true
	}
	for _, text := range texts {
		if t.Text == text {
			return true
		}
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %d:%d", t.Kind, t.Text, t.Line, t.Column)
}

// Advance moves a (line, column) position across text.
// A newline resets the column to 1; every other rune counts as one column.
func Advance(line, column int, text string) (int, int) {
	for _, r := range text {
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

// SyntaxError reports template text that does not follow the template grammar
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}
