package lexer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
)

type state int

const (
	stateLiteral state = iota
	stateTag
	stateExpression
	stateComment
)

// bracket is an opening bracket awaiting its closer
type bracket struct {
	char   byte
	line   int
	column int
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// Multi-character operators, longest first so "?:" wins over "?"
var multiOperators = []string{"==", "!=", "<=", ">=", "//", "**", "..", "??", "?:", "=>"}

var wordOperators = map[string]bool{
	"and":     true,
	"or":      true,
	"not":     true,
	"in":      true,
	"is":      true,
	"matches": true,
}

var bitwiseOperators = []string{"b-and", "b-or", "b-xor"}

// rawTags switch the lexer to raw mode until the matching end tag
var rawTags = map[string]*regexp.Regexp{
	"verbatim": regexp.MustCompile(`\{%[-~]?\s*endverbatim\s*[-~]?%\}`),
	"raw":      regexp.MustCompile(`\{%[-~]?\s*endraw\s*[-~]?%\}`),
}

// lexer is the single-use state machine behind Tokenize
type lexer struct {
	in  *parse.Input
	src string

	// position of the current lexeme start
	line   int
	column int

	state    state
	tokens   []Token
	brackets []bracket
	tagStart int            // index of the TagOpen token of the current tag
	raw      *regexp.Regexp // end-tag pattern while inside a verbatim block
	rawName  string
}

// Tokenize splits template source into positioned tokens.
// The final token is always EndOfInput. Unterminated or malformed constructs
// return a *SyntaxError and no tokens.
func Tokenize(source string) ([]Token, error) {
	l := &lexer{
		in:     parse.NewInputString(source),
		src:    source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, len(source)/4+1),
	}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) run() error {
	for !l.done() {
		var err error
		switch l.state {
		case stateLiteral:
			err = l.lexLiteral()
		case stateComment:
			err = l.lexComment()
		default:
			err = l.lexCode()
		}
		if err != nil {
			return err
		}
	}

	if l.state != stateLiteral {
		return l.unclosed()
	}
	if l.raw != nil {
		return &SyntaxError{Line: l.line, Column: l.column, Message: fmt.Sprintf("Unclosed %q block.", l.rawName)}
	}
	l.tokens = append(l.tokens, Token{Kind: EndOfInput, Line: l.line, Column: l.column})
	return nil
}

// offset is the byte offset of the next unconsumed character
func (l *lexer) offset() int {
	return l.in.Offset()
}

func (l *lexer) done() bool {
	return l.offset() >= len(l.src)
}

// at returns the byte i positions past the cursor, or 0 past the end
func (l *lexer) at(i int) byte {
	if l.offset()+i >= len(l.src) {
		return 0
	}
	return l.in.Peek(i)
}

func (l *lexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.src[l.offset():], s)
}

// emit turns the consumed bytes into a token and advances the position
func (l *lexer) emit(kind Kind) Token {
	text := string(l.in.Shift())
	tok := Token{Kind: kind, Text: text, Line: l.line, Column: l.column}
	l.tokens = append(l.tokens, tok)
	l.line, l.column = Advance(l.line, l.column, text)
	return tok
}

// errorf builds a SyntaxError at the current lexeme start
func (l *lexer) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: l.line, Column: l.column, Message: fmt.Sprintf(format, args...)}
}

// unclosed reports the construct left open at end of input
func (l *lexer) unclosed() error {
	line, column := Advance(l.line, l.column, string(l.in.Lexeme()))
	err := &SyntaxError{Line: line, Column: column}

	switch {
	case len(l.brackets) > 0:
		err.Message = fmt.Sprintf("Unclosed %q.", string(l.brackets[len(l.brackets)-1].char))
	case l.state == stateExpression:
		err.Message = `Unclosed "variable".`
	case l.state == stateTag:
		err.Message = `Unclosed "block".`
	default:
		err.Message = "Unclosed comment."
	}
	return err
}

func (l *lexer) lexLiteral() error {
	rest := l.src[l.offset():]

	if l.raw != nil {
		loc := l.raw.FindStringIndex(rest)
		if loc == nil {
			l.in.Move(len(rest))
			line, column := Advance(l.line, l.column, rest)
			return &SyntaxError{Line: line, Column: column, Message: fmt.Sprintf("Unclosed %q block.", l.rawName)}
		}
		l.raw = nil
		if loc[0] > 0 {
			l.in.Move(loc[0])
			l.emit(Literal)
		}
		return l.lexOpen()
	}

	n := indexOpener(rest)
	if n < 0 {
		n = len(rest)
	}
	if n > 0 {
		l.in.Move(n)
		l.emit(Literal)
	}
	if l.done() {
		return nil
	}
	return l.lexOpen()
}

// indexOpener finds the first "{{", "{%" or "{#" in s
func indexOpener(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		switch s[i+1] {
		case '{', '%', '#':
			return i
		}
	}
	return -1
}

// lexOpen consumes an opening delimiter with its optional trim marker
func (l *lexer) lexOpen() error {
	var kind Kind
	switch l.at(1) {
	case '{':
		kind, l.state = ExpressionOpen, stateExpression
	case '%':
		kind, l.state = TagOpen, stateTag
	default:
		kind, l.state = CommentOpen, stateComment
	}

	n := 2
	if c := l.at(2); c == '-' || c == '~' {
		n++
	}
	l.in.Move(n)
	l.emit(kind)

	if kind == TagOpen {
		l.tagStart = len(l.tokens) - 1
	}
	return nil
}

func (l *lexer) lexComment() error {
	rest := l.src[l.offset():]
	end := strings.Index(rest, "#}")
	if end < 0 {
		l.in.Move(len(rest))
		return l.unclosed()
	}
	closer := 2
	if end > 0 && (rest[end-1] == '-' || rest[end-1] == '~') {
		end--
		closer++
	}
	if end > 0 {
		l.in.Move(end)
		l.emit(Literal)
	}

	l.in.Move(closer)
	l.emit(CommentClose)
	l.state = stateLiteral
	return nil
}

// lexCode consumes one token inside a tag or expression
func (l *lexer) lexCode() error {
	c := l.at(0)

	if isSpace(c) {
		n := 1
		for isSpace(l.at(n)) {
			n++
		}
		l.in.Move(n)
		l.emit(Whitespace)
		return nil
	}

	if len(l.brackets) == 0 {
		if n := l.closerLength(); n > 0 {
			return l.lexClose(n)
		}
	}

	if c == '{' {
		if next := l.at(1); next == '{' || next == '%' || next == '#' {
			return l.errorf("Unexpected %q.", string([]byte{c, next}))
		}
	}

	switch {
	case c == '"' || c == '\'':
		return l.lexString(c)
	case isDigit(c):
		l.lexNumber()
		return nil
	case isNameStart(c):
		l.lexName()
		return nil
	}

	return l.lexSymbol(c)
}

// closerLength returns the length of the closing delimiter at the cursor, or 0
func (l *lexer) closerLength() int {
	mark := byte('}')
	if l.state == stateTag {
		mark = '%'
	}

	n := 0
	if c := l.at(0); c == '-' || c == '~' {
		n = 1
	}
	if l.at(n) == mark && l.at(n+1) == '}' {
		return n + 2
	}
	return 0
}

func (l *lexer) lexClose(n int) error {
	kind := ExpressionClose
	if l.state == stateTag {
		kind = TagClose
	}
	l.in.Move(n)
	l.emit(kind)
	l.state = stateLiteral

	if kind == TagClose {
		l.enterRawBlock()
	}
	return nil
}

// enterRawBlock switches to raw mode when the tag just closed is verbatim or raw
func (l *lexer) enterRawBlock() {
	var name string
	for _, tok := range l.tokens[l.tagStart+1 : len(l.tokens)-1] {
		if tok.Kind == Whitespace {
			continue
		}
		if name != "" || tok.Kind != Identifier {
			return
		}
		name = tok.Text
	}
	if end, ok := rawTags[name]; ok {
		l.raw = end
		l.rawName = name
	}
}

func (l *lexer) lexString(quote byte) error {
	n := 1
	depth := 0
	for {
		c := l.at(n)
		switch {
		case l.offset()+n >= len(l.src):
			l.in.Move(len(l.src) - l.offset())
			line, column := Advance(l.line, l.column, string(l.in.Lexeme()))
			return &SyntaxError{Line: line, Column: column, Message: "Unclosed string."}
		case c == '\\':
			n += 2
			continue
		case quote == '"' && c == '#' && l.at(n+1) == '{':
			depth++
			n += 2
			continue
		case depth > 0 && c == '{':
			depth++
		case depth > 0 && c == '}':
			depth--
		case depth == 0 && c == quote:
			l.in.Move(n + 1)
			l.emit(StringLiteral)
			return nil
		}
		n++
	}
}

func (l *lexer) lexNumber() {
	n := 1
	for isDigit(l.at(n)) {
		n++
	}
	if l.at(n) == '.' && isDigit(l.at(n+1)) {
		n += 2
		for isDigit(l.at(n)) {
			n++
		}
	}
	l.in.Move(n)
	l.emit(Number)
}

func (l *lexer) lexName() {
	for _, op := range bitwiseOperators {
		if l.hasPrefix(op) && !isNameChar(l.at(len(op))) {
			l.in.Move(len(op))
			l.emit(Operator)
			return
		}
	}

	n := 1
	for isNameChar(l.at(n)) {
		n++
	}
	l.in.Move(n)

	kind := Identifier
	if wordOperators[string(l.in.Lexeme())] {
		kind = Operator
	}
	l.emit(kind)
}

func (l *lexer) lexSymbol(c byte) error {
	for _, op := range multiOperators {
		if l.hasPrefix(op) {
			l.in.Move(len(op))
			l.emit(Operator)
			return nil
		}
	}

	switch c {
	case '(', '[', '{':
		l.brackets = append(l.brackets, bracket{char: c, line: l.line, column: l.column})
		l.in.Move(1)
		l.emit(Punctuation)
		return nil
	case ')', ']', '}':
		if len(l.brackets) == 0 {
			return l.errorf("Unexpected %q.", string(c))
		}
		top := l.brackets[len(l.brackets)-1]
		if closers[top.char] != c {
			return &SyntaxError{Line: top.line, Column: top.column, Message: fmt.Sprintf("Unclosed %q.", string(top.char))}
		}
		l.brackets = l.brackets[:len(l.brackets)-1]
		l.in.Move(1)
		l.emit(Punctuation)
		return nil
	case ',', '.', ':', '?', '|':
		l.in.Move(1)
		l.emit(Punctuation)
		return nil
	case '=', '<', '>', '+', '-', '*', '/', '%', '~':
		l.in.Move(1)
		l.emit(Operator)
		return nil
	}

	r, _ := l.in.PeekRune(0)
	return l.errorf("Unexpected character %q.", string(r))
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}
