package lexer

// Stream is a read-only, index-addressed view over a token sequence.
// It keeps a cursor for lookahead; the underlying tokens are never modified.
type Stream struct {
	tokens []Token
	pos    int
	eof    Token
}

// NewStream wraps tokens produced by Tokenize
func NewStream(tokens []Token) *Stream {
	s := &Stream{tokens: tokens, eof: Token{Kind: EndOfInput, Line: 1, Column: 1}}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		if last.Kind == EndOfInput {
			s.eof = last
		} else {
			line, column := last.End()
			s.eof = Token{Kind: EndOfInput, Line: line, Column: column}
		}
	}
	return s
}

// Len returns the number of tokens in the stream
func (s *Stream) Len() int {
	return len(s.tokens)
}

// Index returns the cursor position
func (s *Stream) Index() int {
	return s.pos
}

// At returns the token at absolute index i.
// Out-of-range indexes yield the end-of-input token.
func (s *Stream) At(i int) Token {
	if i < 0 || i >= len(s.tokens) {
		return s.eof
	}
	return s.tokens[i]
}

// Peek returns the token offset positions from the cursor without moving it
func (s *Stream) Peek(offset int) Token {
	return s.At(s.pos + offset)
}

// Advance returns the token under the cursor and moves past it.
// At the end of the stream it keeps returning the end-of-input token.
func (s *Stream) Advance() Token {
	tok := s.At(s.pos)
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

// Seek moves the cursor to absolute index i, clamped to the stream bounds
func (s *Stream) Seek(i int) {
	switch {
	case i < 0:
		s.pos = 0
	case i > len(s.tokens):
		s.pos = len(s.tokens)
	default:
		s.pos = i
	}
}

// SliceWhile returns the run of tokens starting at the cursor for which pred
// holds. The cursor does not move; the returned slice is a copy.
func (s *Stream) SliceWhile(pred func(Token) bool) []Token {
	end := s.pos
	for end < len(s.tokens) && pred(s.tokens[end]) {
		end++
	}
	out := make([]Token, end-s.pos)
	copy(out, s.tokens[s.pos:end])
	return out
}

// PositionOf returns the line and column of the token at index i
func (s *Stream) PositionOf(i int) (line, column int) {
	tok := s.At(i)
	return tok.Line, tok.Column
}

// NextSignificant returns the index of the first non-whitespace token after
// index i, or Len() when there is none.
func (s *Stream) NextSignificant(i int) int {
	for j := i + 1; j < len(s.tokens); j++ {
		if s.tokens[j].Kind != Whitespace {
			return j
		}
	}
	return len(s.tokens)
}

// PrevSignificant returns the index of the last non-whitespace token before
// index i, or -1 when there is none.
func (s *Stream) PrevSignificant(i int) int {
	for j := i - 1; j >= 0; j-- {
		if s.tokens[j].Kind != Whitespace {
			return j
		}
	}
	return -1
}

// Tokens returns a copy of the underlying tokens
func (s *Stream) Tokens() []Token {
	out := make([]Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}
