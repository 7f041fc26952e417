package checker

import (
	"regexp"

	"github.com/yacobolo/twigcs/internal/lexer"
)

var (
	interpolation = regexp.MustCompile(`#\{([^}]*)\}`)
	identifier    = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// findUnusedVariables reports the first {% set %} definition of every name
// that no other identifier or string interpolation refers to.
func findUnusedVariables(doc *document) []hit {
	s := doc.stream

	var defs []lexer.Token
	defined := make(map[int]bool)
	for i := 0; i < s.Len(); i++ {
		if s.At(i).Kind != lexer.TagOpen {
			continue
		}
		j := s.NextSignificant(i)
		if !s.At(j).Is(lexer.Identifier, "set") {
			continue
		}
		// {% set a, b = ... %} and {% set a %}...{% endset %}
		for k := s.NextSignificant(j); k < s.Len(); k = s.NextSignificant(k) {
			tok := s.At(k)
			if tok.Kind == lexer.Identifier {
				defs = append(defs, tok)
				defined[k] = true
				continue
			}
			if !tok.Is(lexer.Punctuation, ",") {
				break
			}
		}
	}
	if len(defs) == 0 {
		return nil
	}

	used := make(map[string]bool)
	for i := 0; i < s.Len(); i++ {
		tok := s.At(i)
		switch tok.Kind {
		case lexer.StringLiteral:
			for _, m := range interpolation.FindAllStringSubmatch(tok.Text, -1) {
				for _, name := range identifier.FindAllString(m[1], -1) {
					used[name] = true
				}
			}
		case lexer.Identifier:
			if defined[i] || isTagName(s, i) || isAttribute(s, i) || isHashKey(s, i) {
				continue
			}
			used[tok.Text] = true
		}
	}

	var hits []hit
	reported := make(map[string]bool)
	for _, def := range defs {
		if used[def.Text] || reported[def.Text] {
			continue
		}
		reported[def.Text] = true
		hits = append(hits, hit{
			line:   def.Line,
			column: def.Column,
			vars:   map[string]string{"token": def.Text, "name": def.Text},
		})
	}
	return hits
}

func isTagName(s *lexer.Stream, i int) bool {
	return s.At(s.PrevSignificant(i)).Kind == lexer.TagOpen
}

// isAttribute matches the "bar" in foo.bar
func isAttribute(s *lexer.Stream, i int) bool {
	return s.At(s.PrevSignificant(i)).Is(lexer.Punctuation, ".")
}

// isHashKey matches the "key" in { key: value }
func isHashKey(s *lexer.Stream, i int) bool {
	prev := s.At(s.PrevSignificant(i))
	next := s.At(s.NextSignificant(i))
	return prev.Is(lexer.Punctuation, "{", ",") && next.Is(lexer.Punctuation, ":")
}
