package checker

import (
	"strconv"

	"github.com/yacobolo/twigcs/internal/lexer"
	"github.com/yacobolo/twigcs/internal/rule"
)

// subject is the text a pattern is evaluated against, anchored at a position
type subject struct {
	text   string
	line   int
	column int
	token  string
	// Require column for the subject; differs from the anchor for SideBefore
	requireLine   int
	requireColumn int
}

func matchPattern(doc *document, p *rule.Pattern) []hit {
	var hits []hit
	for _, s := range subjects(doc, p) {
		hits = append(hits, evaluate(p, s)...)
	}
	return hits
}

// subjects lists the texts a pattern applies to, in source order
func subjects(doc *document, p *rule.Pattern) []subject {
	switch p.Scope {
	case rule.ScopeLines:
		out := make([]subject, 0, len(doc.lines))
		for i, text := range doc.lines {
			out = append(out, anchored(text, i+1, 1, text))
		}
		return out
	case rule.ScopeFile:
		return []subject{anchored(doc.source, 1, 1, doc.source)}
	}

	var out []subject
	for i := 0; i < doc.stream.Len(); i++ {
		tok := doc.stream.At(i)
		if !p.Accepts(tok) {
			continue
		}
		if p.Guard != nil && !p.Guard.MatchString(doc.tagPrefix(i)) {
			continue
		}

		switch p.Side {
		case rule.SideAfter:
			line, column := tok.End()
			out = append(out, anchored(doc.after(line, column), line, column, tok.Text))
		case rule.SideBefore:
			s := anchored(doc.before(tok.Line, tok.Column), tok.Line, 1, tok.Text)
			s.requireColumn = max(tok.Column-1, 1)
			out = append(out, s)
		default:
			out = append(out, anchored(tok.Text, tok.Line, tok.Column, tok.Text))
		}
	}
	return out
}

func anchored(text string, line, column int, token string) subject {
	return subject{
		text:          text,
		line:          line,
		column:        column,
		token:         token,
		requireLine:   line,
		requireColumn: column,
	}
}

// evaluate runs the pattern expression over one subject
func evaluate(p *rule.Pattern, s subject) []hit {
	if p.Mode == rule.Require {
		if p.Expr.MatchString(s.text) {
			return nil
		}
		return []hit{{
			line:   s.requireLine,
			column: s.requireColumn,
			vars:   map[string]string{"token": s.token},
		}}
	}

	names := p.Expr.SubexpNames()
	matches := p.Expr.FindAllStringSubmatchIndex(s.text, -1)
	hits := make([]hit, 0, len(matches))
	for _, loc := range matches {
		offset := loc[0]
		for g := 1; g < len(loc)/2; g++ {
			if loc[2*g] >= 0 {
				offset = loc[2*g]
				break
			}
		}

		vars := map[string]string{"token": s.token}
		for g := 0; g < len(loc)/2; g++ {
			value := ""
			if loc[2*g] >= 0 {
				value = s.text[loc[2*g]:loc[2*g+1]]
			}
			vars[strconv.Itoa(g)] = value
			if names[g] != "" {
				vars[names[g]] = value
			}
		}

		line, column := lexer.Advance(s.line, s.column, s.text[:offset])
		hits = append(hits, hit{line: line, column: column, vars: vars})
	}
	return hits
}
