package cond

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokOp     // && || ! == != <= >= < >
	tokLParen
	tokRParen
)

type token struct {
	typ tokenType
	lit string
	pos int
}

type lexer struct {
	input []rune
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return token{typ: tokLParen, lit: "(", pos: start}, nil
	case ')':
		l.pos++
		return token{typ: tokRParen, lit: ")", pos: start}, nil
	case '&', '|':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == ch {
			l.pos += 2
			return token{typ: tokOp, lit: string([]rune{ch, ch}), pos: start}, nil
		}
		return token{}, fmt.Errorf("cond: unexpected %q at offset %d", string(ch), start)
	case '!', '=', '<', '>':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '=' {
			l.pos += 2
			return token{typ: tokOp, lit: string(ch) + "=", pos: start}, nil
		}
		if ch == '=' {
			return token{}, fmt.Errorf("cond: unexpected %q at offset %d", "=", start)
		}
		l.pos++
		return token{typ: tokOp, lit: string(ch), pos: start}, nil
	case '"', '\'':
		quote := ch
		l.pos++
		var out []rune
		for l.pos < len(l.input) && l.input[l.pos] != quote {
			out = append(out, l.input[l.pos])
			l.pos++
		}
		if l.pos >= len(l.input) {
			return token{}, fmt.Errorf("cond: unterminated string at offset %d", start)
		}
		l.pos++ // closing quote
		return token{typ: tokString, lit: string(out), pos: start}, nil
	}

	if unicode.IsDigit(ch) {
		for l.pos < len(l.input) && (unicode.IsDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
			l.pos++
		}
		return token{typ: tokNumber, lit: string(l.input[start:l.pos]), pos: start}, nil
	}

	if isIdentRune(ch) {
		for l.pos < len(l.input) && isIdentRune(l.input[l.pos]) {
			l.pos++
		}
		return token{typ: tokIdent, lit: string(l.input[start:l.pos]), pos: start}, nil
	}

	return token{}, fmt.Errorf("cond: unexpected %q at offset %d", string(ch), start)
}

func isIdentRune(r rune) bool {
	// U+200C is the zero-width non-joiner used inside Persian words.
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '‌'
}

// parser is a precedence-climbing parser over the condition token stream.
type parser struct {
	lex  *lexer
	cur  token
	peek token
}

func newParser(input string) (*parser, error) {
	p := &parser{lex: &lexer{input: []rune(input)}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.peek = tok
	return nil
}

// Parse parses a full condition expression.
func Parse(input string) (Node, error) {
	p, err := newParser(input)
	if err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.typ != tokEOF {
		return nil, fmt.Errorf("cond: unexpected %q at offset %d", p.cur.lit, p.cur.pos)
	}
	return node, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tokOp && p.cur.lit == "||" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "||", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tokOp && p.cur.lit == "&&" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: "&&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.typ == tokOp {
		switch p.cur.lit {
		case "==", "!=", "<", ">", "<=", ">=":
			op := p.cur.lit
			if err := p.advance(); err != nil {
				return nil, err
			}
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: op, Left: left, Right: right}
			continue
		}
		break
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.cur.typ == tokOp && p.cur.lit == "!" {
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: "!", Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.cur.typ {
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.typ != tokRParen {
			return nil, fmt.Errorf("cond: missing ')' at offset %d", p.cur.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return node, nil

	case tokNumber:
		v, err := strconv.ParseFloat(p.cur.lit, 64)
		if err != nil {
			return nil, fmt.Errorf("cond: bad number %q at offset %d", p.cur.lit, p.cur.pos)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NumberLit{Value: v}, nil

	case tokString:
		lit := p.cur.lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StringLit{Value: lit}, nil

	case tokIdent:
		lit := p.cur.lit
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch lit {
		case "true":
			return &BoolLit{Value: true}, nil
		case "false":
			return &BoolLit{Value: false}, nil
		}
		return &Ident{Name: lit}, nil

	default:
		return nil, fmt.Errorf("cond: unexpected token %q at offset %d", p.cur.lit, p.cur.pos)
	}
}
