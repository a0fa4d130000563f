// Package dsl implements the Yooz rule notation: a lexer and recursive-descent
// parser producing a document AST, and an interpreter turning the AST into a
// compiled rulebase.RuleBase.
package dsl

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLParen   // (
	TokenRParen   // )
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenPlus     // +
	TokenMinus    // -
	TokenHash     // #
	TokenColon    // :
	TokenDot      // .
	TokenComma    // , or ،
	TokenArrow    // ->
	TokenGreater  // >
	TokenEquals   // =
	TokenWord     // any other run of text
)

var tokenNames = map[TokenType]string{
	TokenEOF: "EOF", TokenLParen: "'('", TokenRParen: "')'",
	TokenLBrace: "'{'", TokenRBrace: "'}'", TokenLBracket: "'['",
	TokenRBracket: "']'", TokenPlus: "'+'", TokenMinus: "'-'",
	TokenHash: "'#'", TokenColon: "':'", TokenDot: "'.'",
	TokenComma: "','", TokenArrow: "'->'", TokenGreater: "'>'",
	TokenEquals: "'='", TokenWord: "word",
}

func (t TokenType) String() string {
	if n, ok := tokenNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token carries its literal text and source position. Pos/End are byte
// offsets into the input; Line and Col are 1-based.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
	End     int
	Line    int
	Col     int
}

func (t Token) String() string {
	return fmt.Sprintf("Token{%v, %q, %d:%d}", t.Type, t.Literal, t.Line, t.Col)
}

// Lexer tokenizes rule notation input. The input is UTF-8; words are any
// maximal run of runes that are neither whitespace nor a structural
// delimiter, so Persian (and any right-to-left) text passes through in
// source order.
type Lexer struct {
	input []rune
	offs  []int // byte offset of each rune, plus final end offset
	pos   int
	line  int
	col   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	runes := []rune(input)
	offs := make([]int, len(runes)+1)
	i := 0
	for j, r := range runes {
		offs[j] = i
		i += len(string(r))
	}
	offs[len(runes)] = len(input)
	return &Lexer{input: runes, offs: offs, line: 1, col: 1}
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) peek() rune {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		r := l.input[l.pos]
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		// ; comments run to end of line
		if r == ';' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

// NextToken returns the next token, or a LexError on an unrecognized
// character (control characters outside whitespace).
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.offs[len(l.input)], End: l.offs[len(l.input)], Line: l.line, Col: l.col}, nil
	}

	start, line, col := l.pos, l.line, l.col
	r := l.input[l.pos]

	single := func(t TokenType) (Token, error) {
		l.advance()
		return l.token(t, start, line, col), nil
	}

	switch r {
	case '(':
		return single(TokenLParen)
	case ')':
		return single(TokenRParen)
	case '{':
		return single(TokenLBrace)
	case '}':
		return single(TokenRBrace)
	case '[':
		return single(TokenLBracket)
	case ']':
		return single(TokenRBracket)
	case '+':
		return single(TokenPlus)
	case '#':
		return single(TokenHash)
	case ':':
		return single(TokenColon)
	case '.':
		return single(TokenDot)
	case ',', '،':
		return single(TokenComma)
	case '-':
		if l.peek() == '>' {
			l.advance()
			l.advance()
			return l.token(TokenArrow, start, line, col), nil
		}
		return single(TokenMinus)
	case '>':
		if l.peek() == '=' {
			// `>=` belongs to condition text, not the rule separator.
			l.advance()
			l.advance()
			return l.token(TokenWord, start, line, col), nil
		}
		return single(TokenGreater)
	case '=':
		if l.peek() == '=' {
			l.advance()
			l.advance()
			return l.token(TokenWord, start, line, col), nil
		}
		return single(TokenEquals)
	}

	if unicode.IsControl(r) {
		return Token{}, &LexError{Line: line, Col: col, Rune: r}
	}

	if r >= '0' && r <= '9' {
		l.readNumber()
		return l.token(TokenWord, start, line, col), nil
	}

	l.readWord()
	return l.token(TokenWord, start, line, col), nil
}

func (l *Lexer) token(t TokenType, start, line, col int) Token {
	return Token{
		Type:    t,
		Literal: string(l.input[start:l.pos]),
		Pos:     l.offs[start],
		End:     l.offs[l.pos],
		Line:    line,
		Col:     col,
	}
}

// readNumber consumes digits with at most one interior decimal point.
// A trailing dot is left alone so definition terminators still work.
func (l *Lexer) readNumber() {
	for l.pos < len(l.input) {
		r := l.input[l.pos]
		if unicode.IsDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && unicode.IsDigit(l.peek()) {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) readWord() {
	for l.pos < len(l.input) && isWordRune(l.input[l.pos]) {
		l.advance()
	}
}

// isWordRune reports whether r may continue a word. Everything that is not
// whitespace, a structural delimiter, or a control character is word text;
// this keeps Persian letters, joiners, and in-text punctuation intact.
func isWordRune(r rune) bool {
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return false
	}
	switch r {
	case '(', ')', '{', '}', '[', ']', '+', '-', '#', ':', '.', ',', '،', '>', '=', ';':
		return false
	}
	return true
}

// Tokenize returns all tokens from the input, ending with TokenEOF.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}
