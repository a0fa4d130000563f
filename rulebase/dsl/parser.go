package dsl

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses rule notation into a Document. Text segments (triggers,
// responses, conditions, values) are recovered from the original source by
// byte offset, so in-word punctuation and right-to-left text survive intact.
type Parser struct {
	src  string
	toks []Token
	i    int
}

// NewParser tokenizes the input and returns a parser over it.
func NewParser(input string) (*Parser, error) {
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return &Parser{src: input, toks: toks}, nil
}

// Parse parses the whole input fail-fast: the first malformed block aborts.
func Parse(input string) (*Document, error) {
	p, err := NewParser(input)
	if err != nil {
		return nil, err
	}
	doc, errs := p.parseDocument(false)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return doc, nil
}

// ParseAll parses the whole input in batch-lint mode, recovering after each
// malformed block and collecting every diagnostic.
func ParseAll(input string) (*Document, ErrorList) {
	p, err := NewParser(input)
	if err != nil {
		if le, ok := err.(*LexError); ok {
			return nil, ErrorList{{Kind: KindSyntax, Line: le.Line, Col: le.Col, Message: le.Error(), Err: le}}
		}
		return nil, ErrorList{{Kind: KindSyntax, Message: err.Error(), Err: err}}
	}
	return p.parseDocument(true)
}

func (p *Parser) parseDocument(collectAll bool) (*Document, ErrorList) {
	doc := &Document{}
	var errs ErrorList
	for p.cur().Type != TokenEOF {
		from := p.i
		block, err := p.parseBlock()
		if err != nil {
			errs = append(errs, err)
			if !collectAll {
				return doc, errs
			}
			p.recover(from)
			continue
		}
		doc.Blocks = append(doc.Blocks, block)
	}
	return doc, errs
}

func (p *Parser) cur() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *Parser) peekType(n int) TokenType {
	if p.i+n >= len(p.toks) {
		return TokenEOF
	}
	return p.toks[p.i+n].Type
}

func (p *Parser) next() {
	if p.i < len(p.toks)-1 {
		p.i++
	}
}

func (p *Parser) errAt(tok Token, kind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Line: tok.Line, Col: tok.Col, Message: fmt.Sprintf(format, args...)}
}

func posOf(tok Token) Position {
	return Position{Offset: tok.Pos, Line: tok.Line, Col: tok.Col}
}

// textRange returns the trimmed source text spanned by tokens [start, end].
func (p *Parser) textRange(start, end int) string {
	if end < start {
		return ""
	}
	return strings.TrimSpace(p.src[p.toks[start].Pos:p.toks[end].End])
}

func (p *Parser) expect(t TokenType, kind string) *CompileError {
	if p.cur().Type != t {
		return p.errAt(p.cur(), kind, "expected %v, got %v", t, p.cur().Type)
	}
	return nil
}

func (p *Parser) expectWord(what string) (Token, *CompileError) {
	if p.cur().Type != TokenWord {
		return Token{}, p.errAt(p.cur(), KindSyntax, "expected %s, got %v", what, p.cur().Type)
	}
	tok := p.cur()
	p.next()
	return tok, nil
}

func isOpen(t TokenType) bool {
	return t == TokenLParen || t == TokenLBrace || t == TokenLBracket
}

func isClose(t TokenType) bool {
	return t == TokenRParen || t == TokenRBrace || t == TokenRBracket
}

// startsBlock reports whether the current token can begin a top-level block.
func (p *Parser) startsBlock() bool {
	switch p.cur().Type {
	case TokenLParen, TokenLBrace, TokenLBracket, TokenHash, TokenEquals, TokenMinus, TokenPlus:
		return true
	case TokenWord:
		return p.peekType(1) == TokenLBrace
	}
	return false
}

// recover skips past the failed block: it closes any group it is inside and
// then advances to the next plausible block start.
func (p *Parser) recover(from int) {
	if p.i == from {
		p.next()
	}
	depth := 0
	for p.cur().Type != TokenEOF {
		if depth == 0 && p.i > from+1 && p.startsBlock() {
			return
		}
		t := p.cur().Type
		if isOpen(t) {
			depth++
		} else if isClose(t) && depth > 0 {
			depth--
		}
		p.next()
	}
}

func (p *Parser) parseBlock() (Block, *CompileError) {
	switch p.cur().Type {
	case TokenLParen:
		return p.parsePattern(true)
	case TokenHash:
		return p.parseDefinition()
	case TokenMinus:
		return p.parseStopWords()
	case TokenLBrace:
		if p.substitutionAhead() {
			return p.parseSubstitution()
		}
		return p.parseRule()
	case TokenEquals:
		return p.parseVariable()
	case TokenPlus:
		return p.parseAdditional()
	case TokenLBracket:
		return p.parseThreshold()
	case TokenWord:
		if p.peekType(1) == TokenLBrace {
			return p.parseCategory()
		}
		return nil, p.errAt(p.cur(), KindSyntax, "unexpected word %q at top level (category needs '{')", p.cur().Literal)
	default:
		return nil, p.errAt(p.cur(), KindSyntax, "unexpected %v at top level", p.cur().Type)
	}
}

// substitutionAhead looks past the brace group under the cursor for a `->`.
func (p *Parser) substitutionAhead() bool {
	depth := 0
	for j := p.i; j < len(p.toks); j++ {
		t := p.toks[j].Type
		if isOpen(t) {
			depth++
		} else if isClose(t) {
			depth--
			if depth == 0 {
				return j+1 < len(p.toks) && p.toks[j+1].Type == TokenArrow
			}
		}
	}
	return false
}

// collectText consumes tokens until one of the stop types appears at nesting
// depth zero, returning the spanned source text. Unbalanced closers and EOF
// are syntax errors.
func (p *Parser) collectText(stops ...TokenType) (string, *CompileError) {
	start := p.i
	depth := 0
	for {
		t := p.cur()
		if t.Type == TokenEOF {
			return "", p.errAt(t, KindSyntax, "unterminated block")
		}
		if depth == 0 {
			for _, s := range stops {
				if t.Type == s {
					return p.textRange(start, p.i-1), nil
				}
			}
			if isClose(t.Type) {
				return "", p.errAt(t, KindSyntax, "unexpected %v", t.Type)
			}
		} else if isClose(t.Type) {
			depth--
		}
		if isOpen(t.Type) {
			depth++
		}
		p.next()
	}
}

// parseList parses comma-separated text items until the end token.
func (p *Parser) parseList(end TokenType) ([]string, *CompileError) {
	var items []string
	for {
		item, err := p.collectText(TokenComma, end)
		if err != nil {
			return nil, err
		}
		if item == "" {
			return nil, p.errAt(p.cur(), KindSyntax, "empty list item")
		}
		items = append(items, item)
		if p.cur().Type == end {
			return items, nil
		}
		p.next() // comma
	}
}

func (p *Parser) parsePattern(allowNested bool) (*PatternBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // (

	if err := p.expect(TokenPlus, KindSyntax); err != nil {
		return nil, err
	}
	p.next()

	trigger, err := p.collectText(TokenMinus, TokenDot, TokenRParen)
	if err != nil {
		return nil, err
	}

	// A `.` after the trigger starts the conditional form.
	if p.cur().Type == TokenDot {
		return p.parseCondBranches(at, trigger)
	}

	block := &PatternBlock{At: at, Trigger: trigger}
	for {
		switch p.cur().Type {
		case TokenMinus:
			p.next()
			resp, err := p.collectText(TokenMinus, TokenLParen, TokenRParen)
			if err != nil {
				return nil, err
			}
			if resp == "" {
				return nil, p.errAt(p.cur(), KindSyntax, "empty response")
			}
			block.Responses = append(block.Responses, resp)

		case TokenLParen:
			if !allowNested {
				return nil, p.errAt(p.cur(), KindSyntax, "pattern nesting deeper than one level")
			}
			nested, err := p.parsePattern(false)
			if err != nil {
				return nil, err
			}
			block.Nested = append(block.Nested, nested)

		case TokenRParen:
			p.next()
			if len(block.Responses) == 0 {
				return nil, p.errAt(p.cur(), KindSyntax, "pattern has no responses")
			}
			return block, nil

		default:
			return nil, p.errAt(p.cur(), KindSyntax, "expected '-', nested pattern, or ')', got %v", p.cur().Type)
		}
	}
}

// parseCondBranches parses the body of a conditional pattern:
// `. [cond]: - resp ![cond]: - resp ... !: - resp )`. Branches are tried in
// declaration order; the `!:` default is mandatory and answers when no
// branch condition holds.
func (p *Parser) parseCondBranches(at Position, trigger string) (*PatternBlock, *CompileError) {
	if trigger == "" {
		return nil, p.errAt(p.cur(), KindSyntax, "conditional pattern has empty trigger")
	}
	p.next() // .

	block := &PatternBlock{At: at, Trigger: trigger}
	for {
		if err := p.expect(TokenLBracket, KindSyntax); err != nil {
			return nil, err
		}
		p.next()

		cond, err := p.collectText(TokenRBracket)
		if err != nil {
			return nil, err
		}
		if cond == "" {
			return nil, p.errAt(p.cur(), KindSyntax, "empty branch condition")
		}
		p.next() // ]

		resp, err := p.parseBranchResponse()
		if err != nil {
			return nil, err
		}
		block.Branches = append(block.Branches, BranchBlock{Condition: cond, Response: resp})

		// `![cond]:` starts another branch, `!:` the default.
		if p.cur().Type != TokenWord || p.cur().Literal != "!" {
			return nil, p.errAt(p.cur(), KindSyntax, "expected '![cond]:' or '!:', got %v", p.cur().Type)
		}
		p.next()
		if p.cur().Type == TokenLBracket {
			continue
		}
		break
	}

	def, err := p.parseBranchResponse()
	if err != nil {
		return nil, err
	}
	block.Default = def

	if e := p.expect(TokenRParen, KindSyntax); e != nil {
		return nil, e
	}
	p.next()
	return block, nil
}

// parseBranchResponse parses `: - text` up to the next branch marker or the
// closing paren.
func (p *Parser) parseBranchResponse() (string, *CompileError) {
	if err := p.expect(TokenColon, KindSyntax); err != nil {
		return "", err
	}
	p.next()
	if err := p.expect(TokenMinus, KindSyntax); err != nil {
		return "", err
	}
	p.next()

	start := p.i
	depth := 0
	for {
		t := p.cur()
		if t.Type == TokenEOF {
			return "", p.errAt(t, KindSyntax, "unterminated conditional pattern")
		}
		if depth == 0 {
			if t.Type == TokenRParen || (t.Type == TokenWord && t.Literal == "!") {
				break
			}
			if isClose(t.Type) {
				return "", p.errAt(t, KindSyntax, "unexpected %v", t.Type)
			}
		} else if isClose(t.Type) {
			depth--
		}
		if isOpen(t.Type) {
			depth++
		}
		p.next()
	}

	resp := p.textRange(start, p.i-1)
	if resp == "" {
		return "", p.errAt(p.cur(), KindSyntax, "empty branch response")
	}
	return resp, nil
}

func (p *Parser) parseDefinition() (*DefinitionBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // #

	name, err := p.expectWord("definition name")
	if err != nil {
		return nil, err
	}
	if e := p.expect(TokenColon, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	value, err2 := p.collectText(TokenDot)
	if err2 != nil {
		return nil, err2
	}
	if value == "" {
		return nil, p.errAt(p.cur(), KindSyntax, "empty definition value")
	}
	p.next() // .

	return &DefinitionBlock{At: at, Name: name.Literal, Value: value}, nil
}

func (p *Parser) parseCategory() (*CategoryBlock, *CompileError) {
	at := posOf(p.cur())
	name, err := p.expectWord("category name")
	if err != nil {
		return nil, err
	}
	p.next() // {

	members, err2 := p.parseList(TokenRBrace)
	if err2 != nil {
		return nil, err2
	}
	p.next() // }

	return &CategoryBlock{At: at, Name: name.Literal, Members: members}, nil
}

func (p *Parser) parseSubstitution() (*SubstitutionBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // {

	sources, err := p.parseList(TokenRBrace)
	if err != nil {
		return nil, err
	}
	p.next() // }

	if e := p.expect(TokenArrow, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	if e := p.expect(TokenLBrace, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	replacements, err2 := p.parseList(TokenRBrace)
	if err2 != nil {
		return nil, err2
	}
	p.next() // }

	return &SubstitutionBlock{At: at, Sources: sources, Replacements: replacements}, nil
}

func (p *Parser) parseStopWords() (*StopWordsBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // -

	if e := p.expect(TokenLBrace, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	words, err := p.parseList(TokenRBrace)
	if err != nil {
		return nil, err
	}
	p.next() // }

	return &StopWordsBlock{At: at, Words: words}, nil
}

// parseRule parses `{ [weight] condition > response }`. The separator is the
// last top-level `>` in the block, so conditions may contain `>` comparisons
// as long as the response text has none.
func (p *Parser) parseRule() (*RuleBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // {

	block := &RuleBlock{At: at, Weight: 1.0}
	if p.cur().Type == TokenLBracket {
		p.next()
		wtok, err := p.expectWord("rule weight")
		if err != nil {
			return nil, err
		}
		w, perr := strconv.ParseFloat(wtok.Literal, 64)
		if perr != nil {
			return nil, p.errAt(wtok, KindBadWeight, "invalid weight %q", wtok.Literal)
		}
		block.Weight = w
		block.HasWeight = true
		if e := p.expect(TokenRBracket, KindSyntax); e != nil {
			return nil, e
		}
		p.next()
	}

	start := p.i
	depth := 0
	lastGT := -1
	for {
		t := p.cur()
		if t.Type == TokenEOF {
			return nil, p.errAt(t, KindSyntax, "unterminated rule block")
		}
		if depth == 0 && t.Type == TokenRBrace {
			break
		}
		if depth == 0 && t.Type == TokenGreater {
			lastGT = p.i
		}
		if isOpen(t.Type) {
			depth++
		} else if isClose(t.Type) {
			depth--
		}
		p.next()
	}
	end := p.i // at }
	p.next()

	if lastGT < 0 {
		return nil, p.errAt(p.toks[start], KindSyntax, "rule is missing the '>' separator")
	}
	block.Condition = p.textRange(start, lastGT-1)
	block.Response = p.textRange(lastGT+1, end-1)
	if block.Condition == "" {
		return nil, p.errAt(p.toks[start], KindSyntax, "rule has empty condition")
	}
	if block.Response == "" {
		return nil, p.errAt(p.toks[lastGT], KindSyntax, "rule has empty response")
	}
	return block, nil
}

func (p *Parser) parseVariable() (*VariableBlock, *CompileError) {
	at := posOf(p.cur())
	line := p.cur().Line
	p.next() // =

	name, err := p.expectWord("variable name")
	if err != nil {
		return nil, err
	}
	if e := p.expect(TokenColon, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	// The value runs to the end of the declaration line.
	start := p.i
	for p.cur().Type != TokenEOF && p.cur().Line == line && p.cur().Type != TokenEquals {
		p.next()
	}
	value := p.textRange(start, p.i-1)
	if value == "" {
		return nil, p.errAt(p.cur(), KindSyntax, "empty variable value")
	}
	return &VariableBlock{At: at, Name: name.Literal, Value: value}, nil
}

func (p *Parser) parseAdditional() (*AdditionalBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // +

	if e := p.expect(TokenLParen, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	text, err := p.collectText(TokenRParen)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, p.errAt(p.cur(), KindSyntax, "empty additional response")
	}
	p.next() // )

	return &AdditionalBlock{At: at, Text: text}, nil
}

func (p *Parser) parseThreshold() (*ThresholdBlock, *CompileError) {
	at := posOf(p.cur())
	p.next() // [
	if e := p.expect(TokenLBracket, KindSyntax); e != nil {
		return nil, e
	}
	p.next()

	wtok, err := p.expectWord("threshold value")
	if err != nil {
		return nil, err
	}
	v, perr := strconv.ParseFloat(wtok.Literal, 64)
	if perr != nil {
		return nil, p.errAt(wtok, KindBadWeight, "invalid threshold %q", wtok.Literal)
	}

	for k := 0; k < 2; k++ {
		if e := p.expect(TokenRBracket, KindSyntax); e != nil {
			return nil, e
		}
		p.next()
	}
	return &ThresholdBlock{At: at, Value: v}, nil
}
