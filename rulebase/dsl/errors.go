package dsl

import (
	"fmt"
	"strings"
)

// Error kinds reported by the compiler.
const (
	KindSyntax              = "syntax"
	KindBadTrigger          = "bad-trigger"
	KindBadCondition        = "bad-condition"
	KindBadWeight           = "bad-weight"
	KindDuplicateDefinition = "duplicate-definition"
	KindDuplicateVariable   = "duplicate-variable"
	KindValidate            = "validate"
)

// LexError reports an unrecognized character with its source position.
type LexError struct {
	Line int
	Col  int
	Rune rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %d:%d: unrecognized character %q", e.Line, e.Col, e.Rune)
}

// CompileError reports a malformed block with its source position.
type CompileError struct {
	Kind    string
	Line    int
	Col     int
	Message string
	Err     error // underlying cause, if any
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", e.Line, e.Col, e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// ErrorList collects every diagnostic found in batch-lint mode.
type ErrorList []*CompileError

func (l ErrorList) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}
