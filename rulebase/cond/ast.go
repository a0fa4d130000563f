// Package cond compiles and evaluates weighted-rule condition expressions.
//
// Conditions are parsed once at rule-base build time into a small expression
// tree and evaluated per query against an Env. An identifier bound in the
// variable store evaluates to its value; an unbound identifier evaluates to
// textual containment of that word in the normalized input.
package cond

// Node is a node in a parsed condition expression.
type Node interface {
	node()
}

// BoolLit is a boolean literal (true/false).
type BoolLit struct {
	Value bool
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

// Ident is a variable reference or containment word.
type Ident struct {
	Name string
}

// UnaryOp is a prefix operation (`!`).
type UnaryOp struct {
	Op      string
	Operand Node
}

// BinaryOp is an infix operation (`&&`, `||`, comparisons).
type BinaryOp struct {
	Op    string
	Left  Node
	Right Node
}

func (*BoolLit) node()   {}
func (*NumberLit) node() {}
func (*StringLit) node() {}
func (*Ident) node()     {}
func (*UnaryOp) node()   {}
func (*BinaryOp) node()  {}
