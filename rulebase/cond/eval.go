package cond

import (
	"fmt"
	"strconv"
	"strings"
)

// Env supplies variable bindings and input containment to condition
// evaluation. The engine passes a session-scoped implementation.
type Env interface {
	// Lookup returns the current value of a variable.
	Lookup(name string) (string, bool)
	// Contains reports whether the normalized input contains the word.
	Contains(word string) bool
}

// Compiled is a condition parsed once for repeated evaluation.
type Compiled struct {
	expr string
	ast  Node
}

// Compile parses a condition expression into a compiled form.
func Compile(expr string) (*Compiled, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("cond: empty expression")
	}
	ast, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return &Compiled{expr: expr, ast: ast}, nil
}

// String returns the original expression.
func (c *Compiled) String() string {
	return c.expr
}

// Eval evaluates the compiled condition against env.
func (c *Compiled) Eval(env Env) (bool, error) {
	if c == nil || c.ast == nil {
		return true, nil
	}
	v, err := eval(c.ast, env)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// eval returns a bool, float64, or string.
func eval(node Node, env Env) (any, error) {
	switch n := node.(type) {
	case *BoolLit:
		return n.Value, nil

	case *NumberLit:
		return n.Value, nil

	case *StringLit:
		return n.Value, nil

	case *Ident:
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		return env.Contains(n.Name), nil

	case *UnaryOp:
		operand, err := eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		if n.Op != "!" {
			return nil, fmt.Errorf("cond: unknown unary operator %q", n.Op)
		}
		return !truthy(operand), nil

	case *BinaryOp:
		// Short-circuit && and ||.
		switch n.Op {
		case "&&":
			left, err := eval(n.Left, env)
			if err != nil {
				return nil, err
			}
			if !truthy(left) {
				return false, nil
			}
			right, err := eval(n.Right, env)
			if err != nil {
				return nil, err
			}
			return truthy(right), nil

		case "||":
			left, err := eval(n.Left, env)
			if err != nil {
				return nil, err
			}
			if truthy(left) {
				return true, nil
			}
			right, err := eval(n.Right, env)
			if err != nil {
				return nil, err
			}
			return truthy(right), nil
		}

		left, err := eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return evalComparison(n.Op, left, right)

	default:
		return nil, fmt.Errorf("cond: unknown node type %T", node)
	}
}

func evalComparison(op string, left, right any) (any, error) {
	switch op {
	case "==":
		return equal(left, right), nil
	case "!=":
		return !equal(left, right), nil
	case "<", ">", "<=", ">=":
		l, lok := toFloat(left)
		r, rok := toFloat(right)
		if !lok || !rok {
			return nil, fmt.Errorf("cond: relational operands of %q must be numeric", op)
		}
		switch op {
		case "<":
			return l < r, nil
		case ">":
			return l > r, nil
		case "<=":
			return l <= r, nil
		default:
			return l >= r, nil
		}
	default:
		return nil, fmt.Errorf("cond: unknown binary operator %q", op)
	}
}

func equal(left, right any) bool {
	if l, lok := toFloat(left); lok {
		if r, rok := toFloat(right); rok {
			return l == r
		}
	}
	if _, ok := left.(bool); ok {
		return truthy(left) == truthy(right)
	}
	if _, ok := right.(bool); ok {
		return truthy(left) == truthy(right)
	}
	return toStr(left) == toStr(right)
}

// truthy reports the boolean value of a condition result. String values
// follow the variable-store convention: "", "0" and "false" are false.
func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		s := strings.TrimSpace(val)
		return s != "" && s != "0" && !strings.EqualFold(s, "false")
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toStr(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
