package cond

import (
	"testing"
)

type testEnv struct {
	vars  map[string]string
	words []string
}

func (e testEnv) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

func (e testEnv) Contains(word string) bool {
	for _, w := range e.words {
		if w == word {
			return true
		}
	}
	return false
}

func defaultEnv() testEnv {
	return testEnv{
		vars: map[string]string{
			"hasGreeted": "1",
			"n":          "3",
			"name":       "علی",
			"empty":      "",
			"zero":       "0",
		},
		words: []string{"سلام", "خوب"},
	}
}

func TestEvalExpressions(t *testing.T) {
	env := defaultEnv()

	tests := []struct {
		expr string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"!false", true},

		// Bound identifiers evaluate to the variable's truthiness.
		{"hasGreeted", true},
		{"zero", false},
		{"empty", false},

		// Unbound identifiers test utterance containment.
		{"سلام", true},
		{"خداحافظ", false},
		{"!خداحافظ", true},

		{"سلام && خوب", true},
		{"سلام && خداحافظ", false},
		{"سلام || خداحافظ", true},
		{"خداحافظ || سلام", true},
		{"خداحافظ || خداحافظ", false},

		{"n > 2", true},
		{"n >= 3", true},
		{"n < 2", false},
		{"n <= 3", true},
		{"n == 3", true},
		{"n != 3", false},
		{"hasGreeted == 1", true},
		{`name == "علی"`, true},
		{`name != "رضا"`, true},

		{"(سلام || خداحافظ) && n > 1", true},
		{"!(n > 5)", true},
	}

	for _, tt := range tests {
		c, err := Compile(tt.expr)
		if err != nil {
			t.Errorf("Compile(%q): %v", tt.expr, err)
			continue
		}
		got, err := c.Eval(env)
		if err != nil {
			t.Errorf("Eval(%q): %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	bad := []string{
		"",
		"&&",
		"n >",
		"(n > 1",
		"n > 1)",
		"! ",
	}
	for _, expr := range bad {
		if _, err := Compile(expr); err == nil {
			t.Errorf("Compile(%q) should fail", expr)
		}
	}
}

func TestEvalComparisonNeedsNumbers(t *testing.T) {
	env := defaultEnv()

	c, err := Compile("name > 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := c.Eval(env); err == nil {
		t.Error("ordering comparison on non-numeric value should fail")
	}
}

func TestEvalShortCircuit(t *testing.T) {
	env := defaultEnv()

	// The right operand would fail, but the left already decides.
	c, err := Compile("سلام || name > 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := c.Eval(env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !got {
		t.Error("should short-circuit to true")
	}

	c, err = Compile("خداحافظ && name > 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err = c.Eval(env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got {
		t.Error("should short-circuit to false")
	}
}

func TestCompiledString(t *testing.T) {
	c, err := Compile("n > 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.String() != "n > 2" {
		t.Errorf("String() = %q, want original expression", c.String())
	}
}
