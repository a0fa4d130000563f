package dsl

import (
	"errors"
	"testing"
)

func TestCompileSampleDocument(t *testing.T) {
	rb, err := Compile(sampleDoc)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(rb.Patterns) != 1 {
		t.Errorf("patterns = %d, want 1", len(rb.Patterns))
	}
	if len(rb.Rules) != 1 {
		t.Errorf("rules = %d, want 1", len(rb.Rules))
	}
	if len(rb.Categories) != 1 || len(rb.Substitutions) != 1 {
		t.Error("categories/substitutions missing")
	}
	if rb.Definitions["bot"] != "یوز" {
		t.Errorf("definition = %q", rb.Definitions["bot"])
	}
	if rb.Variables["hasGreeted"] != "0" {
		t.Errorf("variable = %q", rb.Variables["hasGreeted"])
	}
	if rb.AdditionalResponse != "لطفا" {
		t.Errorf("additional = %q", rb.AdditionalResponse)
	}
	if rb.MinRuleWeight != 1.5 {
		t.Errorf("threshold = %v", rb.MinRuleWeight)
	}

	// The `_` alternates split into two responses; the second carries the
	// continuation marker.
	p := rb.Patterns[0]
	if len(p.Responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(p.Responses))
	}
	if p.Responses[0].Text != "سلام به تو" || p.Responses[0].Continue {
		t.Errorf("first response wrong: %+v", p.Responses[0])
	}
	if p.Responses[1].Text != "درود" || !p.Responses[1].Continue {
		t.Errorf("continuation response wrong: %+v", p.Responses[1])
	}
	if len(p.Nested) != 1 {
		t.Errorf("nested = %d, want 1", len(p.Nested))
	}

	// The rule condition compiled.
	if rb.Rules[0].Condition == nil || rb.Rules[0].Weight != 2.5 {
		t.Errorf("rule not compiled: %+v", rb.Rules[0])
	}
}

func TestCompileDuplicateDefinition(t *testing.T) {
	_, err := Compile("#bot : یوز .\n#bot : دیگر .")
	if err == nil {
		t.Fatal("duplicate definition should fail")
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("error type %T, want *CompileError", err)
	}
	if ce.Kind != KindDuplicateDefinition {
		t.Errorf("kind = %q, want %q", ce.Kind, KindDuplicateDefinition)
	}
	if ce.Line != 2 {
		t.Errorf("line = %d, want 2", ce.Line)
	}
}

func TestCompileDuplicateVariable(t *testing.T) {
	_, err := Compile("=x: 1\n=x: 2")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != KindDuplicateVariable {
		t.Errorf("want duplicate variable error, got %v", err)
	}
}

func TestCompileBadTrigger(t *testing.T) {
	_, err := Compile("( + {الف_ب، ج}\n  - پاسخ\n)")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != KindBadTrigger {
		t.Errorf("want bad trigger error, got %v", err)
	}
}

func TestCompileBadCondition(t *testing.T) {
	_, err := Compile("{ && > پاسخ }")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != KindBadCondition {
		t.Errorf("want bad condition error, got %v", err)
	}
}

func TestCompileConditionalPattern(t *testing.T) {
	src := `( + هوا * است .
  [امروز]: - امروز گفتی
  !['*1' == 'سرد']: - لباس گرم بپوش
  !: - روز خوبی داشته باشی
)`
	rb, err := Compile(src)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(rb.Patterns) != 1 {
		t.Fatalf("patterns = %d, want 1", len(rb.Patterns))
	}

	p := rb.Patterns[0]
	if !p.IsConditional() {
		t.Fatal("pattern should be conditional")
	}
	if len(p.Branches) != 2 || p.Default != "روز خوبی داشته باشی" {
		t.Fatalf("branches=%d default=%q", len(p.Branches), p.Default)
	}
	// Capture-free conditions compile at build time; capture references wait
	// for substitution.
	if p.Branches[0].Condition == nil {
		t.Error("capture-free condition should be precompiled")
	}
	if p.Branches[1].Condition != nil {
		t.Error("capture condition should compile per query")
	}
}

func TestCompileConditionalBadCondition(t *testing.T) {
	_, err := Compile("( + سلام . [&&]: - الف !: - ب )")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != KindBadCondition {
		t.Errorf("want bad condition error, got %v", err)
	}
}

func TestCompileUnknownCategoryFailsValidation(t *testing.T) {
	_, err := Compile("( + &میوه\n  - پاسخ\n)")
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Kind != KindValidate {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestCompileFirstDeclarationWins(t *testing.T) {
	rb, err := Compile("[[2]]\n[[5]]\n+ ( اول )\n+ ( دوم )")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rb.MinRuleWeight != 2 {
		t.Errorf("threshold = %v, want first declaration 2", rb.MinRuleWeight)
	}
	if rb.AdditionalResponse != "اول" {
		t.Errorf("additional = %q, want first declaration", rb.AdditionalResponse)
	}
}

func TestCompileEmptyTriggerFeedsGlobals(t *testing.T) {
	rb, err := Compile("( +\n  - نمیدانم\n)")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(rb.Patterns) != 0 || len(rb.GlobalResponses) != 1 {
		t.Errorf("empty trigger should feed globals: patterns=%d globals=%v",
			len(rb.Patterns), rb.GlobalResponses)
	}
}

func TestCompileWithOptionsBatch(t *testing.T) {
	src := "#x\n{ && > پاسخ }\n#bot : یوز .\n#bot : دیگر ."
	_, err := CompileWithOptions(src, Options{StopOnFirstError: false})
	if err == nil {
		t.Fatal("batch compile should fail")
	}
	var list ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type %T, want ErrorList", err)
	}
	if len(list) < 3 {
		t.Errorf("diagnostics = %d, want at least 3: %v", len(list), list)
	}
}

func TestCompileErrorYieldsNoRuleBase(t *testing.T) {
	rb, err := Compile("{ && > پاسخ }")
	if err == nil || rb != nil {
		t.Error("erroneous source must yield no rule base")
	}
}
