package dsl

import (
	"strings"

	"github.com/yooz-lang/go-yooz/rulebase"
	"github.com/yooz-lang/go-yooz/rulebase/cond"
)

// Options controls compiler error policy.
type Options struct {
	// StopOnFirstError aborts on the first malformed block. When false the
	// compiler runs in batch-lint mode and reports every diagnostic; either
	// way an erroneous source yields no rule base.
	StopOnFirstError bool
}

// DefaultOptions returns the fail-fast configuration.
func DefaultOptions() Options {
	return Options{StopOnFirstError: true}
}

// Compile parses and interprets rule notation with default options.
func Compile(input string) (*rulebase.RuleBase, error) {
	return CompileWithOptions(input, DefaultOptions())
}

// CompileWithOptions parses and interprets rule notation. The returned error
// is a *LexError, a *CompileError, or (in batch-lint mode) an ErrorList.
func CompileWithOptions(input string, opts Options) (*rulebase.RuleBase, error) {
	if opts.StopOnFirstError {
		doc, err := Parse(input)
		if err != nil {
			return nil, err
		}
		rb, errs := interpret(doc)
		if len(errs) > 0 {
			return nil, errs[0]
		}
		return rb, nil
	}

	doc, errs := ParseAll(input)
	if doc != nil {
		rb, ierrs := interpret(doc)
		errs = append(errs, ierrs...)
		if len(errs) == 0 {
			return rb, nil
		}
	}
	return nil, errs
}

// Interpret converts a parsed Document into a compiled RuleBase.
func Interpret(doc *Document) (*rulebase.RuleBase, error) {
	rb, errs := interpret(doc)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return rb, nil
}

func interpret(doc *Document) (*rulebase.RuleBase, ErrorList) {
	rb := rulebase.New()
	var errs ErrorList

	fail := func(at Position, kind string, err error) {
		errs = append(errs, &CompileError{Kind: kind, Line: at.Line, Col: at.Col, Message: err.Error(), Err: err})
	}

	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case *CategoryBlock:
			rb.AddCategory(rulebase.Category{Name: b.Name, Members: b.Members})

		case *DefinitionBlock:
			if err := rb.AddDefinition(b.Name, b.Value); err != nil {
				fail(b.At, KindDuplicateDefinition, err)
			}

		case *SubstitutionBlock:
			rb.AddSubstitution(rulebase.Substitution{Sources: b.Sources, Replacements: b.Replacements})

		case *StopWordsBlock:
			rb.AddStopWords(b.Words...)

		case *PatternBlock:
			p, err := buildPattern(b)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			rb.AddPattern(p)

		case *RuleBlock:
			compiled, err := cond.Compile(b.Condition)
			if err != nil {
				fail(b.At, KindBadCondition, err)
				continue
			}
			rb.AddRule(&rulebase.Rule{
				Weight:        b.Weight,
				ConditionText: b.Condition,
				Condition:     compiled,
				Response:      b.Response,
			})

		case *VariableBlock:
			if err := rb.AddVariable(b.Name, b.Value); err != nil {
				fail(b.At, KindDuplicateVariable, err)
			}

		case *AdditionalBlock:
			// First declaration wins, matching the notation's reference
			// behavior for the additional-response block.
			if rb.AdditionalResponse == "" {
				rb.AdditionalResponse = b.Text
			}

		case *ThresholdBlock:
			if rb.MinRuleWeight == 0 {
				rb.MinRuleWeight = b.Value
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if err := rb.Validate(); err != nil {
		errs = append(errs, &CompileError{Kind: KindValidate, Message: err.Error(), Err: err})
		return nil, errs
	}
	return rb, nil
}

func buildPattern(b *PatternBlock) (*rulebase.Pattern, *CompileError) {
	elems, err := rulebase.ParseTrigger(b.Trigger)
	if err != nil {
		return nil, &CompileError{Kind: KindBadTrigger, Line: b.At.Line, Col: b.At.Col, Message: err.Error(), Err: err}
	}

	p := &rulebase.Pattern{
		TriggerText: b.Trigger,
		Trigger:     elems,
		Responses:   buildResponses(b.Responses),
		Default:     b.Default,
	}
	for _, cb := range b.Branches {
		branch := rulebase.CondBranch{ConditionText: cb.Condition, Response: cb.Response}
		// Conditions without capture references compile once here; the rest
		// compile per query after the captures are substituted.
		if !strings.Contains(cb.Condition, "*") {
			compiled, err := cond.Compile(cb.Condition)
			if err != nil {
				return nil, &CompileError{Kind: KindBadCondition, Line: b.At.Line, Col: b.At.Col, Message: err.Error(), Err: err}
			}
			branch.Condition = compiled
		}
		p.Branches = append(p.Branches, branch)
	}
	for _, nb := range b.Nested {
		nested, nerr := buildPattern(nb)
		if nerr != nil {
			return nil, nerr
		}
		p.Nested = append(p.Nested, nested)
	}
	return p, nil
}

// buildResponses flattens `_`-separated alternates into the ordered response
// list and strips the `!>` continuation marker.
func buildResponses(texts []string) []rulebase.Response {
	var responses []rulebase.Response
	for _, text := range texts {
		for _, alt := range strings.Split(text, "_") {
			alt = strings.TrimSpace(alt)
			if alt == "" {
				continue
			}
			r := rulebase.Response{Text: alt}
			if strings.HasSuffix(alt, "!>") {
				r.Continue = true
				r.Text = strings.TrimSpace(strings.TrimSuffix(alt, "!>"))
			}
			responses = append(responses, r)
		}
	}
	return responses
}
