// Package rulebase defines the compiled rule model queried at response time.
// A RuleBase is built once by the dsl compiler (or the Builder) and is
// immutable afterwards; per-session variable state lives outside it.
package rulebase

import (
	"strings"

	"github.com/yooz-lang/go-yooz/rulebase/cond"
)

// Category is a named set of interchangeable words.
type Category struct {
	Name    string
	Members []string
}

// Contains reports whether the category has the given (case-folded) word.
func (c Category) Contains(word string) bool {
	for _, m := range c.Members {
		if strings.EqualFold(m, word) {
			return true
		}
	}
	return false
}

// Substitution maps source words to replacement words by position.
// When there are more sources than replacements, the last replacement
// is reused for the overflow.
type Substitution struct {
	Sources      []string
	Replacements []string
}

// ReplacementFor returns the replacement for the i-th source word.
func (s Substitution) ReplacementFor(i int) string {
	if i < len(s.Replacements) {
		return s.Replacements[i]
	}
	return s.Replacements[len(s.Replacements)-1]
}

// Response is a single candidate reply under a pattern.
// Continue marks a reply that ended with the `!>` marker: the engine keeps
// scanning further patterns and concatenates the pieces.
type Response struct {
	Text     string
	Continue bool
}

// CondBranch is one condition-gated reply of a conditional pattern.
// Condition is compiled at build time unless ConditionText references a
// capture (`*N`); then it is compiled per query after substitution.
type CondBranch struct {
	ConditionText string
	Condition     *cond.Compiled
	Response      string
}

// Pattern is a conversation pattern: a trigger and its ordered responses.
// Nested patterns are follow-ups valid only right after the parent matched.
// A conditional pattern carries Branches and a Default instead of Responses;
// the first branch whose condition holds answers, else Default does.
type Pattern struct {
	TriggerText string
	Trigger     []TriggerElem
	Responses   []Response
	Nested      []*Pattern

	Branches []CondBranch
	Default  string
}

// IsConditional reports whether the pattern selects its reply by condition.
func (p *Pattern) IsConditional() bool {
	return len(p.Branches) > 0 || p.Default != ""
}

// Rule is a weighted conditional response. Condition is compiled once at
// build time; higher weights win, declaration order breaks ties.
type Rule struct {
	Weight        float64
	ConditionText string
	Condition     *cond.Compiled
	Response      string
}

// RuleBase aggregates all compiled declarations. Safe for concurrent
// read-only use once built.
type RuleBase struct {
	Categories    []Category
	Definitions   map[string]string
	Substitutions []Substitution
	StopWords     []string
	Patterns      []*Pattern
	Rules         []*Rule
	Variables     map[string]string // initial per-session bindings

	// GlobalResponses is the fallback pool contributed by empty-trigger
	// patterns; AdditionalResponse is appended to every generated reply.
	GlobalResponses    []string
	AdditionalResponse string

	// MinRuleWeight gates weighted rules: rules below it never fire.
	MinRuleWeight float64

	categories map[string]int // name -> index into Categories
	stopWords  map[string]struct{}
}

// New creates an empty rule base.
func New() *RuleBase {
	return &RuleBase{
		Definitions: make(map[string]string),
		Variables:   make(map[string]string),
		categories:  make(map[string]int),
		stopWords:   make(map[string]struct{}),
	}
}

// AddCategory appends a category.
func (rb *RuleBase) AddCategory(c Category) {
	rb.categories[c.Name] = len(rb.Categories)
	rb.Categories = append(rb.Categories, c)
}

// AddDefinition binds a named constant. Returns ErrDuplicateDefinition when
// the name is already bound.
func (rb *RuleBase) AddDefinition(name, value string) error {
	if _, ok := rb.Definitions[name]; ok {
		return ErrDuplicateDefinition
	}
	rb.Definitions[name] = value
	return nil
}

// AddVariable declares an initial variable binding. Returns
// ErrDuplicateVariable when the name is already declared.
func (rb *RuleBase) AddVariable(name, value string) error {
	if _, ok := rb.Variables[name]; ok {
		return ErrDuplicateVariable
	}
	rb.Variables[name] = value
	return nil
}

// AddSubstitution appends a substitution table.
func (rb *RuleBase) AddSubstitution(s Substitution) {
	rb.Substitutions = append(rb.Substitutions, s)
}

// AddStopWords merges words into the global stop-word set. Deduplication is
// case-fold only; matching-time stop checks go through the normalizer, which
// also folds Arabic letter variants.
func (rb *RuleBase) AddStopWords(words ...string) {
	for _, w := range words {
		key := strings.ToLower(w)
		if _, ok := rb.stopWords[key]; ok {
			continue
		}
		rb.stopWords[key] = struct{}{}
		rb.StopWords = append(rb.StopWords, w)
	}
}

// AddPattern appends a conversation pattern. Patterns with an empty trigger
// feed the global response pool instead.
func (rb *RuleBase) AddPattern(p *Pattern) {
	if len(p.Trigger) == 0 && p.TriggerText == "" {
		for _, r := range p.Responses {
			rb.GlobalResponses = append(rb.GlobalResponses, r.Text)
		}
		return
	}
	rb.Patterns = append(rb.Patterns, p)
}

// AddRule appends a weighted rule.
func (rb *RuleBase) AddRule(r *Rule) {
	rb.Rules = append(rb.Rules, r)
}

// CategoryByName returns the named category, or nil.
func (rb *RuleBase) CategoryByName(name string) *Category {
	i, ok := rb.categories[name]
	if !ok {
		return nil
	}
	return &rb.Categories[i]
}

// IsStopWord reports whether the word was declared a stop word. The check is
// case-fold only; use the normalizer for matching-time checks, which also
// fold Arabic letter variants.
func (rb *RuleBase) IsStopWord(word string) bool {
	_, ok := rb.stopWords[strings.ToLower(word)]
	return ok
}

// CategoriesOf returns the names of all categories containing the word.
func (rb *RuleBase) CategoriesOf(word string) []string {
	var names []string
	for i := range rb.Categories {
		if rb.Categories[i].Contains(word) {
			names = append(names, rb.Categories[i].Name)
		}
	}
	return names
}

// Validate checks the rule base for structural correctness.
func (rb *RuleBase) Validate() error {
	seen := make(map[string]bool)
	for _, c := range rb.Categories {
		if c.Name == "" {
			return ErrEmptyCategoryName
		}
		if seen[c.Name] {
			return ErrDuplicateCategory
		}
		seen[c.Name] = true
		if len(c.Members) == 0 {
			return ErrEmptyCategory
		}
	}

	for _, s := range rb.Substitutions {
		if len(s.Sources) == 0 {
			return ErrEmptySubstitution
		}
		if len(s.Replacements) == 0 {
			return ErrEmptyReplacement
		}
	}

	for _, p := range rb.Patterns {
		if err := rb.validatePattern(p); err != nil {
			return err
		}
	}

	for _, r := range rb.Rules {
		if r.Weight <= 0 {
			return ErrInvalidWeight
		}
		if r.ConditionText == "" {
			return ErrEmptyCondition
		}
	}

	return nil
}

func (rb *RuleBase) validatePattern(p *Pattern) error {
	if p.IsConditional() {
		if p.Default == "" {
			return ErrNoDefaultResponse
		}
		for _, br := range p.Branches {
			if br.ConditionText == "" {
				return ErrEmptyCondition
			}
		}
	} else if len(p.Responses) == 0 {
		return ErrNoResponses
	}
	for _, el := range p.Trigger {
		if el.Kind == ElemCategory && rb.CategoryByName(el.Word) == nil {
			return ErrUnknownCategory
		}
	}
	for _, n := range p.Nested {
		if err := rb.validatePattern(n); err != nil {
			return err
		}
	}
	return nil
}
