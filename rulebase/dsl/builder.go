package dsl

import (
	"strconv"
	"strings"

	"github.com/yooz-lang/go-yooz/rulebase"
)

// Builder provides a fluent API for constructing rule documents without
// writing notation text. Both paths produce identical rule bases.
type Builder struct {
	doc *Document

	// Track current element for modifier methods
	currentPattern *PatternBlock
	currentRule    *RuleBlock
}

// Build creates a new empty builder.
func Build() *Builder {
	return &Builder{doc: &Document{}}
}

func (b *Builder) add(block Block) *Builder {
	b.doc.Blocks = append(b.doc.Blocks, block)
	return b
}

func (b *Builder) clearCurrent() {
	b.currentPattern = nil
	b.currentRule = nil
}

// Category adds a named word category.
func (b *Builder) Category(name string, members ...string) *Builder {
	b.clearCurrent()
	return b.add(&CategoryBlock{Name: name, Members: members})
}

// Definition binds a named constant.
func (b *Builder) Definition(name, value string) *Builder {
	b.clearCurrent()
	return b.add(&DefinitionBlock{Name: name, Value: value})
}

// Substitute adds a positional substitution table.
func (b *Builder) Substitute(sources, replacements []string) *Builder {
	b.clearCurrent()
	return b.add(&SubstitutionBlock{Sources: sources, Replacements: replacements})
}

// StopWords merges words into the global stop-word set.
func (b *Builder) StopWords(words ...string) *Builder {
	b.clearCurrent()
	return b.add(&StopWordsBlock{Words: words})
}

// Pattern adds a conversation pattern.
func (b *Builder) Pattern(trigger string, responses ...string) *Builder {
	b.clearCurrent()
	block := &PatternBlock{Trigger: trigger, Responses: responses}
	b.currentPattern = block
	return b.add(block)
}

// Nested attaches a follow-up pattern to the current pattern.
// Must be called after Pattern().
func (b *Builder) Nested(trigger string, responses ...string) *Builder {
	if b.currentPattern != nil {
		b.currentPattern.Nested = append(b.currentPattern.Nested, &PatternBlock{
			Trigger:   trigger,
			Responses: responses,
		})
	}
	return b
}

// Branch adds a condition-gated response to the current pattern, turning it
// into a conditional pattern. Must be called after Pattern().
func (b *Builder) Branch(condition, response string) *Builder {
	if b.currentPattern != nil {
		b.currentPattern.Branches = append(b.currentPattern.Branches, BranchBlock{
			Condition: condition,
			Response:  response,
		})
	}
	return b
}

// Default sets the current conditional pattern's reply when no branch
// condition holds. Must be called after Pattern().
func (b *Builder) Default(response string) *Builder {
	if b.currentPattern != nil {
		b.currentPattern.Default = response
	}
	return b
}

// Rule adds a weighted rule with the default weight 1.0.
func (b *Builder) Rule(condition, response string) *Builder {
	b.clearCurrent()
	block := &RuleBlock{Weight: 1.0, Condition: condition, Response: response}
	b.currentRule = block
	return b.add(block)
}

// Weight sets the weight of the current rule. Must be called after Rule().
func (b *Builder) Weight(w float64) *Builder {
	if b.currentRule != nil {
		b.currentRule.Weight = w
		b.currentRule.HasWeight = true
	}
	return b
}

// Variable declares an initial variable binding.
func (b *Builder) Variable(name, value string) *Builder {
	b.clearCurrent()
	return b.add(&VariableBlock{Name: name, Value: value})
}

// Additional sets the suffix appended to every reply.
func (b *Builder) Additional(text string) *Builder {
	b.clearCurrent()
	return b.add(&AdditionalBlock{Text: text})
}

// Threshold sets the minimum weight a rule needs to fire.
func (b *Builder) Threshold(v float64) *Builder {
	b.clearCurrent()
	return b.add(&ThresholdBlock{Value: v})
}

// AST returns the underlying document.
func (b *Builder) AST() *Document {
	return b.doc
}

// RuleBase interprets the document into a compiled rule base.
func (b *Builder) RuleBase() (*rulebase.RuleBase, error) {
	return Interpret(b.doc)
}

// MustRuleBase interprets the document and panics on error.
func (b *Builder) MustRuleBase() *rulebase.RuleBase {
	rb, err := b.RuleBase()
	if err != nil {
		panic(err)
	}
	return rb
}

// String generates the rule notation for the document.
func (b *Builder) String() string {
	return ToNotation(b.doc)
}

// ToNotation renders a document back into rule notation text.
func ToNotation(doc *Document) string {
	var sb strings.Builder
	for i, block := range doc.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeBlock(&sb, block)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, block Block) {
	switch b := block.(type) {
	case *CategoryBlock:
		sb.WriteString(b.Name + " { " + strings.Join(b.Members, "، ") + " }\n")

	case *DefinitionBlock:
		sb.WriteString("#" + b.Name + " : " + b.Value + " .\n")

	case *SubstitutionBlock:
		sb.WriteString("{ " + strings.Join(b.Sources, "، ") + " } -> { " + strings.Join(b.Replacements, "، ") + " }\n")

	case *StopWordsBlock:
		sb.WriteString("- { " + strings.Join(b.Words, "، ") + " }\n")

	case *PatternBlock:
		writePattern(sb, b, "")

	case *RuleBlock:
		sb.WriteString("{ ")
		if b.HasWeight {
			sb.WriteString("[" + formatWeight(b.Weight) + "] ")
		}
		sb.WriteString(b.Condition + " > " + b.Response + " }\n")

	case *VariableBlock:
		sb.WriteString("=" + b.Name + ": " + b.Value + "\n")

	case *AdditionalBlock:
		sb.WriteString("+ ( " + b.Text + " )\n")

	case *ThresholdBlock:
		sb.WriteString("[[" + formatWeight(b.Value) + "]]\n")
	}
}

func writePattern(sb *strings.Builder, b *PatternBlock, indent string) {
	if len(b.Branches) > 0 || b.Default != "" {
		sb.WriteString(indent + "( +" + b.Trigger + " .\n")
		for i, br := range b.Branches {
			marker := "["
			if i > 0 {
				marker = "!["
			}
			sb.WriteString(indent + "  " + marker + br.Condition + "]: -" + br.Response + "\n")
		}
		sb.WriteString(indent + "  !: -" + b.Default + "\n")
		sb.WriteString(indent + ")\n")
		return
	}
	sb.WriteString(indent + "( +" + b.Trigger + "\n")
	for _, r := range b.Responses {
		sb.WriteString(indent + "  -" + r + "\n")
	}
	for _, n := range b.Nested {
		writePattern(sb, n, indent+"  ")
	}
	sb.WriteString(indent + ")\n")
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}
