package dsl

// Position is a source location (byte offset plus 1-based line/column).
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Document is the parsed form of one rule notation source.
type Document struct {
	Blocks []Block
}

// Block is one top-level declaration.
type Block interface {
	Pos() Position
}

// PatternBlock is `( + trigger - response ... )`, possibly with nested
// follow-up pattern blocks. The conditional form
// `( + trigger . [cond]: - resp ![cond]: - resp !: - resp )` fills Branches
// and Default instead of Responses.
type PatternBlock struct {
	At        Position
	Trigger   string
	Responses []string
	Nested    []*PatternBlock

	Branches []BranchBlock
	Default  string
}

// BranchBlock is one `[cond]: - response` branch of a conditional pattern.
type BranchBlock struct {
	Condition string
	Response  string
}

// DefinitionBlock is `# name : value .`.
type DefinitionBlock struct {
	At    Position
	Name  string
	Value string
}

// CategoryBlock is `name { w1 ، w2 }`.
type CategoryBlock struct {
	At      Position
	Name    string
	Members []string
}

// SubstitutionBlock is `{ s1 ، s2 } -> { r1 ، r2 }`.
type SubstitutionBlock struct {
	At           Position
	Sources      []string
	Replacements []string
}

// StopWordsBlock is `- { w1 ، w2 }` outside a pattern.
type StopWordsBlock struct {
	At    Position
	Words []string
}

// RuleBlock is `{ [weight] condition > response }`.
type RuleBlock struct {
	At        Position
	Weight    float64
	HasWeight bool
	Condition string
	Response  string
}

// VariableBlock is `= name : value`.
type VariableBlock struct {
	At    Position
	Name  string
	Value string
}

// AdditionalBlock is `+ ( text )`: a suffix appended to every reply.
type AdditionalBlock struct {
	At   Position
	Text string
}

// ThresholdBlock is `[[ number ]]`: the minimum weight a rule needs to fire.
type ThresholdBlock struct {
	At    Position
	Value float64
}

func (b *PatternBlock) Pos() Position      { return b.At }
func (b *DefinitionBlock) Pos() Position   { return b.At }
func (b *CategoryBlock) Pos() Position     { return b.At }
func (b *SubstitutionBlock) Pos() Position { return b.At }
func (b *StopWordsBlock) Pos() Position    { return b.At }
func (b *RuleBlock) Pos() Position         { return b.At }
func (b *VariableBlock) Pos() Position     { return b.At }
func (b *AdditionalBlock) Pos() Position   { return b.At }
func (b *ThresholdBlock) Pos() Position    { return b.At }
