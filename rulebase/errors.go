package rulebase

import "errors"

var (
	// Validation errors
	ErrEmptyCategoryName   = errors.New("rulebase: category has empty name")
	ErrEmptyCategory       = errors.New("rulebase: category has no members")
	ErrDuplicateCategory   = errors.New("rulebase: duplicate category name")
	ErrDuplicateDefinition = errors.New("rulebase: duplicate definition name")
	ErrDuplicateVariable   = errors.New("rulebase: duplicate variable name")
	ErrNoResponses         = errors.New("rulebase: pattern has no responses")
	ErrNoDefaultResponse   = errors.New("rulebase: conditional pattern has no default response")
	ErrEmptySubstitution   = errors.New("rulebase: substitution has no source words")
	ErrEmptyReplacement    = errors.New("rulebase: substitution has no replacement words")
	ErrUnknownCategory     = errors.New("rulebase: trigger references unknown category")
	ErrInvalidWeight       = errors.New("rulebase: rule weight must be positive")
	ErrEmptyCondition      = errors.New("rulebase: rule has empty condition")

	// Trigger parsing errors
	ErrMixedKeywordGroup = errors.New("rulebase: keyword group mixes comma and underscore separators")
	ErrUnclosedGroup     = errors.New("rulebase: unclosed keyword group in trigger")
	ErrEmptyGroup        = errors.New("rulebase: empty keyword group in trigger")
	ErrEmptyCategoryRef  = errors.New("rulebase: empty category reference in trigger")
)
