package rulebase

import (
	"strings"
	"unicode"
)

// ElemKind classifies one element of a compiled trigger.
type ElemKind int

const (
	// ElemWord matches one literal word.
	ElemWord ElemKind = iota
	// ElemWildcard matches zero or more words and captures them.
	ElemWildcard
	// ElemCategory matches any single member of the named category and
	// captures the matched word.
	ElemCategory
	// ElemKeywordAll is a non-positional predicate: every listed word must
	// appear somewhere in the input.
	ElemKeywordAll
	// ElemKeywordAny is a non-positional predicate: at least one listed word
	// must appear somewhere in the input.
	ElemKeywordAny
)

// TriggerElem is one element of a compiled trigger.
type TriggerElem struct {
	Kind  ElemKind
	Word  string   // literal word, or category name for ElemCategory
	Words []string // keyword group members
}

// ParseTrigger compiles trigger text into trigger elements.
//
// Syntax: whitespace-separated words; `*` or `*N` is a wildcard; `&name`
// references a category; `{k1،k2}` requires every keyword, `{k1_k2}` any one.
// Mixing both separators inside a group is an error.
func ParseTrigger(text string) ([]TriggerElem, error) {
	var elems []TriggerElem
	runes := []rune(text)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}
		if runes[i] == '{' {
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			if j == len(runes) {
				return nil, ErrUnclosedGroup
			}
			elem, err := parseKeywordGroup(string(runes[i+1 : j]))
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			i = j + 1
			continue
		}

		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '{' {
			j++
		}
		word := string(runes[i:j])
		i = j

		switch {
		case isWildcardWord(word):
			elems = append(elems, TriggerElem{Kind: ElemWildcard})
		case strings.HasPrefix(word, "&"):
			name := word[1:]
			if name == "" {
				return nil, ErrEmptyCategoryRef
			}
			elems = append(elems, TriggerElem{Kind: ElemCategory, Word: name})
		default:
			elems = append(elems, TriggerElem{Kind: ElemWord, Word: word})
		}
	}
	return elems, nil
}

// isWildcardWord reports whether the word is `*` optionally followed by
// digits (`*2` etc.; the digits label the capture, not a word count).
func isWildcardWord(word string) bool {
	if !strings.HasPrefix(word, "*") {
		return false
	}
	for _, r := range word[1:] {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func parseKeywordGroup(body string) (TriggerElem, error) {
	hasComma := strings.ContainsAny(body, ",،")
	hasUnderscore := strings.Contains(body, "_")
	if hasComma && hasUnderscore {
		return TriggerElem{}, ErrMixedKeywordGroup
	}

	kind := ElemKeywordAll
	sep := func(r rune) bool { return r == ',' || r == '،' }
	if hasUnderscore {
		kind = ElemKeywordAny
		sep = func(r rune) bool { return r == '_' }
	}

	var words []string
	for _, w := range strings.FieldsFunc(body, sep) {
		w = strings.TrimSpace(w)
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return TriggerElem{}, ErrEmptyGroup
	}
	return TriggerElem{Kind: kind, Words: words}, nil
}

// CaptureCount returns how many capture slots the trigger produces
// (wildcards and category references, in element order).
func CaptureCount(elems []TriggerElem) int {
	n := 0
	for _, el := range elems {
		if el.Kind == ElemWildcard || el.Kind == ElemCategory {
			n++
		}
	}
	return n
}
