// Package match finds the conversation pattern or weighted rule that best
// fits a normalized utterance. Trigger matching is an explicit word-level
// backtracking walk bounded by the trigger length, so it always terminates.
package match

import (
	"github.com/yooz-lang/go-yooz/normalize"
	"github.com/yooz-lang/go-yooz/rulebase"
	"github.com/yooz-lang/go-yooz/rulebase/cond"
)

// Captures holds the words matched by wildcards and category references, in
// trigger element order.
type Captures []string

// Pattern matches one pattern trigger against the normalized utterance.
// Stop words are ignored on both sides: the input loses them during
// normalization, and stop reports which declared trigger words to skip so a
// trigger containing one still matches. A nil stop skips nothing.
func Pattern(p *rulebase.Pattern, input normalize.Result, stop func(string) bool) (Captures, bool) {
	if stop == nil {
		stop = func(string) bool { return false }
	}
	var positional []rulebase.TriggerElem
	hasGroups := false
	for _, el := range p.Trigger {
		switch el.Kind {
		case rulebase.ElemKeywordAll:
			hasGroups = true
			for _, kw := range el.Words {
				if !stop(kw) && !input.Contains(kw) {
					return nil, false
				}
			}
		case rulebase.ElemKeywordAny:
			hasGroups = true
			found := true
			for _, kw := range el.Words {
				if stop(kw) {
					continue
				}
				found = false
				if input.Contains(kw) {
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case rulebase.ElemWord:
			if stop(el.Word) {
				continue
			}
			positional = append(positional, el)
		default:
			positional = append(positional, el)
		}
	}

	// A trigger of keyword groups alone constrains the utterance without
	// consuming it. A trigger reduced to nothing by stop stripping behaves
	// like an empty trigger and matches only empty input.
	if len(positional) == 0 {
		if hasGroups || len(input.Words) == 0 {
			return Captures{}, true
		}
		return nil, false
	}

	caps := make(Captures, 0, rulebase.CaptureCount(p.Trigger))
	caps, ok := matchFrom(positional, input.Words, caps)
	if !ok {
		return nil, false
	}
	return caps, true
}

// matchFrom walks trigger elements against words. Wildcards try the shortest
// span first; recursion depth is bounded by the number of trigger elements.
func matchFrom(elems []rulebase.TriggerElem, words []normalize.Word, caps Captures) (Captures, bool) {
	if len(elems) == 0 {
		if len(words) == 0 {
			return caps, true
		}
		return nil, false
	}

	el := elems[0]
	switch el.Kind {
	case rulebase.ElemWord:
		if len(words) == 0 || words[0].Text != normalize.Fold(el.Word) {
			return nil, false
		}
		return matchFrom(elems[1:], words[1:], caps)

	case rulebase.ElemCategory:
		if len(words) == 0 || !words[0].InCategory(el.Word) {
			return nil, false
		}
		return matchFrom(elems[1:], words[1:], append(caps, words[0].Text))

	case rulebase.ElemWildcard:
		for take := 0; take <= len(words); take++ {
			span := joinWords(words[:take])
			if out, ok := matchFrom(elems[1:], words[take:], append(caps, span)); ok {
				return out, true
			}
		}
		return nil, false

	default:
		return nil, false
	}
}

func joinWords(words []normalize.Word) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0].Text
	}
	n := len(words) - 1
	for _, w := range words {
		n += len(w.Text)
	}
	out := make([]byte, 0, n)
	for i, w := range words {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, w.Text...)
	}
	return string(out)
}

// FirstPattern returns the first pattern (declaration order) matching the
// utterance, with its captures.
func FirstPattern(patterns []*rulebase.Pattern, input normalize.Result, stop func(string) bool) (*rulebase.Pattern, Captures, bool) {
	for _, p := range patterns {
		if caps, ok := Pattern(p, input, stop); ok {
			return p, caps, true
		}
	}
	return nil, nil, false
}

// Rule selects the winning weighted rule: the highest weight whose condition
// holds, declaration order breaking ties. Rules below the rule base's
// minimum weight never fire. Condition evaluation errors are reported
// through errs and treated as non-matches.
func Rule(rb *rulebase.RuleBase, env cond.Env, errs func(r *rulebase.Rule, err error)) (*rulebase.Rule, bool) {
	var best *rulebase.Rule
	for _, r := range rb.Rules {
		if rb.MinRuleWeight > 0 && r.Weight < rb.MinRuleWeight {
			continue
		}
		ok, err := r.Condition.Eval(env)
		if err != nil {
			if errs != nil {
				errs(r, err)
			}
			continue
		}
		if !ok {
			continue
		}
		if best == nil || r.Weight > best.Weight {
			best = r
		}
	}
	return best, best != nil
}
