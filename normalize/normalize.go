// Package normalize implements input preprocessing: character folding, word
// splitting, stop-word removal, category annotation, and positional
// substitutions. Normalization is a pure function of the input text and the
// rule base, so results are cacheable.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/yooz-lang/go-yooz/rulebase"
)

// Word is one normalized input word together with the categories it belongs
// to. Category membership is annotated before substitutions run, so it
// reflects the word the user actually typed.
type Word struct {
	Text       string
	Categories []string
}

// InCategory reports whether the word belongs to the named category.
func (w Word) InCategory(name string) bool {
	for _, c := range w.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Result is a normalized utterance.
type Result struct {
	Words []Word
}

// Texts returns just the word texts.
func (r Result) Texts() []string {
	out := make([]string, len(r.Words))
	for i, w := range r.Words {
		out[i] = w.Text
	}
	return out
}

// Text returns the normalized utterance as a single string.
func (r Result) Text() string {
	return strings.Join(r.Texts(), " ")
}

// Contains reports whether the normalized utterance contains the word.
func (r Result) Contains(word string) bool {
	folded := Fold(word)
	for _, w := range r.Words {
		if w.Text == folded {
			return true
		}
	}
	return false
}

// foldTransform folds Arabic presentation variants into their Persian
// letters, strips combining diacritics, drops kashida, and recomposes.
var foldTransform = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r == 'ـ' })), // kashida
	runes.Map(foldRune),
	norm.NFC,
)

func foldRune(r rune) rune {
	switch r {
	case 'ي', 'ى': // Arabic yeh, alef maksura
		return 'ی'
	case 'ك': // Arabic kaf
		return 'ک'
	case 'ة': // teh marbuta
		return 'ه'
	}
	// Eastern Arabic digits to ASCII
	if r >= '٠' && r <= '٩' {
		return '0' + (r - '٠')
	}
	if r >= '۰' && r <= '۹' {
		return '0' + (r - '۰')
	}
	return unicode.ToLower(r)
}

// Fold canonicalizes text for matching. It never reorders characters, so
// right-to-left script passes through in source order.
func Fold(s string) string {
	out, _, err := transform.String(foldTransform, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// SplitWords splits text into words on whitespace and punctuation.
// The zero-width non-joiner stays inside words; everything that is not a
// letter, digit, mark, or joiner separates.
func SplitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '‌')
	})
}

// Normalizer preprocesses utterances against one rule base.
type Normalizer struct {
	stop map[string]struct{} // folded stop words
	subs map[string]string   // folded source word -> replacement
	cats map[string][]string // folded member word -> category names
}

// New builds a normalizer from the rule base's stop words, substitution
// tables, and categories.
func New(rb *rulebase.RuleBase) *Normalizer {
	n := &Normalizer{
		stop: make(map[string]struct{}),
		subs: make(map[string]string),
		cats: make(map[string][]string),
	}
	for _, w := range rb.StopWords {
		n.stop[Fold(w)] = struct{}{}
	}
	for _, sub := range rb.Substitutions {
		for i, src := range sub.Sources {
			key := Fold(src)
			if _, ok := n.subs[key]; !ok {
				n.subs[key] = sub.ReplacementFor(i)
			}
		}
	}
	for _, cat := range rb.Categories {
		for _, m := range cat.Members {
			key := Fold(m)
			n.cats[key] = append(n.cats[key], cat.Name)
		}
	}
	return n
}

// IsStopWord reports whether the folded word is in the stop-word set. The
// matcher uses this to ignore stop words declared inside pattern triggers,
// mirroring the stripping applied to input.
func (n *Normalizer) IsStopWord(word string) bool {
	_, ok := n.stop[Fold(word)]
	return ok
}

// Normalize runs the fixed preprocessing pipeline: fold, split, strip stop
// words, annotate categories, apply substitutions.
func (n *Normalizer) Normalize(input string) Result {
	var words []Word
	for _, raw := range SplitWords(Fold(input)) {
		if _, stop := n.stop[raw]; stop {
			continue
		}
		w := Word{Text: raw, Categories: n.cats[raw]}
		if repl, ok := n.subs[raw]; ok {
			w.Text = Fold(repl)
		}
		words = append(words, w)
	}
	return Result{Words: words}
}
