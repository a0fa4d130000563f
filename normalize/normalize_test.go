package normalize

import (
	"reflect"
	"testing"

	"github.com/yooz-lang/go-yooz/rulebase"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		// Arabic letter variants fold to Persian.
		{"يك", "یک"},
		{"على", "علی"},
		{"مدرسة", "مدرسه"},
		// Diacritics are stripped.
		{"سَلام", "سلام"},
		// Kashida is removed.
		{"ســلام", "سلام"},
		// Eastern digits become ASCII.
		{"۱۲۳", "123"},
		{"٤٥", "45"},
		// Latin lowercases.
		{"Hello", "hello"},
		// Persian text is otherwise untouched.
		{"سلام دنیا", "سلام دنیا"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldDeterministic(t *testing.T) {
	in := "سَــلام يك ۱۲۳"
	first := Fold(in)
	for i := 0; i < 3; i++ {
		if Fold(in) != first {
			t.Fatal("Fold must be deterministic")
		}
	}
	// Folding is idempotent.
	if Fold(first) != first {
		t.Error("Fold must be idempotent")
	}
}

func TestSplitWords(t *testing.T) {
	got := SplitWords("سلام، دوست من!")
	want := []string{"سلام", "دوست", "من"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitWords = %v, want %v", got, want)
	}

	// The zero-width non-joiner stays inside a word.
	got = SplitWords("می‌روم")
	if len(got) != 1 {
		t.Errorf("ZWNJ should not split: %v", got)
	}
}

func buildRuleBase(t *testing.T) *rulebase.RuleBase {
	t.Helper()
	rb := rulebase.New()
	rb.AddCategory(rulebase.Category{Name: "رنگ", Members: []string{"قرمز", "آبی"}})
	rb.AddSubstitution(rulebase.Substitution{
		Sources:      []string{"من", "هستم"},
		Replacements: []string{"تو", "هستی"},
	})
	rb.AddStopWords("که", "از")
	return rb
}

func TestNormalizeStopWords(t *testing.T) {
	n := New(buildRuleBase(t))
	res := n.Normalize("سلام که از دنیا")
	if res.Text() != "سلام دنیا" {
		t.Errorf("Text() = %q, want stop words removed", res.Text())
	}
}

func TestNormalizeSubstitution(t *testing.T) {
	n := New(buildRuleBase(t))
	res := n.Normalize("من خوب هستم")
	if res.Text() != "تو خوب هستی" {
		t.Errorf("Text() = %q, want person flipped", res.Text())
	}
}

func TestNormalizeCategoryAnnotation(t *testing.T) {
	n := New(buildRuleBase(t))
	res := n.Normalize("قرمز را دوست دارم")
	if len(res.Words) == 0 || !res.Words[0].InCategory("رنگ") {
		t.Errorf("first word should carry its category: %+v", res.Words)
	}
	if res.Words[0].InCategory("میوه") {
		t.Error("unknown category membership")
	}
}

func TestIsStopWordFoldsVariants(t *testing.T) {
	rb := rulebase.New()
	rb.AddStopWords("يك") // Arabic yeh and kaf

	n := New(rb)
	if !n.IsStopWord("يك") {
		t.Error("declared spelling should be a stop word")
	}
	if !n.IsStopWord("یک") {
		t.Error("Persian spelling should fold to the same stop word")
	}
	if n.IsStopWord("دو") {
		t.Error("unrelated word should not be a stop word")
	}
}

func TestNormalizeFoldsBeforeLookup(t *testing.T) {
	// Arabic-keyboard spelling still hits the stop list and categories.
	rb := rulebase.New()
	rb.AddCategory(rulebase.Category{Name: "سبک", Members: []string{"یک"}})
	rb.AddStopWords("که")
	n := New(rb)

	res := n.Normalize("كه يك")
	if res.Text() != "یک" {
		t.Errorf("Text() = %q, want folded stop word removed", res.Text())
	}
	if !res.Words[0].InCategory("سبک") {
		t.Error("folded word should match category member")
	}
}

func TestResultContains(t *testing.T) {
	n := New(rulebase.New())
	res := n.Normalize("سلام دنیا")
	if !res.Contains("سلام") {
		t.Error("Contains should find word")
	}
	// Containment folds its argument too.
	if !res.Contains("سَلام") {
		t.Error("Contains should fold its argument")
	}
	if res.Contains("خداحافظ") {
		t.Error("Contains should miss absent word")
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	n := New(rulebase.New())
	res := n.Normalize("   ")
	if len(res.Words) != 0 {
		t.Errorf("blank input should normalize to no words: %v", res.Words)
	}
}
