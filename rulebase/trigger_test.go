package rulebase

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTriggerWords(t *testing.T) {
	elems, err := ParseTrigger("سلام دوست من")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	want := []TriggerElem{
		{Kind: ElemWord, Word: "سلام"},
		{Kind: ElemWord, Word: "دوست"},
		{Kind: ElemWord, Word: "من"},
	}
	if !reflect.DeepEqual(elems, want) {
		t.Errorf("got %v, want %v", elems, want)
	}
}

func TestParseTriggerWildcard(t *testing.T) {
	elems, err := ParseTrigger("من * هستم")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if len(elems) != 3 || elems[1].Kind != ElemWildcard {
		t.Errorf("middle element should be a wildcard, got %v", elems)
	}

	// Numbered wildcards are wildcards too.
	elems, err = ParseTrigger("*1 و *2")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if elems[0].Kind != ElemWildcard || elems[2].Kind != ElemWildcard {
		t.Errorf("numbered wildcards not recognized: %v", elems)
	}

	// A star glued to letters is a plain word.
	elems, err = ParseTrigger("*abc")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if elems[0].Kind != ElemWord {
		t.Errorf("*abc should be a word, got %v", elems[0].Kind)
	}
}

func TestParseTriggerCategory(t *testing.T) {
	elems, err := ParseTrigger("&رنگ را دوست دارم")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if elems[0].Kind != ElemCategory || elems[0].Word != "رنگ" {
		t.Errorf("category ref not parsed: %v", elems[0])
	}

	if _, err := ParseTrigger("&"); !errors.Is(err, ErrEmptyCategoryRef) {
		t.Errorf("bare & should be ErrEmptyCategoryRef, got %v", err)
	}
}

func TestParseTriggerKeywordGroups(t *testing.T) {
	elems, err := ParseTrigger("{غذا، خوراک}")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if elems[0].Kind != ElemKeywordAll {
		t.Errorf("comma group should require all keywords, got %v", elems[0].Kind)
	}
	if !reflect.DeepEqual(elems[0].Words, []string{"غذا", "خوراک"}) {
		t.Errorf("wrong members: %v", elems[0].Words)
	}

	elems, err = ParseTrigger("{غذا_خوراک}")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if elems[0].Kind != ElemKeywordAny {
		t.Errorf("underscore group should be any-of, got %v", elems[0].Kind)
	}
}

func TestParseTriggerGroupErrors(t *testing.T) {
	if _, err := ParseTrigger("{الف، ب_ج}"); !errors.Is(err, ErrMixedKeywordGroup) {
		t.Errorf("mixed separators should be ErrMixedKeywordGroup, got %v", err)
	}
	if _, err := ParseTrigger("{الف"); !errors.Is(err, ErrUnclosedGroup) {
		t.Errorf("unclosed group should be ErrUnclosedGroup, got %v", err)
	}
	if _, err := ParseTrigger("{،}"); !errors.Is(err, ErrEmptyGroup) {
		t.Errorf("empty group should be ErrEmptyGroup, got %v", err)
	}
}

func TestCaptureCount(t *testing.T) {
	elems, err := ParseTrigger("من * به &شهر رفتم *")
	if err != nil {
		t.Fatalf("ParseTrigger: %v", err)
	}
	if n := CaptureCount(elems); n != 3 {
		t.Errorf("CaptureCount = %d, want 3", n)
	}
}
