package render

import (
	"errors"
	"testing"
)

type mapStore map[string]string

func (m mapStore) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapStore) Set(name, value string) { m[name] = value }

func TestRenderCaptures(t *testing.T) {
	got, err := Render("سلام *1، اهل *2 هستی؟", []string{"علی", "تهران"}, nil, mapStore{}, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "سلام علی، اهل تهران هستی؟" {
		t.Errorf("got %q", got)
	}
}

func TestRenderCaptureIndexOrder(t *testing.T) {
	caps := make([]string, 12)
	for i := range caps {
		caps[i] = string(rune('a' + i))
	}
	// *12 must not be eaten as *1 followed by "2".
	got, err := Render("*12 *1", caps, nil, mapStore{}, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "l a" {
		t.Errorf("got %q, want \"l a\"", got)
	}
}

func TestRenderVariableRead(t *testing.T) {
	vars := mapStore{"name": "علی"}
	got, err := Render("سلام =name", nil, nil, vars, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "سلام علی" {
		t.Errorf("got %q", got)
	}
}

func TestRenderAssignment(t *testing.T) {
	vars := mapStore{}
	got, err := Render("باشه =hasGreeted:1", nil, nil, vars, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "باشه" {
		t.Errorf("assignment should render as nothing, got %q", got)
	}
	if vars["hasGreeted"] != "1" {
		t.Errorf("assignment should set the variable, got %q", vars["hasGreeted"])
	}
}

func TestRenderAssignmentBeforeRead(t *testing.T) {
	vars := mapStore{}
	got, err := Render("=x:5 مقدار =x", nil, nil, vars, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "مقدار 5" {
		t.Errorf("got %q", got)
	}
}

func TestRenderDefinition(t *testing.T) {
	defs := map[string]string{"bot": "یوز"}
	got, err := Render("اسم من #bot است", nil, defs, mapStore{}, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "اسم من یوز است" {
		t.Errorf("got %q", got)
	}
}

func TestRenderPersianNames(t *testing.T) {
	vars := mapStore{"نام": "علی"}
	got, err := Render("سلام =نام", nil, nil, vars, Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "سلام علی" {
		t.Errorf("Persian variable names should resolve, got %q", got)
	}
}

func TestRenderLenientUnresolved(t *testing.T) {
	got, err := Render("سلام =ناشناخته و #ناموجود و *1", nil, nil, mapStore{}, Options{})
	if err != nil {
		t.Fatalf("lenient render should not fail: %v", err)
	}
	if got != "سلام و و" {
		t.Errorf("unresolved references should vanish, got %q", got)
	}
}

func TestRenderStrictUnresolved(t *testing.T) {
	cases := []string{"=ناشناخته", "#ناموجود", "*1", "*2 با یک"}
	for _, template := range cases {
		_, err := Render(template, nil, nil, mapStore{}, Options{Strict: true})
		if err == nil {
			t.Errorf("Render(%q) strict should fail", template)
			continue
		}
		var re *RenderError
		if !errors.As(err, &re) {
			t.Errorf("error type %T, want *RenderError", err)
		}
	}
}

func TestExpandCaptures(t *testing.T) {
	got := ExpandCaptures("'*1' == 'علی'", []string{"علی"})
	if got != "'علی' == 'علی'" {
		t.Errorf("got %q", got)
	}
	// Out-of-range references expand to nothing.
	if got := ExpandCaptures("*2", []string{"یک"}); got != "" {
		t.Errorf("out-of-range capture = %q, want empty", got)
	}
}

func TestRenderPlainText(t *testing.T) {
	got, err := Render("  سلام   دنیا  ", nil, nil, mapStore{}, Options{Strict: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "سلام دنیا" {
		t.Errorf("whitespace should collapse, got %q", got)
	}
}
