// Package render expands response templates: wildcard captures (`*1`),
// variable reads (`=name`), inline assignments (`=name:value`), and
// definition references (`#name`). Inline assignment is the only point in
// the whole pipeline that mutates the variable store.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Store is the variable store the renderer reads and writes.
type Store interface {
	Get(name string) (string, bool)
	Set(name, value string)
}

// RenderError reports an unresolved reference in strict mode.
type RenderError struct {
	Ref string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render: unresolved reference %q", e.Ref)
}

// Options controls renderer strictness. In strict mode an unresolved
// reference is a RenderError; otherwise it renders as the empty string.
type Options struct {
	Strict bool
}

var (
	nameClass = `[\p{L}\p{N}_` + "‌" + `]+`
	assignRe  = regexp.MustCompile(`=(` + nameClass + `):(\S+)`)
	varRe     = regexp.MustCompile(`=(` + nameClass + `)`)
	defRe     = regexp.MustCompile(`#(` + nameClass + `)`)
	capRe     = regexp.MustCompile(`\*([0-9]+)`)
)

// ExpandCaptures replaces capture references (`*N`) with their matched text.
// Out-of-range references expand to the empty string. Branch conditions use
// this before evaluation, so a condition can compare what a wildcard caught.
func ExpandCaptures(template string, caps []string) string {
	return capRe.ReplaceAllStringFunc(template, func(m string) string {
		idx, err := strconv.Atoi(m[1:])
		if err != nil || idx < 1 || idx > len(caps) {
			return ""
		}
		return caps[idx-1]
	})
}

// Render expands the template. Expansion order: captures, assignments,
// variable reads, definitions.
func Render(template string, caps []string, defs map[string]string, vars Store, opts Options) (string, error) {
	var unresolved string

	// Captures. The digit run is greedy, so *12 is one reference, not *1.
	out := capRe.ReplaceAllStringFunc(template, func(m string) string {
		idx, err := strconv.Atoi(m[1:])
		if err != nil || idx < 1 || idx > len(caps) {
			if unresolved == "" {
				unresolved = m
			}
			return ""
		}
		return caps[idx-1]
	})

	// Inline assignments mutate the store and render nothing.
	out = assignRe.ReplaceAllStringFunc(out, func(m string) string {
		parts := assignRe.FindStringSubmatch(m)
		vars.Set(parts[1], parts[2])
		return ""
	})

	// Variable reads.
	out = varRe.ReplaceAllStringFunc(out, func(m string) string {
		name := m[1:]
		if v, ok := vars.Get(name); ok {
			return v
		}
		if unresolved == "" {
			unresolved = m
		}
		return ""
	})

	// Definition references.
	out = defRe.ReplaceAllStringFunc(out, func(m string) string {
		name := m[1:]
		if v, ok := defs[name]; ok {
			return v
		}
		if unresolved == "" {
			unresolved = m
		}
		return ""
	})

	if opts.Strict && unresolved != "" {
		return "", &RenderError{Ref: unresolved}
	}
	return strings.Join(strings.Fields(out), " "), nil
}
