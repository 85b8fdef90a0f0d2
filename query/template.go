/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/storagemodels"
)

// macroPattern matches {1}, {name} and {#macro} references.
var macroPattern = regexp.MustCompile(`{([^}]+)}`)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// segment is either literal text or a parameter reference.
type segment struct {
	text  string
	param int // -1 for literal text
}

type template struct {
	segments []segment
}

// parseTemplate expands macros and resolves parameter references against
// the descriptor. Braced text that is neither a number, a declared
// parameter name nor a macro is kept verbatim, so JSON literals survive.
// Every declared parameter must be referenced.
func parseTemplate(src string, d *method.Descriptor, dia dialect.Dialect, ks storagemodels.Keyspace) (*template, error) {
	params := d.Params()
	used := make([]bool, len(params))
	t := &template{}

	literal := func(s string) {
		if s == "" {
			return
		}
		if n := len(t.segments); n > 0 && t.segments[n-1].param < 0 {
			t.segments[n-1].text += s
			return
		}
		t.segments = append(t.segments, segment{text: s, param: -1})
	}

	last := 0
	for _, m := range macroPattern.FindAllStringSubmatchIndex(src, -1) {
		literal(src[last:m[0]])
		last = m[1]
		whole, name := src[m[0]:m[1]], strings.TrimSpace(src[m[2]:m[3]])

		switch {
		case strings.HasPrefix(name, "#"):
			expanded, ok := dia.Macro(name[1:], ks, d.Entity())
			if !ok {
				return nil, fmt.Errorf("unknown macro %s", whole)
			}
			literal(expanded)
		case isDigits(name):
			n, err := strconv.Atoi(name)
			if err != nil || n < 1 || n > len(params) {
				return nil, fmt.Errorf("placeholder %s is out of range: method has %d parameters", whole, len(params))
			}
			t.segments = append(t.segments, segment{param: n - 1})
			used[n-1] = true
		case identPattern.MatchString(name):
			idx := -1
			for i, p := range params {
				if p.Name == name {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, fmt.Errorf("placeholder %s names no declared parameter", whole)
			}
			t.segments = append(t.segments, segment{param: idx})
			used[idx] = true
		default:
			literal(whole)
		}
	}
	literal(src[last:])

	for i, u := range used {
		if !u {
			return nil, fmt.Errorf("parameter %d (%s) is not referenced", i+1, params[i].Name)
		}
	}
	return t, nil
}

// String renders the template with parameter references as {N}.
func (t *template) String() string {
	var b strings.Builder
	for _, s := range t.segments {
		if s.param < 0 {
			b.WriteString(s.text)
		} else {
			fmt.Fprintf(&b, "{%d}", s.param+1)
		}
	}
	return b.String()
}

// render substitutes dialect markers for the references and returns the
// statement text with its positional arguments. Set-valued parameters
// expand to a marker list.
func (t *template) render(dia dialect.Dialect, values []boundValue) (string, []any) {
	var b strings.Builder
	var args []any
	for _, s := range t.segments {
		if s.param < 0 {
			b.WriteString(s.text)
			continue
		}
		v := values[s.param]
		if v.set {
			b.WriteString(dia.List(len(v.items)))
			for _, item := range v.items {
				args = append(args, driverValue(dia, item))
			}
			continue
		}
		b.WriteString(dia.Marker())
		args = append(args, driverValue(dia, v.items[0]))
	}
	return b.String(), args
}

func driverValue(dia dialect.Dialect, v any) any {
	if ta, ok := v.(timeArg); ok {
		return dia.Time(ta.t, ta.text)
	}
	return v
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
