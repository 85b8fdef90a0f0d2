/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// Return is the declared return type of a repository method.
type Return int

const (
	// ReturnDefault lets the verb decide: a collection for retrieval verbs,
	// a number for count and delete, a boolean for exists.
	ReturnDefault Return = iota
	ReturnEntity
	ReturnSlice
	ReturnStream
	ReturnNumber
	ReturnBool
)

var returnNames = map[Return]string{
	ReturnDefault: "default",
	ReturnEntity:  "entity",
	ReturnSlice:   "slice",
	ReturnStream:  "stream",
	ReturnNumber:  "number",
	ReturnBool:    "bool",
}

func (r Return) String() string {
	return returnNames[r]
}

// ParseReturn converts a declared return name to a Return.
func ParseReturn(s string) (Return, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return ReturnDefault, nil
	case "one", "single", "optional":
		return ReturnEntity, nil
	case "list", "collection", "many":
		return ReturnSlice, nil
	case "flux", "iterator":
		return ReturnStream, nil
	case "count", "long", "int":
		return ReturnNumber, nil
	case "boolean":
		return ReturnBool, nil
	}
	for r, n := range returnNames {
		if n == name {
			return r, nil
		}
	}
	return ReturnDefault, fmt.Errorf("unknown return type %q", s)
}

// Param is one declared method parameter.
type Param struct {
	Name string
	Kind registry.Kind
	// Variadic is set for variadic and slice parameters; they bind as a set.
	Variadic bool
}

func (p Param) String() string {
	if p.Variadic {
		return p.Kind.String() + "..."
	}
	return p.Kind.String()
}

// Signature is the declared shape of a repository method.
type Signature struct {
	Repository string
	Name       string
	Params     []Param
	Returns    Return
	// Consistency overrides the configured scan consistency when set.
	Consistency storagemodels.ScanConsistency
	// Query is an annotated literal query; it takes precedence over derivation.
	Query string
}

// Key returns the identity of the method this signature declares.
func (s Signature) Key() Key {
	return NewKey(s.Repository, s.Name, s.Params)
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// SignatureOf builds a Signature from a Go function type. A leading
// context.Context parameter and a trailing error result are ignored.
// Parameter names are taken positionally from names; missing names default
// to p0, p1, ...
//
//	sig, err := method.SignatureOf("AirportRepository", "countByIataIn",
//	    (func(context.Context, ...string) (int64, error))(nil), "iatas")
func SignatureOf(repository, name string, fn any, names ...string) (Signature, error) {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("signature of %s.%s: %T is not a function", repository, name, fn)
	}

	sig := Signature{Repository: repository, Name: name}
	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		first = 1
	}
	for i := first; i < t.NumIn(); i++ {
		in := t.In(i)
		p := Param{Name: fmt.Sprintf("p%d", i-first)}
		if idx := i - first; idx < len(names) {
			p.Name = names[idx]
		}
		isList := in.Kind() == reflect.Slice && in.Elem().Kind() != reflect.Uint8
		if (t.IsVariadic() && i == t.NumIn()-1) || isList {
			p.Variadic = true
			p.Kind = registry.KindOf(in.Elem())
		} else {
			p.Kind = registry.KindOf(in)
		}
		sig.Params = append(sig.Params, p)
	}

	if t.NumOut() > 0 {
		sig.Returns = returnOf(t.Out(0))
	}
	return sig, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func returnOf(out reflect.Type) Return {
	if out == errorType {
		return ReturnDefault
	}
	if isStreamType(out) {
		return ReturnStream
	}
	switch out.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ReturnNumber
	case reflect.Bool:
		return ReturnBool
	case reflect.Slice, reflect.Array:
		return ReturnSlice
	case reflect.Chan, reflect.Func:
		return ReturnStream
	case reflect.Pointer, reflect.Struct:
		return ReturnEntity
	}
	return ReturnDefault
}

// isStreamType recognizes cursor-like types: anything with Next and Close.
func isStreamType(t reflect.Type) bool {
	_, hasNext := t.MethodByName("Next")
	_, hasClose := t.MethodByName("Close")
	return hasNext && hasClose
}
