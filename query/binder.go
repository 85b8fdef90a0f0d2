/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/registry"
)

// boundValue is one method argument after normalization. A set holds the
// elements of a variadic or slice argument.
type boundValue struct {
	set   bool
	items []any
}

// bindArgs matches call arguments to the declared parameters. A trailing
// variadic parameter accepts either the individual values or one slice.
func bindArgs(d *method.Descriptor, args []any) ([]boundValue, error) {
	name := d.Key().String()
	params := d.Params()

	if n := len(params); n > 0 && params[n-1].Variadic {
		if len(args) < n-1 {
			return nil, errors.NewBindingError(name, "", 0, "expected at least %d arguments, got %d", n-1, len(args))
		}
		if !(len(args) == n && isList(args[n-1])) {
			tail := append([]any(nil), args[n-1:]...)
			args = append(append([]any(nil), args[:n-1]...), tail)
		}
	} else if len(args) != len(params) {
		return nil, errors.NewBindingError(name, "", 0, "expected %d arguments, got %d", len(params), len(args))
	}

	values := make([]boundValue, len(params))
	for i, p := range params {
		if p.Variadic {
			items, err := bindSet(name, p, i, args[i])
			if err != nil {
				return nil, err
			}
			values[i] = boundValue{set: true, items: items}
			continue
		}
		v, err := bindOne(name, p, i, args[i])
		if err != nil {
			return nil, err
		}
		values[i] = boundValue{items: []any{v}}
	}
	return values, nil
}

// emptySets evaluates the parts whose set argument is empty: In over an
// empty set is false and NotIn is true. It reports whether no AND group can
// match. A predicate that may still match but holds an empty set the
// dialect cannot express is a binding error.
func emptySets(d *method.Descriptor, values []boundValue, dia dialect.Dialect) (bool, error) {
	tree := d.Tree()
	if tree == nil {
		return false, nil
	}
	empty := -1
	satisfiable := false
	for _, g := range tree.Groups {
		possible := true
		for _, part := range g {
			if !part.Operator.IsSet() || len(part.Params) == 0 {
				continue
			}
			i := part.Params[0]
			if v := values[i]; !v.set || len(v.items) > 0 {
				continue
			}
			if empty < 0 {
				empty = i
			}
			if part.Operator == method.OpIn {
				possible = false
			}
		}
		satisfiable = satisfiable || possible
	}
	if empty < 0 {
		return false, nil
	}
	if !satisfiable {
		return true, nil
	}
	if !dia.EmptySets() {
		p := d.Params()[empty]
		return false, errors.NewBindingError(d.Key().String(), p.Name, empty+1, "an empty set cannot be expressed in %s", dia.Name())
	}
	return false, nil
}

func bindSet(name string, p method.Param, i int, arg any) ([]any, error) {
	if arg == nil {
		return nil, errors.NewBindingError(name, p.Name, i+1, "nil is not a valid set")
	}
	rv := reflect.ValueOf(arg)
	if !isList(arg) {
		return nil, errors.NewBindingError(name, p.Name, i+1, "expected a list of %s, got %T", p.Kind, arg)
	}
	items := make([]any, rv.Len())
	for j := range items {
		v, kind, err := normalize(rv.Index(j).Interface())
		if err != nil {
			return nil, errors.NewBindingError(name, p.Name, i+1, "element %d: %v", j, err)
		}
		if !registry.Compatible(p.Kind, kind) {
			return nil, errors.NewBindingError(name, p.Name, i+1, "element %d is %s, expected %s", j, kind, p.Kind)
		}
		items[j] = v
	}
	return items, nil
}

func bindOne(name string, p method.Param, i int, arg any) (any, error) {
	v, kind, err := normalize(arg)
	if err != nil {
		return nil, errors.NewBindingError(name, p.Name, i+1, "%v", err)
	}
	if !registry.Compatible(p.Kind, kind) {
		return nil, errors.NewBindingError(name, p.Name, i+1, "argument is %s, expected %s", kind, p.Kind)
	}
	return v, nil
}

// timeArg is a temporal argument; the dialect chooses its bound form when
// the statement is rendered.
type timeArg struct {
	t    time.Time
	text string
}

// normalize converts an argument to a driver-neutral value. Temporal values
// become timeArgs carrying the text their JSON encoding produces.
func normalize(arg any) (any, registry.Kind, error) {
	if arg == nil {
		return nil, registry.KindAny, fmt.Errorf("nil value")
	}
	rv := reflect.ValueOf(arg)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, registry.KindAny, fmt.Errorf("nil %s", rv.Type())
		}
		rv = rv.Elem()
	}

	switch v := rv.Interface().(type) {
	case time.Time:
		return timeArg{t: v, text: v.Format(time.RFC3339Nano)}, registry.KindTime, nil
	case strfmt.DateTime:
		return timeArg{t: time.Time(v), text: v.String()}, registry.KindTime, nil
	case strfmt.Date:
		return timeArg{t: time.Time(v), text: v.String()}, registry.KindTime, nil
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), registry.KindString, nil
	case reflect.Bool:
		return rv.Bool(), registry.KindBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), registry.KindNumber, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), registry.KindNumber, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), registry.KindNumber, nil
	case reflect.Slice, reflect.Array, reflect.Map:
		if rv.Kind() != reflect.Array && rv.IsNil() {
			return nil, registry.KindAny, fmt.Errorf("nil %s", rv.Type())
		}
		return rv.Interface(), registry.KindOf(rv.Type()), nil
	case reflect.Struct:
		return rv.Interface(), registry.KindObject, nil
	}
	return nil, registry.KindAny, fmt.Errorf("unsupported argument type %s", rv.Type())
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() != reflect.Uint8
}
