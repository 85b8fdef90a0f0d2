/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// Kind is the coarse value type of a document property or method parameter.
// It is what the binder checks arguments against.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindList
	KindObject
)

var kindNames = map[Kind]string{
	KindAny:    "any",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindTime:   "time",
	KindList:   "list",
	KindObject: "object",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "any"
}

// ParseKind converts a declared kind name ("string", "number", ...) to a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "any":
		return KindAny, nil
	case "int", "integer", "long", "float", "double":
		return KindNumber, nil
	case "boolean":
		return KindBool, nil
	case "date", "datetime", "timestamp":
		return KindTime, nil
	case "array":
		return KindList, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindAny, fmt.Errorf("unknown kind %q", s)
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateTimeType = reflect.TypeOf(strfmt.DateTime{})
	dateType     = reflect.TypeOf(strfmt.Date{})
)

// KindOf maps a Go type to its Kind. Pointers are dereferenced.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return KindAny
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType, dateTimeType, dateType:
		return KindTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Bool:
		return KindBool
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Struct, reflect.Map:
		return KindObject
	}
	return KindAny
}

// Compatible reports whether a value of kind v may be compared with a
// property of kind p.
func Compatible(p, v Kind) bool {
	return p == KindAny || v == KindAny || p == v
}
