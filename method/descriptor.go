/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// Verb is the leading keyword of a method name.
type Verb int

const (
	VerbFind Verb = iota
	VerbCount
	VerbExists
	VerbDelete
)

func (v Verb) String() string {
	switch v {
	case VerbCount:
		return "count"
	case VerbExists:
		return "exists"
	case VerbDelete:
		return "delete"
	}
	return "find"
}

// Shape is the result shape the executor adapts rows into.
type Shape int

const (
	ShapeCollection Shape = iota
	ShapeOptional
	ShapeStream
	ShapeCount
	ShapeExists
	ShapeDeleteCount
)

var shapeNames = map[Shape]string{
	ShapeCollection:  "collection",
	ShapeOptional:    "optional",
	ShapeStream:      "stream",
	ShapeCount:       "count",
	ShapeExists:      "exists",
	ShapeDeleteCount: "delete-count",
}

func (s Shape) String() string {
	return shapeNames[s]
}

// IsScalar reports whether the shape produces a single number or boolean.
func (s Shape) IsScalar() bool {
	return s == ShapeCount || s == ShapeExists || s == ShapeDeleteCount
}

var (
	verbs = map[string]Verb{
		"find": VerbFind, "read": VerbFind, "get": VerbFind, "query": VerbFind,
		"search": VerbFind, "stream": VerbFind,
		"count":  VerbCount,
		"exists": VerbExists,
		"delete": VerbDelete, "remove": VerbDelete,
	}
	byPattern      = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}.*?)??By(\p{Lu}.*)$`)
	subjectPattern = regexp.MustCompile(`^(find|read|get|query|search|stream|count|exists|delete|remove)(\p{Lu}\w*)?$`)

	// modifierPattern reads the leading subject modifiers; an entity word
	// such as "Topics" must start a new word after them.
	modifierPattern = regexp.MustCompile(`^(Distinct)?(?:(First|Top)(\d*))?(?:\p{Lu}|$)`)
)

// OverrideLookup reports whether a named query overrides a method of the
// given entity.
type OverrideLookup interface {
	Has(key Key, entity string) bool
}

// Descriptor is the immutable description of one repository method:
// target entity, verb, result shape, predicate and parameters. Descriptors
// are derived once per method and shared.
type Descriptor struct {
	key         Key
	entity      registry.EntityInfo
	verb        Verb
	shape       Shape
	params      []Param
	tree        *PartTree
	orders      []Order
	distinct    bool
	limit       int
	consistency storagemodels.ScanConsistency
	query       string
	overridden  bool
}

func (d *Descriptor) Key() Key { return d.key }

func (d *Descriptor) Entity() registry.EntityInfo { return d.entity }

func (d *Descriptor) Verb() Verb { return d.verb }

func (d *Descriptor) Shape() Shape { return d.shape }

func (d *Descriptor) Distinct() bool { return d.distinct }

// Limit is the First/Top result limit, 0 when unlimited.
func (d *Descriptor) Limit() int { return d.limit }

// Query is the annotated literal, empty when none was declared.
func (d *Descriptor) Query() string { return d.query }

// Overridden reports whether an annotated literal or named query supplies
// the statement text.
func (d *Descriptor) Overridden() bool { return d.overridden }

// Consistency is the per-method scan consistency, empty to use the default.
func (d *Descriptor) Consistency() storagemodels.ScanConsistency { return d.consistency }

// Tree is the parsed predicate, nil when the method has none or its query
// is supplied by an override.
func (d *Descriptor) Tree() *PartTree { return d.tree }

// Params returns a copy of the declared parameters.
func (d *Descriptor) Params() []Param {
	return append([]Param(nil), d.params...)
}

// Orders returns a copy of the sort keys.
func (d *Descriptor) Orders() []Order {
	return append([]Order(nil), d.orders...)
}

// Equal reports structural equality.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == nil || o == nil {
		return d == o
	}
	return reflect.DeepEqual(*d, *o)
}

func (d *Descriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s %s", d.key, d.verb, d.shape)
	if d.distinct {
		b.WriteString(" distinct")
	}
	if d.limit > 0 {
		fmt.Fprintf(&b, " limit %d", d.limit)
	}
	if d.tree != nil {
		fmt.Fprintf(&b, " where %s", d.tree)
	}
	if len(d.orders) > 0 {
		orders := make([]string, len(d.orders))
		for i, o := range d.orders {
			orders[i] = o.String()
		}
		fmt.Fprintf(&b, " order by %s", strings.Join(orders, ", "))
	}
	return b.String()
}

// Derive analyzes a method signature against its entity. When the method is
// overridden by an annotated literal or a named query, only the verb and
// result shape are taken from the name and an unparseable name is accepted.
func Derive(sig Signature, entity registry.EntityInfo, overrides OverrideLookup) (*Descriptor, error) {
	key := sig.Key()
	fail := func(format string, args ...any) (*Descriptor, error) {
		return nil, errors.NewDerivationError(key.String(), format, args...)
	}

	if err := entity.Validate(); err != nil {
		return fail("%v", err)
	}
	var consistency storagemodels.ScanConsistency
	if sig.Consistency != "" {
		c, err := storagemodels.ParseScanConsistency(string(sig.Consistency))
		if err != nil {
			return fail("%v", err)
		}
		consistency = c
	}

	d := &Descriptor{
		key:         key,
		entity:      entity,
		params:      append([]Param(nil), sig.Params...),
		consistency: consistency,
		query:       strings.TrimSpace(sig.Query),
	}
	d.overridden = d.query != "" || (overrides != nil && overrides.Has(key, entity.Name))

	var verbText, subject, predicate string
	if m := byPattern.FindStringSubmatch(sig.Name); m != nil {
		verbText, subject, predicate = m[1], m[2], m[3]
	} else if m := subjectPattern.FindStringSubmatch(sig.Name); m != nil {
		verbText, subject = m[1], m[2]
	} else if !d.overridden {
		return fail("method name %q does not start with a query verb", sig.Name)
	}

	if verbText != "" {
		d.verb = verbs[verbText]
	} else {
		d.verb = verbFromReturn(sig.Returns)
	}
	if m := modifierPattern.FindStringSubmatch(subject); m != nil {
		d.distinct = m[1] != ""
		if m[2] != "" {
			d.limit = 1
			if m[3] != "" {
				n, err := strconv.Atoi(m[3])
				if err != nil || n < 1 {
					return fail("invalid result limit %q", m[2]+m[3])
				}
				d.limit = n
			}
		}
	}

	shape, err := shapeOf(d.verb, verbText, sig.Returns)
	if err != nil {
		return fail("%v", err)
	}
	d.shape = shape

	if d.overridden {
		return d, nil
	}
	tree, orders, err := parsePredicate(predicate, entity, d.params)
	if err != nil {
		return fail("%v", err)
	}
	d.tree, d.orders = tree, orders
	return d, nil
}

func verbFromReturn(r Return) Verb {
	switch r {
	case ReturnNumber:
		return VerbCount
	case ReturnBool:
		return VerbExists
	}
	return VerbFind
}

func shapeOf(verb Verb, verbText string, r Return) (Shape, error) {
	switch verb {
	case VerbCount:
		if r != ReturnDefault && r != ReturnNumber {
			return 0, fmt.Errorf("count methods must return a number, not %s", r)
		}
		return ShapeCount, nil
	case VerbExists:
		if r != ReturnDefault && r != ReturnBool {
			return 0, fmt.Errorf("exists methods must return a bool, not %s", r)
		}
		return ShapeExists, nil
	case VerbDelete:
		if r != ReturnDefault && r != ReturnNumber {
			return 0, fmt.Errorf("delete methods must return a number, not %s", r)
		}
		return ShapeDeleteCount, nil
	}

	switch r {
	case ReturnEntity:
		return ShapeOptional, nil
	case ReturnSlice:
		return ShapeCollection, nil
	case ReturnStream:
		return ShapeStream, nil
	case ReturnDefault:
		if verbText == "stream" {
			return ShapeStream, nil
		}
		return ShapeCollection, nil
	}
	return 0, fmt.Errorf("retrieval methods cannot return %s", r)
}
