/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package method

import (
	"fmt"
	"strings"

	"github.com/suparena/repoquery/registry"
)

// Part is one leaf of the predicate: a property, its operator and the
// method parameters it consumes.
type Part struct {
	Property   registry.Property
	Operator   Operator
	IgnoreCase bool
	// Params are indexes into the method's parameter list.
	Params []int
}

// Arity is the number of parameters the part consumes.
func (p Part) Arity() int {
	return p.Operator.Arity()
}

func (p Part) String() string {
	s := p.Property.Path + " " + p.Operator.String()
	if p.IgnoreCase {
		s += " IgnoreCase"
	}
	for _, i := range p.Params {
		s += fmt.Sprintf(" ?%d", i+1)
	}
	return s
}

// PartTree is a disjunction of conjunctions: Groups are ORed, the parts of
// each group are ANDed.
type PartTree struct {
	Groups [][]Part
}

// Parts returns all leaves in declaration order.
func (t *PartTree) Parts() []Part {
	if t == nil {
		return nil
	}
	var parts []Part
	for _, g := range t.Groups {
		parts = append(parts, g...)
	}
	return parts
}

func (t *PartTree) String() string {
	if t == nil {
		return ""
	}
	groups := make([]string, len(t.Groups))
	for i, g := range t.Groups {
		parts := make([]string, len(g))
		for j, p := range g {
			parts[j] = p.String()
		}
		groups[i] = strings.Join(parts, " AND ")
		if len(t.Groups) > 1 && len(g) > 1 {
			groups[i] = "(" + groups[i] + ")"
		}
	}
	return strings.Join(groups, " OR ")
}

// Order is one sort key from an OrderBy clause.
type Order struct {
	Property   registry.Property
	Descending bool
}

func (o Order) String() string {
	if o.Descending {
		return o.Property.Path + " DESC"
	}
	return o.Property.Path + " ASC"
}

// parsePredicate parses the text after "By" into a tree and sort keys, and
// assigns the method parameters to the parts in declaration order.
func parsePredicate(src string, entity registry.EntityInfo, params []Param) (*PartTree, []Order, error) {
	predicate, orderClause := src, ""
	if i := strings.Index(src, "OrderBy"); i >= 0 {
		predicate, orderClause = src[:i], src[i+len("OrderBy"):]
	}

	allIgnoreCase := false
	for _, suffix := range []string{"AllIgnoreCase", "AllIgnoringCase"} {
		if strings.HasSuffix(predicate, suffix) {
			predicate = strings.TrimSuffix(predicate, suffix)
			allIgnoreCase = true
			break
		}
	}

	var tree *PartTree
	if predicate != "" {
		tree = &PartTree{}
		for _, orText := range splitKeyword(predicate, "Or") {
			var group []Part
			for _, andText := range splitKeyword(orText, "And") {
				if andText == "" {
					return nil, nil, fmt.Errorf("empty predicate part in %q", src)
				}
				part, err := parsePart(andText, entity, allIgnoreCase)
				if err != nil {
					return nil, nil, err
				}
				group = append(group, part)
			}
			tree.Groups = append(tree.Groups, group)
		}
	}

	if err := assignParams(tree, params); err != nil {
		return nil, nil, err
	}

	orders, err := parseOrder(orderClause, entity)
	if err != nil {
		return nil, nil, err
	}
	return tree, orders, nil
}

func parsePart(text string, entity registry.EntityInfo, allIgnoreCase bool) (Part, error) {
	ignoreCase := false
	for _, suffix := range []string{"IgnoreCase", "IgnoringCase"} {
		if strings.HasSuffix(text, suffix) && len(text) > len(suffix) {
			text = strings.TrimSuffix(text, suffix)
			ignoreCase = true
			break
		}
	}

	name, op, matched := splitOperator(text)
	prop, ok := entity.Property(name)
	if !ok && matched {
		// A property whose name ends in a keyword, e.g. "CheckIn".
		if whole, found := entity.Property(text); found {
			prop, op, ok = whole, OpEquals, true
		}
	}
	if !ok {
		return Part{}, fmt.Errorf("no property %q on entity %s", name, entity.Name)
	}

	textual := prop.Kind == registry.KindString || prop.Kind == registry.KindAny
	if op.IsText() && !textual {
		return Part{}, fmt.Errorf("operator %s requires a string property, %s is %s", op, prop.Path, prop.Kind)
	}
	if (op == OpTrue || op == OpFalse) && prop.Kind != registry.KindBool && prop.Kind != registry.KindAny {
		return Part{}, fmt.Errorf("operator %s requires a bool property, %s is %s", op, prop.Path, prop.Kind)
	}
	if ignoreCase && !textual {
		return Part{}, fmt.Errorf("IgnoreCase requires a string property, %s is %s", prop.Path, prop.Kind)
	}
	if allIgnoreCase && textual {
		ignoreCase = true
	}
	return Part{Property: prop, Operator: op, IgnoreCase: ignoreCase}, nil
}

func assignParams(tree *PartTree, params []Param) error {
	next := 0
	if tree != nil {
		for gi := range tree.Groups {
			for pi := range tree.Groups[gi] {
				part := &tree.Groups[gi][pi]
				arity := part.Arity()
				if next+arity > len(params) {
					return fmt.Errorf("predicate needs more than the %d declared parameters at %s %s",
						len(params), part.Property.Path, part.Operator)
				}
				for k := 0; k < arity; k++ {
					if err := checkParam(*part, params[next]); err != nil {
						return err
					}
					part.Params = append(part.Params, next)
					next++
				}
			}
		}
	}
	if next != len(params) {
		return fmt.Errorf("method declares %d parameters but the predicate consumes %d", len(params), next)
	}
	return nil
}

func checkParam(part Part, p Param) error {
	op := part.Operator
	if op.IsSet() {
		if !p.Variadic && p.Kind != registry.KindList {
			return fmt.Errorf("operator %s on %s needs a variadic parameter, %s is %s", op, part.Property.Path, p.Name, p)
		}
		if !p.Variadic {
			return nil
		}
	} else if p.Variadic {
		return fmt.Errorf("parameter %s is variadic but %s %s expects a single value", p.Name, part.Property.Path, op)
	}

	if op == OpContaining && part.Property.Kind == registry.KindList {
		return nil
	}
	if op.IsText() || op == OpContaining {
		if p.Kind != registry.KindString && p.Kind != registry.KindAny {
			return fmt.Errorf("parameter %s is %s but %s %s expects a string", p.Name, p.Kind, part.Property.Path, op)
		}
		return nil
	}
	if !registry.Compatible(part.Property.Kind, p.Kind) {
		return fmt.Errorf("parameter %s is %s but property %s is %s", p.Name, p.Kind, part.Property.Path, part.Property.Kind)
	}
	return nil
}

func parseOrder(src string, entity registry.EntityInfo) ([]Order, error) {
	var orders []Order
	rest := src
	for rest != "" {
		cut, end, desc := -1, len(rest), false
	scan:
		for i := 1; i < len(rest); i++ {
			for _, dir := range []string{"Desc", "Asc"} {
				if !strings.HasPrefix(rest[i:], dir) {
					continue
				}
				e := i + len(dir)
				if e == len(rest) || isUpper(rest[e]) {
					cut, end, desc = i, e, dir == "Desc"
					break scan
				}
			}
		}

		name := rest
		if cut >= 0 {
			name = rest[:cut]
		}
		rest = rest[end:]

		prop, ok := entity.Property(name)
		if !ok {
			return nil, fmt.Errorf("no property %q on entity %s in OrderBy", name, entity.Name)
		}
		orders = append(orders, Order{Property: prop, Descending: desc})
	}
	return orders, nil
}

// splitKeyword splits s on sep where sep starts a new camel-case word,
// i.e. it is followed by an upper-case letter and preceded by text.
func splitKeyword(s, sep string) []string {
	var parts []string
	start := 0
	for i := 1; i+len(sep) < len(s); i++ {
		if i > start && strings.HasPrefix(s[i:], sep) && isUpper(s[i+len(sep)]) {
			parts = append(parts, s[start:i])
			start = i + len(sep)
			i = start
		}
	}
	return append(parts, s[start:])
}

func isUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}
