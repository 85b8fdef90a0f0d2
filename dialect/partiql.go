/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// PartiQL targets DynamoDB's ExecuteStatement. It has no aggregates, no
// DISTINCT, no LIKE and no filtered DELETE: counts are tallied from an id
// projection and deletes select ids for key-wise removal.
type PartiQL struct{}

func (PartiQL) Name() string { return "partiql" }

func (PartiQL) Collection(ks storagemodels.Keyspace) string {
	return quoteIdent(ks.String())
}

func (PartiQL) Marker() string { return "?" }

func (PartiQL) List(n int) string {
	return "[" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + "]"
}

func (PartiQL) FilteredDelete() bool { return false }

// EmptySets is false: DynamoDB rejects an empty list on the right of IN.
func (PartiQL) EmptySets() bool { return false }

// Time binds the argument's text, which for time.Time is RFC3339Nano as
// attributevalue stores it.
func (PartiQL) Time(_ time.Time, text string) any { return text }

func (p PartiQL) Macro(name string, ks storagemodels.Keyspace, entity registry.EntityInfo) (string, bool) {
	switch name {
	case "collection":
		return p.Collection(ks), true
	case "selectEntity":
		return "SELECT * FROM " + p.Collection(ks), true
	case "id":
		return quoteIdent(entity.IDProperty), true
	}
	return "", false
}

func (p PartiQL) Render(d *method.Descriptor, ks storagemodels.Keyspace) (Rendered, error) {
	if d.Distinct() {
		return Rendered{}, unsupported(p, "Distinct")
	}
	if len(d.Orders()) > 0 {
		return Rendered{}, unsupported(p, "OrderBy")
	}
	cond, err := where(d.Tree(), p.cond)
	if err != nil {
		return Rendered{}, err
	}
	table := p.Collection(ks)

	switch d.Shape() {
	case method.ShapeCount, method.ShapeExists:
		id := quoteIdent(d.Entity().IDProperty)
		return Rendered{Template: fmt.Sprintf("SELECT %s FROM %s%s", id, table, cond), Tally: true}, nil
	case method.ShapeDeleteCount:
		id := quoteIdent(d.Entity().IDProperty)
		return Rendered{Template: fmt.Sprintf("SELECT %s FROM %s%s", id, table, cond)}, nil
	}
	return Rendered{Template: "SELECT * FROM " + table + cond}, nil
}

func (p PartiQL) cond(part method.Part) (string, error) {
	if part.IgnoreCase {
		return "", unsupported(p, "IgnoreCase")
	}
	prop := quoteIdent(part.Property.Path)
	arg := func(i int) string { return ref(part.Params[i]) }

	switch part.Operator {
	case method.OpEquals:
		return fmt.Sprintf("%s = %s", prop, arg(0)), nil
	case method.OpNot:
		return fmt.Sprintf("%s <> %s", prop, arg(0)), nil
	case method.OpLessThan:
		return fmt.Sprintf("%s < %s", prop, arg(0)), nil
	case method.OpLessThanEqual:
		return fmt.Sprintf("%s <= %s", prop, arg(0)), nil
	case method.OpGreaterThan:
		return fmt.Sprintf("%s > %s", prop, arg(0)), nil
	case method.OpGreaterThanEqual:
		return fmt.Sprintf("%s >= %s", prop, arg(0)), nil
	case method.OpBetween:
		return fmt.Sprintf("%s BETWEEN %s AND %s", prop, arg(0), arg(1)), nil
	case method.OpIn:
		return fmt.Sprintf("%s IN %s", prop, arg(0)), nil
	case method.OpNotIn:
		return fmt.Sprintf("NOT %s IN %s", prop, arg(0)), nil
	case method.OpStartingWith:
		return fmt.Sprintf("begins_with(%s, %s)", prop, arg(0)), nil
	case method.OpContaining:
		return fmt.Sprintf("contains(%s, %s)", prop, arg(0)), nil
	case method.OpIsNull:
		return fmt.Sprintf("(%s IS MISSING OR %s IS NULL)", prop, prop), nil
	case method.OpIsNotNull:
		return fmt.Sprintf("(%s IS NOT MISSING AND %s IS NOT NULL)", prop, prop), nil
	case method.OpTrue:
		return prop + " = true", nil
	case method.OpFalse:
		return prop + " = false", nil
	}
	return "", unsupported(p, part.Operator.String())
}
