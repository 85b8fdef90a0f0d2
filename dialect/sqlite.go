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

// SQLite targets documents stored as JSON text in a (id, doc) table, one
// table per keyspace. Every statement yields a single JSON column.
type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Collection(ks storagemodels.Keyspace) string {
	return quoteIdent(ks.String())
}

func (SQLite) Marker() string { return "?" }

func (s SQLite) List(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

func (SQLite) FilteredDelete() bool { return true }

func (SQLite) EmptySets() bool { return true }

// unixEpochJDMillis is the Unix epoch as a Julian day in milliseconds.
const unixEpochJDMillis = 210866760000000

// Time binds a temporal argument as the Julian day julianday() returns for
// the same instant. SQLite resolves times to whole milliseconds, so equal
// instants compare equal whatever their stored text looks like.
func (SQLite) Time(t time.Time, _ string) any {
	return float64(t.Round(time.Millisecond).UnixMilli()+unixEpochJDMillis) / 86400000.0
}

func (s SQLite) Macro(name string, ks storagemodels.Keyspace, entity registry.EntityInfo) (string, bool) {
	switch name {
	case "collection":
		return s.Collection(ks), true
	case "selectEntity":
		return "SELECT doc FROM " + s.Collection(ks), true
	case "id":
		return s.property(entity.IDProperty), true
	}
	return "", false
}

func (SQLite) property(path string) string {
	return fmt.Sprintf("json_extract(doc, '$.%s')", strings.ReplaceAll(path, "'", "''"))
}

// value is the comparable form of a property; times compare as Julian days.
func (s SQLite) value(p registry.Property) string {
	if p.Kind == registry.KindTime {
		return "julianday(" + s.property(p.Path) + ")"
	}
	return s.property(p.Path)
}

func (s SQLite) Render(d *method.Descriptor, ks storagemodels.Keyspace) (Rendered, error) {
	cond, err := where(d.Tree(), s.cond)
	if err != nil {
		return Rendered{}, err
	}
	table := s.Collection(ks)

	switch d.Shape() {
	case method.ShapeCount, method.ShapeExists:
		count := "COUNT(*)"
		if d.Distinct() {
			count = "COUNT(DISTINCT doc)"
		}
		return Rendered{Template: fmt.Sprintf("SELECT json_object('count', %s) FROM %s%s", count, table, cond)}, nil
	case method.ShapeDeleteCount:
		return Rendered{Template: "DELETE FROM " + table + cond}, nil
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if d.Distinct() {
		b.WriteString("DISTINCT ")
	}
	b.WriteString("doc FROM ")
	b.WriteString(table)
	b.WriteString(cond)
	if orders := d.Orders(); len(orders) > 0 {
		keys := make([]string, len(orders))
		for i, o := range orders {
			keys[i] = s.value(o.Property)
			if o.Descending {
				keys[i] += " DESC"
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(keys, ", "))
	}
	if d.Limit() > 0 {
		fmt.Fprintf(&b, " LIMIT %d", d.Limit())
	}
	return Rendered{Template: b.String()}, nil
}

func (s SQLite) cond(p method.Part) (string, error) {
	prop := s.value(p.Property)
	arg := func(i int) string { return ref(p.Params[i]) }
	if p.IgnoreCase {
		switch p.Operator {
		case method.OpEquals:
			return fmt.Sprintf("LOWER(%s) = LOWER(%s)", prop, arg(0)), nil
		case method.OpNot:
			return fmt.Sprintf("LOWER(%s) <> LOWER(%s)", prop, arg(0)), nil
		case method.OpLike, method.OpNotLike, method.OpStartingWith, method.OpEndingWith, method.OpContaining:
			// LIKE is already case-insensitive for ASCII.
		default:
			return "", unsupported(s, "IgnoreCase with "+p.Operator.String())
		}
	}

	switch p.Operator {
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
		return fmt.Sprintf("%s NOT IN %s", prop, arg(0)), nil
	case method.OpLike:
		return fmt.Sprintf("%s LIKE %s", prop, arg(0)), nil
	case method.OpNotLike:
		return fmt.Sprintf("%s NOT LIKE %s", prop, arg(0)), nil
	case method.OpStartingWith:
		return fmt.Sprintf("%s LIKE %s || '%%'", prop, arg(0)), nil
	case method.OpEndingWith:
		return fmt.Sprintf("%s LIKE '%%' || %s", prop, arg(0)), nil
	case method.OpContaining:
		if p.Property.Kind == registry.KindList {
			return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(doc, '$.%s') WHERE value = %s)", p.Property.Path, arg(0)), nil
		}
		return fmt.Sprintf("%s LIKE '%%' || %s || '%%'", prop, arg(0)), nil
	case method.OpIsNull:
		return s.property(p.Property.Path) + " IS NULL", nil
	case method.OpIsNotNull:
		return s.property(p.Property.Path) + " IS NOT NULL", nil
	case method.OpTrue:
		return prop + " = 1", nil
	case method.OpFalse:
		return prop + " = 0", nil
	}
	return "", unsupported(s, p.Operator.String())
}
