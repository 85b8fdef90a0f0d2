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

// Dialect renders descriptors into statement templates for one store.
//
// Templates reference method parameters as {N} (1-based position) or
// {name}; the binder replaces each reference with Marker() or, for variadic
// parameters, List(n). Macros of the form {#name} are expanded by Macro.
type Dialect interface {
	Name() string
	// Collection is the quoted reference to the keyspace's table.
	Collection(ks storagemodels.Keyspace) string
	// Marker is the positional parameter marker.
	Marker() string
	// List renders n markers as a set literal for IN.
	List(n int) string
	// EmptySets reports whether List(0) is a valid set literal.
	EmptySets() bool
	// Time is the bound form of a temporal argument; text is the
	// argument's own textual form.
	Time(t time.Time, text string) any
	// Macro expands a {#name} template macro.
	Macro(name string, ks storagemodels.Keyspace, entity registry.EntityInfo) (string, bool)
	// FilteredDelete reports whether DELETE accepts an arbitrary WHERE clause.
	// Without it a delete template selects the ids of the doomed documents.
	FilteredDelete() bool
	// Render builds the template for a derived or match-all descriptor.
	Render(d *method.Descriptor, ks storagemodels.Keyspace) (Rendered, error)
}

// Rendered is a statement template produced from a descriptor.
type Rendered struct {
	Template string
	// Tally is set when a count must be computed by counting result rows
	// because the dialect has no aggregate.
	Tally bool
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "partiql", "dynamodb", "ddb":
		return PartiQL{}, nil
	case "sqlite", "sqlite3":
		return SQLite{}, nil
	}
	return nil, fmt.Errorf("unknown dialect %q", name)
}

// ref renders the template reference of a parameter index.
func ref(i int) string {
	return fmt.Sprintf("{%d}", i+1)
}

// quoteIdent double-quotes an identifier, doubling embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

type condFunc func(part method.Part) (string, error)

// where renders the predicate tree; And binds tighter than Or.
func where(tree *method.PartTree, cond condFunc) (string, error) {
	if tree == nil {
		return "", nil
	}
	groups := make([]string, 0, len(tree.Groups))
	for _, g := range tree.Groups {
		parts := make([]string, 0, len(g))
		for _, p := range g {
			c, err := cond(p)
			if err != nil {
				return "", err
			}
			parts = append(parts, c)
		}
		s := strings.Join(parts, " AND ")
		if len(tree.Groups) > 1 && len(parts) > 1 {
			s = "(" + s + ")"
		}
		groups = append(groups, s)
	}
	return " WHERE " + strings.Join(groups, " OR "), nil
}

func unsupported(d Dialect, what string) error {
	return fmt.Errorf("%s is not supported by the %s dialect", what, d.Name())
}
