/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/storagemodels"
)

// Strategy is how a method's statement text is obtained.
type Strategy int

const (
	// StrategyNamedOverride uses a query registered under the method's name.
	StrategyNamedOverride Strategy = iota
	// StrategyAnnotatedLiteral uses the literal declared on the method.
	StrategyAnnotatedLiteral
	// StrategyDerived renders the predicate parsed from the method name.
	StrategyDerived
	// StrategyMatchAll renders an unfiltered statement over the collection.
	StrategyMatchAll
)

func (s Strategy) String() string {
	switch s {
	case StrategyNamedOverride:
		return "named"
	case StrategyAnnotatedLiteral:
		return "annotated"
	case StrategyDerived:
		return "derived"
	}
	return "match_all"
}

// Plan is a compiled method: its strategy and the statement template with
// macros expanded and parameter references resolved.
type Plan struct {
	Descriptor *method.Descriptor
	Strategy   Strategy
	Keyspace   storagemodels.Keyspace
	Dialect    dialect.Dialect
	// Source is the template before macro expansion.
	Source string
	// Tally counts rows instead of reading an aggregate.
	Tally bool

	template *template
}

// Text is the template with every parameter reference shown as {N}.
func (p *Plan) Text() string {
	return p.template.String()
}

// Compile selects the strategy for d and prepares its template. The
// precedence is named override, then annotated literal, then derived
// predicate, then match-all. Template problems and predicates the dialect
// cannot express are QueryDerivationErrors.
func Compile(d *method.Descriptor, named *namedquery.Registry, dia dialect.Dialect, ks storagemodels.Keyspace) (*Plan, error) {
	p := &Plan{Descriptor: d, Keyspace: ks, Dialect: dia}

	if text, ok := named.Lookup(d.Key(), d.Entity().Name); ok {
		p.Strategy, p.Source = StrategyNamedOverride, text
	} else if d.Query() != "" {
		p.Strategy, p.Source = StrategyAnnotatedLiteral, d.Query()
	} else {
		p.Strategy = StrategyMatchAll
		if d.Tree() != nil {
			p.Strategy = StrategyDerived
		}
		rendered, err := dia.Render(d, ks)
		if err != nil {
			return nil, errors.NewDerivationError(d.Key().String(), "%v", err)
		}
		p.Source, p.Tally = rendered.Template, rendered.Tally
	}

	tmpl, err := parseTemplate(p.Source, d, dia, ks)
	if err != nil {
		return nil, errors.NewDerivationError(d.Key().String(), "%s query: %v", p.Strategy, err)
	}
	p.template = tmpl
	return p, nil
}
