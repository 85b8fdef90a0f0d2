/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"strings"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/query"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// Report is the outcome of deriving and compiling one method.
type Report struct {
	Signature  method.Signature
	Descriptor *method.Descriptor
	Plan       *query.Plan
	Err        error
}

// Analyze derives and compiles every method of def against the dialect.
// The entity is registered as a declared entity, so two definitions that
// describe the same entity differently conflict. Per-method failures are
// recorded in the reports; the returned error is reserved for a broken
// definition.
func Analyze(def *Definition, dia dialect.Dialect, ks storagemodels.Keyspace, named *namedquery.Registry) ([]Report, error) {
	entity, err := def.EntityInfo()
	if err != nil {
		return nil, err
	}
	if err := registry.RegisterDeclared(entity); err != nil {
		return nil, err
	}
	sigs, err := def.Signatures()
	if err != nil {
		return nil, err
	}

	cache := method.NewCache()
	reports := make([]Report, 0, len(sigs))
	for _, sig := range sigs {
		r := Report{Signature: sig}
		r.Descriptor, r.Err = cache.Derive(sig, entity, named)
		if r.Err == nil {
			r.Plan, r.Err = query.Compile(r.Descriptor, named, dia, ks.WithCollection(entity.Collection))
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// Validate analyzes def and fails with every method error.
func Validate(def *Definition, dia dialect.Dialect, ks storagemodels.Keyspace, named *namedquery.Registry) error {
	reports, err := Analyze(def, dia, ks, named)
	if err != nil {
		return err
	}
	var failures []string
	for _, r := range reports {
		if r.Err != nil {
			failures = append(failures, r.Err.Error())
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d methods failed:\n  %s", len(failures), len(reports), strings.Join(failures, "\n  "))
	}
	return nil
}
