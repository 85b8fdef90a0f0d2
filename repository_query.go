/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repoquery

import (
	"context"

	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/query"
)

// RepositoryQuery is one repository method bound to a connection. The plan
// is compiled when the query is built, so derivation errors surface at
// startup. It is safe for concurrent use.
type RepositoryQuery[T any] struct {
	descriptor *method.Descriptor
	executor   *query.Executor[T]
}

// NewRepositoryQuery compiles d against the connection in ops.
func NewRepositoryQuery[T any](ops *query.Operations, d *method.Descriptor) (*RepositoryQuery[T], error) {
	exec, err := query.NewExecutor[T](ops, d)
	if err != nil {
		return nil, err
	}
	return &RepositoryQuery[T]{descriptor: d, executor: exec}, nil
}

// Execute runs the method with args in declaration order. The result is
// int64, bool, *T, []T or *result.Stream[T] depending on the method's shape.
func (q *RepositoryQuery[T]) Execute(ctx context.Context, args ...any) (any, error) {
	return q.executor.Execute(ctx, args...)
}

// QueryMethod is the method's descriptor.
func (q *RepositoryQuery[T]) QueryMethod() *method.Descriptor {
	return q.descriptor
}

// Plan is the compiled statement plan.
func (q *RepositoryQuery[T]) Plan() *query.Plan {
	return q.executor.Plan()
}
