/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/metrics"
	"github.com/suparena/repoquery/result"
	"github.com/suparena/repoquery/storagemodels"
)

// Executor runs one compiled repository method against the store and
// adapts the rows to the method's result shape:
//
//	ShapeCount, ShapeDeleteCount  int64
//	ShapeExists                   bool
//	ShapeOptional                 *T, nil when nothing matched
//	ShapeCollection               []T, never nil
//	ShapeStream                   *result.Stream[T]
type Executor[T any] struct {
	ops  *Operations
	plan *Plan
	log  *zap.Logger
}

// NewExecutor compiles d for the connection's dialect.
func NewExecutor[T any](ops *Operations, d *method.Descriptor) (*Executor[T], error) {
	if ops == nil || ops.Conn == nil {
		return nil, errors.NewValidationError("conn", "a driver connection is required")
	}
	ks := ops.Keyspace.WithCollection(d.Entity().Collection)
	plan, err := Compile(d, ops.NamedQueries, ops.Conn.Dialect(), ks)
	if err != nil {
		return nil, err
	}

	log := ops.logger().With(
		zap.String("method", d.Key().String()),
		zap.String("strategy", plan.Strategy.String()),
	)
	log.Debug("compiled repository query", zap.String("shape", d.Shape().String()), zap.String("template", plan.Text()))
	return &Executor[T]{ops: ops, plan: plan, log: log}, nil
}

// Plan is the compiled plan.
func (e *Executor[T]) Plan() *Plan {
	return e.plan
}

// Statement binds args into a submit-ready statement without executing it.
func (e *Executor[T]) Statement(args ...any) (storagemodels.Statement, error) {
	stmt, _, err := e.bind(args)
	return stmt, err
}

// bind builds the statement for args. skip is set when an empty set makes
// the derived predicate unsatisfiable, so the statement need not be sent.
func (e *Executor[T]) bind(args []any) (stmt storagemodels.Statement, skip bool, err error) {
	d := e.plan.Descriptor
	values, err := bindArgs(d, args)
	if err != nil {
		return storagemodels.Statement{}, false, err
	}
	if e.plan.Strategy == StrategyDerived {
		if skip, err = emptySets(d, values, e.plan.Dialect); err != nil {
			return storagemodels.Statement{}, false, err
		}
	}
	text, bound := e.plan.template.render(e.plan.Dialect, values)

	consistency := d.Consistency()
	if consistency == "" {
		consistency = e.ops.consistency()
	}
	stmt = storagemodels.Statement{
		Text:            text,
		Args:            bound,
		Keyspace:        e.plan.Keyspace,
		Consistency:     consistency,
		ClientContextID: uuid.NewString(),
		ReadOnly:        d.Shape() != method.ShapeDeleteCount || !e.plan.Dialect.FilteredDelete(),
		PageSize:        e.ops.StreamOptions.PageSize,
	}
	return stmt, skip, nil
}

// Execute binds args, submits the statement and adapts the result.
// Binding failures are reported before anything is submitted.
func (e *Executor[T]) Execute(ctx context.Context, args ...any) (res any, err error) {
	d := e.plan.Descriptor
	strategy, shape := e.plan.Strategy.String(), d.Shape().String()
	started := time.Now()

	ctx, span := e.ops.tracer().Start(ctx, "repoquery.execute", trace.WithAttributes(
		attribute.String("repoquery.method", d.Key().String()),
		attribute.String("repoquery.strategy", strategy),
		attribute.String("repoquery.shape", shape),
	))
	streaming := false
	defer func() {
		e.ops.Metrics.ObserveQuery(strategy, shape, statusOf(err), started)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.log.Debug("repository query failed", zap.Error(err))
		}
		if !streaming {
			span.End()
		}
	}()

	stmt, skip, err := e.bind(args)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("db.statement", stmt.Text),
		attribute.String("repoquery.client_context_id", stmt.ClientContextID),
	)
	e.log.Debug("executing repository query",
		zap.String("statement", stmt.Text),
		zap.Int("args", len(stmt.Args)),
		zap.String("consistency", string(stmt.Consistency)),
		zap.String("client_context_id", stmt.ClientContextID),
	)

	if skip {
		e.log.Debug("empty set matches nothing, statement not submitted")
		if d.Shape() == method.ShapeStream {
			streaming = true
			return result.New[T](driver.NoRows(), result.WithOnClose(func(int64, error) { span.End() })), nil
		}
		return e.empty(), nil
	}

	switch d.Shape() {
	case method.ShapeCount:
		n, err := e.count(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return n, nil
	case method.ShapeExists:
		n, err := e.count(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return n > 0, nil
	case method.ShapeDeleteCount:
		n, err := e.delete(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return n, nil
	case method.ShapeOptional:
		item, err := e.one(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return item, nil
	case method.ShapeCollection:
		items, err := e.all(ctx, stmt)
		if err != nil {
			return nil, err
		}
		return items, nil
	case method.ShapeStream:
		s, err := e.stream(ctx, stmt, span)
		if err != nil {
			return nil, err
		}
		streaming = true
		return s, nil
	}
	return nil, fmt.Errorf("unhandled result shape %s", d.Shape())
}

// empty is the result of a query that matches nothing.
func (e *Executor[T]) empty() any {
	switch e.plan.Descriptor.Shape() {
	case method.ShapeCount, method.ShapeDeleteCount:
		return int64(0)
	case method.ShapeExists:
		return false
	case method.ShapeOptional:
		return (*T)(nil)
	}
	return make([]T, 0)
}

func (e *Executor[T]) query(ctx context.Context, stmt storagemodels.Statement) (driver.Rows, error) {
	rows, err := e.ops.Conn.Query(ctx, stmt)
	if err != nil {
		return nil, e.mapErr(err, stmt)
	}
	return rows, nil
}

// finish reports the error that ended iteration, if any.
func (e *Executor[T]) finish(ctx context.Context, rows driver.Rows, stmt storagemodels.Statement) error {
	if err := rows.Err(); err != nil {
		return e.mapErr(err, stmt)
	}
	return ctx.Err()
}

// countField names the aggregate column of count statements.
const countField = "count"

// count returns the value of a single-row result whose only field is a
// numeric count, or else the number of rows.
func (e *Executor[T]) count(ctx context.Context, stmt storagemodels.Statement) (int64, error) {
	rows, err := e.query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var seen int64
	var aggregate int64
	hasAggregate := false
	for rows.Next(ctx) {
		if seen == 0 && !e.plan.Tally {
			var row map[string]any
			if err := rows.Decode(&row); err != nil {
				return 0, e.mapErr(err, stmt)
			}
			aggregate, hasAggregate = scalarOf(row)
		}
		seen++
	}
	if err := e.finish(ctx, rows, stmt); err != nil {
		return 0, err
	}
	if seen == 1 && hasAggregate {
		return aggregate, nil
	}
	return seen, nil
}

// delete removes the matching documents. Dialects without filtered DELETE
// select the ids first and remove documents one by one.
func (e *Executor[T]) delete(ctx context.Context, stmt storagemodels.Statement) (int64, error) {
	if e.plan.Dialect.FilteredDelete() {
		n, err := e.ops.Conn.Exec(ctx, stmt)
		if err != nil {
			return 0, e.mapErr(err, stmt)
		}
		return n, nil
	}

	rows, err := e.query(ctx, stmt)
	if err != nil {
		return 0, err
	}
	idProp := e.plan.Descriptor.Entity().IDProperty
	var ids []string
	for rows.Next(ctx) {
		var row map[string]any
		if err := rows.Decode(&row); err != nil {
			rows.Close()
			return 0, e.mapErr(err, stmt)
		}
		id, ok := row[idProp]
		if !ok {
			rows.Close()
			return 0, e.mapErr(fmt.Errorf("row has no %q attribute", idProp), stmt)
		}
		ids = append(ids, fmt.Sprint(id))
	}
	err = e.finish(ctx, rows, stmt)
	rows.Close()
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, id := range ids {
		if err := e.ops.Conn.Remove(ctx, e.plan.Keyspace, id); err != nil {
			return removed, e.mapErr(err, stmt)
		}
		removed++
	}
	return removed, nil
}

// one returns the first row. A second row makes the result ambiguous: the
// first row still wins and a warning is raised, but the rest is not read.
func (e *Executor[T]) one(ctx context.Context, stmt storagemodels.Statement) (*T, error) {
	rows, err := e.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next(ctx) {
		return nil, e.finish(ctx, rows, stmt)
	}
	var item T
	if err := rows.Decode(&item); err != nil {
		return nil, e.mapErr(err, stmt)
	}
	e.ops.Metrics.Rows(method.ShapeOptional.String(), 1)

	if rows.Next(ctx) {
		e.warn(ctx, &errors.AmbiguousResultWarning{Method: e.plan.Descriptor.Key().String(), Discarded: 1})
	}
	return &item, nil
}

func (e *Executor[T]) all(ctx context.Context, stmt storagemodels.Statement) ([]T, error) {
	rows, err := e.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	limit := e.plan.Descriptor.Limit()
	items := make([]T, 0)
	for (limit == 0 || len(items) < limit) && rows.Next(ctx) {
		var item T
		if err := rows.Decode(&item); err != nil {
			return nil, e.mapErr(err, stmt)
		}
		items = append(items, item)
	}
	if err := e.finish(ctx, rows, stmt); err != nil {
		return nil, err
	}
	e.ops.Metrics.Rows(method.ShapeCollection.String(), int64(len(items)))
	return items, nil
}

func (e *Executor[T]) stream(ctx context.Context, stmt storagemodels.Statement, span trace.Span) (*result.Stream[T], error) {
	rows, err := e.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	e.ops.Metrics.CursorOpened()

	return result.New[T](rows,
		result.WithLimit(e.plan.Descriptor.Limit()),
		result.WithErrorMapper(func(err error) error { return e.mapErr(err, stmt) }),
		result.WithOnClose(func(delivered int64, err error) {
			e.ops.Metrics.CursorClosed()
			e.ops.Metrics.Rows(method.ShapeStream.String(), delivered)
			span.SetAttributes(attribute.Int64("repoquery.rows", delivered))
			if err != nil {
				span.RecordError(err)
			}
			span.End()
			e.log.Debug("stream closed", zap.Int64("delivered", delivered), zap.Error(err))
		}),
	), nil
}

func (e *Executor[T]) warn(ctx context.Context, w *errors.AmbiguousResultWarning) {
	e.log.Warn("single-result query matched more than one document", zap.Int("discarded", w.Discarded))
	e.ops.Metrics.Ambiguous(w.Method)
	trace.SpanFromContext(ctx).AddEvent("ambiguous_result")
	if e.ops.WarningHook != nil {
		e.ops.WarningHook(ctx, w)
	}
}

// mapErr classifies a driver failure. Statements the store refuses to parse
// are derivation errors detected lazily; everything else is an execution
// error. Cancellation passes through unchanged.
func (e *Executor[T]) mapErr(err error, stmt storagemodels.Statement) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.IsDerivationError(err) || errors.IsExecutionError(err) {
		return err
	}
	name := e.plan.Descriptor.Key().String()
	if errors.Is(err, errors.ErrStatementRejected) {
		return &errors.QueryDerivationError{Method: name, Reason: "statement rejected by the store", Lazy: true, Cause: err}
	}
	return &errors.QueryExecutionError{
		Method:       name,
		Statement:    stmt.Text,
		IndexMissing: errors.Is(err, errors.ErrIndexMissing),
		Cause:        err,
	}
}

// scalarOf reads an aggregate row: a single field named count.
func scalarOf(row map[string]any) (int64, bool) {
	if len(row) != 1 {
		return 0, false
	}
	switch n := row[countField].(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCancelled
	case errors.IsDerivationError(err):
		return metrics.StatusDerivationError
	case errors.IsBindingError(err):
		return metrics.StatusBindingError
	}
	return metrics.StatusExecutionError
}
