/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/metrics"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/storagemodels"
)

const tracerName = "github.com/suparena/repoquery/query"

// WarningHook receives non-fatal execution warnings.
type WarningHook func(ctx context.Context, w *errors.AmbiguousResultWarning)

// Operations is the shared execution context of all repository queries:
// the store connection, the keyspace entity collections live in, and the
// ambient logging, metrics and tracing. Only Conn is required.
type Operations struct {
	Conn driver.Conn
	// Keyspace supplies bucket and scope; the collection comes from the entity.
	Keyspace storagemodels.Keyspace
	// Consistency is the default for methods that do not declare one.
	Consistency  storagemodels.ScanConsistency
	NamedQueries *namedquery.Registry
	Logger       *zap.Logger
	Metrics      *metrics.Collector
	Tracer       trace.Tracer
	WarningHook  WarningHook
	// StreamOptions.PageSize is passed to drivers as the fetch size.
	StreamOptions storagemodels.StreamOptions
}

func (o *Operations) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Operations) tracer() trace.Tracer {
	if o.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return o.Tracer
}

func (o *Operations) consistency() storagemodels.ScanConsistency {
	if o.Consistency == "" {
		return storagemodels.NotBounded
	}
	return o.Consistency
}
