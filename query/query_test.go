/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/driver/mock"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/metrics"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/result"
	"github.com/suparena/repoquery/storagemodels"
	"github.com/suparena/repoquery/testmodels"
)

const repo = "AirportRepository"

var baseKeyspace = storagemodels.Keyspace{Bucket: "travel", Scope: "inventory", Collection: "_default"}

func airportInfo(t *testing.T) registry.EntityInfo {
	t.Helper()
	info, err := registry.Describe[testmodels.Airport]("airports")
	require.NoError(t, err)
	return info
}

func describe(t *testing.T, sig method.Signature, named *namedquery.Registry) *method.Descriptor {
	t.Helper()
	sig.Repository = repo
	d, err := method.Derive(sig, airportInfo(t), named)
	require.NoError(t, err)
	return d
}

func newOps(conn *mock.Conn) *Operations {
	return &Operations{Conn: conn, Keyspace: baseKeyspace, Metrics: metrics.New("test")}
}

func executor(t *testing.T, ops *Operations, sig method.Signature) *Executor[testmodels.Airport] {
	t.Helper()
	e, err := NewExecutor[testmodels.Airport](ops, describe(t, sig, ops.NamedQueries))
	require.NoError(t, err)
	return e
}

var (
	countByIataIn = method.Signature{
		Name:   "countByIataIn",
		Params: []method.Param{{Name: "iatas", Kind: registry.KindString, Variadic: true}},
	}
	countByIcaoAndIataIn = method.Signature{
		Name: "countByIcaoAndIataIn",
		Params: []method.Param{
			{Name: "icao", Kind: registry.KindString},
			{Name: "iatas", Kind: registry.KindString, Variadic: true},
		},
	}
	findByIata = method.Signature{
		Name:    "findByIata",
		Params:  []method.Param{{Name: "iata", Kind: registry.KindString}},
		Returns: method.ReturnEntity,
	}
)

func TestStrategyPrecedence(t *testing.T) {
	sig := method.Signature{
		Name:   "findByCity",
		Params: []method.Param{{Name: "city", Kind: registry.KindString}},
		Query:  "SELECT doc FROM {#collection} WHERE json_extract(doc, '$.name') = {city}",
	}

	t.Run("NamedOverridesAnnotated", func(t *testing.T) {
		named, err := namedquery.New(map[string]string{
			"AirportRepository.findByCity": "SELECT doc FROM {#collection} WHERE json_extract(doc, '$.country') = {1}",
		})
		require.NoError(t, err)
		conn := mock.New(dialect.SQLite{})
		ops := newOps(conn)
		ops.NamedQueries = named

		e := executor(t, ops, sig)
		assert.Equal(t, StrategyNamedOverride, e.Plan().Strategy)

		_, err = e.Execute(context.Background(), "France")
		require.NoError(t, err)
		stmt, _ := conn.LastStatement()
		assert.Equal(t, `SELECT doc FROM "travel.inventory.airports" WHERE json_extract(doc, '$.country') = ?`, stmt.Text)
		assert.Equal(t, []any{"France"}, stmt.Args)
	})

	t.Run("AnnotatedOverridesDerived", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{})
		e := executor(t, newOps(conn), sig)
		assert.Equal(t, StrategyAnnotatedLiteral, e.Plan().Strategy)

		_, err := e.Execute(context.Background(), "Orly")
		require.NoError(t, err)
		stmt, _ := conn.LastStatement()
		assert.Contains(t, stmt.Text, "'$.name') = ?")
	})

	t.Run("Derived", func(t *testing.T) {
		sig := sig
		sig.Query = ""
		e := executor(t, newOps(mock.New(dialect.SQLite{})), sig)
		assert.Equal(t, StrategyDerived, e.Plan().Strategy)
		assert.Equal(t, `SELECT doc FROM "travel.inventory.airports" WHERE json_extract(doc, '$.city') = {1}`, e.Plan().Text())
	})

	t.Run("MatchAll", func(t *testing.T) {
		e := executor(t, newOps(mock.New(dialect.SQLite{})), method.Signature{Name: "count"})
		assert.Equal(t, StrategyMatchAll, e.Plan().Strategy)
	})
}

func TestTemplateErrors(t *testing.T) {
	cases := map[string]string{
		"UnknownMacro":    "SELECT doc FROM {#bucket} WHERE x = {1}",
		"OutOfRange":      "SELECT doc FROM {#collection} WHERE x = {2}",
		"UnknownName":     "SELECT doc FROM {#collection} WHERE x = {code}",
		"Unreferenced":    "SELECT doc FROM {#collection}",
		"ZeroPlaceholder": "SELECT doc FROM {#collection} WHERE x = {0}",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			d := describe(t, method.Signature{
				Name:    "findSome",
				Params:  []method.Param{{Name: "iata", Kind: registry.KindString}},
				Returns: method.ReturnSlice,
				Query:   text,
			}, nil)
			_, err := NewExecutor[testmodels.Airport](newOps(mock.New(dialect.SQLite{})), d)
			require.Error(t, err)
			assert.True(t, errors.IsDerivationError(err), "got %v", err)
		})
	}

	t.Run("JSONLiteralKept", func(t *testing.T) {
		d := describe(t, method.Signature{
			Name:    "findSome",
			Params:  []method.Param{{Name: "iata", Kind: registry.KindString}},
			Returns: method.ReturnSlice,
			Query:   `SELECT doc FROM {#collection} WHERE doc = json('{"iata": "x"}') OR json_extract(doc, '$.iata') = {iata}`,
		}, nil)
		e, err := NewExecutor[testmodels.Airport](newOps(mock.New(dialect.SQLite{})), d)
		require.NoError(t, err)
		stmt, err := e.Statement("JFK")
		require.NoError(t, err)
		assert.Contains(t, stmt.Text, `json('{"iata": "x"}')`)
		assert.Equal(t, []any{"JFK"}, stmt.Args)
	})

	t.Run("PartiQLCannotExpress", func(t *testing.T) {
		d := describe(t, method.Signature{Name: "findByNameLike", Params: []method.Param{{Kind: registry.KindString}}}, nil)
		_, err := NewExecutor[testmodels.Airport](newOps(mock.New(dialect.PartiQL{})), d)
		assert.True(t, errors.IsDerivationError(err))
	})
}

func TestBinding(t *testing.T) {
	conn := mock.New(dialect.SQLite{}).WithRows(map[string]any{"count": 3})
	ops := newOps(conn)
	e := executor(t, ops, countByIcaoAndIataIn)

	t.Run("VariadicValues", func(t *testing.T) {
		stmt, err := e.Statement("KJFK", "JFK", "IAD", "SFO")
		require.NoError(t, err)
		assert.Equal(t, `SELECT json_object('count', COUNT(*)) FROM "travel.inventory.airports" WHERE json_extract(doc, '$.icao') = ? AND json_extract(doc, '$.iata') IN (?, ?, ?)`, stmt.Text)
		assert.Equal(t, []any{"KJFK", "JFK", "IAD", "SFO"}, stmt.Args)
	})

	t.Run("SliceValue", func(t *testing.T) {
		stmt, err := e.Statement("KJFK", []string{"JFK", "IAD"})
		require.NoError(t, err)
		assert.Equal(t, []any{"KJFK", "JFK", "IAD"}, stmt.Args)
	})

	t.Run("EmptySet", func(t *testing.T) {
		stmt, err := e.Statement("KJFK")
		require.NoError(t, err)
		assert.Contains(t, stmt.Text, "IN ()")
	})

	t.Run("Failures", func(t *testing.T) {
		before := len(conn.Statements())
		for name, args := range map[string][]any{
			"TooFew":       {},
			"NilScalar":    {nil, "JFK"},
			"NilElement":   {"KJFK", "JFK", nil},
			"KindMismatch": {42, "JFK"},
			"ElementKind":  {"KJFK", []int{1, 2}},
		} {
			_, err := e.Execute(context.Background(), args...)
			require.Error(t, err, name)
			assert.True(t, errors.IsBindingError(err), "%s: got %v", name, err)
		}
		assert.Len(t, conn.Statements(), before, "binding failures must not submit anything")
		assert.Equal(t, 5.0, testutil.ToFloat64(ops.Metrics.QueriesTotal.WithLabelValues("derived", "count", metrics.StatusBindingError)))
	})

	t.Run("TimePerDialect", func(t *testing.T) {
		d := describe(t, method.Signature{
			Name:   "findByUpdatedAtAfter",
			Params: []method.Param{{Name: "since", Kind: registry.KindTime}},
		}, nil)
		ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		sqlite, err := NewExecutor[testmodels.Airport](newOps(mock.New(dialect.SQLite{})), d)
		require.NoError(t, err)
		stmt, err := sqlite.Statement(ts)
		require.NoError(t, err)
		assert.Contains(t, stmt.Text, "julianday(json_extract(doc, '$.updatedAt')) > ?")
		assert.Equal(t, dialect.SQLite{}.Time(ts, ""), stmt.Args[0])

		stmt, err = sqlite.Statement(strfmt.DateTime(ts))
		require.NoError(t, err)
		assert.Equal(t, dialect.SQLite{}.Time(ts, ""), stmt.Args[0], "equal instants bind equally")

		partiql, err := NewExecutor[testmodels.Airport](newOps(mock.New(dialect.PartiQL{})), d)
		require.NoError(t, err)
		stmt, err = partiql.Statement(ts)
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01T12:00:00Z", stmt.Args[0])

		stmt, err = partiql.Statement(strfmt.DateTime(ts))
		require.NoError(t, err)
		assert.Equal(t, strfmt.DateTime(ts).String(), stmt.Args[0])
	})

	t.Run("StatementMetadata", func(t *testing.T) {
		s1, err := e.Statement("KJFK", "JFK")
		require.NoError(t, err)
		s2, err := e.Statement("KJFK", "JFK")
		require.NoError(t, err)
		assert.NotEmpty(t, s1.ClientContextID)
		assert.NotEqual(t, s1.ClientContextID, s2.ClientContextID)
		assert.Equal(t, storagemodels.NotBounded, s1.Consistency)
		assert.True(t, s1.ReadOnly)
		assert.Equal(t, "airports", s1.Keyspace.Collection)
	})
}

func TestConsistency(t *testing.T) {
	ops := newOps(mock.New(dialect.SQLite{}))
	ops.Consistency = storagemodels.RequestPlus
	e := executor(t, ops, method.Signature{Name: "count"})
	stmt, err := e.Statement()
	require.NoError(t, err)
	assert.Equal(t, storagemodels.RequestPlus, stmt.Consistency)

	e = executor(t, ops, method.Signature{Name: "findAll", Consistency: storagemodels.NotBounded})
	stmt, err = e.Statement()
	require.NoError(t, err)
	assert.Equal(t, storagemodels.NotBounded, stmt.Consistency)
}

func TestCountAdapters(t *testing.T) {
	ctx := context.Background()

	t.Run("Aggregate", func(t *testing.T) {
		e := executor(t, newOps(mock.New(dialect.SQLite{}).WithRows(map[string]any{"count": 7})), method.Signature{Name: "count"})
		n, err := e.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	})

	t.Run("TallyPartiQL", func(t *testing.T) {
		conn := mock.New(dialect.PartiQL{}).WithRows(map[string]any{"id": "1"}, map[string]any{"id": "2"}, map[string]any{"id": "3"})
		e := executor(t, newOps(conn), countByIataIn)
		assert.True(t, e.Plan().Tally)

		n, err := e.Execute(ctx, "JFK", "IAD", "SFO")
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		stmt, _ := conn.LastStatement()
		assert.Equal(t, `SELECT "id" FROM "travel.inventory.airports" WHERE "iata" IN [?, ?, ?]`, stmt.Text)
		assert.Equal(t, int64(0), conn.OpenCursors())
	})

	t.Run("TallyNoRows", func(t *testing.T) {
		e := executor(t, newOps(mock.New(dialect.PartiQL{})), countByIataIn)
		n, err := e.Execute(ctx, "XXX")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("Exists", func(t *testing.T) {
		sig := method.Signature{Name: "existsByIata", Params: []method.Param{{Name: "iata", Kind: registry.KindString}}}
		e := executor(t, newOps(mock.New(dialect.SQLite{}).WithRows(map[string]any{"count": 2})), sig)
		ok, err := e.Execute(ctx, "JFK")
		require.NoError(t, err)
		assert.Equal(t, true, ok)

		e = executor(t, newOps(mock.New(dialect.SQLite{}).WithRows(map[string]any{"count": 0})), sig)
		ok, err = e.Execute(ctx, "JFK")
		require.NoError(t, err)
		assert.Equal(t, false, ok)
	})
}

func TestOptionalAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("Absent", func(t *testing.T) {
		e := executor(t, newOps(mock.New(dialect.SQLite{})), findByIata)
		got, err := e.Execute(ctx, "XXX")
		require.NoError(t, err)
		assert.Nil(t, got.(*testmodels.Airport))
	})

	t.Run("AmbiguousFirstWins", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		conn := mock.New(dialect.SQLite{}).WithRows(
			testmodels.Airport{ID: "a1", Iata: "JFK", Name: "First"},
			testmodels.Airport{ID: "a2", Iata: "JFK", Name: "Second"},
			testmodels.Airport{ID: "a3", Iata: "JFK", Name: "Third"},
		)
		ops := newOps(conn)
		ops.Logger = zap.New(core)
		var warnings []*errors.AmbiguousResultWarning
		ops.WarningHook = func(_ context.Context, w *errors.AmbiguousResultWarning) { warnings = append(warnings, w) }

		e := executor(t, ops, findByIata)
		got, err := e.Execute(ctx, "JFK")
		require.NoError(t, err)
		assert.Equal(t, "First", got.(*testmodels.Airport).Name)

		require.Len(t, warnings, 1)
		assert.True(t, errors.Is(warnings[0], errors.ErrAmbiguousResult))
		assert.Equal(t, 1, logs.Len())
		assert.Equal(t, 1.0, testutil.ToFloat64(ops.Metrics.AmbiguousResults.WithLabelValues(e.Plan().Descriptor.Key().String())))
		assert.Equal(t, int64(0), conn.OpenCursors())
	})
}

func TestCollectionAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyIsNotNil", func(t *testing.T) {
		e := executor(t, newOps(mock.New(dialect.SQLite{})), method.Signature{Name: "findAll"})
		got, err := e.Execute(ctx)
		require.NoError(t, err)
		items := got.([]testmodels.Airport)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("FirstN", func(t *testing.T) {
		rows := make([]any, 10)
		for i := range rows {
			rows[i] = testmodels.Airport{ID: fmt.Sprint(i)}
		}
		conn := mock.New(dialect.PartiQL{}).WithRows(rows...)
		e := executor(t, newOps(conn), method.Signature{Name: "findTop3ByCountry", Params: []method.Param{{Kind: registry.KindString}}})
		got, err := e.Execute(ctx, "France")
		require.NoError(t, err)
		assert.Len(t, got.([]testmodels.Airport), 3)
		assert.Equal(t, int64(0), conn.OpenCursors())
	})
}

func TestStreamAdapter(t *testing.T) {
	rows := make([]any, 500)
	for i := range rows {
		rows[i] = testmodels.Airport{ID: fmt.Sprint(i), Iata: "JFK"}
	}
	conn := mock.New(dialect.SQLite{}).WithRows(rows...)
	sr := tracetest.NewSpanRecorder()
	ops := newOps(conn)
	ops.Tracer = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)).Tracer("test")

	e := executor(t, ops, method.Signature{Name: "streamByIata", Params: []method.Param{{Kind: registry.KindString}}})
	got, err := e.Execute(context.Background(), "JFK")
	require.NoError(t, err)
	stream := got.(*result.Stream[testmodels.Airport])
	assert.Equal(t, 1.0, testutil.ToFloat64(ops.Metrics.OpenCursors))
	assert.Empty(t, sr.Ended(), "the span stays open while the stream is live")

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		require.True(t, stream.Next(ctx))
	}
	cancel()
	assert.False(t, stream.Next(ctx))
	assert.ErrorIs(t, stream.Err(), context.Canceled)

	assert.Equal(t, int64(0), conn.OpenCursors())
	assert.Equal(t, 0.0, testutil.ToFloat64(ops.Metrics.OpenCursors))
	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, "repoquery.execute", sr.Ended()[0].Name())

	// The connection is still usable after an abandoned stream.
	conn.WithRows(map[string]any{"count": 500})
	count := executor(t, ops, method.Signature{Name: "count"})
	n, err := count.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), n)
}

func TestDeleteAdapters(t *testing.T) {
	ctx := context.Background()
	deleteByIata := method.Signature{Name: "deleteByIata", Params: []method.Param{{Name: "iata", Kind: registry.KindString}}}

	t.Run("FilteredDelete", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithExecFunc(func(context.Context, storagemodels.Statement) (int64, error) { return 2, nil })
		e := executor(t, newOps(conn), deleteByIata)
		n, err := e.Execute(ctx, "JFK")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		stmt, _ := conn.LastStatement()
		assert.Equal(t, `DELETE FROM "travel.inventory.airports" WHERE json_extract(doc, '$.iata') = ?`, stmt.Text)
		assert.False(t, stmt.ReadOnly)
	})

	t.Run("SelectThenRemove", func(t *testing.T) {
		conn := mock.New(dialect.PartiQL{}).WithRows(map[string]any{"id": "a1"}, map[string]any{"id": "a2"})
		ks := baseKeyspace.WithCollection("airports")
		for _, id := range []string{"a1", "a2", "a3"} {
			require.NoError(t, conn.Upsert(ctx, ks, id, testmodels.Airport{ID: id}))
		}

		e := executor(t, newOps(conn), deleteByIata)
		n, err := e.Execute(ctx, "JFK")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, 1, conn.Count(ks))
	})
}

func TestErrorClassification(t *testing.T) {
	ctx := context.Background()
	sig := method.Signature{Name: "findAll"}

	t.Run("Rejected", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithQueryError(fmt.Errorf("%w: near \"SELEC\": syntax error", errors.ErrStatementRejected))
		_, err := executor(t, newOps(conn), sig).Execute(ctx)
		var derr *errors.QueryDerivationError
		require.True(t, errors.As(err, &derr), "got %v", err)
		assert.True(t, derr.Lazy)
	})

	t.Run("IndexMissing", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithQueryError(fmt.Errorf("%w: no such table", errors.ErrIndexMissing))
		_, err := executor(t, newOps(conn), sig).Execute(ctx)
		assert.True(t, errors.IsExecutionError(err))
		assert.True(t, errors.IsIndexMissing(err))
	})

	t.Run("Transport", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithQueryError(fmt.Errorf("connection reset"))
		ops := newOps(conn)
		_, err := executor(t, ops, sig).Execute(ctx)
		assert.True(t, errors.IsExecutionError(err))
		assert.False(t, errors.IsIndexMissing(err))
		assert.Len(t, conn.Statements(), 1, "execution errors are not retried")
		assert.Equal(t, 1.0, testutil.ToFloat64(ops.Metrics.QueriesTotal.WithLabelValues("match_all", "collection", metrics.StatusExecutionError)))
	})

	t.Run("MissingConn", func(t *testing.T) {
		_, err := NewExecutor[testmodels.Airport](&Operations{}, describe(t, sig, nil))
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestEmptySets(t *testing.T) {
	ctx := context.Background()

	t.Run("InMatchesNothingWithoutSubmitting", func(t *testing.T) {
		conn := mock.New(dialect.PartiQL{}).WithRows(map[string]any{"id": "1"})
		e := executor(t, newOps(conn), countByIcaoAndIataIn)

		n, err := e.Execute(ctx, "KJFK")
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		n, err = e.Execute(ctx, "KJFK", []string{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.Empty(t, conn.Statements())
	})

	t.Run("EveryShape", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{})
		ops := newOps(conn)
		set := []method.Param{{Name: "iatas", Kind: registry.KindString, Variadic: true}}

		got, err := executor(t, ops, method.Signature{Name: "existsByIataIn", Params: set}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, false, got)

		got, err = executor(t, ops, method.Signature{Name: "deleteByIataIn", Params: set}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)

		got, err = executor(t, ops, method.Signature{Name: "findByIataIn", Params: set, Returns: method.ReturnEntity}).Execute(ctx)
		require.NoError(t, err)
		assert.Nil(t, got.(*testmodels.Airport))

		got, err = executor(t, ops, method.Signature{Name: "findByIataIn", Params: set, Returns: method.ReturnSlice}).Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, []testmodels.Airport{}, got)

		got, err = executor(t, ops, method.Signature{Name: "streamByIataIn", Params: set}).Execute(ctx)
		require.NoError(t, err)
		stream := got.(*result.Stream[testmodels.Airport])
		assert.False(t, stream.Next(ctx))
		assert.NoError(t, stream.Err())
		assert.NoError(t, stream.Close())

		assert.Empty(t, conn.Statements())
		assert.Equal(t, int64(0), conn.OpenCursors())
	})

	t.Run("SatisfiableNotInOnPartiQL", func(t *testing.T) {
		conn := mock.New(dialect.PartiQL{})
		e := executor(t, newOps(conn), method.Signature{
			Name:   "countByIataNotIn",
			Params: []method.Param{{Name: "iatas", Kind: registry.KindString, Variadic: true}},
		})
		_, err := e.Execute(ctx)
		require.Error(t, err)
		assert.True(t, errors.IsBindingError(err), "got %v", err)
		assert.Empty(t, conn.Statements())
	})

	t.Run("SatisfiableNotInOnSQLite", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithRows(map[string]any{"count": 7})
		e := executor(t, newOps(conn), method.Signature{
			Name:   "countByIataNotIn",
			Params: []method.Param{{Name: "iatas", Kind: registry.KindString, Variadic: true}},
		})
		n, err := e.Execute(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
		stmt, _ := conn.LastStatement()
		assert.Contains(t, stmt.Text, "NOT IN ()")
	})
}

func TestCountReadsOnlyCountAggregates(t *testing.T) {
	named, err := namedquery.New(map[string]string{
		"AirportRepository.countByIata": "SELECT json_extract(doc, '$.runways') AS runways FROM {#collection} WHERE json_extract(doc, '$.iata') = {1}",
	})
	require.NoError(t, err)
	ops := newOps(mock.New(dialect.SQLite{}).WithRows(map[string]any{"runways": 4}))
	ops.NamedQueries = named

	e := executor(t, ops, method.Signature{Name: "countByIata", Params: []method.Param{{Name: "iata", Kind: registry.KindString}}})
	n, err := e.Execute(context.Background(), "JFK")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a projected number is a row, not a count")
}
