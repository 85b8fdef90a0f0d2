/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/driver/mock"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/storagemodels"
)

type TestEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var ks = storagemodels.Keyspace{Bucket: "test", Collection: "entities"}

func TestMockConn(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{})

		if err := conn.Upsert(ctx, ks, "123", TestEntity{ID: "123", Name: "Test"}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		var got TestEntity
		if err := conn.Get(ctx, ks, "123", &got); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Test" {
			t.Fatalf("Retrieved entity mismatch: %+v", got)
		}

		if err := conn.Remove(ctx, ks, "123"); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if err := conn.Get(ctx, ks, "123", &got); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		upsertErr := errors.NewValidationError("name", "required")
		conn := mock.New(dialect.SQLite{}).WithUpsertError(upsertErr)
		if err := conn.Upsert(ctx, ks, "1", TestEntity{}); err != upsertErr {
			t.Fatalf("Expected upsert error, got: %v", err)
		}

		queryErr := fmt.Errorf("boom")
		conn.WithQueryError(queryErr)
		if _, err := conn.Query(ctx, storagemodels.Statement{Text: "SELECT 1"}); err != queryErr {
			t.Fatalf("Expected query error, got: %v", err)
		}
		if len(conn.Statements()) != 1 {
			t.Fatalf("Failed statements must still be recorded")
		}
	})

	t.Run("ScriptedRows", func(t *testing.T) {
		conn := mock.New(dialect.PartiQL{}).WithRows(
			map[string]any{"id": "1", "name": "One"},
			TestEntity{ID: "2", Name: "Two"},
		)

		rows, err := conn.Query(ctx, storagemodels.Statement{Text: `SELECT * FROM "entities"`, Args: []any{"x"}})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if conn.OpenCursors() != 1 {
			t.Fatalf("Expected 1 open cursor, got %d", conn.OpenCursors())
		}

		var names []string
		for rows.Next(ctx) {
			var e TestEntity
			if err := rows.Decode(&e); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			names = append(names, e.Name)
		}
		if rows.Err() != nil {
			t.Fatalf("Rows error: %v", rows.Err())
		}
		if len(names) != 2 || names[0] != "One" || names[1] != "Two" {
			t.Fatalf("Unexpected rows: %v", names)
		}

		rows.Close()
		rows.Close()
		if conn.OpenCursors() != 0 {
			t.Fatalf("Expected cursors released, got %d", conn.OpenCursors())
		}

		last, ok := conn.LastStatement()
		if !ok || last.Args[0] != "x" {
			t.Fatalf("Statement not captured: %+v", last)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		conn := mock.New(dialect.SQLite{}).WithRows(1, 2, 3)
		cctx, cancel := context.WithCancel(ctx)

		rows, err := conn.Query(cctx, storagemodels.Statement{})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		defer rows.Close()

		if !rows.Next(cctx) {
			t.Fatalf("Expected a first row")
		}
		cancel()
		if rows.Next(cctx) {
			t.Fatalf("Next must stop after cancellation")
		}
		if rows.Err() != context.Canceled {
			t.Fatalf("Expected context.Canceled, got %v", rows.Err())
		}
	})
}
