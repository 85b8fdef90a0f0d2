/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package driver

import (
	"context"
	"errors"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/storagemodels"
)

// Conn is a connection to a document store.
type Conn interface {
	// Dialect is the statement language the store accepts.
	Dialect() dialect.Dialect

	// Query submits a statement and returns a cursor over its rows.
	// The caller must Close the cursor.
	Query(ctx context.Context, stmt storagemodels.Statement) (Rows, error)

	// Exec submits a statement that returns no rows and reports the number
	// of affected documents.
	Exec(ctx context.Context, stmt storagemodels.Statement) (int64, error)

	// Get decodes the document with the given id into dest, or returns a
	// NotFoundError.
	Get(ctx context.Context, ks storagemodels.Keyspace, id string, dest any) error

	// Upsert stores doc under id, replacing any previous version.
	Upsert(ctx context.Context, ks storagemodels.Keyspace, id string, doc any) error

	// Remove deletes the document with the given id. Removing a missing
	// document is not an error.
	Remove(ctx context.Context, ks storagemodels.Keyspace, id string) error

	Close() error
}

// Rows is a forward-only cursor. Further pages are fetched lazily by Next.
type Rows interface {
	// Next advances to the next row. It returns false when the rows are
	// exhausted, the context is done or an error occurred; see Err.
	Next(ctx context.Context) bool

	// Decode unmarshals the current row into dest.
	Decode(dest any) error

	Err() error

	// Close releases the cursor. It is safe to call more than once.
	Close() error
}

// NoRows returns an exhausted cursor.
func NoRows() Rows {
	return noRows{}
}

type noRows struct{}

func (noRows) Next(context.Context) bool { return false }

func (noRows) Decode(any) error { return errors.New("no current row") }

func (noRows) Err() error { return nil }

func (noRows) Close() error { return nil }
