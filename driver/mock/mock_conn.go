/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides a capturing implementation of driver.Conn for testing
package mock

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/storagemodels"
)

// Conn is a mock driver.Conn. It records every submitted statement and
// answers queries with scripted rows; documents written through Upsert are
// kept in memory per keyspace.
type Conn struct {
	mu          sync.RWMutex
	dialect     dialect.Dialect
	statements  []storagemodels.Statement
	docs        map[string]map[string]json.RawMessage
	queryFunc   func(ctx context.Context, stmt storagemodels.Statement) ([]any, error)
	execFunc    func(ctx context.Context, stmt storagemodels.Statement) (int64, error)
	upsertError error
	removeError error
	open        atomic.Int64
	opened      atomic.Int64
}

var _ driver.Conn = (*Conn)(nil)

// New creates a mock connection speaking the given dialect.
func New(d dialect.Dialect) *Conn {
	return &Conn{
		dialect: d,
		docs:    make(map[string]map[string]json.RawMessage),
	}
}

// WithRows makes every query return the given rows.
func (m *Conn) WithRows(rows ...any) *Conn {
	return m.WithQueryFunc(func(context.Context, storagemodels.Statement) ([]any, error) {
		return rows, nil
	})
}

// WithQueryFunc sets a custom query function for testing
func (m *Conn) WithQueryFunc(f func(ctx context.Context, stmt storagemodels.Statement) ([]any, error)) *Conn {
	m.queryFunc = f
	return m
}

// WithQueryError makes Query return err
func (m *Conn) WithQueryError(err error) *Conn {
	return m.WithQueryFunc(func(context.Context, storagemodels.Statement) ([]any, error) {
		return nil, err
	})
}

// WithExecFunc sets a custom exec function for testing
func (m *Conn) WithExecFunc(f func(ctx context.Context, stmt storagemodels.Statement) (int64, error)) *Conn {
	m.execFunc = f
	return m
}

// WithUpsertError makes Upsert operations return an error
func (m *Conn) WithUpsertError(err error) *Conn {
	m.upsertError = err
	return m
}

// WithRemoveError makes Remove operations return an error
func (m *Conn) WithRemoveError(err error) *Conn {
	m.removeError = err
	return m
}

func (m *Conn) Dialect() dialect.Dialect {
	return m.dialect
}

func (m *Conn) record(stmt storagemodels.Statement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = append(m.statements, stmt)
}

// Query records stmt and returns the scripted rows.
func (m *Conn) Query(ctx context.Context, stmt storagemodels.Statement) (driver.Rows, error) {
	m.record(stmt)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []any
	if m.queryFunc != nil {
		var err error
		if rows, err = m.queryFunc(ctx, stmt); err != nil {
			return nil, err
		}
	}
	m.open.Add(1)
	m.opened.Add(1)
	return &Rows{conn: m, rows: rows, pos: -1}, nil
}

// Exec records stmt. Without an exec function it reports zero affected documents.
func (m *Conn) Exec(ctx context.Context, stmt storagemodels.Statement) (int64, error) {
	m.record(stmt)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.execFunc != nil {
		return m.execFunc(ctx, stmt)
	}
	return 0, nil
}

// Get decodes a stored document into dest
func (m *Conn) Get(ctx context.Context, ks storagemodels.Keyspace, id string, dest any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.docs[ks.String()][id]
	if !ok {
		return errors.NewNotFoundError(ks.String(), id)
	}
	return json.Unmarshal(raw, dest)
}

// Upsert stores a document
func (m *Conn) Upsert(ctx context.Context, ks storagemodels.Keyspace, id string, doc any) error {
	if m.upsertError != nil {
		return m.upsertError
	}
	if id == "" {
		return errors.NewValidationError("id", "document id is required")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.docs[ks.String()]
	if !ok {
		coll = make(map[string]json.RawMessage)
		m.docs[ks.String()] = coll
	}
	coll[id] = raw
	return nil
}

// Remove deletes a document by id
func (m *Conn) Remove(ctx context.Context, ks storagemodels.Keyspace, id string) error {
	if m.removeError != nil {
		return m.removeError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[ks.String()], id)
	return nil
}

func (m *Conn) Close() error {
	return nil
}

// Helper methods for testing

// Statements returns a copy of the submitted statements in order
func (m *Conn) Statements() []storagemodels.Statement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]storagemodels.Statement(nil), m.statements...)
}

// LastStatement returns the most recent statement, if any
func (m *Conn) LastStatement() (storagemodels.Statement, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.statements) == 0 {
		return storagemodels.Statement{}, false
	}
	return m.statements[len(m.statements)-1], true
}

// Count returns the number of documents stored in a keyspace
func (m *Conn) Count(ks storagemodels.Keyspace) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[ks.String()])
}

// OpenCursors is the number of cursors returned by Query and not yet closed
func (m *Conn) OpenCursors() int64 {
	return m.open.Load()
}

// OpenedCursors is the total number of cursors returned by Query
func (m *Conn) OpenedCursors() int64 {
	return m.opened.Load()
}

// Reset clears recorded statements and stored documents
func (m *Conn) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statements = nil
	m.docs = make(map[string]map[string]json.RawMessage)
}

// Rows iterates scripted rows. Rows are decoded through a JSON round trip.
type Rows struct {
	conn   *Conn
	rows   []any
	pos    int
	err    error
	closed bool
	mu     sync.Mutex
}

func (r *Rows) Next(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	if r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Decode(dest any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos < 0 || r.pos >= len(r.rows) {
		return errors.NewValidationError("rows", "no current row")
	}
	if err, ok := r.rows[r.pos].(error); ok {
		return err
	}
	raw, err := json.Marshal(r.rows[r.pos])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (r *Rows) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

func (r *Rows) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.closed = true
		r.conn.open.Add(-1)
	}
	return nil
}
