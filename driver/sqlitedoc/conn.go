/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlitedoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/storagemodels"
)

// Config describes the SQLite database backing the store.
type Config struct {
	// DSN is a file path or URI; ":memory:" keeps everything in process.
	DSN string
	// QueryLog dumps every statement through bundebug.
	QueryLog bool
}

// Conn implements driver.Conn on SQLite. Each keyspace is a table of
// (id, doc) rows holding JSON documents.
//
// Writes go through a single connection. File databases run in WAL mode
// and read through a separate pool, so an open cursor never blocks other
// calls. In-memory databases live in one connection, which every call
// shares.
type Conn struct {
	db      *bun.DB
	reader  *bun.DB
	logger  *zap.Logger
	mu      sync.Mutex
	created map[string]bool
}

var _ driver.Conn = (*Conn)(nil)

// Open opens the database.
func Open(cfg Config, logger *zap.Logger) (*Conn, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DSN == "" {
		return nil, &errors.ValidationError{Field: "DSN", Message: "must not be empty"}
	}

	db, err := openDB(cfg, logger, 1)
	if err != nil {
		return nil, err
	}
	c := &Conn{db: db, reader: db, logger: logger, created: make(map[string]bool)}
	if isMemory(cfg.DSN) {
		logger.Info("sqlite document store opened", zap.String("dsn", cfg.DSN), zap.Bool("memory", true))
		return c, nil
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if c.reader, err = openDB(cfg, logger, 0); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("sqlite document store opened", zap.String("dsn", cfg.DSN), zap.Bool("memory", false))
	return c, nil
}

// openDB opens a bun handle on the DSN; maxConns 0 leaves the pool unbounded.
func openDB(cfg Config, logger *zap.Logger, maxConns int) (*bun.DB, error) {
	sqlDB, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.AddQueryHook(&queryLogHook{logger: logger})
	if cfg.QueryLog {
		db.AddQueryHook(bundebug.NewQueryHook(
			bundebug.WithVerbose(true),
			bundebug.FromEnv("BUNDEBUG"),
		))
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (c *Conn) Dialect() dialect.Dialect {
	return dialect.SQLite{}
}

// table is the keyspace's table as the dialect quotes it, so document
// operations and rendered statements address the same table.
func table(ks storagemodels.Keyspace) bun.Safe {
	return bun.Safe(dialect.SQLite{}.Collection(ks))
}

// EnsureCollection creates the table for ks if it does not exist yet.
func (c *Conn) EnsureCollection(ctx context.Context, ks storagemodels.Keyspace) error {
	name := ks.String()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.created[name] {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		"CREATE TABLE IF NOT EXISTS ? (id TEXT PRIMARY KEY, doc TEXT NOT NULL)", table(ks))
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	c.created[name] = true
	return nil
}

func (c *Conn) Query(ctx context.Context, stmt storagemodels.Statement) (driver.Rows, error) {
	rs, err := c.reader.QueryContext(ctx, stmt.Text, stmt.Args...)
	if err != nil {
		return nil, classify(err)
	}
	cols, err := rs.Columns()
	if err != nil {
		rs.Close()
		return nil, classify(err)
	}
	return &rows{rows: rs, cols: cols}, nil
}

func (c *Conn) Exec(ctx context.Context, stmt storagemodels.Statement) (int64, error) {
	res, err := c.db.ExecContext(ctx, stmt.Text, stmt.Args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

func (c *Conn) Get(ctx context.Context, ks storagemodels.Keyspace, id string, dest any) error {
	var doc string
	err := c.reader.QueryRowContext(ctx, "SELECT doc FROM ? WHERE id = ?", table(ks), id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) || (err != nil && isMissingTable(err)) {
		return errors.NewNotFoundError(ks.String(), id)
	}
	if err != nil {
		return classify(err)
	}
	return json.Unmarshal([]byte(doc), dest)
}

// Upsert stores doc as JSON, creating the collection on first write.
func (c *Conn) Upsert(ctx context.Context, ks storagemodels.Keyspace, id string, doc any) error {
	if err := c.EnsureCollection(ctx, ks); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT INTO ? (id, doc) VALUES (?, json_set(?, '$.id', ?)) ON CONFLICT (id) DO UPDATE SET doc = excluded.doc",
		table(ks), id, string(data), id)
	return classify(err)
}

func (c *Conn) Remove(ctx context.Context, ks storagemodels.Keyspace, id string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM ? WHERE id = ?", table(ks), id)
	if err != nil && isMissingTable(err) {
		return nil
	}
	return classify(err)
}

func (c *Conn) Close() error {
	if c.reader != c.db {
		if err := c.reader.Close(); err != nil {
			c.db.Close()
			return err
		}
	}
	return c.db.Close()
}

// DB exposes the bun handle used for writes.
func (c *Conn) DB() *bun.DB {
	return c.db
}

func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}

// classify maps SQLite error messages onto the driver sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case isMissingTable(err):
		return fmt.Errorf("%w: %v", errors.ErrIndexMissing, err)
	case strings.Contains(msg, "syntax error"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "no such function"),
		strings.Contains(msg, "malformed JSON"):
		return fmt.Errorf("%w: %v", errors.ErrStatementRejected, err)
	}
	return err
}
