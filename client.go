/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package repoquery

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/suparena/repoquery/config"
	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/driver/ddb"
	"github.com/suparena/repoquery/driver/sqlitedoc"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/metrics"
	"github.com/suparena/repoquery/query"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

// Client owns a store connection and the repositories built on it.
// Repositories are registered by name; it is safe for concurrent use.
type Client struct {
	ops *query.Operations

	mu    sync.RWMutex
	repos map[string]any
}

// NewClient wraps an execution context. ops.Conn is required.
func NewClient(ops *query.Operations) (*Client, error) {
	if ops == nil || ops.Conn == nil {
		return nil, errors.NewValidationError("conn", "a driver connection is required")
	}
	return &Client{ops: ops, repos: make(map[string]any)}, nil
}

// Open connects to the store described by cfg and loads its named queries.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	named, err := cfg.NamedQueryRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load named queries: %w", err)
	}

	conn, err := connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("repoquery client opened",
		zap.String("driver", cfg.Driver),
		zap.String("keyspace", cfg.Keyspace.String()),
		zap.Int("namedQueries", named.Len()))

	return NewClient(&query.Operations{
		Conn:         conn,
		Keyspace:     cfg.Keyspace,
		Consistency:  cfg.ScanConsistency(),
		NamedQueries: named,
		Logger:       logger,
		Metrics:      metrics.New(""),
		StreamOptions: storagemodels.StreamOptions{
			BufferSize: cfg.Stream.BufferSize,
			PageSize:   cfg.Stream.PageSize,
		},
	})
}

func connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (driver.Conn, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlitedoc.Open(sqlitedoc.Config{DSN: cfg.ConnectionString, QueryLog: cfg.Log.Queries}, logger)
	case config.DriverDynamoDB:
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			Region:    cfg.Region,
			AccessKey: cfg.Username,
			SecretKey: cfg.Password,
			Endpoint:  cfg.ConnectionString,
		}, logger)
		if err != nil {
			return nil, err
		}
		return ddb.New(client,
			ddb.WithLogger(logger),
			ddb.WithRetries(cfg.Breaker.MaxRetries, cfg.Breaker.RetryBackoff),
			ddb.WithBreaker(cfg.Breaker.Failures, cfg.Breaker.Timeout),
		), nil
	}
	return nil, errors.NewValidationError("driver", fmt.Sprintf("unsupported driver %q", cfg.Driver))
}

// Operations is the shared execution context.
func (c *Client) Operations() *query.Operations {
	return c.ops
}

// Conn is the store connection.
func (c *Client) Conn() driver.Conn {
	return c.ops.Conn
}

// Register stores repo under name.
func (c *Client) Register(name string, repo any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.repos[name]; exists {
		return fmt.Errorf("repository %q already registered", name)
	}
	c.repos[name] = repo
	return nil
}

// Lookup returns the repository registered under name. The caller must
// type-assert it; see GetRepository.
func (c *Client) Lookup(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	repo, exists := c.repos[name]
	if !exists {
		return nil, errors.NewNotFoundError("repository", name)
	}
	return repo, nil
}

// Names lists the registered repository names in sorted order.
func (c *Client) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.repos))
	for n := range c.repos {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Close closes the store connection.
func (c *Client) Close() error {
	return c.ops.Conn.Close()
}

// Define builds the repository of entity type T stored in collection,
// declares sigs and registers it under name. Entity metadata registered
// with registry.RegisterEntity takes precedence over inference.
func Define[T any](c *Client, name, collection string, sigs ...method.Signature) (*Repository[T], error) {
	entity, ok := registry.GetEntity[T]()
	if !ok {
		var err error
		if entity, err = registry.Describe[T](collection); err != nil {
			return nil, err
		}
	}
	repo, err := NewRepository[T](c.ops, name, entity, sigs...)
	if err != nil {
		return nil, err
	}
	if err := c.Register(name, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

// GetRepository retrieves the repository of T registered under name.
func GetRepository[T any](c *Client, name string) (*Repository[T], error) {
	repo, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	typed, ok := repo.(*Repository[T])
	if !ok {
		return nil, fmt.Errorf("repository %q holds %T, not %T", name, repo, typed)
	}
	return typed, nil
}
