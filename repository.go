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

	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/query"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/result"
	"github.com/suparena/repoquery/storagemodels"
)

// Repository is the method table of one entity's repository. Methods are
// declared up front and looked up by name on each call.
type Repository[T any] struct {
	name   string
	entity registry.EntityInfo
	ops    *query.Operations
	cache  *method.Cache

	mu      sync.RWMutex
	queries map[string]*RepositoryQuery[T]
}

// NewRepository creates a repository for entity and declares sigs.
func NewRepository[T any](ops *query.Operations, name string, entity registry.EntityInfo, sigs ...method.Signature) (*Repository[T], error) {
	if ops == nil || ops.Conn == nil {
		return nil, errors.NewValidationError("conn", "a driver connection is required")
	}
	if name == "" {
		return nil, errors.NewValidationError("name", "repository name is required")
	}
	if err := entity.Validate(); err != nil {
		return nil, errors.NewValidationError("entity", err.Error())
	}
	r := &Repository[T]{
		name:    name,
		entity:  entity,
		ops:     ops,
		cache:   method.NewCache(),
		queries: make(map[string]*RepositoryQuery[T]),
	}
	if err := r.Declare(sigs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Name is the repository name used in method keys.
func (r *Repository[T]) Name() string {
	return r.name
}

// Entity is the repository's entity metadata.
func (r *Repository[T]) Entity() registry.EntityInfo {
	return r.entity
}

// Declare derives and compiles each signature. Nothing is declared if any
// signature fails.
func (r *Repository[T]) Declare(sigs ...method.Signature) error {
	compiled := make(map[string]*RepositoryQuery[T], len(sigs))
	for _, sig := range sigs {
		sig.Repository = r.name
		if _, dup := compiled[sig.Name]; dup {
			return errors.NewDerivationError(sig.Key().String(), "method declared twice")
		}
		d, err := r.cache.Derive(sig, r.entity, r.ops.NamedQueries)
		if err != nil {
			return err
		}
		q, err := NewRepositoryQuery[T](r.ops, d)
		if err != nil {
			return err
		}
		compiled[sig.Name] = q
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range compiled {
		if _, dup := r.queries[name]; dup {
			return errors.NewDerivationError(r.name+"."+name, "method declared twice")
		}
	}
	for name, q := range compiled {
		r.queries[name] = q
	}
	return nil
}

// DeclareFunc declares a method from a Go function type, e.g.
//
//	repo.DeclareFunc("countByIataIn", (func(context.Context, ...string) (int64, error))(nil), "iatas")
func (r *Repository[T]) DeclareFunc(name string, fn any, paramNames ...string) error {
	sig, err := method.SignatureOf(r.name, name, fn, paramNames...)
	if err != nil {
		return err
	}
	return r.Declare(sig)
}

// Method returns the declared method called name.
func (r *Repository[T]) Method(name string) (*RepositoryQuery[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[name]
	if !ok {
		return nil, errors.NewNotFoundError("method", r.name+"."+name)
	}
	return q, nil
}

// Methods lists the declared method names in sorted order.
func (r *Repository[T]) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.queries))
	for n := range r.queries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke executes the method called name.
func (r *Repository[T]) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	q, err := r.Method(name)
	if err != nil {
		return nil, err
	}
	return q.Execute(ctx, args...)
}

// Count invokes a count or delete method.
func (r *Repository[T]) Count(ctx context.Context, name string, args ...any) (int64, error) {
	return invokeAs[int64](ctx, r, name, args)
}

// Exists invokes an exists method.
func (r *Repository[T]) Exists(ctx context.Context, name string, args ...any) (bool, error) {
	return invokeAs[bool](ctx, r, name, args)
}

// FindOne invokes a single-result method. A nil result means nothing matched.
func (r *Repository[T]) FindOne(ctx context.Context, name string, args ...any) (*T, error) {
	return invokeAs[*T](ctx, r, name, args)
}

// FindAll invokes a collection method.
func (r *Repository[T]) FindAll(ctx context.Context, name string, args ...any) ([]T, error) {
	return invokeAs[[]T](ctx, r, name, args)
}

// Stream invokes a stream method. The caller must Close the stream.
func (r *Repository[T]) Stream(ctx context.Context, name string, args ...any) (*result.Stream[T], error) {
	return invokeAs[*result.Stream[T]](ctx, r, name, args)
}

func invokeAs[R, T any](ctx context.Context, r *Repository[T], name string, args []any) (R, error) {
	var zero R
	res, err := r.Invoke(ctx, name, args...)
	if err != nil {
		return zero, err
	}
	out, ok := res.(R)
	if !ok {
		if closer, isStream := res.(interface{ Close() error }); isStream {
			closer.Close()
		}
		return zero, errors.NewValidationError("result", fmt.Sprintf("%s.%s returns %T, not %T", r.name, name, res, zero))
	}
	return out, nil
}

func (r *Repository[T]) keyspace() storagemodels.Keyspace {
	return r.ops.Keyspace.WithCollection(r.entity.Collection)
}

func (r *Repository[T]) logger() *zap.Logger {
	if r.ops.Logger == nil {
		return zap.NewNop()
	}
	return r.ops.Logger
}

// Save stores entity under id, replacing any previous version.
func (r *Repository[T]) Save(ctx context.Context, id string, entity T) error {
	if id == "" {
		return errors.NewValidationError("id", "must not be empty")
	}
	if err := r.ops.Conn.Upsert(ctx, r.keyspace(), id, entity); err != nil {
		return fmt.Errorf("save %s %s: %w", r.entity.Name, id, err)
	}
	r.logger().Debug("entity saved", zap.String("entity", r.entity.Name), zap.String("id", id))
	return nil
}

// FindByID loads the entity stored under id, or nil if there is none.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.ops.Conn.Get(ctx, r.keyspace(), id, &entity); err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %s: %w", r.entity.Name, id, err)
	}
	return &entity, nil
}

// DeleteByID removes the entity stored under id. Removing a missing entity
// is not an error.
func (r *Repository[T]) DeleteByID(ctx context.Context, id string) error {
	if err := r.ops.Conn.Remove(ctx, r.keyspace(), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.entity.Name, id, err)
	}
	return nil
}
