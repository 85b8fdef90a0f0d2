/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package result

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/storagemodels"
)

// Stream is a lazy, cancellable sequence of decoded rows. Rows are fetched
// from the driver only as the consumer advances. The underlying cursor is
// released when the rows are exhausted, when an error occurs, when the
// context passed to Next is done, or on Close, whichever comes first.
// A Stream is not safe for concurrent use.
type Stream[T any] struct {
	rows      driver.Rows
	limit     int
	mapErr    func(error) error
	onClose   func(delivered int64, err error)
	item      T
	delivered int64
	err       error
	closed    bool
	closeOnce sync.Once
}

// Option configures a Stream.
type Option func(*config)

type config struct {
	limit   int
	mapErr  func(error) error
	onClose func(int64, error)
}

// WithLimit stops the stream after n items. Zero means unlimited.
func WithLimit(n int) Option {
	return func(c *config) {
		c.limit = n
	}
}

// WithErrorMapper translates driver errors before they are reported.
// Context cancellation is never mapped.
func WithErrorMapper(f func(error) error) Option {
	return func(c *config) {
		c.mapErr = f
	}
}

// WithOnClose registers a callback run exactly once when the cursor is
// released, with the number of delivered items and the terminal error.
func WithOnClose(f func(delivered int64, err error)) Option {
	return func(c *config) {
		c.onClose = f
	}
}

// New wraps an open cursor. The stream owns rows from here on.
func New[T any](rows driver.Rows, opts ...Option) *Stream[T] {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return &Stream[T]{rows: rows, limit: c.limit, mapErr: c.mapErr, onClose: c.onClose}
}

// Next advances to the next item. It returns false when the stream is
// exhausted, failed, was closed or ctx is done; check Err afterwards.
func (s *Stream[T]) Next(ctx context.Context) bool {
	if s.closed {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.fail(err)
		return false
	}
	if s.limit > 0 && s.delivered >= int64(s.limit) {
		s.release()
		return false
	}
	if !s.rows.Next(ctx) {
		if err := s.rows.Err(); err != nil {
			s.fail(err)
		} else if err := ctx.Err(); err != nil {
			s.fail(err)
		} else {
			s.release()
		}
		return false
	}

	var item T
	if err := s.rows.Decode(&item); err != nil {
		s.fail(err)
		return false
	}
	s.item = item
	s.delivered++
	return true
}

// Item is the current item. It is valid after Next returned true.
func (s *Stream[T]) Item() T {
	return s.item
}

// Err is the terminal error, nil after normal exhaustion or Close.
func (s *Stream[T]) Err() error {
	return s.err
}

// Delivered is the number of items returned so far.
func (s *Stream[T]) Delivered() int64 {
	return s.delivered
}

// Close abandons the stream and releases the cursor. Close is idempotent.
func (s *Stream[T]) Close() error {
	s.release()
	return nil
}

func (s *Stream[T]) fail(err error) {
	if err != context.Canceled && err != context.DeadlineExceeded && s.mapErr != nil {
		err = s.mapErr(err)
	}
	s.err = err
	s.release()
}

func (s *Stream[T]) release() {
	s.closeOnce.Do(func() {
		s.closed = true
		s.rows.Close()
		if s.onClose != nil {
			s.onClose(s.delivered, s.err)
		}
	})
}

// All returns an iterator over the remaining items. Breaking out of the
// loop closes the stream; a terminal error is yielded as the last pair.
//
//	for a, err := range stream.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for s.Next(ctx) {
			if !yield(s.item, nil) {
				return
			}
		}
		if s.err != nil {
			var zero T
			yield(zero, s.err)
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream[T]) Collect(ctx context.Context) ([]T, error) {
	defer s.Close()
	var items []T
	for s.Next(ctx) {
		items = append(items, s.item)
	}
	return items, s.err
}

// Chan delivers the stream over a buffered channel from a background
// goroutine. The channel is closed when the stream ends; a terminal error
// is sent as the last result. Cancelling ctx stops the goroutine and
// releases the cursor.
func (s *Stream[T]) Chan(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go s.chanWorker(ctx, options, resultCh)
	return resultCh
}

func (s *Stream[T]) chanWorker(ctx context.Context, options storagemodels.StreamOptions, resultCh chan<- storagemodels.StreamResult[T]) {
	defer close(resultCh)
	defer s.Close()

	startTime := time.Now()
	reportProgress := func(done bool) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: s.delivered,
			StartTime:      startTime,
			Done:           done,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	pageSize := int64(options.PageSize)
	for s.Next(ctx) {
		r := storagemodels.StreamResult[T]{
			Item: s.item,
			Meta: storagemodels.StreamMeta{Index: s.delivered - 1, Timestamp: time.Now()},
		}
		select {
		case <-ctx.Done():
			return
		case resultCh <- r:
		}
		if pageSize > 0 && s.delivered%pageSize == 0 {
			reportProgress(false)
		}
	}

	if s.err != nil && ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case resultCh <- storagemodels.StreamResult[T]{
			Error: s.err,
			Meta:  storagemodels.StreamMeta{Index: s.delivered, Timestamp: time.Now()},
		}:
		}
	}
	reportProgress(true)
}
