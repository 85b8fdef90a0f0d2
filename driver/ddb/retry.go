/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/errors"
)

// call runs fn through the circuit breaker, retrying throttling and
// internal server errors with linear backoff.
func call[O any](ctx context.Context, c *Conn, op string, fn func(context.Context) (*O, error)) (*O, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return withRetry(ctx, c, op, fn)
	})
	if err != nil {
		return nil, classify(err)
	}
	return out.(*O), nil
}

func withRetry[O any](ctx context.Context, c *Conn, op string, fn func(context.Context) (*O, error)) (*O, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < c.opts.MaxRetries {
			backoff := time.Duration(attempt+1) * c.opts.RetryBackoff
			c.logger.Debug("retrying dynamodb call",
				zap.String("op", op),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("%s failed after %d retries: %w", op, c.opts.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

// breakerSuccess keeps client mistakes and cancellations from tripping the
// breaker; only store-side failures count.
func breakerSuccess(err error) bool {
	return err == nil || !isRetryableError(err)
}

// classify maps DynamoDB API errors onto the driver sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", errors.ErrIndexMissing, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ResourceNotFoundException":
			return fmt.Errorf("%w: %v", errors.ErrIndexMissing, err)
		case "ValidationException":
			return fmt.Errorf("%w: %v", errors.ErrStatementRejected, err)
		}
	}
	return err
}

func newBreaker(name string, opts Options, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    opts.BreakerInterval,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: breakerSuccess,
	})
}
