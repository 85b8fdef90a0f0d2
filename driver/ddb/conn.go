/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/driver"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/storagemodels"
)

// Options tunes retries and the circuit breaker.
type Options struct {
	// IDAttribute is the partition key attribute, "id" by default.
	IDAttribute  string
	MaxRetries   int
	RetryBackoff time.Duration
	// BreakerFailures is the number of consecutive store failures that
	// opens the breaker.
	BreakerFailures uint32
	BreakerInterval time.Duration
	BreakerTimeout  time.Duration
	Logger          *zap.Logger
}

// Option configures a Conn.
type Option func(*Options)

// DefaultOptions returns the default driver options.
func DefaultOptions() Options {
	return Options{
		IDAttribute:     "id",
		MaxRetries:      3,
		RetryBackoff:    100 * time.Millisecond,
		BreakerFailures: 5,
		BreakerInterval: 30 * time.Second,
		BreakerTimeout:  60 * time.Second,
	}
}

// WithRetries sets the retry count and the base backoff.
func WithRetries(max int, backoff time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = max
		o.RetryBackoff = backoff
	}
}

// WithBreaker sets the breaker trip threshold and open timeout.
func WithBreaker(failures uint32, timeout time.Duration) Option {
	return func(o *Options) {
		o.BreakerFailures = failures
		o.BreakerTimeout = timeout
	}
}

// WithIDAttribute sets the partition key attribute name.
func WithIDAttribute(name string) Option {
	return func(o *Options) {
		o.IDAttribute = name
	}
}

// WithLogger sets the driver logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Conn implements driver.Conn on DynamoDB's PartiQL ExecuteStatement API.
// Tables are named after the keyspace.
type Conn struct {
	api     API
	opts    Options
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
}

var _ driver.Conn = (*Conn)(nil)

// New wraps a DynamoDB client.
func New(api API, opts ...Option) *Conn {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conn{
		api:     api,
		opts:    options,
		logger:  logger,
		breaker: newBreaker("dynamodb", options, logger),
	}
}

func (c *Conn) Dialect() dialect.Dialect {
	return dialect.PartiQL{}
}

// Query submits stmt and returns a cursor that fetches further pages on demand.
func (c *Conn) Query(ctx context.Context, stmt storagemodels.Statement) (driver.Rows, error) {
	input, err := c.statementInput(stmt)
	if err != nil {
		return nil, err
	}
	r := &rows{conn: c, input: input, stmt: stmt}
	if err := r.fetch(ctx, nil); err != nil {
		return nil, err
	}
	return r, nil
}

// Exec submits a non-query statement. DynamoDB reports no affected count;
// a PartiQL write addresses a single item, so success counts as one.
func (c *Conn) Exec(ctx context.Context, stmt storagemodels.Statement) (int64, error) {
	input, err := c.statementInput(stmt)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("executing statement",
		zap.String("statement", stmt.Text),
		zap.String("client_context_id", stmt.ClientContextID))

	if _, err := call(ctx, c, "ExecuteStatement", func(ctx context.Context) (*sdk.ExecuteStatementOutput, error) {
		return c.api.ExecuteStatement(ctx, input)
	}); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *Conn) Get(ctx context.Context, ks storagemodels.Keyspace, id string, dest any) error {
	out, err := call(ctx, c, "GetItem", func(ctx context.Context) (*sdk.GetItemOutput, error) {
		return c.api.GetItem(ctx, &sdk.GetItemInput{
			TableName:      aws.String(ks.String()),
			Key:            c.key(id),
			ConsistentRead: aws.Bool(true),
		})
	})
	if err != nil {
		return err
	}
	if len(out.Item) == 0 {
		return errors.NewNotFoundError(ks.String(), id)
	}
	return unmarshalItem(out.Item, dest)
}

func (c *Conn) Upsert(ctx context.Context, ks storagemodels.Keyspace, id string, doc any) error {
	item, err := attributevalue.MarshalMapWithOptions(doc, jsonTags)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	item[c.opts.IDAttribute] = &types.AttributeValueMemberS{Value: id}

	_, err = call(ctx, c, "PutItem", func(ctx context.Context) (*sdk.PutItemOutput, error) {
		return c.api.PutItem(ctx, &sdk.PutItemInput{
			TableName: aws.String(ks.String()),
			Item:      item,
		})
	})
	return err
}

func (c *Conn) Remove(ctx context.Context, ks storagemodels.Keyspace, id string) error {
	_, err := call(ctx, c, "DeleteItem", func(ctx context.Context) (*sdk.DeleteItemOutput, error) {
		return c.api.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName: aws.String(ks.String()),
			Key:       c.key(id),
		})
	})
	return err
}

// Close is a no-op; the AWS client holds no per-connection resources.
func (c *Conn) Close() error {
	return nil
}

func (c *Conn) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		c.opts.IDAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

func (c *Conn) statementInput(stmt storagemodels.Statement) (*sdk.ExecuteStatementInput, error) {
	input := &sdk.ExecuteStatementInput{
		Statement:      aws.String(stmt.Text),
		ConsistentRead: aws.Bool(stmt.Consistency == storagemodels.RequestPlus),
	}
	if stmt.PageSize > 0 {
		input.Limit = aws.Int32(stmt.PageSize)
	}
	for i, arg := range stmt.Args {
		av, err := attributevalue.MarshalWithOptions(arg, jsonTags)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameter %d: %w", i+1, err)
		}
		input.Parameters = append(input.Parameters, av)
	}
	return input, nil
}

func jsonTags(o *attributevalue.EncoderOptions) {
	o.TagKey = "json"
}

func unmarshalItem(item map[string]types.AttributeValue, dest any) error {
	return attributevalue.UnmarshalMapWithOptions(item, dest, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	})
}
