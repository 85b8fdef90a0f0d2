/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/repoquery/storagemodels"
)

// rows walks the pages of an ExecuteStatement result. The next page is
// requested only when the current one is exhausted.
type rows struct {
	conn   *Conn
	input  *sdk.ExecuteStatementInput
	stmt   storagemodels.Statement
	items  []map[string]types.AttributeValue
	pos    int
	cur    map[string]types.AttributeValue
	next   *string
	page   int
	err    error
	closed bool
}

func (r *rows) fetch(ctx context.Context, token *string) error {
	input := *r.input
	input.NextToken = token
	r.page++

	r.conn.logger.Debug("executing statement",
		zap.String("statement", r.stmt.Text),
		zap.String("client_context_id", r.stmt.ClientContextID),
		zap.Int("page", r.page))

	out, err := call(ctx, r.conn, "ExecuteStatement", func(ctx context.Context) (*sdk.ExecuteStatementOutput, error) {
		return r.conn.api.ExecuteStatement(ctx, &input)
	})
	if err != nil {
		return err
	}
	r.items, r.pos, r.next = out.Items, 0, out.NextToken
	return nil
}

func (r *rows) Next(ctx context.Context) bool {
	if r.closed || r.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	// A page may come back empty while more pages remain.
	for r.pos >= len(r.items) {
		if r.next == nil || *r.next == "" {
			r.cur = nil
			return false
		}
		if err := r.fetch(ctx, r.next); err != nil {
			r.err = err
			return false
		}
	}
	r.cur = r.items[r.pos]
	r.pos++
	return true
}

func (r *rows) Decode(dest any) error {
	if r.cur == nil {
		return fmt.Errorf("no current row")
	}
	return unmarshalItem(r.cur, dest)
}

func (r *rows) Err() error {
	return r.err
}

func (r *rows) Close() error {
	r.closed = true
	r.items, r.cur, r.next = nil, nil, nil
	return nil
}
