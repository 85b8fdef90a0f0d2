/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlitedoc

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// queryLogHook logs every statement at debug level.
type queryLogHook struct {
	logger *zap.Logger
}

var _ bun.QueryHook = (*queryLogHook)(nil)

func (h *queryLogHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && event.Err != sql.ErrNoRows {
		h.logger.Warn("sqlite statement failed", append(fields, zap.Error(event.Err))...)
		return
	}
	h.logger.Debug("sqlite statement", fields...)
}
