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
)

// rows decodes a result row into the destination. A row made of a single
// JSON object column is decoded directly; any other row is decoded as an
// object keyed by column name.
type rows struct {
	rows *sql.Rows
	cols []string
	err  error
}

func (r *rows) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		r.err = err
		return false
	}
	if !r.rows.Next() {
		r.err = classify(r.rows.Err())
		return false
	}
	return true
}

func (r *rows) Decode(dest any) error {
	values := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return fmt.Errorf("failed to scan row: %w", err)
	}

	if len(values) == 1 {
		if raw, ok := jsonObject(values[0]); ok {
			return json.Unmarshal(raw, dest)
		}
	}

	row := make(map[string]any, len(r.cols))
	for i, col := range r.cols {
		if raw, ok := jsonObject(values[i]); ok {
			row[col] = json.RawMessage(raw)
			continue
		}
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
			continue
		}
		row[col] = values[i]
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (r *rows) Err() error {
	return r.err
}

func (r *rows) Close() error {
	return r.rows.Close()
}

func jsonObject(v any) ([]byte, bool) {
	var s string
	switch tv := v.(type) {
	case string:
		s = tv
	case []byte:
		s = string(tv)
	default:
		return nil, false
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") || !json.Valid([]byte(s)) {
		return nil, false
	}
	return []byte(s), true
}
