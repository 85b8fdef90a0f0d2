/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strings"
)

// ScanConsistency is the staleness tolerance requested for a query.
type ScanConsistency string

const (
	// NotBounded allows results from an index that has not caught up with
	// the latest writes.
	NotBounded ScanConsistency = "not_bounded"
	// RequestPlus waits for all writes issued before the request.
	RequestPlus ScanConsistency = "request_plus"
)

// ParseScanConsistency accepts "not_bounded" / "request_plus" and the
// hyphenated or camel-cased variants. An empty string yields NotBounded.
func ParseScanConsistency(s string) (ScanConsistency, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s)))
	switch norm {
	case "", "not_bounded", "notbounded", "eventual":
		return NotBounded, nil
	case "request_plus", "requestplus", "strong":
		return RequestPlus, nil
	}
	return "", fmt.Errorf("unknown scan consistency %q", s)
}

// Keyspace addresses a collection inside a cluster: bucket, scope and
// collection. Empty parts are omitted from the rendered name.
type Keyspace struct {
	Bucket     string `yaml:"bucket" json:"bucket"`
	Scope      string `yaml:"scope" json:"scope"`
	Collection string `yaml:"collection" json:"collection"`
}

// String joins the non-empty parts with ".", e.g. "travel.inventory.airports".
func (k Keyspace) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{k.Bucket, k.Scope, k.Collection} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// WithCollection returns a copy addressing collection c in the same scope.
func (k Keyspace) WithCollection(c string) Keyspace {
	k.Collection = c
	return k
}

// Statement is a fully bound query ready for submission to a driver.
type Statement struct {
	// Text is the statement in the driver's dialect, with positional placeholders.
	Text string
	// Args holds one value per placeholder, in order.
	Args []any
	// Keyspace is the collection the statement targets.
	Keyspace Keyspace
	// Consistency is the requested scan consistency.
	Consistency ScanConsistency
	// ClientContextID correlates the statement across logs and the server.
	ClientContextID string
	// ReadOnly is false for delete statements.
	ReadOnly bool
	// PageSize is an optional hint for drivers that fetch in pages.
	PageSize int32
}
