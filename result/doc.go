// Package result holds the lazy stream shape of query results.
package result
