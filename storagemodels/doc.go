/*
Package storagemodels defines the data structures shared between the query
executor and the drivers.

Key Types:

Statement:
A bound query ready for submission:

	stmt := storagemodels.Statement{
	    Text:        `SELECT doc FROM "travel.airports" WHERE json_extract(doc, '$.iata') IN (?, ?)`,
	    Args:        []any{"JFK", "IAD"},
	    Keyspace:    storagemodels.Keyspace{Bucket: "travel", Collection: "airports"},
	    Consistency: storagemodels.NotBounded,
	}

Keyspace:
Bucket, scope and collection of the target collection. String() renders
"bucket.scope.collection" with empty parts omitted.

ScanConsistency:
NotBounded (default) accepts slightly stale index results; RequestPlus waits
for preceding writes.

StreamResult:
Items delivered over a channel by result streams:

	type StreamResult[T any] struct {
	    Item  T          // The typed entity
	    Error error      // Terminal error, if any
	    Meta  StreamMeta // Index and retrieval time
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
