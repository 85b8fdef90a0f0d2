/*
Package driver defines the connection contract between the query executor
and a document store.

Implementations:
  - ddb: DynamoDB through PartiQL ExecuteStatement
  - sqlitedoc: JSON documents in SQLite through bun
  - mock: capturing in-memory double for tests

A Conn submits bound statements and returns Rows cursors that fetch pages
lazily, so a stream can be abandoned without reading the whole result:

	rows, err := conn.Query(ctx, stmt)
	if err != nil {
	    return err
	}
	defer rows.Close()
	for rows.Next(ctx) {
	    var a Airport
	    if err := rows.Decode(&a); err != nil {
	        return err
	    }
	}
	return rows.Err()
*/
package driver
