/*
Package sqlitedoc implements driver.Conn on SQLite through bun.

Every keyspace maps to a table named after Keyspace.String() with two
columns, id and doc; doc holds the JSON document and statements reach into
it with json_extract. Tables are created on first write, so querying a
collection that was never written fails with errors.ErrIndexMissing.

The store needs no server, which makes it the backend for local runs and
end-to-end tests:

	conn, err := sqlitedoc.Open(sqlitedoc.Config{DSN: "file:travel.db"}, logger)
*/
package sqlitedoc
