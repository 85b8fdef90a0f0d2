/*
Package dialect renders query descriptors into store-specific statement
templates.

Two dialects are provided:

	PartiQL  DynamoDB ExecuteStatement; "travel.inventory.airports" tables,
	         IN [?, ?], begins_with/contains, counts tallied client-side
	SQLite   JSON documents in (id, doc) tables; json_extract paths,
	         IN (?, ?), ORDER BY, LIMIT, json_object('count', COUNT(*))

Templates reference parameters as {1}, {2}, ... and are bound by the query
package.
*/
package dialect
