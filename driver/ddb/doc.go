/*
Package ddb implements driver.Conn on Amazon DynamoDB.

Statements are PartiQL and go through ExecuteStatement; further result pages
are requested lazily as the cursor advances. Parameters and items are
converted with attributevalue using the json struct tags. Documents are
keyed by a single string partition key, "id" unless configured otherwise.

Throttling and internal server errors are retried with linear backoff, and
all calls share a circuit breaker that opens after consecutive store
failures. A missing table surfaces as errors.ErrIndexMissing and a
ValidationException as errors.ErrStatementRejected.

Usage:

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "us-east-1"}, logger)
	if err != nil {
	    return err
	}
	conn := ddb.New(client, ddb.WithLogger(logger), ddb.WithRetries(3, 100*time.Millisecond))
*/
package ddb
