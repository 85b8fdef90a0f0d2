/*
Package config loads the dispatcher configuration.

Sources, lowest priority first:

 1. Default()
 2. a YAML file
 3. .env files (joho/godotenv); variables already set are kept
 4. REPOQUERY_* environment variables

Example file:

	driver: dynamodb
	region: us-east-1
	keyspace:
	  bucket: travel
	consistency: request_plus
	namedQueriesFile: queries.yaml
	namedQueries:
	  AirportRepository.findByCity: SELECT * FROM {#collection} WHERE "city" = {1}
	breaker:
	  maxRetries: 3
	  retryBackoff: 100ms
	  failures: 5
	  timeout: 1m
*/
package config
