/*
Package repoquery executes repository query methods against a document
store.

A repository method is declared by its name, parameters and return type.
The name is parsed into a predicate at startup (see package method) and
compiled into a statement by the first strategy that applies:

  - a named query registered for the method
  - a query literal declared on the method
  - the predicate derived from the method name
  - a match-all statement when the name has no predicate

Calls bind their arguments, submit the statement through a driver
(DynamoDB PartiQL or SQLite) and adapt the rows to the method's shape: a
count, an existence flag, at most one entity, a slice or a lazy stream.

Basic Usage:

	cfg, _ := config.Load("repoquery.yaml", ".env")
	client, err := repoquery.Open(ctx, cfg, logger)
	if err != nil {
	    return err
	}
	defer client.Close()

	airports, err := repoquery.Define[Airport](client, "AirportRepository", "airports",
	    method.Signature{
	        Name:   "countByIataIn",
	        Params: []method.Param{{Name: "iatas", Kind: registry.KindString, Variadic: true}},
	    },
	)
	if err != nil {
	    return err // derivation errors surface here
	}

	n, err := airports.Count(ctx, "countByIataIn", "JFK", "IAD", "SFO")
*/
package repoquery
