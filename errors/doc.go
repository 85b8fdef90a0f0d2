/*
Package errors provides semantic error types for repoquery.

Every failure a repository call can produce maps to one typed error that can be
checked with the standard errors.Is() function or the provided helpers:

	var (
	    ErrNotFound         = errors.New("document not found")
	    ErrInvalidInput     = errors.New("invalid input")
	    ErrQueryDerivation  = errors.New("query derivation failed")
	    ErrParameterBinding = errors.New("parameter binding failed")
	    ErrQueryExecution   = errors.New("query execution failed")
	    ErrAmbiguousResult  = errors.New("ambiguous single result")
	)

Derivation errors are raised while repositories are assembled, so a bad method
name fails fast at startup. Binding errors are raised before anything is sent
to the store. Execution errors wrap transport and server failures and are never
retried by the executor.

Usage:

	n, err := repoquery.Count(ctx, airports, "countByIataIn", "JFK", "IAD")
	if err != nil {
	    switch {
	    case errors.IsBindingError(err):
	        // the caller passed the wrong arguments
	    case errors.IsIndexMissing(err):
	        // the collection or its index has not been created yet
	    }
	    return err
	}

AmbiguousResultWarning is not returned from calls; single-result queries keep
the first row and report the warning through logging, metrics and an optional
hook.
*/
package errors
