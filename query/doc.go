/*
Package query compiles repository method descriptors into statements and
executes them.

Compile picks one strategy per method, in order of precedence:

	StrategyNamedOverride     a query registered in the namedquery.Registry
	StrategyAnnotatedLiteral  the literal declared on the method signature
	StrategyDerived           the predicate parsed from the method name
	StrategyMatchAll          an unfiltered statement over the collection

Templates reference parameters as {1} (1-based) or {name}, and the
collection as {#collection}. {#selectEntity} and {#id} are also expanded.
A variadic or slice parameter expands to the dialect's list literal:

	SELECT doc FROM {#collection} WHERE json_extract(doc, '$.iata') IN {iatas}

An Executor binds call arguments, submits the statement through the
driver and adapts the rows to the method's result shape. Single-result
methods keep the first row when more match and report an
AmbiguousResultWarning through the logger, the metrics collector and the
optional WarningHook.
*/
package query
