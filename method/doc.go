/*
Package method turns repository method signatures into query descriptors.

A method name is read as a verb, an optional subject and a predicate:

	find | read | get | query | search | stream   retrieval
	count                                         number of matches
	exists                                        at least one match
	delete | remove                               delete matches, return count

	countByIcaoAndIataIn(icao string, iatas ...string)
	findFirst3ByCityOrderByIataDesc(city string)
	findDistinctByCountryIgnoreCase(country string)

The predicate is split on Or, then on And (And binds tighter), and each part
is a property followed by an optional operator keyword:

	Is, Equals, Not, LessThan, LessThanEqual, GreaterThan, GreaterThanEqual,
	Before, After, Between, In, NotIn, Like, NotLike, StartingWith,
	EndingWith, Containing, IsNull, IsNotNull, True, False

A part may end in IgnoreCase; a predicate may end in AllIgnoreCase. An
OrderBy clause lists properties each followed by Asc or Desc.

Parameters are consumed left to right: Between takes two, In and NotIn take
one variadic (or slice) parameter, IsNull/IsNotNull/True/False take none.
A mismatch between the predicate and the declared parameters is a
QueryDerivationError raised at derivation time.

Usage:

	sig, _ := method.SignatureOf("AirportRepository", "countByIataIn",
	    (func(context.Context, ...string) (int64, error))(nil), "iatas")
	info, _ := registry.Describe[testmodels.Airport]("airports")

	cache := method.NewCache()
	d, err := cache.Derive(sig, info, nil)
	// d.Shape() == method.ShapeCount, d.Tree() has one part: iata In ?1
*/
package method
