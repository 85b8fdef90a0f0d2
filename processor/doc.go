/*
Package processor reads repository definitions and checks them ahead of
deployment.

A definition declares one entity and the query methods of its repository:

	repository: AirportRepository
	entity:
	  name: Airport
	  collection: airports
	  idProperty: id
	  properties:
	    id: string
	    iata: string
	    icao: string
	    city: string
	    runways: number
	methods:
	  - name: countByIataIn
	    params:
	      - {name: iatas, kind: string, variadic: true}
	  - name: findByCity
	    params:
	      - {name: city, kind: string}
	    returns: list
	    consistency: request_plus
	  - name: findHubs
	    returns: list
	    query: SELECT * FROM {#collection} WHERE "hub" = true

Analyze derives a descriptor for every method and compiles it for a
dialect, which is what the repoquery CLI prints with explain.
*/
package processor
