/*
Package registry manages entity metadata for repoquery.

Derived queries reference entity properties by name (countByIataIn refers to
the "iata" property). The registry tells the deriver which properties exist,
where they live in the stored document and what kind of value they hold, and
tells the renderer which collection an entity is stored in.

Entity Registry:
Associates Go types with their collection, inferring properties from json tags:

	type Airport struct {
	    ID   string `json:"id"`
	    Iata string `json:"iata"`
	    Icao string `json:"icao"`
	}

	info, err := registry.RegisterEntity[Airport]("airports")

Declared Entities:
Entities described in repository definition files are registered by name:

	registry.RegisterDeclared(registry.EntityInfo{
	    Name:       "Airport",
	    Collection: "airports",
	    IDProperty: "id",
	    Properties: []registry.Property{{Field: "Iata", Path: "iata", Kind: registry.KindString}},
	})

The registry is thread-safe and should be populated during initialization.
*/
package registry
