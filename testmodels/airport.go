package testmodels

import "github.com/go-openapi/strfmt"

type Airport struct {

	// Unique identifier for the airport document.
	// Required: true
	ID string `json:"id"`

	// Three letter IATA location code.
	Iata string `json:"iata,omitempty"`

	// Four letter ICAO location code.
	Icao string `json:"icao,omitempty"`

	// Airport name.
	Name string `json:"name,omitempty"`

	// city
	City string `json:"city,omitempty"`

	// country
	Country string `json:"country,omitempty"`

	// Whether the airport is an airline hub.
	Hub bool `json:"hub,omitempty"`

	// Number of runways.
	Runways int `json:"runways,omitempty"`

	// Timestamp when the airport was last updated.
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"updatedAt,omitempty"`
}
