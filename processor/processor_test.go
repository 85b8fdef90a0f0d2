/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/errors"
	"github.com/suparena/repoquery/method"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/query"
	"github.com/suparena/repoquery/registry"
	"github.com/suparena/repoquery/storagemodels"
)

const airports = `
repository: AirportRepository
entity:
  name: Airport
  collection: airports
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
  - name: countByIcaoAndIataIn
    params:
      - {name: icao, kind: string}
      - {name: iatas, kind: string, variadic: true}
  - name: findByCity
    params:
      - {name: city, kind: string}
    returns: list
    consistency: request_plus
  - name: findHubs
    returns: list
    query: SELECT * FROM {#collection} WHERE "hub" = true
  - name: findAll
`

var travel = storagemodels.Keyspace{Bucket: "travel"}

func parse(t *testing.T, src string) *Definition {
	t.Helper()
	def, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return def
}

func TestParse(t *testing.T) {
	def := parse(t, airports)
	assert.Equal(t, "AirportRepository", def.Repository)
	assert.Len(t, def.Methods, 5)

	info, err := def.EntityInfo()
	require.NoError(t, err)
	assert.Equal(t, "id", info.IDProperty)
	prop, ok := info.Property("runways")
	require.True(t, ok)
	assert.Equal(t, registry.KindNumber, prop.Kind)

	sigs, err := def.Signatures()
	require.NoError(t, err)
	require.Len(t, sigs, 5)
	assert.Equal(t, "AirportRepository.countByIcaoAndIataIn(string,string...)", sigs[1].Key().String())
	assert.Equal(t, method.ReturnSlice, sigs[2].Returns)
	assert.Equal(t, storagemodels.RequestPlus, sigs[2].Consistency)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"MissingRepository", "entity: {name: A, collection: a, properties: {id: string}}"},
		{"NoProperties", "repository: R\nentity: {name: A, collection: a}"},
		{"UnnamedMethod", "repository: R\nentity: {name: A, collection: a, properties: {id: string}}\nmethods:\n  - returns: list"},
		{"UnknownField", "repository: R\nentitty: {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := Parse(strings.NewReader("entity: {name: A, collection: a, properties: {id: string}}"))
	assert.True(t, errors.IsValidationError(err))
}

func TestDefinitionConversionErrors(t *testing.T) {
	def := parse(t, "repository: R\nentity: {name: A, collection: a, properties: {id: uuid}}")
	_, err := def.EntityInfo()
	assert.Error(t, err)

	def = parse(t, "repository: R\nentity: {name: A, collection: a, properties: {id: string}}\nmethods:\n  - {name: findAll, returns: map}")
	_, err = def.Signatures()
	assert.Error(t, err)

	def = parse(t, "repository: R\nentity: {name: A, collection: a, idProperty: key, properties: {id: string}}")
	_, err = def.EntityInfo()
	assert.Error(t, err, "the id property must be declared")
}

func TestAnalyze(t *testing.T) {
	def := parse(t, airports)

	reports, err := Analyze(def, dialect.PartiQL{}, travel, nil)
	require.NoError(t, err)
	require.Len(t, reports, 5)
	for _, r := range reports {
		require.NoError(t, r.Err, r.Signature.Name)
	}

	assert.Equal(t, query.StrategyDerived, reports[0].Plan.Strategy)
	assert.Equal(t, `SELECT "id" FROM "travel.airports" WHERE "iata" IN {1}`, reports[0].Plan.Text())
	assert.Equal(t, 2, len(reports[1].Descriptor.Params()))
	assert.Equal(t, query.StrategyAnnotatedLiteral, reports[3].Plan.Strategy)
	assert.Equal(t, query.StrategyMatchAll, reports[4].Plan.Strategy)

	named, err := namedquery.New(map[string]string{
		"AirportRepository.findAll": "SELECT * FROM {#collection} WHERE \"runways\" > 2",
	})
	require.NoError(t, err)
	reports, err = Analyze(def, dialect.PartiQL{}, travel, named)
	require.NoError(t, err)
	assert.Equal(t, query.StrategyNamedOverride, reports[4].Plan.Strategy)
}

func TestValidate(t *testing.T) {
	def := parse(t, airports)
	assert.NoError(t, Validate(def, dialect.SQLite{}, travel, nil))

	def.Methods = append(def.Methods,
		MethodDef{Name: "findByAltitude", Params: []ParamDef{{Name: "alt", Kind: "number"}}},
		MethodDef{Name: "findByCityIgnoreCase", Params: []ParamDef{{Name: "city", Kind: "string"}}},
	)

	// PartiQL cannot express IgnoreCase; SQLite can.
	err := Validate(def, dialect.PartiQL{}, travel, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 7 methods failed")
	assert.Contains(t, err.Error(), "findByAltitude")

	err = Validate(def, dialect.SQLite{}, travel, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 7 methods failed")
}

func TestAnalyzeConflictingEntity(t *testing.T) {
	def := parse(t, airports)
	_, err := Analyze(def, dialect.SQLite{}, travel, nil)
	require.NoError(t, err)

	_, err = Analyze(parse(t, airports), dialect.SQLite{}, travel, nil)
	require.NoError(t, err, "the same definition may be analyzed again")

	other := parse(t, airports)
	other.Entity.Collection = "airfields"
	_, err = Analyze(other, dialect.SQLite{}, travel, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different metadata")

	info, err := registry.LookupDeclared("Airport")
	require.NoError(t, err)
	assert.Equal(t, "airports", info.Collection)
}
