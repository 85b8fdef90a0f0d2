/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryAirport struct {
	ID        string          `json:"id"`
	Iata      string          `json:"iata"`
	Icao      string          `json:"icao"`
	Runways   int             `json:"runways,omitempty"`
	Open      bool            `json:"open"`
	UpdatedAt strfmt.DateTime `json:"updatedAt"`
	Tags      []string        `json:"tags"`
	Internal  string          `json:"-"`
	secret    string
}

func TestRegisterEntity(t *testing.T) {
	info, err := RegisterEntity[registryAirport]("airports")
	require.NoError(t, err)

	assert.Equal(t, "registryAirport", info.Name)
	assert.Equal(t, "airports", info.Collection)
	assert.Equal(t, "id", info.IDProperty)

	got, ok := GetEntity[registryAirport]()
	require.True(t, ok)
	assert.Equal(t, info, got)

	t.Run("PropertyLookupIgnoresCase", func(t *testing.T) {
		p, ok := info.Property("IATA")
		require.True(t, ok)
		assert.Equal(t, "iata", p.Path)
		assert.Equal(t, KindString, p.Kind)

		p, ok = info.Property("updatedat")
		require.True(t, ok)
		assert.Equal(t, KindTime, p.Kind)
	})

	t.Run("SkipsIgnoredAndUnexported", func(t *testing.T) {
		_, ok := info.Property("Internal")
		assert.False(t, ok)
		_, ok = info.Property("secret")
		assert.False(t, ok)
	})

	t.Run("Kinds", func(t *testing.T) {
		runways, _ := info.Property("Runways")
		open, _ := info.Property("Open")
		tags, _ := info.Property("Tags")
		assert.Equal(t, KindNumber, runways.Kind)
		assert.Equal(t, KindBool, open.Kind)
		assert.Equal(t, KindList, tags.Kind)
	})
}

func TestDescribeRequiresID(t *testing.T) {
	type noID struct {
		Name string `json:"name"`
	}
	_, err := Describe[noID]("things")
	require.Error(t, err)

	info, err := Describe[noID]("things", WithIDProperty("name"))
	require.NoError(t, err)
	assert.Equal(t, "name", info.IDProperty)
}

func TestKindOf(t *testing.T) {
	cases := map[reflect.Type]Kind{
		reflect.TypeOf(""):                KindString,
		reflect.TypeOf(int64(0)):          KindNumber,
		reflect.TypeOf(3.5):               KindNumber,
		reflect.TypeOf(true):              KindBool,
		reflect.TypeOf(time.Time{}):       KindTime,
		reflect.TypeOf(&time.Time{}):      KindTime,
		reflect.TypeOf(strfmt.DateTime{}): KindTime,
		reflect.TypeOf([]string{}):        KindList,
		reflect.TypeOf(map[string]int{}):  KindObject,
	}
	for typ, want := range cases {
		assert.Equal(t, want, KindOf(typ), typ.String())
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Integer")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, k)

	k, err = ParseKind("string")
	require.NoError(t, err)
	assert.Equal(t, KindString, k)

	_, err = ParseKind("blob")
	assert.Error(t, err)
}

func TestDeclaredRegistry(t *testing.T) {
	info := EntityInfo{
		Name:       "DeclaredHotel",
		Collection: "hotels",
		IDProperty: "id",
		Properties: []Property{
			{Field: "ID", Path: "id", Kind: KindString},
			{Field: "City", Path: "city", Kind: KindString},
		},
	}
	require.NoError(t, RegisterDeclared(info))
	assert.NoError(t, RegisterDeclared(info), "identical metadata registers again")

	conflicting := info
	conflicting.Collection = "inns"
	assert.Error(t, RegisterDeclared(conflicting))

	got, err := LookupDeclared("DeclaredHotel")
	require.NoError(t, err)
	assert.Equal(t, "hotels", got.Collection)
	assert.Contains(t, DeclaredNames(), "DeclaredHotel")

	_, err = LookupDeclared("Missing")
	assert.Error(t, err)
}
