package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backpackJSON = `{"id":1,"title":"Backpack","price":109.95,"description":"Your perfect pack",` +
	`"category":"men's clothing","image":"https://example.com/1.jpg","rating":{"rate":3.9,"count":120}}`

func backpack() Product {
	return Product{
		ID:          1,
		Title:       "Backpack",
		Price:       109.95,
		Description: "Your perfect pack",
		Category:    "men's clothing",
		Image:       "https://example.com/1.jpg",
		Rating:      Rating{Rate: 3.9, Count: 120},
	}
}

func TestParseProduct(t *testing.T) {
	t.Run("all properties", func(t *testing.T) {
		p, err := ParseProduct([]byte(backpackJSON))
		require.NoError(t, err)
		assert.Equal(t, backpack(), p)
	})

	t.Run("unknown properties and nulls", func(t *testing.T) {
		p, err := ParseProduct([]byte(`{"id":2,"title":"Shirt","price":5,"extra":[1,2,{"a":3}],` +
			`"description":null,"rating":null}`))
		require.NoError(t, err)
		assert.Equal(t, Product{ID: 2, Title: "Shirt", Price: 5}, p)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{"id":"one"}`))
		assert.Error(t, err)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := ParseProduct([]byte(`[1]`))
		assert.Error(t, err)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := ParseProduct([]byte(`{"id":1} {}`))
		assert.Error(t, err)
	})
}

func TestParseProducts(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		ps, err := ParseProducts([]byte(`[` + backpackJSON + `,{"id":2,"title":"Shirt","price":5}]`))
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, backpack(), ps[0])
		assert.Equal(t, 2, ps[1].ID)
	})

	t.Run("empty array", func(t *testing.T) {
		ps, err := ParseProducts([]byte(`[]`))
		require.NoError(t, err)
		assert.NotNil(t, ps)
		assert.Len(t, ps, 0)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseProducts([]byte(`[{"id":1},`))
		assert.Error(t, err)
	})
}

func TestProductJSON(t *testing.T) {
	t.Run("encoding/json uses the streaming codec", func(t *testing.T) {
		data, err := json.Marshal(backpack())
		require.NoError(t, err)
		assert.JSONEq(t, backpackJSON, string(data))

		var p Product
		require.NoError(t, json.Unmarshal([]byte(backpackJSON), &p))
		assert.Equal(t, backpack(), p)
	})

	t.Run("MarshalProducts", func(t *testing.T) {
		data, err := MarshalProducts([]Product{backpack()})
		require.NoError(t, err)
		assert.JSONEq(t, `[`+backpackJSON+`]`, string(data))

		data, err = MarshalProducts(nil)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("ProductID", func(t *testing.T) {
		assert.Equal(t, 1, ProductID(backpack()))
	})
}
