package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	cases := map[string]ID{
		`7`:      7,
		`"7"`:    7,
		`" 12 "`: 12,
		`3.0`:    3,
	}
	for in, want := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(in), &id), in)
		assert.Equal(t, want, id, in)
	}

	for _, in := range []string{`"seven"`, `2.5`, `true`, `null`} {
		var id ID
		err := json.Unmarshal([]byte(in), &id)
		assert.ErrorIs(t, err, ErrInvalidID, in)
	}
}

func TestProductDecodeNormalizesCategory(t *testing.T) {
	var products []Product
	payload := `[
		{"id": 1, "product_name": "Oil A", "category_id": "2", "category_name": "Engine", "wholesale_price": 10.5, "unit": "can", "liters": 4},
		{"id": "2", "product_name": "Grease", "category_id": 2, "category_name": "Engine", "wholesale_price": 3, "unit": "tube"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &products))
	require.Len(t, products, 2)

	assert.Equal(t, products[0].CategoryID, products[1].CategoryID)
	assert.Equal(t, ID(2), products[1].ID)
	assert.Equal(t, "4 لتر", products[0].SizeLabel())
	assert.Equal(t, "tube", products[1].SizeLabel())
	assert.Equal(t, "10.50", products[0].PriceLabel())
}

func TestCartItemSnapshot(t *testing.T) {
	item := NewCartItem(Product{ID: 4, Name: "Coolant", CategoryName: "Fluids", WholesalePrice: 12.25, Unit: "bottle"})
	item.Quantity = 3

	assert.Equal(t, ID(4), item.ProductID)
	assert.Equal(t, "Fluids", item.Category)
	assert.Equal(t, 36.75, item.Subtotal())

	raw, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":4,"name":"Coolant","price":12.25,"category":"Fluids","unit":"bottle","quantity":3}`, string(raw))
}
