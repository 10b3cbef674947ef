package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePrice(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		discount float64
		expected float64
	}{
		{"No discount", 1000, 0, 1000},
		{"Ten percent", 1000, 10, 900},
		{"Rounds to nearest", 999, 15, 849}, // 999 - 149.85 = 849.15
		{"Full discount", 500, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DerivePrice(tt.original, tt.discount))
		})
	}
}

func TestEffectiveStock(t *testing.T) {
	product := &Product{Stock: 10}
	variant := &ProductVariant{Stock: 3}

	assert.Equal(t, 10, EffectiveStock(product, nil))
	// Variant stock supersedes the parent product's stock.
	assert.Equal(t, 3, EffectiveStock(product, variant))

	empty := &ProductVariant{Stock: 0}
	assert.Equal(t, 0, EffectiveStock(product, empty))
}

func TestOrderTotal(t *testing.T) {
	items := []OrderItemRequest{
		{Price: 100, Quantity: 2},
		{Price: 50, Quantity: 1},
	}
	assert.Equal(t, 250.0, OrderTotal(items))

	assert.Equal(t, 0.0, OrderTotal(nil))
}
