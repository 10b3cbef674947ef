package model

import (
	"github.com/google/uuid"
)

// CartItem represents one pending selection in a user's cart. Name, price
// and image are denormalised display snapshots refreshed on merge.
type CartItem struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	ProductID        uuid.UUID  `json:"product_id" db:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty" db:"product_variant_id"`
	Quantity         int        `json:"quantity" db:"quantity"`
	Color            string     `json:"color,omitempty" db:"color"`
	Size             string     `json:"size,omitempty" db:"size"`
	Name             string     `json:"name,omitempty" db:"name"`
	Price            float64    `json:"price,omitempty" db:"price"`
	ImageURL         string     `json:"image_url,omitempty" db:"image_url"`
}

// CartKey is the uniqueness key for merge purposes: adding an item that
// matches an existing row on this key increments its quantity instead of
// creating a duplicate.
type CartKey struct {
	UserID           uuid.UUID
	ProductID        uuid.UUID
	ProductVariantID *uuid.UUID
	Color            string
	Size             string
	ImageURL         string
}

// Key returns the merge key for a cart item.
func (c *CartItem) Key() CartKey {
	return CartKey{
		UserID:           c.UserID,
		ProductID:        c.ProductID,
		ProductVariantID: c.ProductVariantID,
		Color:            c.Color,
		Size:             c.Size,
		ImageURL:         c.ImageURL,
	}
}

// AddToCartRequest is the payload for POST /api/cart.
type AddToCartRequest struct {
	UserID           uuid.UUID  `json:"user_id"`
	ProductID        uuid.UUID  `json:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty"`
	Quantity         int        `json:"quantity"`
	Color            string     `json:"color,omitempty"`
	Size             string     `json:"size,omitempty"`
	Name             string     `json:"name"`
	Price            float64    `json:"price"`
	ImageURL         string     `json:"image_url,omitempty"`
}

// UpdateCartRequest is the payload for PATCH /api/cart/{id}. Nil fields
// are left unchanged.
type UpdateCartRequest struct {
	UserID           uuid.UUID  `json:"user_id"`
	Quantity         *int       `json:"quantity,omitempty"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty"`
	Color            *string    `json:"color,omitempty"`
	Size             *string    `json:"size,omitempty"`
}

// CartEntry is one cart row shaped for API responses.
type CartEntry struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id"`
	Name             string     `json:"name,omitempty"`
	Price            float64    `json:"price,omitempty"`
	Color            string     `json:"color,omitempty"`
	Size             string     `json:"size,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	Quantity         int        `json:"quantity"`
	TotalItems       int        `json:"total_items"`
}

// CartView is a user's full cart plus the aggregate quantity count.
type CartView struct {
	CartItems  []CartEntry `json:"cart_items"`
	TotalItems int         `json:"total_items"`
}

// NewCartEntry shapes a cart row for a response. totalItems is the sum of
// quantities across the whole cart at response time.
func NewCartEntry(item *CartItem, totalItems int) CartEntry {
	return CartEntry{
		ID:               item.ID,
		ProductID:        item.ProductID,
		ProductVariantID: item.ProductVariantID,
		Name:             item.Name,
		Price:            item.Price,
		Color:            item.Color,
		Size:             item.Size,
		ImageURL:         item.ImageURL,
		Quantity:         item.Quantity,
		TotalItems:       totalItems,
	}
}
