package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue product.
type Product struct {
	ID                 uuid.UUID      `json:"id" db:"id"`
	Name               string         `json:"name" db:"name"`
	Price              float64        `json:"price" db:"price"`
	OriginalPrice      float64        `json:"original_price" db:"original_price"`
	DiscountPercentage float64        `json:"discount_percentage" db:"discount_percentage"`
	Stock              int            `json:"stock" db:"stock"`
	CategoryID         *uuid.UUID     `json:"category_id,omitempty" db:"category_id"`
	Brand              string         `json:"brand,omitempty" db:"brand"`
	Details            map[string]any `json:"details,omitempty" db:"details"`
	ImageURL           string         `json:"image_url,omitempty" db:"image_url"`
	Images             []string       `json:"images,omitempty" db:"images"`
	IsActive           bool           `json:"is_active" db:"is_active"`
	IsDeleted          bool           `json:"is_deleted" db:"is_deleted"`
	AverageRating      float64        `json:"average_rating" db:"average_rating"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// ProductVariant represents a specific colour/size/price/stock combination
// of a product. Variant stock, when a variant is selected, supersedes the
// parent product's stock for availability checks.
type ProductVariant struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	ProductID          uuid.UUID `json:"product_id" db:"product_id"`
	Color              string    `json:"color,omitempty" db:"color"`
	Size               string    `json:"size,omitempty" db:"size"`
	Price              float64   `json:"price" db:"price"`
	OriginalPrice      float64   `json:"original_price" db:"original_price"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	Stock              int       `json:"stock" db:"stock"`
	ImageURL           string    `json:"image_url,omitempty" db:"image_url"`
}

// Category groups products. Categories are created lazily on first use
// of a new category name.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
}

// Review is a customer rating on a product. The product's average_rating
// is recomputed whenever a review is inserted.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DerivePrice computes an effective price from an original price and a
// discount percentage, rounded to the nearest whole unit.
func DerivePrice(originalPrice, discountPercentage float64) float64 {
	return math.Round(originalPrice - originalPrice*discountPercentage/100)
}

// EffectiveStock resolves the quantity ceiling used for availability
// validation: variant stock when a variant is selected, else product stock.
func EffectiveStock(product *Product, variant *ProductVariant) int {
	if variant != nil {
		return variant.Stock
	}
	return product.Stock
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Name               string                 `json:"name"`
	OriginalPrice      float64                `json:"original_price"`
	DiscountPercentage float64                `json:"discount_percentage"`
	Stock              int                    `json:"stock"`
	Category           string                 `json:"category,omitempty"`
	Brand              string                 `json:"brand,omitempty"`
	Details            map[string]any         `json:"details,omitempty"`
	ImageURL           string                 `json:"image_url,omitempty"`
	Images             []string               `json:"images,omitempty"`
	Variants           []CreateVariantRequest `json:"variants,omitempty"`
}

// CreateVariantRequest is the admin payload for adding a variant.
type CreateVariantRequest struct {
	Color              string  `json:"color,omitempty"`
	Size               string  `json:"size,omitempty"`
	OriginalPrice      float64 `json:"original_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Stock              int     `json:"stock"`
	ImageURL           string  `json:"image_url,omitempty"`
}

// CreateReviewRequest is the payload for reviewing a product.
type CreateReviewRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
}

// ProductResponse is a product joined with its variants and category name.
type ProductResponse struct {
	Product
	Category string           `json:"category,omitempty"`
	Variants []ProductVariant `json:"variants,omitempty"`
}
