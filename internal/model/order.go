package model

import (
	"time"

	"github.com/google/uuid"
)

// Order status state machine: pending -> confirmed -> success.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusSuccess   = "success"
)

// payment_status is a parallel, looser field not strictly derived from status.
const (
	PaymentStatusPending = "pending"
	PaymentStatusSuccess = "success"
)

// ShippingAddress is the delivery address embedded in an order.
type ShippingAddress struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// PaymentInfo records the settlement of an order.
type PaymentInfo struct {
	TransactionID string     `json:"transaction_id,omitempty"`
	Method        string     `json:"method,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// OrderItem is one line item of an order. All product fields are snapshots
// taken at creation time so historical orders are immutable to later
// catalogue edits.
type OrderItem struct {
	ID               uuid.UUID  `json:"-" db:"id"`
	OrderID          uuid.UUID  `json:"-" db:"order_id"`
	ProductID        uuid.UUID  `json:"product_id" db:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty" db:"product_variant_id"`
	ProductName      string     `json:"product_name" db:"product_name"`
	Price            float64    `json:"price" db:"price"`
	Quantity         int        `json:"quantity" db:"quantity"`
	SelectedSize     string     `json:"selected_size,omitempty" db:"selected_size"`
	SelectedColor    string     `json:"selected_color,omitempty" db:"selected_color"`
	Subtotal         float64    `json:"subtotal" db:"subtotal"`
	ImageURL         string     `json:"image_url,omitempty" db:"image_url"`
}

// Order represents a customer order. Items are mirrored into the
// order_items table and embedded as a jsonb snapshot on the row itself.
type Order struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	UserID          uuid.UUID        `json:"user_id" db:"user_id"`
	Items           []OrderItem      `json:"items" db:"items"`
	PaymentMethod   string           `json:"payment_method" db:"payment_method"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty" db:"shipping_address"`
	Total           float64          `json:"total" db:"total"`
	TotalPrice      float64          `json:"total_price" db:"total_price"`
	Status          string           `json:"status" db:"status"`
	PaymentStatus   string           `json:"payment_status" db:"payment_status"`
	PaymentInfo     *PaymentInfo     `json:"payment_info,omitempty" db:"payment_info"`
	TrackingInfo    map[string]any   `json:"tracking_info,omitempty" db:"tracking_info"`
	User            *User            `json:"user,omitempty" db:"-"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// OrderItemRequest is a single line item in an order request.
type OrderItemRequest struct {
	ProductID        uuid.UUID  `json:"product_id"`
	ProductVariantID *uuid.UUID `json:"product_variant_id,omitempty"`
	SelectedSize     string     `json:"selected_size,omitempty"`
	SelectedColor    string     `json:"selected_color,omitempty"`
	Price            float64    `json:"price"`
	Quantity         int        `json:"quantity"`
	ProductName      string     `json:"product_name"`
	ImageURL         string     `json:"image_url,omitempty"`
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	UserID          uuid.UUID          `json:"user_id"`
	PaymentMethod   string             `json:"payment_method"`
	ShippingAddress *ShippingAddress   `json:"shipping_address"`
	Items           []OrderItemRequest `json:"items"`
}

// PaymentUpdateRequest is the payment webhook payload.
type PaymentUpdateRequest struct {
	TransactionID string `json:"transaction_id"`
	Method        string `json:"method"`
}

// OrderResponse wraps a created or mutated order with a human message.
type OrderResponse struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// OrderFilters narrows admin order listings.
type OrderFilters struct {
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	User          string // fuzzy match on the owning user's full name
}

// PagedOrders is a range-limited order listing.
type PagedOrders struct {
	Data       []Order `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// OrderTotal computes the order total as the sum of price*quantity across
// line items. It is fixed at creation time and never recomputed afterwards.
func OrderTotal(items []OrderItemRequest) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
