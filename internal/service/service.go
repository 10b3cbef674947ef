package service

import (
	"context"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines operations for catalogue management.
type CatalogService interface {
	// ListProducts retrieves active products with pagination.
	ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetProduct retrieves a product joined with its variants and category.
	GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductResponse, error)

	// CreateProduct creates a product with optional variants, deriving the
	// selling price from the original price and discount percentage.
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.ProductResponse, error)

	// AddVariant adds a variant to an existing product.
	AddVariant(ctx context.Context, productID uuid.UUID, req *model.CreateVariantRequest) (*model.ProductVariant, error)

	// AddReview records a review and returns it together with the product's
	// recomputed average rating.
	AddReview(ctx context.Context, productID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, float64, error)
}

// CartService defines operations for the cart workflow.
type CartService interface {
	// AddToCart adds an item, merging with an existing row that matches on
	// product, variant, colour, size and image. Returns the full cart.
	AddToCart(ctx context.Context, req *model.AddToCartRequest) (*model.CartView, error)

	// GetCart retrieves a user's cart with the aggregate quantity count.
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error)

	// UpdateCartItem applies a partial update to a cart row the user owns.
	UpdateCartItem(ctx context.Context, id uuid.UUID, req *model.UpdateCartRequest) (*model.CartEntry, error)

	// RemoveCartItem deletes a single cart row the user owns.
	RemoveCartItem(ctx context.Context, id, userID uuid.UUID) error

	// ClearCart deletes all cart rows for a user. Idempotent.
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// OrderService defines operations for the order workflow.
type OrderService interface {
	// CreateOrder creates an order with its items and decrements stock, all
	// in one transaction.
	CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// GetOrder retrieves a single order with items and owner joined.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListOrders retrieves orders matching the admin filters, newest first.
	ListOrders(ctx context.Context, filters model.OrderFilters) ([]model.Order, error)

	// ListOrdersPaged is the range-limited variant of ListOrders.
	ListOrdersPaged(ctx context.Context, filters model.OrderFilters, page, limit int) (*model.PagedOrders, error)

	// GetUserOrders retrieves a user's own orders, newest first.
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// UpdatePaymentStatus settles payment for an order and confirms it.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req *model.PaymentUpdateRequest) (*model.OrderResponse, error)

	// ConfirmOrder marks an order confirmed by an admin.
	ConfirmOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// ExportOrders renders the orders matching the filters as an xlsx workbook.
	ExportOrders(ctx context.Context, filters model.OrderFilters) ([]byte, error)
}
