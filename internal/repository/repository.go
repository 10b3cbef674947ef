package repository

import (
	"context"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID. Returns nil when the
	// product does not exist or has been soft-deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetAll retrieves active products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetVariantByID retrieves a single variant. Returns nil when absent.
	GetVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)

	// GetVariantsByProduct retrieves all variants of a product.
	GetVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)

	// GetOrCreateCategory resolves a category by name, creating it on first use.
	GetOrCreateCategory(ctx context.Context, name string) (*model.Category, error)

	// GetCategory retrieves a category by ID. Returns nil when absent.
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)

	// CreateProduct inserts a product together with its variants.
	CreateProduct(ctx context.Context, product *model.Product, variants []model.ProductVariant) error

	// CreateVariant inserts a single variant.
	CreateVariant(ctx context.Context, variant *model.ProductVariant) error

	// AddReview inserts a review and recomputes the product's average
	// rating in the same transaction. Returns the new average.
	AddReview(ctx context.Context, review *model.Review) (float64, error)

	// DecrementProductStock conditionally decrements product stock within
	// the provided transaction. Returns false when remaining stock is
	// insufficient (no row updated).
	DecrementProductStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)

	// DecrementVariantStock is the variant counterpart of DecrementProductStock.
	DecrementVariantStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error)
}

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByID retrieves a cart item owned by the given user. Returns nil
	// when absent or owned by someone else.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.CartItem, error)

	// GetByUser retrieves all cart rows for a user.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)

	// FindMatch retrieves the row matching the merge key, if any.
	FindMatch(ctx context.Context, key model.CartKey) (*model.CartItem, error)

	// Insert creates a new cart row.
	Insert(ctx context.Context, item *model.CartItem) error

	// Update persists quantity and denormalised field changes.
	Update(ctx context.Context, item *model.CartItem) error

	// Delete removes a single cart row owned by the user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// DeleteByUser removes all cart rows for a user. Idempotent.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items and owning user joined.
	// Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListWithFilters retrieves orders matching the filters, newest first,
	// with user contact info and items joined.
	ListWithFilters(ctx context.Context, filters model.OrderFilters) ([]model.Order, error)

	// ListPaged is the range-limited variant of ListWithFilters. The second
	// return value is the total match count before paging.
	ListPaged(ctx context.Context, filters model.OrderFilters, page, limit int) ([]model.Order, int, error)

	// GetByUser retrieves a user's orders, newest first, items joined.
	GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// UpdatePaymentStatus marks an order paid and confirmed, stamping the
	// payment info. Returns nil when the order does not exist.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, info model.PaymentInfo) (*model.Order, error)

	// Confirm marks an order confirmed with payment settled (COD).
	// Returns nil when the order does not exist.
	Confirm(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListPendingBefore retrieves orders still pending that were created
	// before the cutoff, for reminder fan-out.
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error)
}

// UserRepository defines read access to user contact records.
type UserRepository interface {
	// GetByID retrieves a user. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
