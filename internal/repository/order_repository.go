package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction. The line
// items are embedded as a jsonb snapshot; the relational mirror is written
// by CreateOrderItems in the same transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, user_id, items, payment_method, shipping_address,
			total, total_price, status, payment_status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.Exec(ctx, query,
		order.ID, order.UserID, items, order.PaymentMethod, address,
		order.Total, order.TotalPrice, order.Status, order.PaymentStatus,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, product_id, product_variant_id, product_name,
			price, quantity, selected_size, selected_color, subtotal, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ProductVariantID, item.ProductName,
			item.Price, item.Quantity, item.SelectedSize, item.SelectedColor, item.Subtotal,
			item.ImageURL,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

const orderSelect = `
	SELECT o.id, o.user_id, o.payment_method, o.shipping_address,
	       o.total, o.total_price, o.status, o.payment_status,
	       o.payment_info, o.tracking_info, o.created_at, o.updated_at,
	       u.id, u.full_name, u.email, COALESCE(u.phone, '')
	FROM orders o
	LEFT JOIN users u ON u.id = o.user_id
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var address, paymentInfo, trackingInfo []byte
	var userID *uuid.UUID
	var fullName, email, phone *string

	err := row.Scan(
		&o.ID, &o.UserID, &o.PaymentMethod, &address,
		&o.Total, &o.TotalPrice, &o.Status, &o.PaymentStatus,
		&paymentInfo, &trackingInfo, &o.CreatedAt, &o.UpdatedAt,
		&userID, &fullName, &email, &phone,
	)
	if err != nil {
		return nil, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}
	if len(paymentInfo) > 0 {
		if err := json.Unmarshal(paymentInfo, &o.PaymentInfo); err != nil {
			return nil, fmt.Errorf("failed to decode payment info: %w", err)
		}
	}
	if len(trackingInfo) > 0 {
		if err := json.Unmarshal(trackingInfo, &o.TrackingInfo); err != nil {
			return nil, fmt.Errorf("failed to decode tracking info: %w", err)
		}
	}
	if userID != nil {
		o.User = &model.User{ID: *userID}
		if fullName != nil {
			o.User.FullName = *fullName
		}
		if email != nil {
			o.User.Email = *email
		}
		if phone != nil {
			o.User.Phone = *phone
		}
	}

	return &o, nil
}

// GetByID retrieves an order with its items and owning user joined.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// buildFilterClause translates OrderFilters into a WHERE fragment and its
// positional arguments, starting at $1.
func buildFilterClause(filters model.OrderFilters) (string, []any) {
	clause := ""
	var args []any

	add := func(condition string, value any) {
		args = append(args, value)
		if clause == "" {
			clause = " WHERE "
		} else {
			clause += " AND "
		}
		clause += fmt.Sprintf(condition, len(args))
	}

	if filters.Status != "" {
		add("o.status = $%d", filters.Status)
	}
	if filters.PaymentStatus != "" {
		add("o.payment_status = $%d", filters.PaymentStatus)
	}
	if filters.From != nil && filters.To != nil {
		add("o.created_at >= $%d", *filters.From)
		add("o.created_at <= $%d", *filters.To)
	}
	if filters.User != "" {
		add("u.full_name ILIKE $%d", "%"+filters.User+"%")
	}

	return clause, args
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	refs := make([]*model.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads order_items for the given orders in one round trip.
func (r *orderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	query := `
		SELECT id, order_id, product_id, product_variant_id, product_name,
		       price, quantity, COALESCE(selected_size, ''), COALESCE(selected_color, ''),
		       subtotal, COALESCE(image_url, '')
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductVariantID, &item.ProductName,
			&item.Price, &item.Quantity, &item.SelectedSize, &item.SelectedColor,
			&item.Subtotal, &item.ImageURL,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// ListWithFilters retrieves orders matching the filters, newest first.
func (r *orderRepository) ListWithFilters(ctx context.Context, filters model.OrderFilters) ([]model.Order, error) {
	clause, args := buildFilterClause(filters)
	return r.queryOrders(ctx, orderSelect+clause+` ORDER BY o.created_at DESC`, args...)
}

// ListPaged is the range-limited variant of ListWithFilters.
func (r *orderRepository) ListPaged(ctx context.Context, filters model.OrderFilters, page, limit int) ([]model.Order, int, error) {
	clause, args := buildFilterClause(filters)

	countQuery := `
		SELECT COUNT(*)
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
	` + clause

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count orders")
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * limit
	pagedArgs := append(args, limit, offset)
	query := orderSelect + clause +
		fmt.Sprintf(` ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)

	orders, err := r.queryOrders(ctx, query, pagedArgs...)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetByUser retrieves a user's orders, newest first.
func (r *orderRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.queryOrders(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

// UpdatePaymentStatus marks an order paid and confirmed, stamping the
// payment info. Repeating the update leaves the same terminal values.
func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, info model.PaymentInfo) (*model.Order, error) {
	payment, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment info: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET payment_status = $2, status = $3, payment_info = $4, updated_at = now()
		WHERE id = $1
	`, id, model.PaymentStatusSuccess, model.OrderStatusConfirmed, payment)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update payment status")
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("order_id", id.String()).Msg("order not found for payment update")
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Confirm marks an order confirmed with payment settled (COD).
func (r *orderRepository) Confirm(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_status = $3, updated_at = now()
		WHERE id = $1
	`, id, model.OrderStatusConfirmed, model.PaymentStatusSuccess)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to confirm order")
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("order_id", id.String()).Msg("order not found for confirmation")
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// ListPendingBefore retrieves orders still pending that were created before
// the cutoff.
func (r *orderRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	return r.queryOrders(ctx,
		orderSelect+` WHERE o.status = $1 AND o.created_at < $2 ORDER BY o.created_at DESC`,
		model.OrderStatusPending, cutoff,
	)
}
