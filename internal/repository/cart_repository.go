package repository

import (
	"context"
	"fmt"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

const cartColumns = `
	id, user_id, product_id, product_variant_id, quantity,
	COALESCE(color, ''), COALESCE(size, ''), COALESCE(name, ''),
	COALESCE(price, 0), COALESCE(image_url, '')
`

func scanCartItem(row pgx.Row) (*model.CartItem, error) {
	var item model.CartItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.ProductVariantID, &item.Quantity,
		&item.Color, &item.Size, &item.Name, &item.Price, &item.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByID retrieves a cart item owned by the given user.
func (r *cartRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart
		WHERE id = $1 AND user_id = $2
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("cart_item_id", id.String()).Msg("cart item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return item, nil
}

// GetByUser retrieves all cart rows for a user.
func (r *cartRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// FindMatch retrieves the row matching the merge key, if any. NULL variant,
// colour, size and image all participate in the match so distinct
// selections stay as separate rows.
func (r *cartRepository) FindMatch(ctx context.Context, key model.CartKey) (*model.CartItem, error) {
	query := `
		SELECT ` + cartColumns + `
		FROM cart
		WHERE user_id = $1
		  AND product_id = $2
		  AND product_variant_id IS NOT DISTINCT FROM $3
		  AND COALESCE(color, '') = $4
		  AND COALESCE(size, '') = $5
		  AND COALESCE(image_url, '') = $6
	`

	item, err := scanCartItem(r.pool.QueryRow(ctx, query,
		key.UserID, key.ProductID, key.ProductVariantID, key.Color, key.Size, key.ImageURL,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("user_id", key.UserID.String()).
			Str("product_id", key.ProductID.String()).
			Msg("failed to query matching cart item")
		return nil, fmt.Errorf("failed to query matching cart item: %w", err)
	}

	return item, nil
}

// Insert creates a new cart row.
func (r *cartRepository) Insert(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart (
			id, user_id, product_id, product_variant_id, quantity,
			color, size, name, price, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.UserID, item.ProductID, item.ProductVariantID, item.Quantity,
		item.Color, item.Size, item.Name, item.Price, item.ImageURL,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("cart_item_id", item.ID.String()).
			Str("user_id", item.UserID.String()).
			Msg("failed to insert cart item")
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	r.logger.Debug().Str("cart_item_id", item.ID.String()).Msg("cart item inserted")
	return nil
}

// Update persists quantity and denormalised field changes.
func (r *cartRepository) Update(ctx context.Context, item *model.CartItem) error {
	query := `
		UPDATE cart
		SET product_variant_id = $3, quantity = $4, color = $5, size = $6,
		    name = $7, price = $8, image_url = $9
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		item.ID, item.UserID, item.ProductVariantID, item.Quantity,
		item.Color, item.Size, item.Name, item.Price, item.ImageURL,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", item.ID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// Delete removes a single cart row owned by the user.
func (r *cartRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	r.logger.Debug().Str("cart_item_id", id.String()).Msg("cart item deleted")
	return nil
}

// DeleteByUser removes all cart rows for a user. Idempotent.
func (r *cartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("user_id", userID.String()).Msg("cart cleared")
	return nil
}
