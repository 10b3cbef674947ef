package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `
	id, name, price, original_price, discount_percentage, stock,
	category_id, brand, details, image_url, images,
	is_active, is_deleted, average_rating, created_at, updated_at
`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var details []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.DiscountPercentage, &p.Stock,
		&p.CategoryID, &p.Brand, &details, &p.ImageURL, &p.Images,
		&p.IsActive, &p.IsDeleted, &p.AverageRating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &p.Details); err != nil {
			return nil, fmt.Errorf("failed to decode product details: %w", err)
		}
	}
	return &p, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND is_deleted = false
	`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetAll retrieves active products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_active = true AND is_deleted = false
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

const variantColumns = `
	id, product_id, color, size, price, original_price,
	discount_percentage, stock, image_url
`

func scanVariant(row pgx.Row) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Price, &v.OriginalPrice,
		&v.DiscountPercentage, &v.Stock, &v.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVariantByID retrieves a single variant by its ID.
func (r *productRepository) GetVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE id = $1
	`

	v, err := scanVariant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("variant_id", id.String()).Msg("variant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("variant_id", id.String()).Msg("failed to query variant")
		return nil, fmt.Errorf("failed to query variant: %w", err)
	}

	return v, nil
}

// GetVariantsByProduct retrieves all variants of a product.
func (r *productRepository) GetVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	var variants []model.ProductVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, *v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

// GetOrCreateCategory resolves a category by name, creating it on first use.
func (r *productRepository) GetOrCreateCategory(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err == nil {
		return &c, nil
	}
	if err != pgx.ErrNoRows {
		r.logger.Error().Err(err).Str("category", name).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	c = model.Category{ID: uuid.New(), Name: name}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)`,
		c.ID, c.Name,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("category", name).Msg("failed to create category")
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	r.logger.Debug().Str("category", name).Str("category_id", c.ID.String()).Msg("category created")
	return &c, nil
}

// GetCategory retrieves a category by ID.
func (r *productRepository) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

// CreateProduct inserts a product together with its variants in one transaction.
func (r *productRepository) CreateProduct(ctx context.Context, product *model.Product, variants []model.ProductVariant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	details, err := json.Marshal(product.Details)
	if err != nil {
		return fmt.Errorf("failed to encode product details: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO products (
			id, name, price, original_price, discount_percentage, stock,
			category_id, brand, details, image_url, images,
			is_active, is_deleted, average_rating, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		product.ID, product.Name, product.Price, product.OriginalPrice,
		product.DiscountPercentage, product.Stock, product.CategoryID, product.Brand,
		details, product.ImageURL, product.Images,
		product.IsActive, product.IsDeleted, product.AverageRating,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	for i := range variants {
		if err := insertVariant(ctx, tx, &variants[i]); err != nil {
			r.logger.Error().Err(err).
				Str("product_id", product.ID.String()).
				Msg("failed to create product variant")
			return fmt.Errorf("failed to create product variant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to commit product")
		return fmt.Errorf("failed to commit product: %w", err)
	}

	r.logger.Debug().
		Str("product_id", product.ID.String()).
		Int("variants", len(variants)).
		Msg("product created successfully")

	return nil
}

func insertVariant(ctx context.Context, tx pgx.Tx, v *model.ProductVariant) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_variants (
			id, product_id, color, size, price, original_price,
			discount_percentage, stock, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		v.ID, v.ProductID, v.Color, v.Size, v.Price, v.OriginalPrice,
		v.DiscountPercentage, v.Stock, v.ImageURL,
	)
	return err
}

// CreateVariant inserts a single variant.
func (r *productRepository) CreateVariant(ctx context.Context, variant *model.ProductVariant) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO product_variants (
			id, product_id, color, size, price, original_price,
			discount_percentage, stock, image_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		variant.ID, variant.ProductID, variant.Color, variant.Size, variant.Price,
		variant.OriginalPrice, variant.DiscountPercentage, variant.Stock, variant.ImageURL,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("variant_id", variant.ID.String()).
			Str("product_id", variant.ProductID.String()).
			Msg("failed to create variant")
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// AddReview inserts a review and recomputes the product's average rating in
// the same transaction.
func (r *productRepository) AddReview(ctx context.Context, review *model.Review) (float64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		review.ID, review.ProductID, review.UserID, review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", review.ProductID.String()).Msg("failed to insert review")
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	var average float64
	err = tx.QueryRow(ctx, `
		UPDATE products
		SET average_rating = (SELECT AVG(rating) FROM reviews WHERE product_id = $1),
		    updated_at = now()
		WHERE id = $1
		RETURNING average_rating
	`, review.ProductID).Scan(&average)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", review.ProductID.String()).Msg("failed to update average rating")
		return 0, fmt.Errorf("failed to update average rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit review: %w", err)
	}

	return average, nil
}

// DecrementProductStock conditionally decrements product stock within the
// provided transaction. The WHERE guard makes the check-and-decrement a
// single atomic statement, closing the read-then-write oversell window.
func (r *productRepository) DecrementProductStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to decrement product stock")
		return false, fmt.Errorf("failed to decrement product stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// DecrementVariantStock is the variant counterpart of DecrementProductStock.
func (r *productRepository) DecrementVariantStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE product_variants
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`, id, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("variant_id", id.String()).
			Int("quantity", quantity).
			Msg("failed to decrement variant stock")
		return false, fmt.Errorf("failed to decrement variant stock: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
