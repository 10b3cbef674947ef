package integration

import (
	"context"
	"testing"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			full_name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(50)
		);

		CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			description TEXT
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			original_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			discount_percentage DECIMAL(5, 2) NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			category_id UUID REFERENCES categories(id),
			brand VARCHAR(100) NOT NULL DEFAULT '',
			details JSONB,
			image_url TEXT NOT NULL DEFAULT '',
			images TEXT[],
			is_active BOOLEAN NOT NULL DEFAULT true,
			is_deleted BOOLEAN NOT NULL DEFAULT false,
			average_rating DECIMAL(3, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS product_variants (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			color VARCHAR(50) NOT NULL DEFAULT '',
			size VARCHAR(50) NOT NULL DEFAULT '',
			price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			original_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			discount_percentage DECIMAL(5, 2) NOT NULL DEFAULT 0,
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			image_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS cart (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			product_id UUID NOT NULL REFERENCES products(id),
			product_variant_id UUID REFERENCES product_variants(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			color VARCHAR(50),
			size VARCHAR(50),
			name VARCHAR(255),
			price DECIMAL(10, 2),
			image_url TEXT
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			items JSONB,
			payment_method VARCHAR(50) NOT NULL,
			shipping_address JSONB,
			total DECIMAL(10, 2) NOT NULL DEFAULT 0,
			total_price DECIMAL(10, 2) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			payment_info JSONB,
			tracking_info JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			product_variant_id UUID REFERENCES product_variants(id),
			product_name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			selected_size VARCHAR(50),
			selected_color VARCHAR(50),
			subtotal DECIMAL(10, 2) NOT NULL,
			image_url TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_cart_user_id ON cart(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_product_variants_product_id ON product_variants(product_id);
		CREATE INDEX IF NOT EXISTS idx_reviews_product_id ON reviews(product_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// CleanupDB truncates all tables between test cases.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE order_items, orders, cart, reviews, product_variants, products, categories, users CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to cleanup database: %v", err)
	}
}

// SeedUser inserts a user and returns it.
func SeedUser(t *testing.T, pool *pgxpool.Pool, fullName, email string) *model.User {
	t.Helper()

	user := &model.User{ID: uuid.New(), FullName: fullName, Email: email, Phone: "9876543210"}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, full_name, email, phone) VALUES ($1, $2, $3, $4)`,
		user.ID, user.FullName, user.Email, user.Phone,
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedProduct inserts an active product and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, price float64, stock int) *model.Product {
	t.Helper()

	now := time.Now()
	product := &model.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, name, price, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ID, product.Name, product.Price, product.Stock, product.IsActive, now, now)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

// SeedVariant inserts a variant for a product and returns it.
func SeedVariant(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, color, size string, price float64, stock int) *model.ProductVariant {
	t.Helper()

	variant := &model.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Color:     color,
		Size:      size,
		Price:     price,
		Stock:     stock,
	}
	_, err := pool.Exec(context.Background(), `
		INSERT INTO product_variants (id, product_id, color, size, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, variant.ID, variant.ProductID, variant.Color, variant.Size, variant.Price, variant.Stock)
	if err != nil {
		t.Fatalf("failed to seed variant: %v", err)
	}
	return variant
}
