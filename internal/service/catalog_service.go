package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"
	"github.com/chandraa-ads/sthree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
func NewCatalogService(productRepo repository.ProductRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "catalog").Logger(),
	}
}

// ListProducts retrieves active products with pagination.
func (s *catalogService) ListProducts(ctx context.Context, limit, offset int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product joined with its variants and category.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	variants, err := s.productRepo.GetVariantsByProduct(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product variants")
		return nil, fmt.Errorf("failed to get product variants: %w", err)
	}

	resp := &model.ProductResponse{
		Product:  *product,
		Variants: variants,
	}

	if product.CategoryID != nil {
		category, err := s.productRepo.GetCategory(ctx, *product.CategoryID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product category")
			return nil, fmt.Errorf("failed to get product category: %w", err)
		}
		if category != nil {
			resp.Category = category.Name
		}
	}

	return resp, nil
}

// CreateProduct creates a product with optional variants.
func (s *catalogService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.ProductResponse, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	product := &model.Product{
		ID:                 uuid.New(),
		Name:               req.Name,
		Price:              model.DerivePrice(req.OriginalPrice, req.DiscountPercentage),
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		Brand:              req.Brand,
		Details:            req.Details,
		ImageURL:           req.ImageURL,
		Images:             req.Images,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if req.Category != "" {
		category, err := s.productRepo.GetOrCreateCategory(ctx, req.Category)
		if err != nil {
			s.logger.Error().Err(err).Str("category", req.Category).Msg("failed to resolve category")
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		product.CategoryID = &category.ID
	}

	variants := make([]model.ProductVariant, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = model.ProductVariant{
			ID:                 uuid.New(),
			ProductID:          product.ID,
			Color:              v.Color,
			Size:               v.Size,
			Price:              model.DerivePrice(v.OriginalPrice, v.DiscountPercentage),
			OriginalPrice:      v.OriginalPrice,
			DiscountPercentage: v.DiscountPercentage,
			Stock:              v.Stock,
			ImageURL:           v.ImageURL,
		}
	}

	if err := s.productRepo.CreateProduct(ctx, product, variants); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("name", product.Name).
		Int("variant_count", len(variants)).
		Msg("product created")

	return &model.ProductResponse{
		Product:  *product,
		Category: req.Category,
		Variants: variants,
	}, nil
}

// AddVariant adds a variant to an existing product.
func (s *catalogService) AddVariant(ctx context.Context, productID uuid.UUID, req *model.CreateVariantRequest) (*model.ProductVariant, error) {
	if req == nil {
		return nil, model.InvalidRequest("Variant payload is required")
	}
	if req.OriginalPrice <= 0 {
		return nil, model.InvalidRequest("Original price must be positive")
	}
	if req.Stock < 0 {
		return nil, model.InvalidRequest("Stock cannot be negative")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	variant := &model.ProductVariant{
		ID:                 uuid.New(),
		ProductID:          productID,
		Color:              req.Color,
		Size:               req.Size,
		Price:              model.DerivePrice(req.OriginalPrice, req.DiscountPercentage),
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
		ImageURL:           req.ImageURL,
	}

	if err := s.productRepo.CreateVariant(ctx, variant); err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to create variant")
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("variant_id", variant.ID.String()).
		Msg("variant created")

	return variant, nil
}

// AddReview records a review and returns the recomputed average rating.
func (s *catalogService) AddReview(ctx context.Context, productID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, float64, error) {
	if req == nil {
		return nil, 0, model.InvalidRequest("Review payload is required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, 0, model.InvalidRequest("Rating must be between 1 and 5")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get product")
		return nil, 0, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, 0, model.ErrProductNotFound
	}

	review := &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	average, err := s.productRepo.AddReview(ctx, review)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to add review")
		return nil, 0, fmt.Errorf("failed to add review: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Int("rating", req.Rating).
		Float64("average_rating", average).
		Msg("review added")

	return review, average, nil
}

// validateProductRequest validates the product creation payload.
func validateProductRequest(req *model.CreateProductRequest) error {
	if req == nil {
		return model.InvalidRequest("Product payload is required")
	}
	if req.Name == "" {
		return model.InvalidRequest("Product name is required")
	}
	if req.OriginalPrice <= 0 {
		return model.InvalidRequest("Original price must be positive")
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return model.InvalidRequest("Discount percentage must be between 0 and 100")
	}
	if req.Stock < 0 {
		return model.InvalidRequest("Stock cannot be negative")
	}
	for i, v := range req.Variants {
		if v.OriginalPrice <= 0 {
			return model.InvalidRequest(fmt.Sprintf("Variant %d: original price must be positive", i))
		}
		if v.Stock < 0 {
			return model.InvalidRequest(fmt.Sprintf("Variant %d: stock cannot be negative", i))
		}
	}
	return nil
}
