package service

import (
	"context"
	"fmt"

	"github.com/chandraa-ads/sthree-backend/internal/model"
	"github.com/chandraa-ads/sthree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// AddToCart adds an item to a user's cart. A row matching on product,
// variant, colour, size and image is merged by summing quantities; the
// merged quantity must still fit within the effective stock. The full
// cart is returned so callers see the state after the merge.
func (s *cartService) AddToCart(ctx context.Context, req *model.AddToCartRequest) (*model.CartView, error) {
	if req == nil {
		return nil, model.InvalidRequest("Cart payload is required")
	}
	if req.UserID == uuid.Nil {
		return nil, model.InvalidRequest("User ID is required")
	}
	if req.Quantity <= 0 {
		return nil, model.InvalidRequest("Quantity must be positive")
	}

	product, variant, err := s.resolveProduct(ctx, req.ProductID, req.ProductVariantID)
	if err != nil {
		return nil, err
	}

	item := &model.CartItem{
		UserID:           req.UserID,
		ProductID:        req.ProductID,
		ProductVariantID: req.ProductVariantID,
		Quantity:         req.Quantity,
		Color:            req.Color,
		Size:             req.Size,
		Name:             req.Name,
		Price:            req.Price,
		ImageURL:         req.ImageURL,
	}

	existing, err := s.cartRepo.FindMatch(ctx, item.Key())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID.String()).Msg("failed to look up cart")
		return nil, fmt.Errorf("failed to look up cart: %w", err)
	}

	stock := model.EffectiveStock(product, variant)

	if existing != nil {
		merged := existing.Quantity + req.Quantity
		if merged > stock {
			return nil, insufficientStock(stock)
		}

		existing.Quantity = merged
		// Display snapshots refresh only when the request carries a value,
		// so a bare repeat add keeps what is stored.
		if req.Name != "" {
			existing.Name = req.Name
		}
		if req.Price != 0 {
			existing.Price = req.Price
		}
		if err := s.cartRepo.Update(ctx, existing); err != nil {
			s.logger.Error().Err(err).Str("cart_item_id", existing.ID.String()).Msg("failed to merge cart item")
			return nil, fmt.Errorf("failed to merge cart item: %w", err)
		}
		item = existing

		s.logger.Debug().
			Str("cart_item_id", item.ID.String()).
			Int("quantity", merged).
			Msg("cart item merged")
	} else {
		if req.Quantity > stock {
			return nil, insufficientStock(stock)
		}

		item.ID = uuid.New()
		if err := s.cartRepo.Insert(ctx, item); err != nil {
			s.logger.Error().Err(err).Str("user_id", req.UserID.String()).Msg("failed to insert cart item")
			return nil, fmt.Errorf("failed to insert cart item: %w", err)
		}

		s.logger.Debug().
			Str("cart_item_id", item.ID.String()).
			Int("quantity", item.Quantity).
			Msg("cart item added")
	}

	return s.GetCart(ctx, req.UserID)
}

// GetCart retrieves a user's cart with the aggregate quantity count.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	if userID == uuid.Nil {
		return nil, model.InvalidRequest("User ID is required")
	}

	items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}

	view := &model.CartView{
		CartItems:  make([]model.CartEntry, len(items)),
		TotalItems: total,
	}
	for i := range items {
		view.CartItems[i] = model.NewCartEntry(&items[i], total)
	}

	return view, nil
}

// UpdateCartItem applies a partial update to a cart row the user owns.
func (s *cartService) UpdateCartItem(ctx context.Context, id uuid.UUID, req *model.UpdateCartRequest) (*model.CartEntry, error) {
	if req == nil {
		return nil, model.InvalidRequest("Update payload is required")
	}
	if req.UserID == uuid.Nil {
		return nil, model.InvalidRequest("User ID is required")
	}
	if req.Quantity == nil && req.ProductVariantID == nil && req.Color == nil && req.Size == nil {
		return nil, model.ErrNothingToUpdate
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, model.InvalidRequest("Quantity must be positive")
	}

	item, err := s.cartRepo.GetByID(ctx, id, req.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to get cart item")
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	if req.ProductVariantID != nil {
		item.ProductVariantID = req.ProductVariantID
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Size != nil {
		item.Size = *req.Size
	}

	product, variant, err := s.resolveProduct(ctx, item.ProductID, item.ProductVariantID)
	if err != nil {
		return nil, err
	}
	if stock := model.EffectiveStock(product, variant); item.Quantity > stock {
		return nil, insufficientStock(stock)
	}

	if err := s.cartRepo.Update(ctx, item); err != nil {
		if err == model.ErrCartItemNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to update cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	total, err := s.totalItems(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	entry := model.NewCartEntry(item, total)
	return &entry, nil
}

// RemoveCartItem deletes a single cart row the user owns.
func (s *cartService) RemoveCartItem(ctx context.Context, id, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return model.InvalidRequest("User ID is required")
	}

	if err := s.cartRepo.Delete(ctx, id, userID); err != nil {
		if err == model.ErrCartItemNotFound {
			return err
		}
		s.logger.Error().Err(err).Str("cart_item_id", id.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	s.logger.Debug().Str("cart_item_id", id.String()).Msg("cart item removed")
	return nil
}

// ClearCart deletes all cart rows for a user.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return model.InvalidRequest("User ID is required")
	}

	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.logger.Debug().Str("user_id", userID.String()).Msg("cart cleared")
	return nil
}

// resolveProduct loads the product and, when selected, the variant, applying
// the availability rules shared by every cart mutation.
func (s *cartService) resolveProduct(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID) (*model.Product, *model.ProductVariant, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get product")
		return nil, nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, nil, model.ErrProductNotFound
	}
	if !product.IsActive {
		return nil, nil, model.ErrProductUnavailable
	}

	var variant *model.ProductVariant
	if variantID != nil {
		variant, err = s.productRepo.GetVariantByID(ctx, *variantID)
		if err != nil {
			s.logger.Error().Err(err).Str("variant_id", variantID.String()).Msg("failed to get variant")
			return nil, nil, fmt.Errorf("failed to get variant: %w", err)
		}
		if variant == nil || variant.ProductID != productID {
			return nil, nil, model.ErrVariantNotFound
		}
	}

	return product, variant, nil
}

// totalItems sums quantities across a user's cart.
func (s *cartService) totalItems(ctx context.Context, userID uuid.UUID) (int, error) {
	items, err := s.cartRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total, nil
}

func insufficientStock(available int) *model.DomainError {
	return model.InvalidRequest(fmt.Sprintf("Only %d left in stock", available))
}
