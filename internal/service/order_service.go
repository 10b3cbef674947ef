package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/export"
	"github.com/chandraa-ads/sthree-backend/internal/model"
	"github.com/chandraa-ads/sthree-backend/internal/notification"
	"github.com/chandraa-ads/sthree-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// notifyTimeout bounds each background notification dispatch.
const notifyTimeout = 15 * time.Second

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	notifier    notification.Notifier
	exporter    *export.OrderExporter
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notifier notification.Notifier,
	exporter *export.OrderExporter,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		exporter:    exporter,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// orderLine pairs a requested item with the catalog rows it was validated
// against, so item construction can reuse them.
type orderLine struct {
	product *model.Product
	variant *model.ProductVariant
}

// CreateOrder creates an order with its items and decrements stock, all in
// one transaction. Stock decrements are conditional: a line item whose
// product or variant no longer has enough stock aborts the whole order.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	lines, err := s.validateOrderRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          req.UserID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		Status:          model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.TotalPrice = model.OrderTotal(req.Items)
	order.Total = order.TotalPrice

	order.Items = make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		order.Items[i] = model.OrderItem{
			ID:               uuid.New(),
			OrderID:          order.ID,
			ProductID:        item.ProductID,
			ProductVariantID: item.ProductVariantID,
			ProductName:      item.ProductName,
			Price:            item.Price,
			Quantity:         item.Quantity,
			SelectedSize:     item.SelectedSize,
			SelectedColor:    item.SelectedColor,
			Subtotal:         item.Price * float64(item.Quantity),
			ImageURL:         itemImage(item.ImageURL, lines[i]),
		}
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, item := range order.Items {
		var ok bool
		if item.ProductVariantID != nil {
			ok, err = s.productRepo.DecrementVariantStock(ctx, tx, *item.ProductVariantID, item.Quantity)
		} else {
			ok, err = s.productRepo.DecrementProductStock(ctx, tx, item.ProductID, item.Quantity)
		}
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Msg("failed to decrement stock")
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		if !ok {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("insufficient stock, aborting order")
			err = model.InvalidRequest(fmt.Sprintf("Insufficient stock for %s", item.ProductName))
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The order is durable from here on. Notification delivery is
	// best-effort and must not fail the request.
	s.notifyAsync(order, s.notifier.OrderCreated)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", req.UserID.String()).
		Float64("total_price", order.TotalPrice).
		Int("item_count", len(order.Items)).
		Msg("order created")

	return &model.OrderResponse{
		Message: "Order created successfully",
		Order:   order,
	}, nil
}

// GetOrder retrieves a single order with items and owner joined.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders retrieves orders matching the admin filters, newest first.
func (s *orderService) ListOrders(ctx context.Context, filters model.OrderFilters) ([]model.Order, error) {
	orders, err := s.orderRepo.ListWithFilters(ctx, filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersPaged is the range-limited variant of ListOrders.
func (s *orderService) ListOrdersPaged(ctx context.Context, filters model.OrderFilters, page, limit int) (*model.PagedOrders, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	orders, total, err := s.orderRepo.ListPaged(ctx, filters, page, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &model.PagedOrders{
		Data:       orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// GetUserOrders retrieves a user's own orders, newest first.
func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	if userID == uuid.Nil {
		return nil, model.InvalidRequest("User ID is required")
	}

	orders, err := s.orderRepo.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}
	return orders, nil
}

// UpdatePaymentStatus settles payment for an order and confirms it.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req *model.PaymentUpdateRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.InvalidRequest("Payment payload is required")
	}

	paidAt := time.Now()
	info := model.PaymentInfo{
		TransactionID: req.TransactionID,
		Method:        req.Method,
		PaidAt:        &paidAt,
	}

	order, err := s.orderRepo.UpdatePaymentStatus(ctx, id, info)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update payment status")
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.notifyAsync(order, s.notifier.PaymentReceived)

	s.logger.Info().
		Str("order_id", id.String()).
		Str("transaction_id", req.TransactionID).
		Msg("payment recorded")

	return &model.OrderResponse{
		Message: "Payment updated successfully",
		Order:   order,
	}, nil
}

// ConfirmOrder marks an order confirmed by an admin.
func (s *orderService) ConfirmOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, err := s.orderRepo.Confirm(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to confirm order")
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	s.notifyAsync(order, s.notifier.OrderConfirmed)

	s.logger.Info().Str("order_id", id.String()).Msg("order confirmed")

	return &model.OrderResponse{
		Message: "Order confirmed successfully",
		Order:   order,
	}, nil
}

// ExportOrders renders the orders matching the filters as an xlsx workbook.
func (s *orderService) ExportOrders(ctx context.Context, filters model.OrderFilters) ([]byte, error) {
	orders, err := s.orderRepo.ListWithFilters(ctx, filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders for export")
		return nil, fmt.Errorf("failed to list orders for export: %w", err)
	}

	data, err := s.exporter.Workbook(orders)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to render order export")
		return nil, fmt.Errorf("failed to render order export: %w", err)
	}

	return data, nil
}

// notifyAsync dispatches a notification in the background so delivery
// latency and failures never surface on the request path.
func (s *orderService) notifyAsync(order *model.Order, send func(context.Context, *model.Order, *model.User) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		user := order.User
		if user == nil {
			var err error
			user, err = s.userRepo.GetByID(ctx, order.UserID)
			if err != nil {
				s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to load user for notification")
				return
			}
		}

		if err := send(ctx, order, user); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to send notification")
		}
	}()
}

// validateOrderRequest validates the order creation payload, including
// existence and availability of every referenced product and variant. The
// loaded catalog rows are returned, one orderLine per requested item.
func (s *orderService) validateOrderRequest(ctx context.Context, req *model.CreateOrderRequest) ([]orderLine, error) {
	if req == nil {
		return nil, model.InvalidRequest("Order payload is required")
	}
	if req.UserID == uuid.Nil {
		return nil, model.InvalidRequest("User ID is required")
	}
	if len(req.Items) == 0 {
		return nil, model.ErrEmptyOrder
	}
	if req.PaymentMethod == "" {
		return nil, model.InvalidRequest("Payment method is required")
	}
	if req.ShippingAddress == nil {
		return nil, model.InvalidRequest("Shipping address is required")
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID.String()).Msg("failed to get user")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	lines := make([]orderLine, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, model.InvalidRequest(fmt.Sprintf("Item %d: quantity must be positive", i))
		}
		if item.Price < 0 {
			return nil, model.InvalidRequest(fmt.Sprintf("Item %d: price cannot be negative", i))
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", item.ProductID.String()).Msg("failed to get product")
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		if product == nil {
			return nil, model.ErrProductNotFound
		}
		if !product.IsActive {
			return nil, model.ErrProductUnavailable
		}
		lines[i].product = product

		if item.ProductVariantID != nil {
			variant, err := s.productRepo.GetVariantByID(ctx, *item.ProductVariantID)
			if err != nil {
				s.logger.Error().Err(err).Str("variant_id", item.ProductVariantID.String()).Msg("failed to get variant")
				return nil, fmt.Errorf("failed to get variant: %w", err)
			}
			if variant == nil || variant.ProductID != item.ProductID {
				return nil, model.ErrVariantNotFound
			}
			lines[i].variant = variant
		}
	}

	return lines, nil
}

// itemImage resolves the image stored with an order item: the explicit
// request value wins, then the variant image, then the product image.
func itemImage(explicit string, line orderLine) string {
	if explicit != "" {
		return explicit
	}
	if line.variant != nil && line.variant.ImageURL != "" {
		return line.variant.ImageURL
	}
	return line.product.ImageURL
}
