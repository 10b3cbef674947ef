package service

import (
	"context"
	"testing"

	"github.com/chandraa-ads/sthree-backend/internal/export"
	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderServiceMocks struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	userRepo    *MockUserRepository
	notifier    *MockNotifier
}

func newOrderService(t *testing.T) (OrderService, *orderServiceMocks) {
	t.Helper()
	m := &orderServiceMocks{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		userRepo:    new(MockUserRepository),
		notifier:    new(MockNotifier),
	}
	svc := NewOrderService(
		m.orderRepo, m.productRepo, m.userRepo,
		m.notifier, export.NewOrderExporter(zerolog.Nop()), zerolog.Nop(),
	)
	return svc, m
}

func validOrderRequest(userID uuid.UUID, items ...model.OrderItemRequest) *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		UserID:          userID,
		PaymentMethod:   "upi",
		ShippingAddress: &model.ShippingAddress{Line1: "12 MG Road", City: "Chennai", Pincode: "600001"},
		Items:           items,
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	userID := uuid.New()
	user := &model.User{ID: userID, FullName: "Priya S", Email: "priya@example.com"}
	product := &model.Product{ID: uuid.New(), Name: "Silk Saree", Stock: 10, IsActive: true}
	mockTx := new(MockTx)

	req := validOrderRequest(userID,
		model.OrderItemRequest{ProductID: product.ID, ProductName: "Silk Saree", Price: 899, Quantity: 2},
	)

	m.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	m.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	m.productRepo.On("DecrementProductStock", ctx, mockTx, product.ID, 2).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	// Notification runs on a background goroutine; it may or may not land
	// before the test finishes.
	m.notifier.On("OrderCreated", mock.Anything, mock.AnythingOfType("*model.Order"), mock.Anything).Return(nil).Maybe()

	resp, err := svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "Order created successfully", resp.Message)
	assert.Equal(t, model.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, model.PaymentStatusPending, resp.Order.PaymentStatus)
	assert.Equal(t, float64(1798), resp.Order.TotalPrice)
	require.Len(t, resp.Order.Items, 1)
	assert.Equal(t, float64(1798), resp.Order.Items[0].Subtotal)
	assert.True(t, mockTx.committed)

	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_InsufficientStockRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	userID := uuid.New()
	user := &model.User{ID: userID, Email: "priya@example.com"}
	product := &model.Product{ID: uuid.New(), Name: "Silk Saree", Stock: 1, IsActive: true}
	mockTx := new(MockTx)

	req := validOrderRequest(userID,
		model.OrderItemRequest{ProductID: product.ID, ProductName: "Silk Saree", Price: 899, Quantity: 5},
	)

	m.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	m.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	m.productRepo.On("DecrementProductStock", ctx, mockTx, product.ID, 5).Return(false, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.CreateOrder(ctx, req)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.ErrCodeInvalidRequest, domainErr.Code)
	assert.True(t, mockTx.rolledBack, "failed decrement must roll the transaction back")
	assert.False(t, mockTx.committed)
	m.notifier.AssertNotCalled(t, "OrderCreated", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_VariantDecrement(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	userID := uuid.New()
	user := &model.User{ID: userID, Email: "priya@example.com"}
	product := &model.Product{ID: uuid.New(), Name: "Silk Saree", Stock: 0, IsActive: true}
	variant := &model.ProductVariant{ID: uuid.New(), ProductID: product.ID, Stock: 5}
	mockTx := new(MockTx)

	req := validOrderRequest(userID,
		model.OrderItemRequest{ProductID: product.ID, ProductVariantID: &variant.ID, ProductName: "Silk Saree", Price: 899, Quantity: 2},
	)

	m.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.productRepo.On("GetVariantByID", ctx, variant.ID).Return(variant, nil)
	m.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	m.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	m.productRepo.On("DecrementVariantStock", ctx, mockTx, variant.ID, 2).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	m.notifier.On("OrderCreated", mock.Anything, mock.AnythingOfType("*model.Order"), mock.Anything).Return(nil).Maybe()

	_, err := svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	m.productRepo.AssertCalled(t, "DecrementVariantStock", ctx, mockTx, variant.ID, 2)
	m.productRepo.AssertNotCalled(t, "DecrementProductStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_EmptyItems(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.CreateOrder(context.Background(), validOrderRequest(uuid.New()))

	assert.ErrorIs(t, err, model.ErrEmptyOrder)
}

func TestOrderService_CreateOrder_UserNotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	m.userRepo.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)

	req := validOrderRequest(uuid.New(),
		model.OrderItemRequest{ProductID: uuid.New(), Price: 100, Quantity: 1},
	)
	_, err := svc.CreateOrder(ctx, req)

	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestOrderService_CreateOrder_ItemImageFallsBackToCatalog(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	userID := uuid.New()
	user := &model.User{ID: userID, Email: "priya@example.com"}
	product := &model.Product{
		ID:       uuid.New(),
		Name:     "Silk Saree",
		Stock:    10,
		IsActive: true,
		ImageURL: "https://cdn.example.com/saree.jpg",
	}
	variant := &model.ProductVariant{
		ID:        uuid.New(),
		ProductID: product.ID,
		Stock:     5,
		ImageURL:  "https://cdn.example.com/saree-red.jpg",
	}
	mockTx := new(MockTx)

	// Neither item carries an image; the variant line must pick up the
	// variant image, the plain line the product image.
	req := validOrderRequest(userID,
		model.OrderItemRequest{ProductID: product.ID, ProductVariantID: &variant.ID, ProductName: "Silk Saree", Price: 899, Quantity: 1},
		model.OrderItemRequest{ProductID: product.ID, ProductName: "Silk Saree", Price: 899, Quantity: 1},
	)

	m.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.productRepo.On("GetVariantByID", ctx, variant.ID).Return(variant, nil)
	m.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	m.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	m.productRepo.On("DecrementVariantStock", ctx, mockTx, variant.ID, 1).Return(true, nil)
	m.productRepo.On("DecrementProductStock", ctx, mockTx, product.ID, 1).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	m.notifier.On("OrderCreated", mock.Anything, mock.AnythingOfType("*model.Order"), mock.Anything).Return(nil).Maybe()

	resp, err := svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.Len(t, resp.Order.Items, 2)
	assert.Equal(t, variant.ImageURL, resp.Order.Items[0].ImageURL)
	assert.Equal(t, product.ImageURL, resp.Order.Items[1].ImageURL)
}

func TestOrderService_CreateOrder_ItemImageKeepsExplicitValue(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	userID := uuid.New()
	user := &model.User{ID: userID, Email: "priya@example.com"}
	product := &model.Product{
		ID:       uuid.New(),
		Name:     "Silk Saree",
		Stock:    10,
		IsActive: true,
		ImageURL: "https://cdn.example.com/saree.jpg",
	}
	mockTx := new(MockTx)

	req := validOrderRequest(userID,
		model.OrderItemRequest{
			ProductID:   product.ID,
			ProductName: "Silk Saree",
			Price:       899,
			Quantity:    1,
			ImageURL:    "https://cdn.example.com/custom.jpg",
		},
	)

	m.userRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
	m.productRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	m.orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	m.orderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	m.orderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	m.productRepo.On("DecrementProductStock", ctx, mockTx, product.ID, 1).Return(true, nil)
	mockTx.On("Commit", ctx).Return(nil)
	m.notifier.On("OrderCreated", mock.Anything, mock.AnythingOfType("*model.Order"), mock.Anything).Return(nil).Maybe()

	resp, err := svc.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.Len(t, resp.Order.Items, 1)
	assert.Equal(t, "https://cdn.example.com/custom.jpg", resp.Order.Items[0].ImageURL)
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	m.orderRepo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)

	_, err := svc.GetOrder(ctx, uuid.New())

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderService_ListOrdersPaged_Defaults(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	m.orderRepo.On("ListPaged", ctx, model.OrderFilters{}, 1, 10).Return([]model.Order{}, 25, nil)

	paged, err := svc.ListOrdersPaged(ctx, model.OrderFilters{}, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, paged.Page)
	assert.Equal(t, 10, paged.Limit)
	assert.Equal(t, 25, paged.Total)
	assert.Equal(t, 3, paged.TotalPages)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	orderID := uuid.New()
	updated := &model.Order{
		ID:            orderID,
		UserID:        uuid.New(),
		Status:        model.OrderStatusConfirmed,
		PaymentStatus: model.PaymentStatusSuccess,
		User:          &model.User{Email: "priya@example.com"},
	}

	m.orderRepo.On("UpdatePaymentStatus", ctx, orderID, mock.MatchedBy(func(info model.PaymentInfo) bool {
		return info.TransactionID == "txn_1" && info.Method == "upi" && info.PaidAt != nil
	})).Return(updated, nil)
	m.notifier.On("PaymentReceived", mock.Anything, updated, mock.Anything).Return(nil).Maybe()

	resp, err := svc.UpdatePaymentStatus(ctx, orderID, &model.PaymentUpdateRequest{
		TransactionID: "txn_1",
		Method:        "upi",
	})

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, resp.Order.Status)
	assert.Equal(t, model.PaymentStatusSuccess, resp.Order.PaymentStatus)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_UpdatePaymentStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	m.orderRepo.On("UpdatePaymentStatus", ctx, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("model.PaymentInfo")).
		Return(nil, nil)

	_, err := svc.UpdatePaymentStatus(ctx, uuid.New(), &model.PaymentUpdateRequest{TransactionID: "txn_1"})

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
	m.notifier.AssertNotCalled(t, "PaymentReceived", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_ConfirmOrder(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	orderID := uuid.New()
	confirmed := &model.Order{
		ID:            orderID,
		UserID:        uuid.New(),
		Status:        model.OrderStatusConfirmed,
		PaymentStatus: model.PaymentStatusSuccess,
		User:          &model.User{Email: "priya@example.com"},
	}

	m.orderRepo.On("Confirm", ctx, orderID).Return(confirmed, nil)
	m.notifier.On("OrderConfirmed", mock.Anything, confirmed, mock.Anything).Return(nil).Maybe()

	resp, err := svc.ConfirmOrder(ctx, orderID)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, resp.Order.Status)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_ConfirmOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	m.orderRepo.On("Confirm", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil, nil)

	_, err := svc.ConfirmOrder(ctx, uuid.New())

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestOrderService_ExportOrders(t *testing.T) {
	ctx := context.Background()
	svc, m := newOrderService(t)

	orders := []model.Order{
		{ID: uuid.New(), Status: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending},
	}
	m.orderRepo.On("ListWithFilters", ctx, model.OrderFilters{}).Return(orders, nil)

	data, err := svc.ExportOrders(ctx, model.OrderFilters{})

	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
