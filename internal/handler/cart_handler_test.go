package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chandraa-ads/sthree-backend/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddToCart(ctx context.Context, req *model.AddToCartRequest) (*model.CartView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) UpdateCartItem(ctx context.Context, id uuid.UUID, req *model.UpdateCartRequest) (*model.CartEntry, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartEntry), args.Error(1)
}

func (m *MockCartService) RemoveCartItem(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newCartRouter(h *CartHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/cart", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/api/cart", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/clear/{userId}", h.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart/{id}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/api/cart/{id}", h.Remove).Methods(http.MethodDelete)
	return r
}

func TestCartHandler_Add(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	entryID := uuid.New()
	view := &model.CartView{
		CartItems:  []model.CartEntry{{ID: entryID, Quantity: 2, TotalItems: 2}},
		TotalItems: 2,
	}
	mockSvc.On("AddToCart", mock.Anything, mock.AnythingOfType("*model.AddToCartRequest")).Return(view, nil)

	body, _ := json.Marshal(model.AddToCartRequest{
		UserID:    uuid.New(),
		ProductID: uuid.New(),
		Quantity:  2,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got model.CartView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.CartItems, 1)
	assert.Equal(t, entryID, got.CartItems[0].ID)
	assert.Equal(t, 2, got.TotalItems)
}

func TestCartHandler_Add_InvalidJSON(t *testing.T) {
	h := NewCartHandler(new(MockCartService), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeInvalidJSON, resp.Error)
}

func TestCartHandler_Add_InsufficientStock(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	mockSvc.On("AddToCart", mock.Anything, mock.AnythingOfType("*model.AddToCartRequest")).
		Return(nil, model.InvalidRequest("Only 1 left in stock"))

	body, _ := json.Marshal(model.AddToCartRequest{UserID: uuid.New(), ProductID: uuid.New(), Quantity: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/cart", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, model.ErrCodeInvalidRequest, resp.Error)
	assert.Equal(t, "Only 1 left in stock", resp.Message)
}

func TestCartHandler_Get(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	userID := uuid.New()
	view := &model.CartView{
		CartItems:  []model.CartEntry{{ID: uuid.New(), Quantity: 3, TotalItems: 3}},
		TotalItems: 3,
	}
	mockSvc.On("GetCart", mock.Anything, userID).Return(view, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/cart?user_id="+userID.String(), nil)
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got model.CartView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, 3, got.TotalItems)
	assert.Len(t, got.CartItems, 1)
}

func TestCartHandler_Get_MissingUserID(t *testing.T) {
	h := NewCartHandler(new(MockCartService), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_Update_NotFound(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	mockSvc.On("UpdateCartItem", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.AnythingOfType("*model.UpdateCartRequest")).
		Return(nil, model.ErrCartItemNotFound)

	body, _ := json.Marshal(map[string]any{"user_id": uuid.New(), "quantity": 2})
	req := httptest.NewRequest(http.MethodPatch, "/api/cart/"+uuid.NewString(), bytes.NewReader(body))
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_Update_InvalidID(t *testing.T) {
	h := NewCartHandler(new(MockCartService), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPatch, "/api/cart/not-a-uuid", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_Remove(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	id, userID := uuid.New(), uuid.New()
	mockSvc.On("RemoveCartItem", mock.Anything, id, userID).Return(nil)

	url := fmt.Sprintf("/api/cart/%s?user_id=%s", id, userID)
	req := httptest.NewRequest(http.MethodDelete, url, nil)
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestCartHandler_Clear(t *testing.T) {
	mockSvc := new(MockCartService)
	h := NewCartHandler(mockSvc, zerolog.Nop())

	userID := uuid.New()
	mockSvc.On("ClearCart", mock.Anything, userID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/clear/"+userID.String(), nil)
	rec := httptest.NewRecorder()

	newCartRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}
