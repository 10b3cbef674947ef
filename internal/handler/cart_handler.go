package handler

import (
	"encoding/json"
	"net/http"

	"github.com/chandraa-ads/sthree-backend/internal/model"
	"github.com/chandraa-ads/sthree-backend/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// CartHandler handles cart-related HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Add handles POST /api/cart requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", h.logger)
		return
	}

	view, err := h.service.AddToCart(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/cart?user_id={id} requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Valid user_id is required", h.logger)
		return
	}

	view, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Update handles PATCH /api/cart/{id} requests.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid cart item ID", h.logger)
		return
	}

	var req model.UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", h.logger)
		return
	}

	entry, err := h.service.UpdateCartItem(r.Context(), id, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// Remove handles DELETE /api/cart/{id}?user_id={userId} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid cart item ID", h.logger)
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Valid user_id is required", h.logger)
		return
	}

	if err := h.service.RemoveCartItem(r.Context(), id, userID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart item removed"})
}

// Clear handles DELETE /api/cart/clear/{userId} requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid user ID", h.logger)
		return
	}

	if err := h.service.ClearCart(r.Context(), userID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
