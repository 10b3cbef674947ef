package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/chandraa-ads/sthree-backend/internal/model"
	"github.com/chandraa-ads/sthree-backend/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", h.logger)
		return
	}

	resp, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid order ID", h.logger)
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/orders requests with pagination and filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := parseOrderFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	paged, err := h.service.ListOrdersPaged(r.Context(), filters, page, limit)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, paged)
}

// ListAdmin handles GET /api/orders/admin requests, returning every match.
func (h *OrderHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	filters, err := parseOrderFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), filters)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetMine handles GET /api/orders/my/{userId} requests.
func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid user ID", h.logger)
		return
	}

	orders, err := h.service.GetUserOrders(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// PaymentSuccess handles POST /api/orders/payment-success/{orderId} requests.
func (h *OrderHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid order ID", h.logger)
		return
	}

	var req model.PaymentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "Invalid request body", h.logger)
		return
	}

	resp, err := h.service.UpdatePaymentStatus(r.Context(), orderID, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Confirm handles POST /api/orders/admin/confirm/{orderId} requests.
func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid order ID", h.logger)
		return
	}

	resp, err := h.service.ConfirmOrder(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /api/orders/admin/export requests, streaming an xlsx
// workbook of the orders matching the filters.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	filters, err := parseOrderFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidRequest, err.Error(), h.logger)
		return
	}

	data, err := h.service.ExportOrders(r.Context(), filters)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=orders.xlsx")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// parseOrderFilters reads the shared admin listing filters off the query
// string. Dates accept either a plain date or full RFC 3339.
func parseOrderFilters(r *http.Request) (model.OrderFilters, error) {
	q := r.URL.Query()
	filters := model.OrderFilters{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		User:          q.Get("user"),
	}

	if raw := q.Get("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filters, fmt.Errorf("invalid from date: %s", raw)
		}
		filters.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filters, fmt.Errorf("invalid to date: %s", raw)
		}
		filters.To = &to
	}

	return filters, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
