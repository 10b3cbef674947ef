package router

import (
	"net/http"

	"github.com/chandraa-ads/sthree-backend/internal/handler"
	"github.com/chandraa-ads/sthree-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
// Admin routes require the X-API-Key header; everything else is open.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	r := mux.NewRouter()
	admin := middleware.AdminAuth(adminAPIKey, logger)

	// Health check endpoint (no authentication required)
	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods(http.MethodGet)

	// Catalogue
	r.HandleFunc("/api/products", productHandler.List).Methods(http.MethodGet)
	r.Handle("/api/products", admin(http.HandlerFunc(productHandler.Create))).Methods(http.MethodPost)
	r.Handle("/api/products/{id}/variants", admin(http.HandlerFunc(productHandler.AddVariant))).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}/reviews", productHandler.AddReview).Methods(http.MethodPost)
	r.HandleFunc("/api/products/{id}", productHandler.GetByID).Methods(http.MethodGet)

	// Cart
	r.HandleFunc("/api/cart", cartHandler.Add).Methods(http.MethodPost)
	r.HandleFunc("/api/cart", cartHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/clear/{userId}", cartHandler.Clear).Methods(http.MethodDelete)
	r.HandleFunc("/api/cart/{id}", cartHandler.Update).Methods(http.MethodPatch)
	r.HandleFunc("/api/cart/{id}", cartHandler.Remove).Methods(http.MethodDelete)

	// Orders. Specific paths are registered before the catch-all {id} route.
	r.HandleFunc("/api/orders", orderHandler.Create).Methods(http.MethodPost)
	r.Handle("/api/orders", admin(http.HandlerFunc(orderHandler.List))).Methods(http.MethodGet)
	r.Handle("/api/orders/admin", admin(http.HandlerFunc(orderHandler.ListAdmin))).Methods(http.MethodGet)
	r.Handle("/api/orders/admin/confirm/{orderId}", admin(http.HandlerFunc(orderHandler.Confirm))).Methods(http.MethodPost)
	r.Handle("/api/orders/admin/export", admin(http.HandlerFunc(orderHandler.Export))).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/my/{userId}", orderHandler.GetMine).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/payment-success/{orderId}", orderHandler.PaymentSuccess).Methods(http.MethodPost)
	r.HandleFunc("/api/orders/{id}", orderHandler.GetByID).Methods(http.MethodGet)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = r
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
