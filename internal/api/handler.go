// Package api exposes the storefront over HTTP/JSON: public catalog,
// authenticated cart and order endpoints, and the back-office admin surface.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/tmercier/boutique/internal/auth"
	"github.com/tmercier/boutique/internal/domain/billing"
	"github.com/tmercier/boutique/internal/domain/cart"
	"github.com/tmercier/boutique/internal/domain/catalog"
	"github.com/tmercier/boutique/internal/domain/inventory"
	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/payment"
	"github.com/tmercier/boutique/internal/domain/user"
	"github.com/tmercier/boutique/internal/snapshot"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	auth     *auth.Service
	products catalog.Store
	carts    *cart.Service
	orders   *order.Service
	invoices billing.Ledger
	payments payment.Store
	users    user.Store
	exporter *snapshot.Exporter
}

// NewHandler constructs the Handler with its service dependencies.
func NewHandler(
	authSvc *auth.Service,
	products catalog.Store,
	carts *cart.Service,
	orders *order.Service,
	invoices billing.Ledger,
	payments payment.Store,
	users user.Store,
	exporter *snapshot.Exporter,
) *Handler {
	return &Handler{
		auth:     authSvc,
		products: products,
		carts:    carts,
		orders:   orders,
		invoices: invoices,
		payments: payments,
		users:    users,
		exporter: exporter,
	}
}

// Routes builds the router. Public routes carry no auth; /cart and /orders
// require a bearer session; /admin additionally requires the admin flag.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Post("/auth/logout", h.logout)
		r.Get("/auth/me", h.profile)
		r.Patch("/auth/me", h.updateProfile)

		r.Get("/cart", h.viewCart)
		r.Post("/cart/items", h.addCartItem)
		r.Delete("/cart/items/{productID}", h.removeCartItem)
		r.Delete("/cart", h.clearCart)

		r.Post("/orders", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{orderID}", h.getOrder)
		r.Post("/orders/{orderID}/pay", h.payOrder)
		r.Post("/orders/{orderID}/cancel", h.cancelOrder)
		r.Get("/orders/{orderID}/invoice", h.getInvoice)
		r.Get("/orders/{orderID}/payments", h.listOrderPayments)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser, h.requireAdmin)

		r.Get("/admin/orders", h.adminListOrders)
		r.Post("/admin/orders/{orderID}/validate", h.adminValidateOrder)
		r.Post("/admin/orders/{orderID}/ship", h.adminShipOrder)
		r.Post("/admin/orders/{orderID}/deliver", h.adminDeliverOrder)
		r.Post("/admin/orders/{orderID}/refund", h.adminRefundOrder)

		r.Post("/admin/products", h.adminCreateProduct)
		r.Patch("/admin/products/{productID}", h.adminUpdateProduct)
		r.Put("/admin/products/{productID}/stock", h.adminSetStock)

		r.Get("/admin/stats", h.adminStats)
		r.Get("/admin/export", h.adminExport)
	})

	return r
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respond(w, status, errorResponse{Code: status, Message: "internal error"})
		return
	}
	respond(w, status, errorResponse{Code: status, Message: err.Error()})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validationErr *auth.ValidationError
		cardErr       *payment.InvalidCardError
		stockErr      *inventory.InsufficientStockError
		transitionErr *order.InvalidTransitionError
	)
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, billing.ErrNotFound),
		errors.Is(err, payment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired
	case errors.As(err, &stockErr),
		errors.As(err, &transitionErr),
		errors.Is(err, catalog.ErrUnavailable),
		errors.Is(err, inventory.ErrProductUnavailable),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, billing.ErrAlreadyIssued):
		return http.StatusConflict
	case errors.As(err, &validationErr),
		errors.As(err, &cardErr),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrRefundExceedsTotal),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decode parses the JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func respondBadRequest(w http.ResponseWriter, msg string) {
	respond(w, http.StatusBadRequest, errorResponse{Code: http.StatusBadRequest, Message: msg})
}
