package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tmercier/boutique/internal/domain/catalog"
)

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListAll(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponses(list))
}

func (h *Handler) adminValidateOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Validate(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) adminShipOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Ship(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) adminDeliverOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Deliver(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) adminRefundOrder(w http.ResponseWriter, r *http.Request) {
	// An absent or zero amount means a full refund.
	var req struct {
		AmountCents int64 `json:"amount_cents"`
	}
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			respondBadRequest(w, "invalid request body")
			return
		}
	}

	o, err := h.orders.Refund(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"), req.AmountCents)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents"`
		StockQty    int    `json:"stock_qty"`
		Active      *bool  `json:"active"`
		ImageURL    string `json:"image_url"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		respondBadRequest(w, "name is required")
		return
	}
	if req.PriceCents <= 0 {
		respondBadRequest(w, "price_cents must be positive")
		return
	}
	if req.StockQty < 0 {
		respondBadRequest(w, "stock_qty must not be negative")
		return
	}

	p := &catalog.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		StockQty:    req.StockQty,
		Active:      req.Active == nil || *req.Active,
		ImageURL:    req.ImageURL,
	}
	if err := h.products.Add(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		PriceCents  *int64  `json:"price_cents"`
		Active      *bool   `json:"active"`
		ImageURL    *string `json:"image_url"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.PriceCents != nil && *req.PriceCents <= 0 {
		respondBadRequest(w, "price_cents must be positive")
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "productID"), catalog.Update{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Active:      req.Active,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) adminSetStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StockQty int `json:"stock_qty"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.StockQty < 0 {
		respondBadRequest(w, "stock_qty must not be negative")
		return
	}

	p, err := h.products.SetStock(r.Context(), chi.URLParam(r, "productID"), req.StockQty)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductResponse(p))
}

type statsResponse struct {
	Orders        int            `json:"orders"`
	OrdersByState map[string]int `json:"orders_by_state"`
	RevenueCents  int64          `json:"revenue_cents"`
	Revenue       string         `json:"revenue"`
	RefundedCents int64          `json:"refunded_cents"`
	Users         int            `json:"users"`
	Products      int            `json:"products"`
	LowStock      int            `json:"low_stock"`
}

// Products below this stock level count as low on the dashboard.
const lowStockThreshold = 10

// adminStats aggregates the back-office dashboard numbers. Revenue is the
// sum of issued invoices net of refunds.
func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := actorFrom(r)

	list, err := h.orders.ListAll(ctx, actor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	invoices, err := h.invoices.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	userCount, err := h.users.Count(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	products, err := h.products.List(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	stats := statsResponse{
		Orders:        len(list),
		OrdersByState: make(map[string]int),
		Users:         userCount,
		Products:      len(products),
	}
	for _, o := range list {
		stats.OrdersByState[string(o.Status)]++
		stats.RefundedCents += o.RefundedCents
	}
	for i := range products {
		if products[i].StockQty < lowStockThreshold {
			stats.LowStock++
		}
	}
	for i := range invoices {
		stats.RevenueCents += invoices[i].AmountCents
	}
	stats.RevenueCents -= stats.RefundedCents
	stats.Revenue = decimal.NewFromInt(stats.RevenueCents).Div(decimal.NewFromInt(100)).StringFixed(2)

	respond(w, http.StatusOK, stats)
}

// adminExport streams a consistent gzip JSON dump of every store.
func (h *Handler) adminExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="boutique-export.json.gz"`)
	if err := h.exporter.WriteTo(w); err != nil {
		// The response is already streaming; all we can do is log.
		zctx.From(r.Context()).Error("export failed", zap.Error(err))
	}
}
