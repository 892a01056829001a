package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type cartItemResponse struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type cartResponse struct {
	Items      []cartItemResponse `json:"items"`
	TotalCents int64              `json:"total_cents"`
	Total      string             `json:"total"`
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	shopperID := actorFrom(r).UserID

	items, err := h.carts.View(r.Context(), shopperID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	total, err := h.carts.Total(r.Context(), shopperID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := cartResponse{
		Items:      make([]cartItemResponse, 0, len(items)),
		TotalCents: total,
		Total:      decimal.NewFromInt(total).Div(decimal.NewFromInt(100)).StringFixed(2),
	}
	for _, it := range items {
		out.Items = append(out.Items, cartItemResponse{ProductID: it.ProductID, Qty: it.Qty})
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	if err := h.carts.AddItem(r.Context(), actorFrom(r).UserID, req.ProductID, req.Qty); err != nil {
		respondError(w, r, err)
		return
	}
	h.viewCart(w, r)
}

// removeCartItem drops qty units from a line; without a qty query parameter
// the whole line goes.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	qty := 0
	if raw := r.URL.Query().Get("qty"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondBadRequest(w, "qty must be a non-negative integer")
			return
		}
		qty = n
	}

	if err := h.carts.RemoveItem(r.Context(), actorFrom(r).UserID, chi.URLParam(r, "productID"), qty); err != nil {
		respondError(w, r, err)
		return
	}
	h.viewCart(w, r)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), actorFrom(r).UserID); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
