package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tmercier/boutique/internal/domain/catalog"
)

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Price       string `json:"price"`
	StockQty    int    `json:"stock_qty"`
	Active      bool   `json:"active"`
	ImageURL    string `json:"image_url,omitempty"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Price:       p.PriceMajor().StringFixed(2),
		StockQty:    p.StockQty,
		Active:      p.Active,
		ImageURL:    p.ImageURL,
	}
}

// listProducts returns the sellable catalog. Inactive products are hidden
// from the public listing.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toProductResponse(p))
}
