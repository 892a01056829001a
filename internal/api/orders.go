package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/domain/payment"
)

type orderLineResponse struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Qty            int    `json:"qty"`
}

type deliveryResponse struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	Status         string `json:"status"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Status        string              `json:"status"`
	Lines         []orderLineResponse `json:"lines"`
	TotalCents    int64               `json:"total_cents"`
	Total         string              `json:"total"`
	RefundedCents int64               `json:"refunded_cents,omitempty"`
	InvoiceID     string              `json:"invoice_id,omitempty"`
	PaymentID     string              `json:"payment_id,omitempty"`
	Delivery      *deliveryResponse   `json:"delivery,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	ValidatedAt   *time.Time          `json:"validated_at,omitempty"`
	PaidAt        *time.Time          `json:"paid_at,omitempty"`
	ShippedAt     *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	RefundedAt    *time.Time          `json:"refunded_at,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	out := orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		Lines:         make([]orderLineResponse, 0, len(o.Lines)),
		TotalCents:    o.TotalCents(),
		Total:         o.TotalMajor().StringFixed(2),
		RefundedCents: o.RefundedCents,
		InvoiceID:     o.InvoiceID,
		PaymentID:     o.PaymentID,
		CreatedAt:     o.CreatedAt,
		ValidatedAt:   o.ValidatedAt,
		PaidAt:        o.PaidAt,
		ShippedAt:     o.ShippedAt,
		DeliveredAt:   o.DeliveredAt,
		CancelledAt:   o.CancelledAt,
		RefundedAt:    o.RefundedAt,
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, orderLineResponse{
			ProductID:      l.ProductID,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
			Qty:            l.Qty,
		})
	}
	if o.Delivery != nil {
		out.Delivery = &deliveryResponse{
			Carrier:        o.Delivery.Carrier,
			TrackingNumber: o.Delivery.TrackingNumber,
			Status:         o.Delivery.Status,
		}
	}
	return out
}

func toOrderResponses(list []*order.Order) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return out
}

// checkout turns the caller's cart into a new order.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Checkout(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.ListForUser(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponses(list))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetForActor(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

type paymentResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Succeeded   bool      `json:"succeeded"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPaymentResponse(rec *payment.Record) paymentResponse {
	return paymentResponse{
		ID:          rec.ID,
		OrderID:     rec.OrderID,
		AmountCents: rec.AmountCents,
		Amount:      rec.AmountMajor().StringFixed(2),
		Succeeded:   rec.Succeeded,
		CreatedAt:   rec.CreatedAt,
	}
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardNumber string `json:"card_number"`
		ExpMonth   int    `json:"exp_month"`
		ExpYear    int    `json:"exp_year"`
		CVC        string `json:"cvc"`
	}
	if err := decode(r, &req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	rec, err := h.orders.Pay(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"), payment.Card{
		Number:   req.CardNumber,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
		CVC:      req.CVC,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toPaymentResponse(rec))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "orderID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOrderResponse(o))
}

type invoiceResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	IssuedAt    time.Time `json:"issued_at"`
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	// Visibility follows the order itself.
	if _, err := h.orders.GetForActor(r.Context(), actorFrom(r), orderID); err != nil {
		respondError(w, r, err)
		return
	}

	inv, err := h.invoices.ByOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, invoiceResponse{
		ID:          inv.ID,
		OrderID:     inv.OrderID,
		AmountCents: inv.AmountCents,
		Amount:      inv.AmountMajor().StringFixed(2),
		IssuedAt:    inv.IssuedAt,
	})
}

func (h *Handler) listOrderPayments(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if _, err := h.orders.GetForActor(r.Context(), actorFrom(r), orderID); err != nil {
		respondError(w, r, err)
		return
	}

	records, err := h.payments.ByOrder(r.Context(), orderID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]paymentResponse, 0, len(records))
	for i := range records {
		out = append(out, toPaymentResponse(&records[i]))
	}
	respond(w, http.StatusOK, out)
}
