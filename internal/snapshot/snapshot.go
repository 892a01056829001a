// Package snapshot serializes the whole in-memory ledger (catalog, carts,
// orders, payments, invoices, deliveries) into gzip-compressed JSON.
//
// The dump is taken under all store locks at once (see memory.Stores.Dump),
// so the export is a transactionally consistent cut: every reserved unit of
// stock is accounted for by exactly one live order in the same file.
package snapshot

import (
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/tmercier/boutique/internal/domain/order"
	"github.com/tmercier/boutique/internal/memory"
)

// FormatVersion identifies the dump layout; bump on breaking changes.
const FormatVersion = 1

// Exporter writes ledger dumps.
type Exporter struct {
	stores *memory.Stores
}

// NewExporter creates an Exporter over the given stores.
func NewExporter(stores *memory.Stores) *Exporter {
	return &Exporter{stores: stores}
}

// WriteTo takes a consistent dump and streams it as gzip JSON to w.
func (e *Exporter) WriteTo(w io.Writer) error {
	dump := e.stores.Dump()

	zw := pgzip.NewWriter(w)
	enc := jx.GetEncoder()
	defer jx.PutEncoder(enc)

	encodeDump(enc, dump)

	if _, err := zw.Write(enc.Bytes()); err != nil {
		return errors.Wrap(err, "write snapshot")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	return nil
}

func encodeDump(e *jx.Encoder, d *memory.Dump) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(FormatVersion) })
		e.Field("taken_at", func(e *jx.Encoder) { e.Str(d.TakenAt.Format(time.RFC3339Nano)) })

		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Products {
					p := &d.Products[i]
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
						e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
						e.Field("price_cents", func(e *jx.Encoder) { e.Int64(p.PriceCents) })
						e.Field("stock_qty", func(e *jx.Encoder) { e.Int(p.StockQty) })
						e.Field("active", func(e *jx.Encoder) { e.Bool(p.Active) })
						e.Field("image_url", func(e *jx.Encoder) { e.Str(p.ImageURL) })
					})
				}
			})
		})

		e.Field("carts", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for shopper, items := range d.Carts {
					e.Field(shopper, func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, it := range items {
								e.Obj(func(e *jx.Encoder) {
									e.Field("product_id", func(e *jx.Encoder) { e.Str(it.ProductID) })
									e.Field("qty", func(e *jx.Encoder) { e.Int(it.Qty) })
								})
							}
						})
					})
				}
			})
		})

		e.Field("orders", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Orders {
					encodeOrder(e, &d.Orders[i])
				}
			})
		})

		e.Field("payments", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Payments {
					p := &d.Payments[i]
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
						e.Field("order_id", func(e *jx.Encoder) { e.Str(p.OrderID) })
						e.Field("amount_cents", func(e *jx.Encoder) { e.Int64(p.AmountCents) })
						e.Field("succeeded", func(e *jx.Encoder) { e.Bool(p.Succeeded) })
						e.Field("created_at", func(e *jx.Encoder) { e.Str(p.CreatedAt.Format(time.RFC3339Nano)) })
					})
				}
			})
		})

		e.Field("invoices", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Invoices {
					inv := &d.Invoices[i]
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(inv.ID) })
						e.Field("order_id", func(e *jx.Encoder) { e.Str(inv.OrderID) })
						e.Field("amount_cents", func(e *jx.Encoder) { e.Int64(inv.AmountCents) })
						e.Field("issued_at", func(e *jx.Encoder) { e.Str(inv.IssuedAt.Format(time.RFC3339Nano)) })
					})
				}
			})
		})

		e.Field("deliveries", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Deliveries {
					dv := &d.Deliveries[i]
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(dv.ID) })
						e.Field("order_id", func(e *jx.Encoder) { e.Str(dv.OrderID) })
						e.Field("carrier", func(e *jx.Encoder) { e.Str(dv.Carrier) })
						e.Field("tracking_number", func(e *jx.Encoder) { e.Str(dv.TrackingNumber) })
						e.Field("address", func(e *jx.Encoder) { e.Str(dv.Address) })
						e.Field("status", func(e *jx.Encoder) { e.Str(dv.Status) })
					})
				}
			})
		})

		// Accounts are exported without password material.
		e.Field("users", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for i := range d.Users {
					u := &d.Users[i]
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(u.ID) })
						e.Field("email", func(e *jx.Encoder) { e.Str(u.Email) })
						e.Field("first_name", func(e *jx.Encoder) { e.Str(u.FirstName) })
						e.Field("last_name", func(e *jx.Encoder) { e.Str(u.LastName) })
						e.Field("admin", func(e *jx.Encoder) { e.Bool(u.Admin) })
					})
				}
			})
		})
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("user_id", func(e *jx.Encoder) { e.Str(o.UserID) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(o.Status)) })
		e.Field("total_cents", func(e *jx.Encoder) { e.Int64(o.TotalCents()) })
		e.Field("refunded_cents", func(e *jx.Encoder) { e.Int64(o.RefundedCents) })
		e.Field("invoice_id", func(e *jx.Encoder) { e.Str(o.InvoiceID) })
		e.Field("payment_id", func(e *jx.Encoder) { e.Str(o.PaymentID) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format(time.RFC3339Nano)) })

		stamp := func(name string, t *time.Time) {
			if t == nil {
				return
			}
			e.Field(name, func(e *jx.Encoder) { e.Str(t.Format(time.RFC3339Nano)) })
		}
		stamp("validated_at", o.ValidatedAt)
		stamp("paid_at", o.PaidAt)
		stamp("shipped_at", o.ShippedAt)
		stamp("delivered_at", o.DeliveredAt)
		stamp("cancelled_at", o.CancelledAt)
		stamp("refunded_at", o.RefundedAt)

		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("product_id", func(e *jx.Encoder) { e.Str(l.ProductID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						e.Field("unit_price_cents", func(e *jx.Encoder) { e.Int64(l.UnitPriceCents) })
						e.Field("qty", func(e *jx.Encoder) { e.Int(l.Qty) })
					})
				}
			})
		})

		if o.Delivery != nil {
			e.Field("delivery", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("id", func(e *jx.Encoder) { e.Str(o.Delivery.ID) })
					e.Field("carrier", func(e *jx.Encoder) { e.Str(o.Delivery.Carrier) })
					e.Field("tracking_number", func(e *jx.Encoder) { e.Str(o.Delivery.TrackingNumber) })
					e.Field("status", func(e *jx.Encoder) { e.Str(o.Delivery.Status) })
				})
			})
		}
	})
}
