// Package shipping tracks deliveries: one record per shipped order, created
// at the EXPEDIEE transition and updated once on delivery.
package shipping

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no delivery exists for the given order.
var ErrNotFound = errors.New("delivery not found")

// DefaultCarrier is assigned to every shipment; carrier selection is outside
// the engine.
const DefaultCarrier = "Colissimo"

// Delivery statuses.
const (
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
)

// Delivery is a shipment record for a single order.
type Delivery struct {
	ID             string
	OrderID        string
	Carrier        string
	TrackingNumber string
	Address        string
	Status         string
}

// Tracker creates and updates delivery records. Implementations keep an
// append-only record keyed by order id.
type Tracker interface {
	// Create registers a shipment for the order. Called exactly once per
	// order, at the EXPEDIEE transition.
	Create(ctx context.Context, orderID, address string) (*Delivery, error)
	// MarkDelivered flips the delivery status at the LIVREE transition.
	MarkDelivered(ctx context.Context, orderID string) (*Delivery, error)
	ByOrder(ctx context.Context, orderID string) (*Delivery, error)
}

// NewTrackingNumber generates a carrier-style tracking reference.
func NewTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "TRK-" + raw[:12]
}
