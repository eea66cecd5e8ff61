package shipment

import (
	"strings"
	"time"

	"github.com/loadboard-app/loadboard/internal/apperr"
)

// Status is the closed shipment state set. All comparisons go through this
// type; raw strings are normalized once at the boundary.
type Status string

const (
	StatusOpen      Status = "open"
	StatusAccepted  Status = "accepted"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ParseStatus normalizes and validates a client-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusAccepted:
		return StatusAccepted, nil
	case StatusInTransit:
		return StatusInTransit, nil
	case StatusDelivered:
		return StatusDelivered, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", apperr.Validation("unknown shipment status %q", s)
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Shipment is a posted transport job. carrier_id is set iff status is one of
// accepted, in_transit, delivered.
type Shipment struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"owner_id"`
	CarrierID        *string    `json:"carrier_id,omitempty"`
	PickupLocation   string     `json:"pickup_location"`
	DeliveryLocation string     `json:"delivery_location"`
	PickupDate       time.Time  `json:"pickup_date"`
	DeliveryDate     *time.Time `json:"delivery_date,omitempty"`
	WeightKG         float64    `json:"weight_kg"`
	DeclaredValue    int64      `json:"declared_value"`
	Description      string     `json:"description"`
	Status           Status     `json:"status"`
	CancelReason     *string    `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateRequest is the POST /api/shipments payload.
type CreateRequest struct {
	PickupLocation   string     `json:"pickup_location" validate:"required"`
	DeliveryLocation string     `json:"delivery_location" validate:"required"`
	PickupDate       time.Time  `json:"pickup_date" validate:"required"`
	DeliveryDate     *time.Time `json:"delivery_date"`
	WeightKG         float64    `json:"weight_kg" validate:"required,gt=0"`
	DeclaredValue    int64      `json:"declared_value" validate:"gte=0"`
	Description      string     `json:"description" validate:"max=2000"`
}
