package offer

import "time"

// Status is the closed offer state set.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Offer is a carrier's bid against an open shipment.
type Offer struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipment_id"`
	CarrierID  string    `json:"carrier_id"`
	Price      int64     `json:"price"`
	Message    string    `json:"message"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateRequest is the POST /api/offers payload.
type CreateRequest struct {
	ShipmentID string `json:"shipment_id" validate:"required,uuid"`
	Price      int64  `json:"price" validate:"required,gt=0"`
	Message    string `json:"message" validate:"max=2000"`
}

// RejectedOffer identifies a pending offer that lost the acceptance.
type RejectedOffer struct {
	ID        string `json:"id"`
	CarrierID string `json:"carrier_id"`
}

// AcceptResult is everything the accept transaction decided.
type AcceptResult struct {
	Accepted Offer           `json:"accepted"`
	Rejected []RejectedOffer `json:"rejected"`
}
