package complaint

import (
	"strings"
	"time"

	"github.com/loadboard-app/loadboard/internal/apperr"
)

// Status is the single canonical complaint/dispute state set. The legacy
// views (pending/reviewing vs pending/investigating) collapse into this
// enumeration; resolved and rejected are terminal.
type Status string

const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusEscalated     Status = "escalated"
	StatusAssigned      Status = "assigned"
	StatusResolved      Status = "resolved"
	StatusRejected      Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusInvestigating:
		return StatusInvestigating, nil
	case StatusEscalated:
		return StatusEscalated, nil
	case StatusAssigned:
		return StatusAssigned, nil
	case StatusResolved:
		return StatusResolved, nil
	case StatusRejected:
		return StatusRejected, nil
	default:
		return "", apperr.Validation("unknown complaint status %q", s)
	}
}

func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// Complaint is a case a shipment participant opens against the other party.
type Complaint struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipment_id"`
	CreatedBy  string    `json:"created_by"`
	AgainstID  string    `json:"against_id"`
	Type       string    `json:"type"`
	Reason     string    `json:"reason"`
	Status     Status    `json:"status"`
	Priority   string    `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OpenRequest is the POST /api/complaints payload.
type OpenRequest struct {
	ShipmentID string `json:"shipment_id" validate:"required,uuid"`
	AgainstID  string `json:"against_id" validate:"required,uuid"`
	Type       string `json:"type" validate:"required,max=100"`
	Reason     string `json:"reason" validate:"required,max=2000"`
}

// priorityFor derives priority from the complaint type.
func priorityFor(ctype string) string {
	switch strings.ToLower(ctype) {
	case "damage", "fraud", "theft", "payment":
		return "high"
	default:
		return "normal"
	}
}
