package moderation

import "time"

// User is the slice of the user aggregate this subsystem mutates. The
// is_active flag is only ever toggled here, alongside an audit append.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Flag is an operator-raised risk marker against a user or shipment.
type Flag struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	FlagStatusOpen     = "open"
	FlagStatusResolved = "resolved"

	TargetUser     = "user"
	TargetShipment = "shipment"
)

// AuditEntry is the append-only record of a moderation action. Rows are
// never mutated or deleted.
type AuditEntry struct {
	ID           int64          `json:"id"`
	ActorID      string         `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}

// SetActiveResult reports everything the active-toggle decided, including a
// flag side effect that failed without rolling back the toggle.
type SetActiveResult struct {
	User        User        `json:"user"`
	Audit       *AuditEntry `json:"audit,omitempty"`
	FlagCreated bool        `json:"flag_created"`
	FlagError   string      `json:"flag_error,omitempty"`
}

// CreateFlagRequest is the POST /api/admin/flags payload.
type CreateFlagRequest struct {
	Type       string `json:"type" validate:"required,max=100"`
	TargetType string `json:"target_type" validate:"required,oneof=user shipment"`
	TargetID   string `json:"target_id" validate:"required,uuid"`
	Reason     string `json:"reason" validate:"required,min=3"`
}
