package alerts

import "time"

// Task type constants
const (
	TaskNotificationEmail = "email:notification"
	TaskAdminAlert        = "email:admin_alert"
)

// Notification is what the rest of the system hands to the collaborator.
// Delivery is asynchronous and best-effort from the caller's perspective.
type Notification struct {
	RecipientID string         `json:"recipient_id"`
	Kind        string         `json:"kind"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Link        string         `json:"link,omitempty"`
	Severity    string         `json:"severity"` // info|warning|critical
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// EmailEnvelope is the common shape handed to the mailer.
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NotificationEmailPayload is queued for every user-facing notification that
// has a deliverable email address.
type NotificationEmailPayload struct {
	UserID   string        `json:"user_id"`
	Kind     string        `json:"kind"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// AdminAlertPayload is queued on operator-relevant events (new complaints,
// bans, escalations).
type AdminAlertPayload struct {
	ActorID  string        `json:"actor_id"`
	Severity string        `json:"severity"`
	Message  string        `json:"message"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}
