package alerts

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Notifier is the interface services depend on. Failures are treated as
// dependency failures by callers, never as failures of the primary action.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	AdminAlert(ctx context.Context, actorID, severity, message string) error
}

// Service records notifications in the database and queues email delivery
// through asynq.
type Service struct {
	pool   *pgxpool.Pool
	client *asynq.Client
	log    *logrus.Logger
}

func NewService(pool *pgxpool.Pool, redisAddr string, log *logrus.Logger) *Service {
	return &Service{
		pool:   pool,
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		log:    log,
	}
}

func (s *Service) Close() error { return s.client.Close() }

// Notify inserts the in-app notification row and, when the recipient has an
// email address, queues an email task. The email path is best-effort: a
// queue failure is logged but does not fail the notification.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	var metadata []byte
	if n.Metadata != nil {
		metadata, _ = json.Marshal(n.Metadata)
	}
	var link *string
	if n.Link != "" {
		link = &n.Link
	}
	severity := n.Severity
	if severity == "" {
		severity = "info"
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (user_id, type, title, body, link, severity, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.RecipientID, n.Kind, n.Title, n.Body, link, severity, metadata,
	)
	if err != nil {
		return err
	}

	var email string
	if err := s.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, n.RecipientID).Scan(&email); err != nil || email == "" {
		return nil
	}

	payload := NotificationEmailPayload{
		UserID: n.RecipientID,
		Kind:   n.Kind,
		Envelope: EmailEnvelope{
			To:      email,
			Subject: n.Title,
			Body:    n.Body,
		},
		SentAt: time.Now(),
	}
	b, _ := json.Marshal(payload)
	if _, err := s.client.EnqueueContext(ctx, asynq.NewTask(TaskNotificationEmail, b), asynq.Queue("emails")); err != nil {
		s.log.WithError(err).WithField("user_id", n.RecipientID).Warn("alerts: enqueue notification email failed")
	}
	return nil
}

// AdminAlert queues an operator-facing alert.
func (s *Service) AdminAlert(ctx context.Context, actorID, severity, message string) error {
	payload := AdminAlertPayload{
		ActorID:  actorID,
		Severity: severity,
		Message:  message,
		Envelope: EmailEnvelope{To: "ops@loadboard.local", Subject: "Operator alert", Body: message},
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := s.client.EnqueueContext(ctx, asynq.NewTask(TaskAdminAlert, b), asynq.Queue("admin_alerts"))
	return err
}
