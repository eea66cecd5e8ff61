package alerts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Worker consumes the email queues. Run from cmd/worker.
type Worker struct {
	srv    *asynq.Server
	mailer *Mailer
	log    *logrus.Logger
}

func NewWorker(redisAddr string, mailer *Mailer, log *logrus.Logger) *Worker {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"emails":       5,
				"admin_alerts": 2,
			},
		},
	)
	return &Worker{srv: srv, mailer: mailer, log: log}
}

func (w *Worker) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskNotificationEmail, w.handleNotificationEmail)
	mux.HandleFunc(TaskAdminAlert, w.handleAdminAlert)
	return w.srv.Run(mux)
}

func (w *Worker) handleNotificationEmail(ctx context.Context, t *asynq.Task) error {
	var p NotificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", TaskNotificationEmail, err)
	}
	if err := w.mailer.Send(p.Envelope); err != nil {
		w.log.WithError(err).WithField("user_id", p.UserID).Warn("alerts: email delivery failed")
		return err
	}
	w.log.WithFields(logrus.Fields{"user_id": p.UserID, "kind": p.Kind}).Info("alerts: notification email sent")
	return nil
}

func (w *Worker) handleAdminAlert(ctx context.Context, t *asynq.Task) error {
	var p AdminAlertPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", TaskAdminAlert, err)
	}
	// Operator alerts are logged even when the mailer is not configured.
	w.log.WithFields(logrus.Fields{"actor_id": p.ActorID, "severity": p.Severity}).Info(p.Message)
	if err := w.mailer.Send(p.Envelope); err != nil {
		w.log.WithError(err).Warn("alerts: admin alert email failed")
	}
	return nil
}
