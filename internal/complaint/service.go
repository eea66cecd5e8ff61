package complaint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/authz"
	"github.com/loadboard-app/loadboard/internal/shipment"
)

// ShipmentStore is the slice of the shipment repository this service needs.
type ShipmentStore interface {
	Get(ctx context.Context, id string) (shipment.Shipment, error)
}

type Service struct {
	repo      Repository
	shipments ShipmentStore
	notifier  alerts.Notifier
	log       *logrus.Logger
}

func NewService(repo Repository, shipments ShipmentStore, notifier alerts.Notifier, log *logrus.Logger) *Service {
	return &Service{repo: repo, shipments: shipments, notifier: notifier, log: log}
}

// Open files a complaint. Only shipment participants may file; the shipment
// only needs to exist, its status does not matter.
func (s *Service) Open(ctx context.Context, actor authz.Actor, req OpenRequest) (Complaint, error) {
	if req.Reason == "" {
		return Complaint{}, apperr.Validation("reason is required")
	}

	sh, err := s.shipments.Get(ctx, req.ShipmentID)
	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			return Complaint{}, apperr.NotFound("shipment not found")
		}
		return Complaint{}, apperr.Unexpected(err)
	}
	if !authz.Participant(actor.ID, sh.OwnerID, sh.CarrierID) {
		return Complaint{}, apperr.Forbidden("not a participant in this shipment")
	}

	now := time.Now()
	cp := Complaint{
		ID:         uuid.New().String(),
		ShipmentID: req.ShipmentID,
		CreatedBy:  actor.ID,
		AgainstID:  req.AgainstID,
		Type:       req.Type,
		Reason:     req.Reason,
		Status:     StatusOpen,
		Priority:   priorityFor(req.Type),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, cp); err != nil {
		return Complaint{}, apperr.Unexpected(err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, alerts.Notification{
			RecipientID: req.AgainstID,
			Kind:        "complaint:opened",
			Title:       "A complaint was opened against you",
			Body:        req.Reason,
			Link:        "/shipments/" + req.ShipmentID,
			Severity:    "warning",
		}); err != nil {
			s.log.WithError(err).Warn("complaint: notification failed")
		}
		if err := s.notifier.AdminAlert(ctx, actor.ID, "info",
			fmt.Sprintf("New complaint opened on shipment %s", req.ShipmentID)); err != nil {
			s.log.WithError(err).Warn("complaint: admin alert failed")
		}
	}
	return cp, nil
}

// Transition is operator-only. Any non-terminal status may move to any other
// enumerated status; terminal states move only with override.
func (s *Service) Transition(ctx context.Context, operator authz.Actor, id string, next Status, override bool) (Complaint, error) {
	if !operator.IsAdmin() {
		return Complaint{}, apperr.Forbidden("operator access only")
	}

	cp, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Complaint{}, apperr.NotFound("complaint not found")
		}
		return Complaint{}, apperr.Unexpected(err)
	}
	if cp.Status.Terminal() && !override {
		return Complaint{}, apperr.InvalidTransition("complaint is already %s", cp.Status)
	}
	if cp.Status == next {
		return cp, nil
	}

	ok, err := s.repo.UpdateStatus(ctx, id, cp.Status, next)
	if err != nil {
		return Complaint{}, apperr.Unexpected(err)
	}
	if !ok {
		return Complaint{}, apperr.Conflict("complaint changed state, retry")
	}
	cp.Status = next
	return cp, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Complaint, error) {
	out, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}

func (s *Service) ListAll(ctx context.Context, operator authz.Actor, status string, limit int) ([]Complaint, error) {
	if !operator.IsAdmin() {
		return nil, apperr.Forbidden("operator access only")
	}
	if status != "" {
		if _, err := ParseStatus(status); err != nil {
			return nil, err
		}
	}
	out, err := s.repo.ListAll(ctx, status, limit)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}
