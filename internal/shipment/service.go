package shipment

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
)

// Service owns the shipment lifecycle: create, cancel, forward status
// transitions, and carrier assignment. Offer acceptance moves shipments to
// accepted from the offer package's transaction.
type Service struct {
	repo     Repository
	notifier alerts.Notifier
	log      *logrus.Logger
}

func NewService(repo Repository, notifier alerts.Notifier, log *logrus.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (Shipment, error) {
	if req.PickupLocation == "" || req.DeliveryLocation == "" {
		return Shipment{}, apperr.Validation("pickup and delivery locations are required")
	}
	if req.PickupDate.IsZero() {
		return Shipment{}, apperr.Validation("pickup date is required")
	}
	if req.WeightKG <= 0 {
		return Shipment{}, apperr.Validation("weight must be greater than zero")
	}
	if req.DeclaredValue < 0 {
		return Shipment{}, apperr.Validation("declared value cannot be negative")
	}

	now := time.Now()
	sh := Shipment{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		PickupDate:       req.PickupDate,
		DeliveryDate:     req.DeliveryDate,
		WeightKG:         req.WeightKG,
		DeclaredValue:    req.DeclaredValue,
		Description:      req.Description,
		Status:           StatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, sh); err != nil {
		return Shipment{}, apperr.Unexpected(err)
	}
	return sh, nil
}

func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (Shipment, error) {
	sh, err := s.load(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if !authz.CanAct(actor, sh.OwnerID, sh.CarrierID) {
		return Shipment{}, apperr.Forbidden("not a participant in this shipment")
	}
	return sh, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Shipment, error) {
	out, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}

func (s *Service) Cancel(ctx context.Context, actor authz.Actor, id, reason string) (Shipment, error) {
	sh, err := s.load(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if !authz.CanAct(actor, sh.OwnerID, sh.CarrierID) {
		return Shipment{}, apperr.Forbidden("not a participant in this shipment")
	}
	if sh.Status.Terminal() {
		return Shipment{}, apperr.InvalidTransition("shipment is already %s", sh.Status)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, sh.Status, StatusCancelled, &reason)
	if err != nil {
		return Shipment{}, apperr.Unexpected(err)
	}
	if !ok {
		return Shipment{}, apperr.Conflict("shipment changed state, retry")
	}
	sh.Status = StatusCancelled
	sh.CancelReason = &reason

	s.notifyOther(ctx, actor.ID, sh, "shipment:cancelled", "Shipment cancelled",
		fmt.Sprintf("Shipment %s was cancelled: %s", sh.ID, reason))
	return sh, nil
}

// AdvanceStatus applies the only legal forward transitions:
// accepted -> in_transit -> delivered. Only the assigned carrier or an admin
// may advance.
func (s *Service) AdvanceStatus(ctx context.Context, actor authz.Actor, id string, next Status) (Shipment, error) {
	sh, err := s.load(ctx, id)
	if err != nil {
		return Shipment{}, err
	}

	isCarrier := sh.CarrierID != nil && *sh.CarrierID == actor.ID
	if !isCarrier && !actor.IsAdmin() {
		return Shipment{}, apperr.Forbidden("only the assigned carrier may advance this shipment")
	}

	legal := (sh.Status == StatusAccepted && next == StatusInTransit) ||
		(sh.Status == StatusInTransit && next == StatusDelivered)
	if !legal {
		return Shipment{}, apperr.InvalidTransition("cannot move shipment from %s to %s", sh.Status, next)
	}

	ok, err := s.repo.UpdateStatus(ctx, id, sh.Status, next, nil)
	if err != nil {
		return Shipment{}, apperr.Unexpected(err)
	}
	if !ok {
		return Shipment{}, apperr.Conflict("shipment changed state, retry")
	}
	sh.Status = next

	s.notifyOther(ctx, actor.ID, sh, "shipment:"+string(next), "Shipment update",
		fmt.Sprintf("Shipment %s is now %s", sh.ID, next))
	return sh, nil
}

// AssignCarrier sets or corrects the carrier while the shipment is accepted.
func (s *Service) AssignCarrier(ctx context.Context, actor authz.Actor, id, carrierID string) (Shipment, error) {
	sh, err := s.load(ctx, id)
	if err != nil {
		return Shipment{}, err
	}
	if actor.ID != sh.OwnerID && !actor.IsAdmin() {
		return Shipment{}, apperr.Forbidden("only the shipment owner may assign a carrier")
	}
	if sh.Status != StatusAccepted {
		return Shipment{}, apperr.InvalidTransition("carrier can only be assigned while shipment is accepted")
	}

	ok, err := s.repo.SetCarrier(ctx, id, carrierID)
	if err != nil {
		return Shipment{}, apperr.Unexpected(err)
	}
	if !ok {
		return Shipment{}, apperr.Conflict("shipment changed state, retry")
	}
	sh.CarrierID = &carrierID

	s.notify(ctx, alerts.Notification{
		RecipientID: carrierID,
		Kind:        "shipment:assigned",
		Title:       "Shipment assigned to you",
		Body:        fmt.Sprintf("You are now the carrier for shipment %s", sh.ID),
		Link:        "/shipments/" + sh.ID,
	})
	return sh, nil
}

func (s *Service) load(ctx context.Context, id string) (Shipment, error) {
	sh, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Shipment{}, apperr.NotFound("shipment not found")
		}
		return Shipment{}, apperr.Unexpected(err)
	}
	return sh, nil
}

// notifyOther sends to the counterparty of the acting participant.
func (s *Service) notifyOther(ctx context.Context, actorID string, sh Shipment, kind, title, body string) {
	recipient := sh.OwnerID
	if actorID == sh.OwnerID {
		if sh.CarrierID == nil {
			return
		}
		recipient = *sh.CarrierID
	}
	s.notify(ctx, alerts.Notification{
		RecipientID: recipient,
		Kind:        kind,
		Title:       title,
		Body:        body,
		Link:        "/shipments/" + sh.ID,
	})
}

func (s *Service) notify(ctx context.Context, n alerts.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WithError(err).WithField("kind", n.Kind).Warn("shipment: notification failed")
	}
}
