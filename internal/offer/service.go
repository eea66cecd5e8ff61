package offer

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

// Service owns offer creation, acceptance and rejection. Acceptance is
// actor-driven: the sender picks the winner, the system only enforces
// exclusivity.
type Service struct {
	repo      Repository
	shipments ShipmentStore
	notifier  alerts.Notifier
	log       *logrus.Logger
}

func NewService(repo Repository, shipments ShipmentStore, notifier alerts.Notifier, log *logrus.Logger) *Service {
	return &Service{repo: repo, shipments: shipments, notifier: notifier, log: log}
}

func (s *Service) Create(ctx context.Context, actor authz.Actor, req CreateRequest) (Offer, error) {
	if req.Price <= 0 {
		return Offer{}, apperr.Validation("price must be greater than zero")
	}

	sh, err := s.loadShipment(ctx, req.ShipmentID)
	if err != nil {
		return Offer{}, err
	}
	if sh.OwnerID == actor.ID {
		return Offer{}, apperr.Forbidden("you cannot bid on your own shipment")
	}
	if sh.Status != shipment.StatusOpen {
		return Offer{}, apperr.InvalidTransition("shipment is %s, offers are closed", sh.Status)
	}

	now := time.Now()
	o := Offer{
		ID:         uuid.New().String(),
		ShipmentID: req.ShipmentID,
		CarrierID:  actor.ID,
		Price:      req.Price,
		Message:    req.Message,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, o); err != nil {
		return Offer{}, apperr.Unexpected(err)
	}

	s.notify(ctx, alerts.Notification{
		RecipientID: sh.OwnerID,
		Kind:        "offer:received",
		Title:       "New offer on your shipment",
		Body:        fmt.Sprintf("A carrier offered %d for shipment %s", o.Price, sh.ID),
		Link:        "/shipments/" + sh.ID,
	})
	return o, nil
}

// Accept picks the winner. The repository transaction guarantees exactly one
// accepted offer per shipment; a lost race surfaces as Conflict.
func (s *Service) Accept(ctx context.Context, actor authz.Actor, offerID string) (AcceptResult, error) {
	o, err := s.load(ctx, offerID)
	if err != nil {
		return AcceptResult{}, err
	}
	sh, err := s.loadShipment(ctx, o.ShipmentID)
	if err != nil {
		return AcceptResult{}, err
	}
	if actor.ID != sh.OwnerID && !actor.IsAdmin() {
		return AcceptResult{}, apperr.Forbidden("only the shipment owner may accept offers")
	}

	res, err := s.repo.Accept(ctx, offerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return AcceptResult{}, apperr.NotFound("offer not found")
		case errors.Is(err, ErrNotPending):
			return AcceptResult{}, apperr.Conflict("offer was already accepted or rejected")
		case errors.Is(err, ErrShipmentNotOpen):
			return AcceptResult{}, apperr.Conflict("shipment is no longer open")
		default:
			return AcceptResult{}, apperr.Unexpected(err)
		}
	}

	s.notify(ctx, alerts.Notification{
		RecipientID: res.Accepted.CarrierID,
		Kind:        "offer:accepted",
		Title:       "Your offer was accepted",
		Body:        fmt.Sprintf("Your offer on shipment %s was accepted", o.ShipmentID),
		Link:        "/shipments/" + o.ShipmentID,
		Severity:    "info",
	})
	for _, lost := range res.Rejected {
		s.notify(ctx, alerts.Notification{
			RecipientID: lost.CarrierID,
			Kind:        "offer:rejected",
			Title:       "Your offer was not selected",
			Body:        fmt.Sprintf("Another offer was accepted for shipment %s", o.ShipmentID),
			Link:        "/shipments/" + o.ShipmentID,
		})
	}
	return res, nil
}

func (s *Service) Reject(ctx context.Context, actor authz.Actor, offerID string) (Offer, error) {
	o, err := s.load(ctx, offerID)
	if err != nil {
		return Offer{}, err
	}
	sh, err := s.loadShipment(ctx, o.ShipmentID)
	if err != nil {
		return Offer{}, err
	}
	if actor.ID != sh.OwnerID && !actor.IsAdmin() {
		return Offer{}, apperr.Forbidden("only the shipment owner may reject offers")
	}
	if o.Status != StatusPending {
		return Offer{}, apperr.InvalidTransition("offer is already %s", o.Status)
	}

	ok, err := s.repo.Reject(ctx, offerID)
	if err != nil {
		return Offer{}, apperr.Unexpected(err)
	}
	if !ok {
		return Offer{}, apperr.InvalidTransition("offer is no longer pending")
	}
	o.Status = StatusRejected

	s.notify(ctx, alerts.Notification{
		RecipientID: o.CarrierID,
		Kind:        "offer:rejected",
		Title:       "Your offer was rejected",
		Body:        fmt.Sprintf("The sender rejected your offer on shipment %s", o.ShipmentID),
		Link:        "/shipments/" + o.ShipmentID,
	})
	return o, nil
}

// ListForShipment shows all offers to the owner and admins; a carrier sees
// only their own bids.
func (s *Service) ListForShipment(ctx context.Context, actor authz.Actor, shipmentID string) ([]Offer, error) {
	sh, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}

	offers, err := s.repo.ListForShipment(ctx, shipmentID)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	if actor.ID == sh.OwnerID || actor.IsAdmin() {
		return offers, nil
	}

	var own []Offer
	for _, o := range offers {
		if o.CarrierID == actor.ID {
			own = append(own, o)
		}
	}
	return own, nil
}

func (s *Service) load(ctx context.Context, id string) (Offer, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Offer{}, apperr.NotFound("offer not found")
		}
		return Offer{}, apperr.Unexpected(err)
	}
	return o, nil
}

func (s *Service) loadShipment(ctx context.Context, id string) (shipment.Shipment, error) {
	sh, err := s.shipments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			return shipment.Shipment{}, apperr.NotFound("shipment not found")
		}
		return shipment.Shipment{}, apperr.Unexpected(err)
	}
	return sh, nil
}

func (s *Service) notify(ctx context.Context, n alerts.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.WithError(err).WithField("kind", n.Kind).Warn("offer: notification failed")
	}
}
