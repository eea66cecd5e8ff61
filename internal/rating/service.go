package rating

import (
	"context"
	"errors"
	"fmt"

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

// Submit upserts the rating keyed by (shipment, rater, rated). Only
// shipment participants may rate, and never themselves.
func (s *Service) Submit(ctx context.Context, actor authz.Actor, req SubmitRequest) (Rating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return Rating{}, apperr.Validation("rating must be between 1 and 5")
	}

	sh, err := s.shipments.Get(ctx, req.ShipmentID)
	if err != nil {
		if errors.Is(err, shipment.ErrNotFound) {
			return Rating{}, apperr.NotFound("shipment not found")
		}
		return Rating{}, apperr.Unexpected(err)
	}
	if !authz.CanRate(actor, sh.OwnerID, sh.CarrierID, req.RatedID) {
		return Rating{}, apperr.Forbidden("only shipment participants may rate, and not themselves")
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	stored, err := s.repo.Upsert(ctx, Rating{
		ID:         uuid.New().String(),
		ShipmentID: req.ShipmentID,
		RaterID:    actor.ID,
		RatedID:    req.RatedID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		Category:   category,
	})
	if err != nil {
		return Rating{}, apperr.Unexpected(err)
	}

	if s.notifier != nil {
		n := alerts.Notification{
			RecipientID: req.RatedID,
			Kind:        "rating:received",
			Title:       "You received a rating",
			Body:        fmt.Sprintf("You were rated %d/5 for shipment %s", stored.Rating, stored.ShipmentID),
			Link:        "/shipments/" + stored.ShipmentID,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.WithError(err).Warn("rating: notification failed")
		}
	}
	return stored, nil
}

// SummaryFor returns the aggregated score plus the most recent ratings.
func (s *Service) SummaryFor(ctx context.Context, userID string, limit, offset int) (Summary, []Rating, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	summary, err := s.repo.SummaryFor(ctx, userID)
	if err != nil {
		return Summary{}, nil, apperr.Unexpected(err)
	}
	list, err := s.repo.ListFor(ctx, userID, limit, offset)
	if err != nil {
		return Summary{}, nil, apperr.Unexpected(err)
	}
	return summary, list, nil
}
