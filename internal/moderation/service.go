package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/authz"
)

type Service struct {
	repo     Repository
	notifier alerts.Notifier
	log      *logrus.Logger
}

func NewService(repo Repository, notifier alerts.Notifier, log *logrus.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, log: log}
}

// SetUserActive toggles the ban flag. The toggle is idempotent on the user
// row but every call appends a fresh audit entry. Banning also attempts to
// raise a flag against the user; a flag failure is surfaced in the result,
// never rolled into the primary outcome.
func (s *Service) SetUserActive(ctx context.Context, operator authz.Actor, userID string, active bool, reason string) (SetActiveResult, error) {
	if !operator.IsAdmin() {
		return SetActiveResult{}, apperr.Forbidden("operator access only")
	}
	if len(strings.TrimSpace(reason)) < 3 {
		return SetActiveResult{}, apperr.Validation("reason must be at least 3 characters")
	}

	user, err := s.repo.SetUserActive(ctx, userID, active)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return SetActiveResult{}, apperr.NotFound("user not found")
		}
		return SetActiveResult{}, apperr.Unexpected(err)
	}

	action := "ban"
	if active {
		action = "unban"
	}
	result := SetActiveResult{User: user}

	audit := s.AppendAudit(ctx, operator.ID, action, TargetUser, userID, map[string]any{
		"reason":    reason,
		"is_active": active,
	})
	result.Audit = audit

	if !active {
		flagErr := s.repo.InsertFlag(ctx, Flag{
			ID:         uuid.New().String(),
			Type:       "abuse",
			TargetType: TargetUser,
			TargetID:   userID,
			Reason:     reason,
			Status:     FlagStatusOpen,
			CreatedBy:  operator.ID,
			CreatedAt:  time.Now(),
		})
		if flagErr != nil {
			s.log.WithError(flagErr).WithField("user_id", userID).Warn("moderation: ban flag failed")
			result.FlagError = flagErr.Error()
		} else {
			result.FlagCreated = true
		}
	}

	if s.notifier != nil {
		title := "Your account has been suspended"
		if active {
			title = "Your account has been reactivated"
		}
		if err := s.notifier.Notify(ctx, alerts.Notification{
			RecipientID: userID,
			Kind:        "account:" + action,
			Title:       title,
			Body:        fmt.Sprintf("Reason: %s", reason),
			Severity:    "critical",
		}); err != nil {
			s.log.WithError(err).Warn("moderation: notification failed")
		}
	}

	return result, nil
}

// CreateFlag raises an operator flag and audits it.
func (s *Service) CreateFlag(ctx context.Context, operator authz.Actor, req CreateFlagRequest) (Flag, error) {
	if !operator.IsAdmin() {
		return Flag{}, apperr.Forbidden("operator access only")
	}
	if len(strings.TrimSpace(req.Reason)) < 3 {
		return Flag{}, apperr.Validation("reason must be at least 3 characters")
	}
	if req.TargetType != TargetUser && req.TargetType != TargetShipment {
		return Flag{}, apperr.Validation("target_type must be user or shipment")
	}

	f := Flag{
		ID:         uuid.New().String(),
		Type:       req.Type,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Status:     FlagStatusOpen,
		CreatedBy:  operator.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.InsertFlag(ctx, f); err != nil {
		return Flag{}, apperr.Unexpected(err)
	}

	s.AppendAudit(ctx, operator.ID, "flag", req.TargetType, req.TargetID, map[string]any{
		"flag_id": f.ID,
		"type":    req.Type,
		"reason":  req.Reason,
	})
	return f, nil
}

// AppendAudit writes an audit entry and never fails the caller: errors are
// logged and swallowed. Returns the stored entry when the write succeeded.
func (s *Service) AppendAudit(ctx context.Context, actorID, action, resourceType, resourceID string, details map[string]any) *AuditEntry {
	entry, err := s.repo.InsertAudit(ctx, AuditEntry{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"resource_id": resourceID,
		}).Error("moderation: audit append failed")
		return nil
	}
	return &entry
}

func (s *Service) ListFlags(ctx context.Context, operator authz.Actor, status string, limit int) ([]Flag, error) {
	if !operator.IsAdmin() {
		return nil, apperr.Forbidden("operator access only")
	}
	out, err := s.repo.ListFlags(ctx, status, limit)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}

func (s *Service) ListAudit(ctx context.Context, operator authz.Actor, limit int) ([]AuditEntry, error) {
	if !operator.IsAdmin() {
		return nil, apperr.Forbidden("operator access only")
	}
	out, err := s.repo.ListAudit(ctx, limit)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}

func (s *Service) ListUsers(ctx context.Context, operator authz.Actor) ([]User, error) {
	if !operator.IsAdmin() {
		return nil, apperr.Forbidden("operator access only")
	}
	out, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Unexpected(err)
	}
	return out, nil
}
