package triage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/complaint"
	"github.com/loadboard-app/loadboard/internal/moderation"
)

// Severity ranks inbox items: operator flags outrank user complaints, which
// outrank informational audit entries.
const (
	SeverityFlag      = 3
	SeverityComplaint = 2
	SeverityAudit     = 1
)

// Item is one row of the merged operator inbox.
type Item struct {
	Kind      string    `json:"kind"` // flag|complaint|audit
	Severity  int       `json:"severity"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
	Payload   any       `json:"payload"`
}

// Briefing is the condensed operator overview.
type Briefing struct {
	OpenComplaints int      `json:"open_complaints"`
	OpenFlags      int      `json:"open_flags"`
	RecentAudits   int      `json:"recent_audits"`
	TopItems       []Item   `json:"top_items"`
	Warnings       []string `json:"warnings,omitempty"`
}

// ComplaintSource is the slice of the complaint repository the aggregator
// reads.
type ComplaintSource interface {
	ListAll(ctx context.Context, status string, limit int) ([]complaint.Complaint, error)
}

// FlagSource and AuditSource come from the moderation repository.
type FlagSource interface {
	ListFlags(ctx context.Context, status string, limit int) ([]moderation.Flag, error)
}

type AuditSource interface {
	ListAudit(ctx context.Context, limit int) ([]moderation.AuditEntry, error)
}

// Service is a read-only composition over the three registers. It holds no
// state and is safe for concurrent use.
type Service struct {
	complaints ComplaintSource
	flags      FlagSource
	audits     AuditSource
}

func NewService(complaints ComplaintSource, flags FlagSource, audits AuditSource) *Service {
	return &Service{complaints: complaints, flags: flags, audits: audits}
}

// Inbox merges open complaints, open flags and recent audit entries into one
// ranked sequence. A failing sub-fetch degrades to a warning; the call only
// fails when every source fails.
func (s *Service) Inbox(ctx context.Context, limit int) ([]Item, []string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var (
		complaints []complaint.Complaint
		flags      []moderation.Flag
		audits     []moderation.AuditEntry
		errs       [3]error
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		complaints, errs[0] = s.complaints.ListAll(ctx, string(complaint.StatusOpen), limit)
		return nil
	})
	g.Go(func() error {
		flags, errs[1] = s.flags.ListFlags(ctx, moderation.FlagStatusOpen, limit)
		return nil
	})
	g.Go(func() error {
		audits, errs[2] = s.audits.ListAudit(ctx, limit)
		return nil
	})
	_ = g.Wait()

	var warnings []string
	for i, name := range [3]string{"complaints", "flags", "audit"} {
		if errs[i] != nil {
			warnings = append(warnings, fmt.Sprintf("%s fetch failed: %v", name, errs[i]))
		}
	}
	if len(warnings) == 3 {
		return nil, warnings, apperr.Unexpected(fmt.Errorf("triage: all sources failed"))
	}

	items := make([]Item, 0, len(complaints)+len(flags)+len(audits))
	for _, f := range flags {
		items = append(items, Item{
			Kind:      "flag",
			Severity:  SeverityFlag,
			ID:        f.ID,
			Title:     fmt.Sprintf("Flag (%s) on %s", f.Type, f.TargetType),
			Detail:    f.Reason,
			CreatedAt: f.CreatedAt,
			Payload:   f,
		})
	}
	for _, cp := range complaints {
		items = append(items, Item{
			Kind:      "complaint",
			Severity:  SeverityComplaint,
			ID:        cp.ID,
			Title:     fmt.Sprintf("Complaint (%s) on shipment %s", cp.Type, cp.ShipmentID),
			Detail:    cp.Reason,
			CreatedAt: cp.CreatedAt,
			Payload:   cp,
		})
	}
	for _, a := range audits {
		items = append(items, Item{
			Kind:      "audit",
			Severity:  SeverityAudit,
			ID:        fmt.Sprintf("%d", a.ID),
			Title:     fmt.Sprintf("%s on %s %s", a.Action, a.ResourceType, a.ResourceID),
			CreatedAt: a.CreatedAt,
			Payload:   a,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Severity != items[j].Severity {
			return items[i].Severity > items[j].Severity
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, warnings, nil
}

// Briefing condenses the inbox into counters plus the few highest-ranked
// items.
func (s *Service) Briefing(ctx context.Context) (Briefing, error) {
	items, warnings, err := s.Inbox(ctx, 200)
	if err != nil {
		return Briefing{}, err
	}

	b := Briefing{Warnings: warnings}
	for _, it := range items {
		switch it.Kind {
		case "complaint":
			b.OpenComplaints++
		case "flag":
			b.OpenFlags++
		case "audit":
			b.RecentAudits++
		}
	}
	top := len(items)
	if top > 5 {
		top = 5
	}
	b.TopItems = items[:top]
	return b, nil
}
