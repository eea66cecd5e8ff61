package complaint

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/authz"
	"github.com/loadboard-app/loadboard/internal/shipment"
)

type fakeRepo struct {
	complaints map[string]Complaint
	inserted   []Complaint
	updateOK   bool
}

func (f *fakeRepo) Insert(ctx context.Context, c Complaint) error {
	f.inserted = append(f.inserted, c)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Complaint, error) {
	c, ok := f.complaints[id]
	if !ok {
		return Complaint{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string) ([]Complaint, error) {
	var out []Complaint
	for _, c := range f.complaints {
		if c.CreatedBy == userID || c.AgainstID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context, status string, limit int) ([]Complaint, error) {
	var out []Complaint
	for _, c := range f.complaints {
		if status == "" || string(c.Status) == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	if !f.updateOK {
		return false, nil
	}
	c := f.complaints[id]
	c.Status = to
	f.complaints[id] = c
	return true, nil
}

type fakeShipments struct {
	shipments map[string]shipment.Shipment
}

func (f *fakeShipments) Get(ctx context.Context, id string) (shipment.Shipment, error) {
	sh, ok := f.shipments[id]
	if !ok {
		return shipment.Shipment{}, shipment.ErrNotFound
	}
	return sh, nil
}

type fakeNotifier struct {
	sent        []alerts.Notification
	adminAlerts []string
}

func (f *fakeNotifier) Notify(ctx context.Context, n alerts.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) AdminAlert(ctx context.Context, actorID, severity, message string) error {
	f.adminAlerts = append(f.adminAlerts, message)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func participantShipment() *fakeShipments {
	carrier := "c1"
	return &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: shipment.StatusInTransit},
	}}
}

func TestOpen_ParticipantOnly(t *testing.T) {
	svc := NewService(&fakeRepo{}, participantShipment(), &fakeNotifier{}, testLogger())

	_, err := svc.Open(context.Background(), authz.Actor{ID: "stranger", Role: authz.RoleCarrier},
		OpenRequest{ShipmentID: "s1", AgainstID: "sender-1", Type: "delay", Reason: "two days late"})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestOpen_NotifiesAccusedAndOperators(t *testing.T) {
	repo := &fakeRepo{}
	notifier := &fakeNotifier{}
	svc := NewService(repo, participantShipment(), notifier, testLogger())

	cp, err := svc.Open(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender},
		OpenRequest{ShipmentID: "s1", AgainstID: "c1", Type: "damage", Reason: "crate arrived crushed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp.Status != StatusOpen {
		t.Errorf("status = %s, want open", cp.Status)
	}
	if cp.Priority != "high" {
		t.Errorf("damage complaints are high priority, got %s", cp.Priority)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].RecipientID != "c1" {
		t.Errorf("expected accused party notified, got %+v", notifier.sent)
	}
	if len(notifier.adminAlerts) != 1 {
		t.Errorf("expected one operator alert, got %d", len(notifier.adminAlerts))
	}
}

func TestOpen_EmptyReason(t *testing.T) {
	svc := NewService(&fakeRepo{}, participantShipment(), &fakeNotifier{}, testLogger())

	_, err := svc.Open(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender},
		OpenRequest{ShipmentID: "s1", AgainstID: "c1", Type: "delay"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransition_AdminOnly(t *testing.T) {
	repo := &fakeRepo{complaints: map[string]Complaint{
		"cp1": {ID: "cp1", Status: StatusOpen},
	}}
	svc := NewService(repo, participantShipment(), &fakeNotifier{}, testLogger())

	_, err := svc.Transition(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender},
		"cp1", StatusInvestigating, false)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestTransition_TerminalNeedsOverride(t *testing.T) {
	repo := &fakeRepo{
		complaints: map[string]Complaint{"cp1": {ID: "cp1", Status: StatusResolved}},
		updateOK:   true,
	}
	svc := NewService(repo, participantShipment(), &fakeNotifier{}, testLogger())
	admin := authz.Actor{ID: "op-1", Role: authz.RoleAdmin}

	_, err := svc.Transition(context.Background(), admin, "cp1", StatusInvestigating, false)
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition without override, got %v", err)
	}

	cp, err := svc.Transition(context.Background(), admin, "cp1", StatusInvestigating, true)
	if err != nil {
		t.Fatalf("override transition failed: %v", err)
	}
	if cp.Status != StatusInvestigating {
		t.Errorf("status = %s, want investigating", cp.Status)
	}
}

func TestTransition_SameStatusNoOp(t *testing.T) {
	repo := &fakeRepo{complaints: map[string]Complaint{
		"cp1": {ID: "cp1", Status: StatusInvestigating},
	}}
	svc := NewService(repo, participantShipment(), &fakeNotifier{}, testLogger())

	cp, err := svc.Transition(context.Background(), authz.Actor{ID: "op-1", Role: authz.RoleAdmin},
		"cp1", StatusInvestigating, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp.Status != StatusInvestigating {
		t.Errorf("status = %s, want investigating", cp.Status)
	}
}

func TestTransition_RaceSurfacesConflict(t *testing.T) {
	repo := &fakeRepo{
		complaints: map[string]Complaint{"cp1": {ID: "cp1", Status: StatusOpen}},
		updateOK:   false,
	}
	svc := NewService(repo, participantShipment(), &fakeNotifier{}, testLogger())

	_, err := svc.Transition(context.Background(), authz.Actor{ID: "op-1", Role: authz.RoleAdmin},
		"cp1", StatusEscalated, false)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListAll_ValidatesStatusFilter(t *testing.T) {
	svc := NewService(&fakeRepo{}, participantShipment(), &fakeNotifier{}, testLogger())
	admin := authz.Actor{ID: "op-1", Role: authz.RoleAdmin}

	if _, err := svc.ListAll(context.Background(), admin, "pending_review", 10); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown filter, got %v", err)
	}
	if _, err := svc.ListAll(context.Background(), authz.Actor{ID: "u1", Role: authz.RoleSender}, "", 10); !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
}

func TestParseStatus_Canonical(t *testing.T) {
	if st, err := ParseStatus(" Escalated "); err != nil || st != StatusEscalated {
		t.Errorf("ParseStatus normalization failed: %v %v", st, err)
	}
	if !StatusResolved.Terminal() || !StatusRejected.Terminal() || StatusAssigned.Terminal() {
		t.Errorf("terminal set must be exactly resolved and rejected")
	}
}
