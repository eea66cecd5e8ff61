package shipment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/authz"
)

type fakeRepo struct {
	shipments map[string]Shipment
	inserted  []Shipment
	updateOK  bool
	updateErr error
	carrierOK bool
}

func (f *fakeRepo) Insert(ctx context.Context, s Shipment) error {
	f.inserted = append(f.inserted, s)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Shipment, error) {
	sh, ok := f.shipments[id]
	if !ok {
		return Shipment{}, ErrNotFound
	}
	return sh, nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string) ([]Shipment, error) {
	var out []Shipment
	for _, sh := range f.shipments {
		if sh.OwnerID == userID || (sh.CarrierID != nil && *sh.CarrierID == userID) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, from, to Status, cancelReason *string) (bool, error) {
	return f.updateOK, f.updateErr
}

func (f *fakeRepo) SetCarrier(ctx context.Context, id, carrierID string) (bool, error) {
	return f.carrierOK, nil
}

type fakeNotifier struct {
	sent []alerts.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n alerts.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) AdminAlert(ctx context.Context, actorID, severity, message string) error {
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func validCreate() CreateRequest {
	return CreateRequest{
		PickupLocation:   "Berlin",
		DeliveryLocation: "Hamburg",
		PickupDate:       time.Now().Add(24 * time.Hour),
		WeightKG:         120,
		DeclaredValue:    5000,
	}
}

func TestCreate_StartsOpen(t *testing.T) {
	repo := &fakeRepo{shipments: map[string]Shipment{}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	sh, err := svc.Create(context.Background(), "sender-1", validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sh.Status != StatusOpen {
		t.Errorf("status = %s, want open", sh.Status)
	}
	if sh.CarrierID != nil {
		t.Errorf("new shipment must not have a carrier")
	}
	if len(repo.inserted) != 1 {
		t.Errorf("expected one insert")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeNotifier{}, testLogger())

	cases := map[string]func(*CreateRequest){
		"missing pickup":    func(r *CreateRequest) { r.PickupLocation = "" },
		"missing delivery":  func(r *CreateRequest) { r.DeliveryLocation = "" },
		"zero pickup date":  func(r *CreateRequest) { r.PickupDate = time.Time{} },
		"zero weight":       func(r *CreateRequest) { r.WeightKG = 0 },
		"negative declared": func(r *CreateRequest) { r.DeclaredValue = -1 },
	}
	for name, mutate := range cases {
		req := validCreate()
		mutate(&req)
		if _, err := svc.Create(context.Background(), "sender-1", req); !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestCancel_TerminalRejected(t *testing.T) {
	repo := &fakeRepo{shipments: map[string]Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", Status: StatusDelivered},
	}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.Cancel(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "s1", "changed plans")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancel_NonParticipantForbidden(t *testing.T) {
	repo := &fakeRepo{shipments: map[string]Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", Status: StatusOpen},
	}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.Cancel(context.Background(), authz.Actor{ID: "stranger", Role: authz.RoleCarrier}, "s1", "nope")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCancel_NotifiesCounterparty(t *testing.T) {
	carrier := "c1"
	repo := &fakeRepo{
		shipments: map[string]Shipment{
			"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: StatusAccepted},
		},
		updateOK: true,
	}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, testLogger())

	sh, err := svc.Cancel(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "s1", "no longer needed")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sh.Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", sh.Status)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].RecipientID != carrier {
		t.Errorf("expected cancellation notice to carrier, got %+v", notifier.sent)
	}
}

func TestAdvanceStatus_LegalChain(t *testing.T) {
	carrier := "c1"
	repo := &fakeRepo{
		shipments: map[string]Shipment{
			"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: StatusAccepted},
		},
		updateOK: true,
	}
	svc := NewService(repo, &fakeNotifier{}, testLogger())
	actor := authz.Actor{ID: carrier, Role: authz.RoleCarrier}

	sh, err := svc.AdvanceStatus(context.Background(), actor, "s1", StatusInTransit)
	if err != nil {
		t.Fatalf("accepted -> in_transit: %v", err)
	}
	if sh.Status != StatusInTransit {
		t.Errorf("status = %s, want in_transit", sh.Status)
	}

	repo.shipments["s1"] = sh
	sh, err = svc.AdvanceStatus(context.Background(), actor, "s1", StatusDelivered)
	if err != nil {
		t.Fatalf("in_transit -> delivered: %v", err)
	}
	if sh.Status != StatusDelivered {
		t.Errorf("status = %s, want delivered", sh.Status)
	}
}

func TestAdvanceStatus_SkipRejected(t *testing.T) {
	carrier := "c1"
	repo := &fakeRepo{shipments: map[string]Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: StatusAccepted},
	}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.AdvanceStatus(context.Background(), authz.Actor{ID: carrier, Role: authz.RoleCarrier}, "s1", StatusDelivered)
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition for accepted -> delivered, got %v", err)
	}
}

func TestAdvanceStatus_OnlyAssignedCarrier(t *testing.T) {
	carrier := "c1"
	repo := &fakeRepo{shipments: map[string]Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: StatusAccepted},
	}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.AdvanceStatus(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "s1", StatusInTransit)
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non-carrier, got %v", err)
	}
}

func TestAdvanceStatus_RaceSurfacesConflict(t *testing.T) {
	carrier := "c1"
	repo := &fakeRepo{
		shipments: map[string]Shipment{
			"s1": {ID: "s1", OwnerID: "sender-1", CarrierID: &carrier, Status: StatusAccepted},
		},
		updateOK: false,
	}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.AdvanceStatus(context.Background(), authz.Actor{ID: carrier, Role: authz.RoleCarrier}, "s1", StatusInTransit)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on guarded write miss, got %v", err)
	}
}

func TestAssignCarrier_OnlyWhileAccepted(t *testing.T) {
	repo := &fakeRepo{shipments: map[string]Shipment{
		"s1": {ID: "s1", OwnerID: "sender-1", Status: StatusOpen},
	}}
	svc := NewService(repo, &fakeNotifier{}, testLogger())

	_, err := svc.AssignCarrier(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "s1", "c9")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if st, err := ParseStatus("  In_Transit "); err != nil || st != StatusInTransit {
		t.Errorf("ParseStatus normalization failed: %v %v", st, err)
	}
	if _, err := ParseStatus("teleported"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}
