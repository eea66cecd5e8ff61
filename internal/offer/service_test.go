package offer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loadboard-app/loadboard/internal/alerts"
	"github.com/loadboard-app/loadboard/internal/apperr"
	"github.com/loadboard-app/loadboard/internal/authz"
	"github.com/loadboard-app/loadboard/internal/shipment"
)

type fakeRepo struct {
	offers    map[string]Offer
	inserted  []Offer
	acceptRes AcceptResult
	acceptErr error
	rejectOK  bool
	rejectErr error
}

func (f *fakeRepo) Insert(ctx context.Context, o Offer) error {
	f.inserted = append(f.inserted, o)
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Offer, error) {
	o, ok := f.offers[id]
	if !ok {
		return Offer{}, ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) ListForShipment(ctx context.Context, shipmentID string) ([]Offer, error) {
	var out []Offer
	for _, o := range f.offers {
		if o.ShipmentID == shipmentID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) Accept(ctx context.Context, offerID string) (AcceptResult, error) {
	if f.acceptErr != nil {
		return AcceptResult{}, f.acceptErr
	}
	return f.acceptRes, nil
}

func (f *fakeRepo) Reject(ctx context.Context, offerID string) (bool, error) {
	return f.rejectOK, f.rejectErr
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
	sent   []alerts.Notification
	alerts []string
}

func (f *fakeNotifier) Notify(ctx context.Context, n alerts.Notification) error {
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) AdminAlert(ctx context.Context, actorID, severity, message string) error {
	f.alerts = append(f.alerts, message)
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func openShipment(id, owner string) shipment.Shipment {
	return shipment.Shipment{
		ID:      id,
		OwnerID: owner,
		Status:  shipment.StatusOpen,
	}
}

func TestCreate_RejectsOwnerBid(t *testing.T) {
	repo := &fakeRepo{offers: map[string]Offer{}}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Create(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender},
		CreateRequest{ShipmentID: "s1", Price: 500})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Errorf("expected no insert on owner bid")
	}
}

func TestCreate_NonPositivePrice(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeShipments{}, &fakeNotifier{}, testLogger())

	_, err := svc.Create(context.Background(), authz.Actor{ID: "c1", Role: authz.RoleCarrier},
		CreateRequest{ShipmentID: "s1", Price: 0})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_ClosedShipment(t *testing.T) {
	sh := openShipment("s1", "sender-1")
	sh.Status = shipment.StatusAccepted
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{"s1": sh}}
	svc := NewService(&fakeRepo{}, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Create(context.Background(), authz.Actor{ID: "c1", Role: authz.RoleCarrier},
		CreateRequest{ShipmentID: "s1", Price: 500})
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCreate_NotifiesOwner(t *testing.T) {
	repo := &fakeRepo{offers: map[string]Offer{}}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, ships, notifier, testLogger())

	o, err := svc.Create(context.Background(), authz.Actor{ID: "c1", Role: authz.RoleCarrier},
		CreateRequest{ShipmentID: "s1", Price: 500, Message: "can do tomorrow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusPending {
		t.Errorf("new offer status = %s, want pending", o.Status)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	if len(notifier.sent) != 1 || notifier.sent[0].RecipientID != "sender-1" {
		t.Errorf("expected owner notification, got %+v", notifier.sent)
	}
}

func TestAccept_WinnerAndLosersNotified(t *testing.T) {
	now := time.Now()
	winner := Offer{ID: "o1", ShipmentID: "s1", CarrierID: "c1", Price: 500, Status: StatusPending, CreatedAt: now}
	repo := &fakeRepo{
		offers: map[string]Offer{"o1": winner},
		acceptRes: AcceptResult{
			Accepted: Offer{ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusAccepted},
			Rejected: []RejectedOffer{{ID: "o2", CarrierID: "c2"}, {ID: "o3", CarrierID: "c3"}},
		},
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, ships, notifier, testLogger())

	res, err := svc.Accept(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "o1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Accepted.ID != "o1" || len(res.Rejected) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifier.sent))
	}
	kinds := map[string]int{}
	for _, n := range notifier.sent {
		kinds[n.Kind]++
	}
	if kinds["offer:accepted"] != 1 || kinds["offer:rejected"] != 2 {
		t.Errorf("unexpected notification kinds: %v", kinds)
	}
}

func TestAccept_LostRaceIsConflict(t *testing.T) {
	repo := &fakeRepo{
		offers:    map[string]Offer{"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusPending}},
		acceptErr: ErrNotPending,
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Accept(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "o1")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAccept_ShipmentNoLongerOpen(t *testing.T) {
	repo := &fakeRepo{
		offers:    map[string]Offer{"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusPending}},
		acceptErr: ErrShipmentNotOpen,
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Accept(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "o1")
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAccept_NonOwnerForbidden(t *testing.T) {
	repo := &fakeRepo{
		offers: map[string]Offer{"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusPending}},
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Accept(context.Background(), authz.Actor{ID: "c2", Role: authz.RoleCarrier}, "o1")
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAccept_AdminMayAct(t *testing.T) {
	repo := &fakeRepo{
		offers: map[string]Offer{"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusPending}},
		acceptRes: AcceptResult{
			Accepted: Offer{ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusAccepted},
		},
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	if _, err := svc.Accept(context.Background(), authz.Actor{ID: "admin-1", Role: authz.RoleAdmin}, "o1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReject_NonPending(t *testing.T) {
	repo := &fakeRepo{
		offers: map[string]Offer{"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusRejected}},
	}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	_, err := svc.Reject(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "o1")
	if !apperr.IsKind(err, apperr.KindInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestListForShipment_CarrierSeesOwnOnly(t *testing.T) {
	repo := &fakeRepo{offers: map[string]Offer{
		"o1": {ID: "o1", ShipmentID: "s1", CarrierID: "c1", Status: StatusPending},
		"o2": {ID: "o2", ShipmentID: "s1", CarrierID: "c2", Status: StatusPending},
	}}
	ships := &fakeShipments{shipments: map[string]shipment.Shipment{
		"s1": openShipment("s1", "sender-1"),
	}}
	svc := NewService(repo, ships, &fakeNotifier{}, testLogger())

	own, err := svc.ListForShipment(context.Background(), authz.Actor{ID: "c1", Role: authz.RoleCarrier}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(own) != 1 || own[0].CarrierID != "c1" {
		t.Errorf("carrier should only see their own offers, got %+v", own)
	}

	all, err := svc.ListForShipment(context.Background(), authz.Actor{ID: "sender-1", Role: authz.RoleSender}, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("owner should see all offers, got %d", len(all))
	}
}
