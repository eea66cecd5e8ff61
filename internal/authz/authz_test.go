package authz

import "testing"

func TestParticipant(t *testing.T) {
	carrier := "c1"

	if !Participant("owner", "owner", nil) {
		t.Errorf("owner must be a participant")
	}
	if !Participant("c1", "owner", &carrier) {
		t.Errorf("assigned carrier must be a participant")
	}
	if Participant("c1", "owner", nil) {
		t.Errorf("unassigned carrier is not a participant")
	}
	if Participant("stranger", "owner", &carrier) {
		t.Errorf("stranger is not a participant")
	}
}

func TestCanAct(t *testing.T) {
	carrier := "c1"

	if !CanAct(Actor{ID: "admin-1", Role: RoleAdmin}, "owner", &carrier) {
		t.Errorf("admins may always act")
	}
	if CanAct(Actor{ID: "stranger", Role: RoleCarrier}, "owner", &carrier) {
		t.Errorf("non-participants may not act")
	}
}

func TestCanRate(t *testing.T) {
	carrier := "c1"

	if CanRate(Actor{ID: "owner", Role: RoleSender}, "owner", &carrier, "owner") {
		t.Errorf("self-rating is never allowed")
	}
	if !CanRate(Actor{ID: "owner", Role: RoleSender}, "owner", &carrier, "c1") {
		t.Errorf("owner may rate the carrier")
	}
	if !CanRate(Actor{ID: "c1", Role: RoleCarrier}, "owner", &carrier, "owner") {
		t.Errorf("carrier may rate the owner")
	}
	if CanRate(Actor{ID: "stranger", Role: RoleCarrier}, "owner", &carrier, "owner") {
		t.Errorf("strangers may not rate")
	}
}
