package authz

// Actor is the authenticated caller as extracted from the JWT.
type Actor struct {
	ID   string
	Role string
}

const (
	RoleSender  = "sender"
	RoleCarrier = "carrier"
	RoleAdmin   = "admin"
)

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Participant reports whether actorID is the shipment's owner or its
// assigned carrier. Pure predicate over already-loaded data; callers load
// the shipment first so the check and the mutation observe the same
// snapshot.
func Participant(actorID, ownerID string, carrierID *string) bool {
	if actorID == ownerID {
		return true
	}
	return carrierID != nil && actorID == *carrierID
}

// CanAct allows participants and admins.
func CanAct(actor Actor, ownerID string, carrierID *string) bool {
	return actor.IsAdmin() || Participant(actor.ID, ownerID, carrierID)
}

// CanRate requires a participating rater who is not rating themselves.
func CanRate(actor Actor, ownerID string, carrierID *string, ratedID string) bool {
	if actor.ID == ratedID {
		return false
	}
	return Participant(actor.ID, ownerID, carrierID)
}
