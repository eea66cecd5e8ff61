package rating

import "time"

// Rating is a 1-5 score one participant gives the other for a shipment.
// Exactly one row exists per (shipment, rater, rated) triple; resubmitting
// updates the row in place.
type Rating struct {
	ID         string    `json:"id"`
	ShipmentID string    `json:"shipment_id"`
	RaterID    string    `json:"rater_id"`
	RatedID    string    `json:"rated_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SubmitRequest is the POST /api/ratings payload.
type SubmitRequest struct {
	ShipmentID string `json:"shipment_id" validate:"required,uuid"`
	RatedID    string `json:"rated_id" validate:"required,uuid"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=1000"`
	Category   string `json:"category" validate:"max=100"`
}

// Summary aggregates a user's received ratings.
type Summary struct {
	UserID        string  `json:"user_id"`
	TotalRatings  int     `json:"total_ratings"`
	AverageRating float64 `json:"average_rating"`
	StarCounts    struct {
		FiveStar  int `json:"five_star"`
		FourStar  int `json:"four_star"`
		ThreeStar int `json:"three_star"`
		TwoStar   int `json:"two_star"`
		OneStar   int `json:"one_star"`
	} `json:"star_counts"`
}
