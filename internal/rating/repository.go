package rating

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the persistence port the service depends on.
type Repository interface {
	// Upsert inserts or, when the (shipment, rater, rated) row exists,
	// updates score, comment and category. Returns the stored row.
	Upsert(ctx context.Context, r Rating) (Rating, error)
	SummaryFor(ctx context.Context, userID string) (Summary, error)
	ListFor(ctx context.Context, userID string, limit, offset int) ([]Rating, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (p *PGRepository) Upsert(ctx context.Context, r Rating) (Rating, error) {
	row := p.pool.QueryRow(ctx,
		`INSERT INTO ratings (id, shipment_id, rater_id, rated_id, rating, comment, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 ON CONFLICT (shipment_id, rater_id, rated_id)
		 DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment,
			category = EXCLUDED.category, updated_at = NOW()
		 RETURNING id::text, shipment_id::text, rater_id::text, rated_id::text,
			rating, comment, category, created_at, updated_at`,
		r.ID, r.ShipmentID, r.RaterID, r.RatedID, r.Rating, r.Comment, r.Category,
	)

	var out Rating
	if err := row.Scan(&out.ID, &out.ShipmentID, &out.RaterID, &out.RatedID,
		&out.Rating, &out.Comment, &out.Category, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Rating{}, fmt.Errorf("rating: upsert: %w", err)
	}
	return out, nil
}

func (p *PGRepository) SummaryFor(ctx context.Context, userID string) (Summary, error) {
	var s Summary
	s.UserID = userID

	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM ratings WHERE rated_id = $1`, userID,
	).Scan(&s.TotalRatings, &s.AverageRating)
	if err != nil {
		return Summary{}, fmt.Errorf("rating: summary: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT rating, COUNT(*) FROM ratings WHERE rated_id = $1 GROUP BY rating`, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("rating: breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return Summary{}, fmt.Errorf("rating: breakdown scan: %w", err)
		}
		switch score {
		case 5:
			s.StarCounts.FiveStar = count
		case 4:
			s.StarCounts.FourStar = count
		case 3:
			s.StarCounts.ThreeStar = count
		case 2:
			s.StarCounts.TwoStar = count
		case 1:
			s.StarCounts.OneStar = count
		}
	}
	return s, rows.Err()
}

func (p *PGRepository) ListFor(ctx context.Context, userID string, limit, offset int) ([]Rating, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, shipment_id::text, rater_id::text, rated_id::text,
			rating, comment, category, created_at, updated_at
		 FROM ratings WHERE rated_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("rating: list: %w", err)
	}
	defer rows.Close()

	var out []Rating
	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.ID, &r.ShipmentID, &r.RaterID, &r.RatedID,
			&r.Rating, &r.Comment, &r.Category, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("rating: list scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
