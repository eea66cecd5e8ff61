package shipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no shipment row exists for the identifier.
var ErrNotFound = errors.New("shipment: not found")

// Repository is the persistence port the service depends on.
type Repository interface {
	Insert(ctx context.Context, s Shipment) error
	Get(ctx context.Context, id string) (Shipment, error)
	ListForUser(ctx context.Context, userID string) ([]Shipment, error)
	// UpdateStatus flips status from -> to in one guarded write and returns
	// false when the row was no longer in the expected state.
	UpdateStatus(ctx context.Context, id string, from, to Status, cancelReason *string) (bool, error)
	SetCarrier(ctx context.Context, id, carrierID string) (bool, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const shipmentColumns = `id::text, owner_id::text, carrier_id::text, pickup_location, delivery_location,
	pickup_date, delivery_date, weight_kg, declared_value, description, status, cancel_reason, created_at, updated_at`

func scanShipment(row pgx.Row) (Shipment, error) {
	var s Shipment
	var status string
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.CarrierID, &s.PickupLocation, &s.DeliveryLocation,
		&s.PickupDate, &s.DeliveryDate, &s.WeightKG, &s.DeclaredValue, &s.Description,
		&status, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return Shipment{}, err
	}
	s.Status = Status(status)
	return s, nil
}

func (r *PGRepository) Insert(ctx context.Context, s Shipment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shipments (id, owner_id, pickup_location, delivery_location, pickup_date,
			delivery_date, weight_kg, declared_value, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		s.ID, s.OwnerID, s.PickupLocation, s.DeliveryLocation, s.PickupDate,
		s.DeliveryDate, s.WeightKG, s.DeclaredValue, s.Description, string(s.Status), s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("shipment: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Shipment, error) {
	s, err := scanShipment(r.pool.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Shipment{}, ErrNotFound
		}
		return Shipment{}, fmt.Errorf("shipment: get: %w", err)
	}
	return s, nil
}

func (r *PGRepository) ListForUser(ctx context.Context, userID string) ([]Shipment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+shipmentColumns+` FROM shipments
		 WHERE owner_id = $1 OR carrier_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("shipment: list: %w", err)
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("shipment: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, from, to Status, cancelReason *string) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE shipments
		 SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		string(to), cancelReason, id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("shipment: update status: %w", err)
	}
	return res.RowsAffected() > 0, nil
}

func (r *PGRepository) SetCarrier(ctx context.Context, id, carrierID string) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE shipments SET carrier_id = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'accepted'`,
		carrierID, id,
	)
	if err != nil {
		return false, fmt.Errorf("shipment: set carrier: %w", err)
	}
	return res.RowsAffected() > 0, nil
}
