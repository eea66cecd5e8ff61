package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no offer row exists for the identifier.
	ErrNotFound = errors.New("offer: not found")
	// ErrNotPending signals the status-guard write hit zero rows: the offer
	// was already accepted or rejected elsewhere.
	ErrNotPending = errors.New("offer: no longer pending")
	// ErrShipmentNotOpen signals the shipment left open before the write.
	ErrShipmentNotOpen = errors.New("offer: shipment is not open")
)

// Repository is the persistence port the service depends on. Accept runs the
// whole exclusivity transaction.
type Repository interface {
	Insert(ctx context.Context, o Offer) error
	Get(ctx context.Context, id string) (Offer, error)
	ListForShipment(ctx context.Context, shipmentID string) ([]Offer, error)
	Accept(ctx context.Context, offerID string) (AcceptResult, error)
	Reject(ctx context.Context, offerID string) (bool, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const offerColumns = `id::text, shipment_id::text, carrier_id::text, price, message, status, created_at, updated_at`

func scanOffer(row pgx.Row) (Offer, error) {
	var o Offer
	var status string
	err := row.Scan(&o.ID, &o.ShipmentID, &o.CarrierID, &o.Price, &o.Message, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Offer{}, err
	}
	o.Status = Status(status)
	return o, nil
}

func (r *PGRepository) Insert(ctx context.Context, o Offer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO offers (id, shipment_id, carrier_id, price, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		o.ID, o.ShipmentID, o.CarrierID, o.Price, o.Message, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("offer: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Offer, error) {
	o, err := scanOffer(r.pool.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Offer{}, ErrNotFound
		}
		return Offer{}, fmt.Errorf("offer: get: %w", err)
	}
	return o, nil
}

func (r *PGRepository) ListForShipment(ctx context.Context, shipmentID string) ([]Offer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE shipment_id = $1 ORDER BY created_at ASC`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("offer: list: %w", err)
	}
	defer rows.Close()

	var out []Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("offer: scan: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Accept resolves the exclusivity race in a single transaction: the shipment
// row is locked, the winning offer is flipped with a status-guard write
// (zero rows means somebody else won), every other pending offer is
// rejected, and the shipment records the winner.
func (r *PGRepository) Accept(ctx context.Context, offerID string) (AcceptResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("offer: begin accept tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var shipmentID, carrierID string
	err = tx.QueryRow(ctx,
		`SELECT shipment_id::text, carrier_id::text FROM offers WHERE id = $1`, offerID,
	).Scan(&shipmentID, &carrierID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AcceptResult{}, ErrNotFound
		}
		return AcceptResult{}, fmt.Errorf("offer: fetch for accept: %w", err)
	}

	var shipmentStatus string
	if err := tx.QueryRow(ctx,
		`SELECT status FROM shipments WHERE id = $1 FOR UPDATE`, shipmentID,
	).Scan(&shipmentStatus); err != nil {
		return AcceptResult{}, fmt.Errorf("offer: lock shipment: %w", err)
	}
	if shipmentStatus != "open" {
		return AcceptResult{}, ErrShipmentNotOpen
	}

	res, err := tx.Exec(ctx,
		`UPDATE offers SET status = 'accepted', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`, offerID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("offer: accept write: %w", err)
	}
	if res.RowsAffected() == 0 {
		return AcceptResult{}, ErrNotPending
	}

	rows, err := tx.Query(ctx,
		`UPDATE offers SET status = 'rejected', updated_at = NOW()
		 WHERE shipment_id = $1 AND id <> $2 AND status = 'pending'
		 RETURNING id::text, carrier_id::text`, shipmentID, offerID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("offer: reject losers: %w", err)
	}
	var rejected []RejectedOffer
	for rows.Next() {
		var ro RejectedOffer
		if err := rows.Scan(&ro.ID, &ro.CarrierID); err != nil {
			rows.Close()
			return AcceptResult{}, fmt.Errorf("offer: scan rejected: %w", err)
		}
		rejected = append(rejected, ro)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return AcceptResult{}, fmt.Errorf("offer: reject losers: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE shipments SET status = 'accepted', carrier_id = $1, updated_at = NOW()
		 WHERE id = $2`, carrierID, shipmentID); err != nil {
		return AcceptResult{}, fmt.Errorf("offer: update shipment: %w", err)
	}

	accepted, err := scanOffer(tx.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, offerID))
	if err != nil {
		return AcceptResult{}, fmt.Errorf("offer: reread accepted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return AcceptResult{}, fmt.Errorf("offer: commit accept: %w", err)
	}

	return AcceptResult{Accepted: accepted, Rejected: rejected}, nil
}

func (r *PGRepository) Reject(ctx context.Context, offerID string) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE offers SET status = 'rejected', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`, offerID)
	if err != nil {
		return false, fmt.Errorf("offer: reject write: %w", err)
	}
	return res.RowsAffected() > 0, nil
}
