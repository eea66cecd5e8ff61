package complaint

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no complaint row exists for the identifier.
var ErrNotFound = errors.New("complaint: not found")

// Repository is the persistence port the service depends on.
type Repository interface {
	Insert(ctx context.Context, cp Complaint) error
	Get(ctx context.Context, id string) (Complaint, error)
	ListForUser(ctx context.Context, userID string) ([]Complaint, error)
	ListAll(ctx context.Context, status string, limit int) ([]Complaint, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const complaintColumns = `id::text, shipment_id::text, created_by::text, against_id::text,
	type, reason, status, priority, created_at, updated_at`

func scanComplaint(row pgx.Row) (Complaint, error) {
	var cp Complaint
	var status string
	err := row.Scan(&cp.ID, &cp.ShipmentID, &cp.CreatedBy, &cp.AgainstID,
		&cp.Type, &cp.Reason, &status, &cp.Priority, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return Complaint{}, err
	}
	cp.Status = Status(status)
	return cp, nil
}

func (r *PGRepository) Insert(ctx context.Context, cp Complaint) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO complaints (id, shipment_id, created_by, against_id, type, reason, status, priority, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		cp.ID, cp.ShipmentID, cp.CreatedBy, cp.AgainstID, cp.Type, cp.Reason,
		string(cp.Status), cp.Priority, cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("complaint: insert: %w", err)
	}
	return nil
}

func (r *PGRepository) Get(ctx context.Context, id string) (Complaint, error) {
	cp, err := scanComplaint(r.pool.QueryRow(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Complaint{}, ErrNotFound
		}
		return Complaint{}, fmt.Errorf("complaint: get: %w", err)
	}
	return cp, nil
}

func (r *PGRepository) ListForUser(ctx context.Context, userID string) ([]Complaint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+complaintColumns+` FROM complaints
		 WHERE created_by = $1 OR against_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("complaint: list: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *PGRepository) ListAll(ctx context.Context, status string, limit int) ([]Complaint, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+complaintColumns+` FROM complaints WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("complaint: list all: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`UPDATE complaints SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("complaint: update status: %w", err)
	}
	return res.RowsAffected() > 0, nil
}

func collect(rows pgx.Rows) ([]Complaint, error) {
	var out []Complaint
	for rows.Next() {
		cp, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("complaint: scan: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}
