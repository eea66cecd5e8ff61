package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when the target user does not exist.
var ErrUserNotFound = errors.New("moderation: user not found")

// Repository is the persistence port the service depends on.
type Repository interface {
	GetUser(ctx context.Context, id string) (User, error)
	SetUserActive(ctx context.Context, id string, active bool) (User, error)
	InsertFlag(ctx context.Context, f Flag) error
	ListFlags(ctx context.Context, status string, limit int) ([]Flag, error)
	InsertAudit(ctx context.Context, e AuditEntry) (AuditEntry, error)
	ListAudit(ctx context.Context, limit int) ([]AuditEntry, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id::text, name, email, role, is_active, created_at`

func (r *PGRepository) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("moderation: get user: %w", err)
	}
	return u, nil
}

// SetUserActive is idempotent on the user row: writing the current value is
// a no-op that still returns the row.
func (r *PGRepository) SetUserActive(ctx context.Context, id string, active bool) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $1 WHERE id = $2 RETURNING `+userColumns, active, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("moderation: set active: %w", err)
	}
	return u, nil
}

func (r *PGRepository) InsertFlag(ctx context.Context, f Flag) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO flags (id, type, target_type, target_id, reason, status, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.Type, f.TargetType, f.TargetID, f.Reason, f.Status, f.CreatedBy, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("moderation: insert flag: %w", err)
	}
	return nil
}

func (r *PGRepository) ListFlags(ctx context.Context, status string, limit int) ([]Flag, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows pgx.Rows
	var err error
	if status == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT id::text, type, target_type, target_id::text, reason, status, created_by::text, created_at
			 FROM flags ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id::text, type, target_type, target_id::text, reason, status, created_by::text, created_at
			 FROM flags WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("moderation: list flags: %w", err)
	}
	defer rows.Close()

	var out []Flag
	for rows.Next() {
		var f Flag
		if err := rows.Scan(&f.ID, &f.Type, &f.TargetType, &f.TargetID, &f.Reason, &f.Status, &f.CreatedBy, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("moderation: scan flag: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepository) InsertAudit(ctx context.Context, e AuditEntry) (AuditEntry, error) {
	details, err := json.Marshal(e.Details)
	if err != nil {
		details = []byte(`{}`)
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO audit_log (actor_id, action, resource_type, resource_id, details)
		 VALUES ($1, $2, $3, $4, $5::jsonb)
		 RETURNING id, created_at`,
		e.ActorID, e.Action, e.ResourceType, e.ResourceID, details,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return AuditEntry{}, fmt.Errorf("moderation: insert audit: %w", err)
	}
	return e, nil
}

func (r *PGRepository) ListAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(actor_id::text, ''), action, resource_type, resource_id, details, created_at
		 FROM audit_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("moderation: list audit: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.ResourceType, &e.ResourceID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("moderation: scan audit: %w", err)
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("moderation: list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("moderation: scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
