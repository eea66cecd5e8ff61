package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables the services expect. Every statement is
// idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'sender' CHECK (role IN ('sender','carrier','admin')),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS shipments (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id),
			carrier_id UUID NULL REFERENCES users(id),
			pickup_location TEXT NOT NULL,
			delivery_location TEXT NOT NULL,
			pickup_date TIMESTAMPTZ NOT NULL,
			delivery_date TIMESTAMPTZ NULL,
			weight_kg DOUBLE PRECISION NOT NULL,
			declared_value BIGINT NOT NULL DEFAULT 0,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'open'
				CHECK (status IN ('open','accepted','in_transit','delivered','cancelled')),
			cancel_reason TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_owner ON shipments(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_carrier ON shipments(carrier_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status)`,

		`CREATE TABLE IF NOT EXISTS offers (
			id UUID PRIMARY KEY,
			shipment_id UUID NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
			carrier_id UUID NOT NULL REFERENCES users(id),
			price BIGINT NOT NULL CHECK (price > 0),
			message TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','accepted','rejected')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_offers_shipment ON offers(shipment_id)`,
		// One winner per shipment, enforced by the database as well as the
		// accept transaction.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_accepted
			ON offers(shipment_id) WHERE status = 'accepted'`,

		`CREATE TABLE IF NOT EXISTS ratings (
			id UUID PRIMARY KEY,
			shipment_id UUID NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
			rater_id UUID NOT NULL REFERENCES users(id),
			rated_id UUID NOT NULL REFERENCES users(id),
			rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT 'general',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (shipment_id, rater_id, rated_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_rated ON ratings(rated_id)`,

		`CREATE TABLE IF NOT EXISTS complaints (
			id UUID PRIMARY KEY,
			shipment_id UUID NOT NULL REFERENCES shipments(id) ON DELETE CASCADE,
			created_by UUID NOT NULL REFERENCES users(id),
			against_id UUID NOT NULL REFERENCES users(id),
			type TEXT NOT NULL,
			reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open'
				CHECK (status IN ('open','investigating','escalated','assigned','resolved','rejected')),
			priority TEXT NOT NULL DEFAULT 'normal',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status)`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_shipment ON complaints(shipment_id)`,

		`CREATE TABLE IF NOT EXISTS flags (
			id UUID PRIMARY KEY,
			type TEXT NOT NULL,
			target_type TEXT NOT NULL CHECK (target_type IN ('user','shipment')),
			target_id UUID NOT NULL,
			reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open','resolved')),
			created_by UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flags_status ON flags(status)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id BIGSERIAL PRIMARY KEY,
			actor_id UUID NULL,
			action TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			details JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			link TEXT NULL,
			severity TEXT NOT NULL DEFAULT 'info',
			metadata JSONB NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			read_at TIMESTAMPTZ NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE read_at IS NULL`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("db: ensure schema: %w", err)
		}
	}
	return nil
}
