package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations applies the schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, db *pgxpool.Pool) error {
	slog.Info("running database migrations")

	migrations := []string{
		createTariffsTable,
		createTariffRulesTable,
		createClubsTable,
		createCourtsTable,
		createClosuresTable,
		createReservationsTable,
		createReservationsDayIndex,
		createReservationsPendingIndex,
		createDraftsTable,
		createPaymentsTable,
		createPaymentsSessionIndex,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("migrations applied", "count", len(migrations))
	return nil
}

const createTariffsTable = `
CREATE TABLE IF NOT EXISTS tariffs (
    id BIGSERIAL PRIMARY KEY,
    club_id TEXT NOT NULL,
    name TEXT NOT NULL,
    is_default BOOLEAN NOT NULL DEFAULT FALSE
);`

const createTariffRulesTable = `
CREATE TABLE IF NOT EXISTS tariff_rules (
    id BIGSERIAL PRIMARY KEY,
    tariff_id BIGINT NOT NULL REFERENCES tariffs(id) ON DELETE CASCADE,
    weekdays INTEGER[] NOT NULL DEFAULT '{}',
    window_start INTEGER,
    window_end INTEGER,
    segment TEXT,
    price_per_hour BIGINT NOT NULL DEFAULT 0,
    flat_price BIGINT,
    deposit_percent INTEGER NOT NULL DEFAULT 0 CHECK (deposit_percent BETWEEN 0 AND 100)
);`

const createClubsTable = `
CREATE TABLE IF NOT EXISTS clubs (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    open_minute INTEGER NOT NULL,
    close_minute INTEGER NOT NULL,
    default_tariff_id BIGINT REFERENCES tariffs(id)
);`

const createCourtsTable = `
CREATE TABLE IF NOT EXISTS courts (
    id BIGSERIAL PRIMARY KEY,
    club_id TEXT NOT NULL REFERENCES clubs(id),
    name TEXT NOT NULL,
    exterior BOOLEAN NOT NULL DEFAULT FALSE,
    tariff_id BIGINT REFERENCES tariffs(id)
);`

const createClosuresTable = `
CREATE TABLE IF NOT EXISTS closures (
    id BIGSERIAL PRIMARY KEY,
    club_id TEXT NOT NULL REFERENCES clubs(id),
    court_id BIGINT REFERENCES courts(id),
    date DATE NOT NULL,
    start_minute INTEGER,
    end_minute INTEGER,
    crosses_midnight BOOLEAN NOT NULL DEFAULT FALSE,
    reason TEXT NOT NULL DEFAULT ''
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id TEXT PRIMARY KEY,
    club_id TEXT NOT NULL REFERENCES clubs(id),
    court_id BIGINT NOT NULL REFERENCES courts(id),
    date DATE NOT NULL,
    start_minute INTEGER NOT NULL,
    end_minute INTEGER NOT NULL,
    status TEXT NOT NULL,
    segment TEXT NOT NULL,
    total_price BIGINT NOT NULL,
    deposit BIGINT NOT NULL,
    amount_paid BIGINT NOT NULL DEFAULT 0,
    client_name TEXT NOT NULL DEFAULT '',
    client_phone TEXT NOT NULL DEFAULT '',
    client_email TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    session_id TEXT NOT NULL DEFAULT '',
    tariff_id BIGINT NOT NULL,
    rule_id BIGINT NOT NULL,
    hold_expires_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (end_minute > start_minute),
    CHECK (amount_paid >= 0 AND amount_paid <= total_price)
);`

const createReservationsDayIndex = `
CREATE INDEX IF NOT EXISTS idx_reservations_court_day ON reservations (club_id, court_id, date);`

const createReservationsPendingIndex = `
CREATE INDEX IF NOT EXISTS idx_reservations_pending ON reservations (hold_expires_at) WHERE status = 'pendiente_pago';`

const createDraftsTable = `
CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL UNIQUE,
    club_id TEXT NOT NULL,
    court_id BIGINT NOT NULL,
    segment TEXT NOT NULL,
    date DATE NOT NULL,
    start_minute INTEGER NOT NULL,
    end_minute INTEGER NOT NULL,
    duration_minutes INTEGER NOT NULL,
    tariff_id BIGINT NOT NULL,
    rule_id BIGINT NOT NULL,
    total_price BIGINT NOT NULL,
    deposit BIGINT NOT NULL,
    deposit_percent INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (club_id, court_id, date, start_minute, end_minute)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    reservation_id TEXT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    session_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    provider_payment_id TEXT UNIQUE,
    redirect_url TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createPaymentsSessionIndex = `
CREATE INDEX IF NOT EXISTS idx_payments_session ON payments (session_id, created_at DESC);`
