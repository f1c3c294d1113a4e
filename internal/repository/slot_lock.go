package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

// lockCourtDay serialises writers on one court-date for the rest of the transaction.
func lockCourtDay(ctx context.Context, tx pgx.Tx, clubID string, courtID int64, date time.Time) error {
	key := fmt.Sprintf("%s:%d:%s", clubID, courtID, date.Format(domain.DateLayout))
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}

// slotOccupied reports whether an active reservation or a closure intersects
// [start,end) on the court. Pending reservations count only until their hold deadline.
func slotOccupied(ctx context.Context, tx pgx.Tx, clubID string, courtID int64, date time.Time, start, end domain.Minute, now time.Time) (bool, error) {
	day := domain.DateOf(date)
	from := day.Add(time.Duration(start) * time.Minute)
	to := day.Add(time.Duration(end) * time.Minute)

	var occupied bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE club_id=$1 AND court_id=$2
			  AND date BETWEEN $3::date - 1 AND $3::date + 1
			  AND date + start_minute * interval '1 minute' < $5
			  AND date + end_minute * interval '1 minute' > $4
			  AND (status IN ('confirmada', 'finalizada') OR (status = 'pendiente_pago' AND hold_expires_at > $6))
		) OR EXISTS (
			SELECT 1 FROM closures
			WHERE club_id=$1 AND (court_id IS NULL OR court_id=$2)
			  AND date BETWEEN $3::date - 1 AND $3::date + 1
			  AND date + COALESCE(start_minute, 0) * interval '1 minute' < $5
			  AND date + (CASE
			        WHEN start_minute IS NULL OR end_minute IS NULL THEN 1440
			        WHEN crosses_midnight OR end_minute <= start_minute THEN end_minute + 1440
			        ELSE end_minute END) * interval '1 minute' > $4
		)`, clubID, courtID, day, from, to, now).Scan(&occupied)
	if err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return occupied, nil
}
