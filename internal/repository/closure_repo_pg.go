package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClosureRepository interface {
	// ListForDay returns closures of the court and club-wide closures dated the day
	// before, on, or after date, so windows crossing midnight see both sides.
	ListForDay(ctx context.Context, clubID string, courtID int64, date time.Time) ([]domain.Closure, error)
}

type PGClosureRepository struct {
	db *pgxpool.Pool
}

func NewClosureRepository(db *pgxpool.Pool) ClosureRepository {
	return &PGClosureRepository{db: db}
}

func (r *PGClosureRepository) ListForDay(ctx context.Context, clubID string, courtID int64, date time.Time) ([]domain.Closure, error) {
	rows, err := r.db.Query(ctx, `SELECT id, club_id, court_id, date, start_minute, end_minute, crosses_midnight, reason
		FROM closures
		WHERE club_id=$1 AND (court_id IS NULL OR court_id=$2)
		  AND date BETWEEN $3::date - 1 AND $3::date + 1
		ORDER BY date, start_minute NULLS FIRST`, clubID, courtID, domain.DateOf(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]domain.Closure, 0)
	for rows.Next() {
		var (
			c          domain.Closure
			start, end *int32
		)
		if err := rows.Scan(&c.ID, &c.ClubID, &c.CourtID, &c.Date, &start, &end, &c.CrossesMidnight, &c.Reason); err != nil {
			return nil, err
		}
		c.Start = minutePtr(start)
		c.End = minutePtr(end)
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

func minutePtr(v *int32) *domain.Minute {
	if v == nil {
		return nil
	}
	m := domain.Minute(*v)
	return &m
}

var _ ClosureRepository = (*PGClosureRepository)(nil)
