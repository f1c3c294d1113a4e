package repository

import (
	"context"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourtRepository interface {
	ListByClub(ctx context.Context, clubID string) ([]domain.Court, error)
	GetByID(ctx context.Context, clubID string, id int64) (*domain.Court, error)
}

type PGCourtRepository struct {
	db *pgxpool.Pool
}

func NewCourtRepository(db *pgxpool.Pool) CourtRepository {
	return &PGCourtRepository{db: db}
}

func (r *PGCourtRepository) ListByClub(ctx context.Context, clubID string) ([]domain.Court, error) {
	rows, err := r.db.Query(ctx, `SELECT id, club_id, name, exterior, tariff_id FROM courts WHERE club_id=$1 ORDER BY id`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courts := make([]domain.Court, 0)
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(&c.ID, &c.ClubID, &c.Name, &c.Exterior, &c.TariffID); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (r *PGCourtRepository) GetByID(ctx context.Context, clubID string, id int64) (*domain.Court, error) {
	row := r.db.QueryRow(ctx, `SELECT id, club_id, name, exterior, tariff_id FROM courts WHERE club_id=$1 AND id=$2`, clubID, id)
	var c domain.Court
	if err := row.Scan(&c.ID, &c.ClubID, &c.Name, &c.Exterior, &c.TariffID); err != nil {
		return nil, notFound(err, "cancha")
	}
	return &c, nil
}

var _ CourtRepository = (*PGCourtRepository)(nil)
