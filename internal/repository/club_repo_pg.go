package repository

import (
	"context"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClubRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Club, error)
}

type PGClubRepository struct {
	db *pgxpool.Pool
}

func NewClubRepository(db *pgxpool.Pool) ClubRepository {
	return &PGClubRepository{db: db}
}

func (r *PGClubRepository) GetByID(ctx context.Context, id string) (*domain.Club, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, open_minute, close_minute, default_tariff_id FROM clubs WHERE id=$1`, id)
	var (
		c                 domain.Club
		openMin, closeMin int32
	)
	if err := row.Scan(&c.ID, &c.Name, &openMin, &closeMin, &c.DefaultTariffID); err != nil {
		return nil, notFound(err, "club")
	}
	c.OpenMinute = domain.Minute(openMin)
	c.CloseMinute = domain.Minute(closeMin)
	return &c, nil
}

var _ ClubRepository = (*PGClubRepository)(nil)
