package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TariffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tariff, error)
	// GetDefaultForClub prefers the club's configured default tariff, then any tariff flagged default.
	GetDefaultForClub(ctx context.Context, clubID string) (*domain.Tariff, error)
}

type PGTariffRepository struct {
	db *pgxpool.Pool
}

func NewTariffRepository(db *pgxpool.Pool) TariffRepository {
	return &PGTariffRepository{db: db}
}

func (r *PGTariffRepository) GetByID(ctx context.Context, id int64) (*domain.Tariff, error) {
	var t domain.Tariff
	if err := r.db.QueryRow(ctx, `SELECT id, club_id, name, is_default FROM tariffs WHERE id=$1`, id).
		Scan(&t.ID, &t.ClubID, &t.Name, &t.IsDefault); err != nil {
		return nil, notFound(err, "tarifa")
	}

	rows, err := r.db.Query(ctx, `SELECT id, tariff_id, weekdays, window_start, window_end, segment, price_per_hour, flat_price, deposit_percent
		FROM tariff_rules WHERE tariff_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rule         domain.Rule
			weekdays     []int32
			wStart, wEnd *int32
			segment      *string
			percent      int32
		)
		if err := rows.Scan(&rule.ID, &rule.TariffID, &weekdays, &wStart, &wEnd, &segment, &rule.PricePerHour, &rule.FlatPrice, &percent); err != nil {
			return nil, err
		}
		for _, d := range weekdays {
			rule.Weekdays = append(rule.Weekdays, time.Weekday(d))
		}
		rule.WindowStart = minutePtr(wStart)
		rule.WindowEnd = minutePtr(wEnd)
		if segment != nil {
			s := domain.Segment(*segment)
			rule.Segment = &s
		}
		rule.DepositPercent = int(percent)
		t.Rules = append(t.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTariffRepository) GetDefaultForClub(ctx context.Context, clubID string) (*domain.Tariff, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT t.id
		FROM tariffs t
		LEFT JOIN clubs c ON c.id = t.club_id AND c.default_tariff_id = t.id
		WHERE t.club_id=$1 AND (c.id IS NOT NULL OR t.is_default)
		ORDER BY (c.id IS NOT NULL) DESC, t.id
		LIMIT 1`, clubID).Scan(&id)
	if err != nil {
		return nil, notFound(err, "tarifa")
	}
	return r.GetByID(ctx, id)
}

var _ TariffRepository = (*PGTariffRepository)(nil)
