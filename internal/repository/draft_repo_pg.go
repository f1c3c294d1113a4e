package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DraftRepository interface {
	// Create stores d as the only draft of its session. Drafts of other sessions
	// created before staleBefore no longer hold their slot.
	Create(ctx context.Context, d *domain.Draft, staleBefore time.Time) error
	GetBySession(ctx context.Context, sessionID string) (*domain.Draft, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type PGDraftRepository struct {
	db *pgxpool.Pool
}

func NewDraftRepository(db *pgxpool.Pool) DraftRepository {
	return &PGDraftRepository{db: db}
}

const draftColumns = `id, session_id, club_id, court_id, segment, date, start_minute, end_minute, duration_minutes,
	tariff_id, rule_id, total_price, deposit, deposit_percent, created_at`

func (r *PGDraftRepository) Create(ctx context.Context, d *domain.Draft, staleBefore time.Time) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCourtDay(ctx, tx, d.ClubID, d.CourtID, d.Date); err != nil {
		return err
	}

	occupied, err := slotOccupied(ctx, tx, d.ClubID, d.CourtID, d.Date, d.Start, d.End, d.CreatedAt)
	if err != nil {
		return err
	}
	if occupied {
		return domain.ErrSlotTaken
	}

	var held bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM drafts
			WHERE club_id=$1 AND court_id=$2 AND date=$3
			  AND start_minute < $5 AND end_minute > $4
			  AND session_id <> $6 AND created_at >= $7
		)`, d.ClubID, d.CourtID, d.Date, int32(d.Start), int32(d.End), d.SessionID, staleBefore).Scan(&held); err != nil {
		return fmt.Errorf("check drafts: %w", err)
	}
	if held {
		return domain.ErrSlotTaken
	}

	if _, err := tx.Exec(ctx, `DELETE FROM drafts WHERE session_id=$1`, d.SessionID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `INSERT INTO drafts (`+draftColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (club_id, court_id, date, start_minute, end_minute) DO UPDATE SET
			id = EXCLUDED.id,
			session_id = EXCLUDED.session_id,
			segment = EXCLUDED.segment,
			duration_minutes = EXCLUDED.duration_minutes,
			tariff_id = EXCLUDED.tariff_id,
			rule_id = EXCLUDED.rule_id,
			total_price = EXCLUDED.total_price,
			deposit = EXCLUDED.deposit,
			deposit_percent = EXCLUDED.deposit_percent,
			created_at = EXCLUDED.created_at
		WHERE drafts.created_at < $16`,
		d.ID, d.SessionID, d.ClubID, d.CourtID, string(d.Segment), d.Date, int32(d.Start), int32(d.End), d.DurationMinutes,
		d.TariffID, d.RuleID, d.TotalPrice, d.Deposit, d.DepositPercent, d.CreatedAt, staleBefore)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSlotTaken
	}

	return tx.Commit(ctx)
}

func (r *PGDraftRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Draft, error) {
	row := r.db.QueryRow(ctx, `SELECT `+draftColumns+` FROM drafts WHERE session_id=$1`, sessionID)
	var (
		d          domain.Draft
		segment    string
		start, end int32
	)
	err := row.Scan(&d.ID, &d.SessionID, &d.ClubID, &d.CourtID, &segment, &d.Date, &start, &end, &d.DurationMinutes,
		&d.TariffID, &d.RuleID, &d.TotalPrice, &d.Deposit, &d.DepositPercent, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d.Segment = domain.Segment(segment)
	d.Start = domain.Minute(start)
	d.End = domain.Minute(end)
	return &d, nil
}

func (r *PGDraftRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE session_id=$1`, sessionID)
	return err
}

var _ DraftRepository = (*PGDraftRepository)(nil)
