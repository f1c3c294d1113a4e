package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	// ListActiveForDay returns reservations that occupy the court at instant now,
	// dated the day before, on, or after date.
	ListActiveForDay(ctx context.Context, clubID string, courtID int64, date, now time.Time) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// CreateFromDraft inserts res after re-checking the slot under the court-date lock.
	// With a payment the draft is kept; without one the session draft is deleted in the same transaction.
	CreateFromDraft(ctx context.Context, res *domain.Reservation, payment *domain.Payment) error
	DeletePending(ctx context.Context, id string) error
	ConfirmPaid(ctx context.Context, id string, now time.Time) (*domain.Reservation, error)
	Transition(ctx context.Context, id string, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error)
	ExpireOne(ctx context.Context, id string, now time.Time) (*domain.Reservation, error)
	ExpirePendingBefore(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	FinalizeEndedBefore(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	AddPayment(ctx context.Context, id string, amount int64) (*domain.Reservation, error)
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

const reservationColumns = `id, club_id, court_id, date, start_minute, end_minute, status, segment, total_price, deposit,
	amount_paid, client_name, client_phone, client_email, notes, session_id, tariff_id, rule_id, hold_expires_at,
	created_at, updated_at`

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		res        domain.Reservation
		start, end int32
		status     string
		segment    string
	)
	if err := row.Scan(&res.ID, &res.ClubID, &res.CourtID, &res.Date, &start, &end, &status, &segment, &res.TotalPrice,
		&res.Deposit, &res.AmountPaid, &res.Client.Name, &res.Client.Phone, &res.Client.Email, &res.Notes, &res.SessionID,
		&res.TariffID, &res.RuleID, &res.HoldExpiresAt, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Start = domain.Minute(start)
	res.End = domain.Minute(end)
	res.Status = domain.ReservationStatus(status)
	res.Segment = domain.Segment(segment)
	return &res, nil
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	list := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func (r *PGReservationRepository) ListActiveForDay(ctx context.Context, clubID string, courtID int64, date, now time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+`
		FROM reservations
		WHERE club_id=$1 AND court_id=$2
		  AND date BETWEEN $3::date - 1 AND $3::date + 1
		  AND (status IN ('confirmada', 'finalizada') OR (status = 'pendiente_pago' AND hold_expires_at > $4))
		ORDER BY date, start_minute`, clubID, courtID, domain.DateOf(date), now)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "reserva")
	}
	return res, nil
}

func (r *PGReservationRepository) CreateFromDraft(ctx context.Context, res *domain.Reservation, payment *domain.Payment) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockCourtDay(ctx, tx, res.ClubID, res.CourtID, res.Date); err != nil {
		return err
	}
	occupied, err := slotOccupied(ctx, tx, res.ClubID, res.CourtID, res.Date, res.Start, res.End, res.CreatedAt)
	if err != nil {
		return err
	}
	if occupied {
		return domain.ErrSlotTaken
	}

	if err := tx.QueryRow(ctx, `INSERT INTO reservations (id, club_id, court_id, date, start_minute, end_minute, status, segment,
			total_price, deposit, amount_paid, client_name, client_phone, client_email, notes, session_id, tariff_id, rule_id,
			hold_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		RETURNING updated_at`,
		res.ID, res.ClubID, res.CourtID, res.Date, int32(res.Start), int32(res.End), string(res.Status), string(res.Segment),
		res.TotalPrice, res.Deposit, res.AmountPaid, res.Client.Name, res.Client.Phone, res.Client.Email, res.Notes,
		res.SessionID, res.TariffID, res.RuleID, res.HoldExpiresAt, res.CreatedAt).Scan(&res.UpdatedAt); err != nil {
		return err
	}

	if payment != nil {
		if _, err := tx.Exec(ctx, `INSERT INTO payments (id, reservation_id, session_id, amount, status, expires_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
			payment.ID, payment.ReservationID, payment.SessionID, payment.Amount, string(payment.Status), payment.ExpiresAt, payment.CreatedAt); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx, `DELETE FROM drafts WHERE session_id=$1`, res.SessionID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGReservationRepository) DeletePending(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id=$1 AND status='pendiente_pago'`, id)
	return err
}

func (r *PGReservationRepository) ConfirmPaid(ctx context.Context, id string, now time.Time) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `UPDATE reservations
		SET status='confirmada', amount_paid=LEAST(total_price, amount_paid + deposit), hold_expires_at=NULL, updated_at=now()
		WHERE id=$1 AND status='pendiente_pago' AND hold_expires_at > $2
		RETURNING `+reservationColumns, id, now))
	if err != nil {
		return nil, noChange(err)
	}
	return res, nil
}

func (r *PGReservationRepository) Transition(ctx context.Context, id string, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	res, err := scanReservation(r.db.QueryRow(ctx, `UPDATE reservations
		SET status=$2, updated_at=now()
		WHERE id=$1 AND status = ANY($3)
		RETURNING `+reservationColumns, id, string(to), allowed))
	if err != nil {
		return nil, noChange(err)
	}
	return res, nil
}

func (r *PGReservationRepository) ExpireOne(ctx context.Context, id string, now time.Time) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `WITH expired AS (
			UPDATE reservations SET status='expirada', updated_at=now()
			WHERE id=$1 AND status='pendiente_pago' AND hold_expires_at <= $2
			RETURNING `+reservationColumns+`
		), closed AS (
			UPDATE payments SET status='expired', updated_at=now()
			WHERE reservation_id IN (SELECT id FROM expired) AND status='pending'
		)
		SELECT `+reservationColumns+` FROM expired`, id, now))
	if err != nil {
		return nil, noChange(err)
	}
	return res, nil
}

func (r *PGReservationRepository) ExpirePendingBefore(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `WITH expired AS (
			UPDATE reservations SET status='expirada', updated_at=now()
			WHERE status='pendiente_pago' AND hold_expires_at <= $1
			RETURNING `+reservationColumns+`
		), closed AS (
			UPDATE payments SET status='expired', updated_at=now()
			WHERE reservation_id IN (SELECT id FROM expired) AND status='pending'
		)
		SELECT `+reservationColumns+` FROM expired`, now)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) FinalizeEndedBefore(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservations SET status='finalizada', updated_at=now()
		WHERE status='confirmada' AND date + end_minute * interval '1 minute' <= $1
		RETURNING `+reservationColumns, now.UTC())
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *PGReservationRepository) AddPayment(ctx context.Context, id string, amount int64) (*domain.Reservation, error) {
	res, err := scanReservation(r.db.QueryRow(ctx, `UPDATE reservations
		SET amount_paid = amount_paid + $2, updated_at=now()
		WHERE id=$1 AND status IN ('pendiente_pago', 'confirmada', 'finalizada') AND amount_paid + $2 <= total_price
		RETURNING `+reservationColumns, id, amount))
	if err != nil {
		return nil, noChange(err)
	}
	return res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
