package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	GetByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error)
	// GetLatestForSession returns nil when the session never started a payment.
	GetLatestForSession(ctx context.Context, sessionID string) (*domain.Payment, error)
	AttachProvider(ctx context.Context, id, providerPaymentID, redirectURL string) error
	SetStatus(ctx context.Context, id string, from, to domain.PaymentStatus) error
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, reservation_id, session_id, amount, COALESCE(provider_payment_id, ''), redirect_url, status,
	expires_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var (
		p      domain.Payment
		status string
	)
	if err := row.Scan(&p.ID, &p.ReservationID, &p.SessionID, &p.Amount, &p.ProviderPaymentID, &p.RedirectURL, &status,
		&p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}

func (r *PGPaymentRepository) GetByProviderID(ctx context.Context, providerPaymentID string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE provider_payment_id=$1`, providerPaymentID))
	if err != nil {
		return nil, notFound(err, "pago")
	}
	return p, nil
}

func (r *PGPaymentRepository) GetLatestForSession(ctx context.Context, sessionID string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+`
		FROM payments WHERE session_id=$1 ORDER BY created_at DESC LIMIT 1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PGPaymentRepository) AttachProvider(ctx context.Context, id, providerPaymentID, redirectURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE payments SET provider_payment_id=$2, redirect_url=$3, updated_at=now() WHERE id=$1`,
		id, providerPaymentID, redirectURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("pago")
	}
	return nil
}

func (r *PGPaymentRepository) SetStatus(ctx context.Context, id string, from, to domain.PaymentStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE payments SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`, id, string(from), string(to))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoChange
	}
	return nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
