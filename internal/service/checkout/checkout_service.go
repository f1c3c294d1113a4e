package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/kafka"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/metrics"
	"github.com/Domenick1991/courtbooking/internal/payment"
	"github.com/Domenick1991/courtbooking/internal/repository"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/google/uuid"
)

type CheckoutUseCase interface {
	Sweeper
	Checkout(ctx context.Context, input CheckoutInput) (*domain.CheckoutResult, error)
	Restore(ctx context.Context, sessionID string) (*domain.RestoreResult, error)
	HandlePaymentResult(ctx context.Context, providerPaymentID string, status domain.PaymentStatus) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID, reason string) (*domain.Reservation, error)
	RegisterPayment(ctx context.Context, reservationID string, amount int64) (*domain.Reservation, error)
}

// Sweeper applies the time-driven transitions: unpaid holds expire and
// reservations whose slot has ended are finalized.
type Sweeper interface {
	ExpirePending(ctx context.Context) ([]domain.Reservation, error)
	FinalizePast(ctx context.Context) ([]domain.Reservation, error)
}

type PaymentProvider interface {
	CreatePaymentRedirect(ctx context.Context, reservationID string, amount int64) (*payment.Redirect, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type CheckoutInput struct {
	SessionID string
	Client    domain.Client
	Notes     string
}

type CheckoutService struct {
	drafts       repository.DraftRepository
	reservations repository.ReservationRepository
	payments     repository.PaymentRepository
	pricing      pricing.PricingUseCase
	provider     PaymentProvider
	producer     Producer
	topic        string
	paymentTTL   time.Duration
	resultURL    string
	now          func() time.Time
}

type CheckoutServiceOption func(*CheckoutService)

func WithEvents(producer Producer, topic string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithResultURL(resultURL string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.resultURL = resultURL
	}
}

func WithClock(now func() time.Time) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

func NewCheckoutService(
	drafts repository.DraftRepository,
	reservations repository.ReservationRepository,
	payments repository.PaymentRepository,
	pricing pricing.PricingUseCase,
	provider PaymentProvider,
	paymentTTL time.Duration,
	opts ...CheckoutServiceOption,
) *CheckoutService {
	s := &CheckoutService{
		drafts:       drafts,
		reservations: reservations,
		payments:     payments,
		pricing:      pricing,
		provider:     provider,
		paymentTTL:   paymentTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CheckoutService) Checkout(ctx context.Context, input CheckoutInput) (*domain.CheckoutResult, error) {
	if input.SessionID == "" {
		return nil, errors.New("session id is required")
	}
	if input.Client.Name == "" {
		return nil, errors.New("client name is required")
	}

	now := s.now()
	draft, err := s.drafts.GetBySession(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if draft == nil {
		return nil, domain.ErrNoActiveHold
	}

	quote, err := s.pricing.Quote(ctx, pricing.QuoteInput{
		ClubID:  draft.ClubID,
		CourtID: draft.CourtID,
		Date:    draft.Date,
		Start:   draft.Start,
		End:     draft.End,
		Segment: draft.Segment,
	})
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		ID:         uuid.NewString(),
		ClubID:     draft.ClubID,
		CourtID:    draft.CourtID,
		Date:       draft.Date,
		Start:      draft.Start,
		End:        draft.End,
		Segment:    draft.Segment,
		TotalPrice: quote.TotalPrice,
		Deposit:    quote.Deposit,
		Client:     input.Client,
		Notes:      input.Notes,
		SessionID:  input.SessionID,
		TariffID:   quote.TariffID,
		RuleID:     quote.RuleID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	log := logger.FromContext(ctx).With("reservation_id", res.ID, "session", input.SessionID)

	if res.Deposit <= 0 {
		res.Status = domain.ReservationConfirmed
		if err := s.reservations.CreateFromDraft(ctx, res, nil); err != nil {
			return nil, wrap("create reservation", err)
		}
		s.publish(ctx, kafka.EventReservationConfirmed, res, "")
		log.Info("reservation confirmed without deposit", "total", res.TotalPrice)
		return &domain.CheckoutResult{
			Reservation: res,
			RedirectURL: s.resultLink(res.ID),
		}, nil
	}

	expiresAt := now.Add(s.paymentTTL)
	res.Status = domain.ReservationPendingPayment
	res.HoldExpiresAt = &expiresAt
	pay := &domain.Payment{
		ID:            uuid.NewString(),
		ReservationID: res.ID,
		SessionID:     input.SessionID,
		Amount:        res.Deposit,
		Status:        domain.PaymentPending,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reservations.CreateFromDraft(ctx, res, pay); err != nil {
		return nil, wrap("create pending reservation", err)
	}

	redirect, err := s.provider.CreatePaymentRedirect(ctx, res.ID, res.Deposit)
	if err == nil {
		err = s.payments.AttachProvider(ctx, pay.ID, redirect.ProviderPaymentID, redirect.URL)
	}
	if err != nil {
		metrics.PaymentProviderErrors.Inc()
		if delErr := s.reservations.DeletePending(context.WithoutCancel(ctx), res.ID); delErr != nil {
			log.Error("rollback pending reservation", "error", delErr)
		}
		return nil, fmt.Errorf("payment provider: %w", err)
	}

	if err := s.drafts.DeleteBySession(ctx, input.SessionID); err != nil {
		log.Warn("delete draft after checkout", "error", err)
	}
	s.publish(ctx, kafka.EventReservationPending, res, "")
	log.Info("reservation awaiting deposit", "deposit", res.Deposit, "expires_at", expiresAt)

	return &domain.CheckoutResult{
		Reservation:     res,
		PaymentRequired: true,
		RedirectURL:     redirect.URL,
		ExpiresAt:       &expiresAt,
	}, nil
}

func (s *CheckoutService) Restore(ctx context.Context, sessionID string) (*domain.RestoreResult, error) {
	pay, err := s.payments.GetLatestForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if pay == nil {
		return &domain.RestoreResult{Reason: domain.RestoreReasonNoHold}, nil
	}

	res, err := s.reservations.GetByID(ctx, pay.ReservationID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.RestoreResult{Reason: domain.RestoreReasonNoHold}, nil
	}
	if err != nil {
		return nil, err
	}

	switch res.Status {
	case domain.ReservationPendingPayment:
		if res.Blocks(s.now()) {
			expiresAt := pay.ExpiresAt
			return &domain.RestoreResult{
				OK:          true,
				Reservation: res,
				RedirectURL: pay.RedirectURL,
				ExpiresAt:   &expiresAt,
			}, nil
		}
		if _, err := s.expireOne(ctx, res.ID); err != nil {
			return nil, err
		}
		return &domain.RestoreResult{Reason: domain.RestoreReasonExpired}, nil
	case domain.ReservationExpired:
		return &domain.RestoreResult{Reason: domain.RestoreReasonExpired}, nil
	default:
		return &domain.RestoreResult{Reason: domain.RestoreReasonNoHold}, nil
	}
}

func (s *CheckoutService) HandlePaymentResult(ctx context.Context, providerPaymentID string, status domain.PaymentStatus) (*domain.Reservation, error) {
	pay, err := s.payments.GetByProviderID(ctx, providerPaymentID)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).With("reservation_id", pay.ReservationID, "payment_id", providerPaymentID)

	switch status {
	case domain.PaymentApproved:
		res, err := s.reservations.ConfirmPaid(ctx, pay.ReservationID, s.now())
		if errors.Is(err, repository.ErrNoChange) {
			current, getErr := s.reservations.GetByID(ctx, pay.ReservationID)
			if getErr != nil {
				return nil, getErr
			}
			switch current.Status {
			case domain.ReservationConfirmed:
				return current, nil
			case domain.ReservationPendingPayment:
				if _, err := s.expireOne(ctx, current.ID); err != nil {
					return nil, err
				}
			case domain.ReservationExpired:
			default:
				log.Warn("approved payment for a closed reservation", "status", current.Status)
				return current, domain.InvalidState("la reserva está %s", current.Status)
			}
			log.Warn("approved payment arrived after the hold ended", "status", current.Status)
			return nil, domain.ErrHoldExpired
		}
		if err != nil {
			return nil, err
		}
		s.settlePayment(ctx, pay, domain.PaymentApproved)
		s.publish(ctx, kafka.EventReservationConfirmed, res, "")
		log.Info("deposit approved")
		return res, nil

	case domain.PaymentRejected:
		res, err := s.closePending(ctx, pay, domain.ReservationRejected, kafka.EventReservationRejected)
		if err != nil {
			return nil, err
		}
		return res, domain.ErrPaymentRejected

	case domain.PaymentCancelled:
		return s.closePending(ctx, pay, domain.ReservationCancelled, kafka.EventReservationCancelled)

	default:
		return nil, fmt.Errorf("unknown payment status %q", status)
	}
}

// closePending moves a pending reservation to a terminal status. A reservation
// that already left pendiente_pago is returned unchanged.
func (s *CheckoutService) closePending(ctx context.Context, pay *domain.Payment, to domain.ReservationStatus, eventType string) (*domain.Reservation, error) {
	res, err := s.reservations.Transition(ctx, pay.ReservationID, []domain.ReservationStatus{domain.ReservationPendingPayment}, to)
	if errors.Is(err, repository.ErrNoChange) {
		return s.reservations.GetByID(ctx, pay.ReservationID)
	}
	if err != nil {
		return nil, err
	}

	paymentStatus := domain.PaymentRejected
	if to == domain.ReservationCancelled {
		paymentStatus = domain.PaymentCancelled
	}
	s.settlePayment(ctx, pay, paymentStatus)
	s.publish(ctx, eventType, res, "")
	return res, nil
}

func (s *CheckoutService) settlePayment(ctx context.Context, pay *domain.Payment, to domain.PaymentStatus) {
	if err := s.payments.SetStatus(ctx, pay.ID, domain.PaymentPending, to); err != nil && !errors.Is(err, repository.ErrNoChange) {
		logger.FromContext(ctx).Error("update payment status", "payment_id", pay.ID, "error", err)
	}
}

// NewSweeper builds a Sweeper over the reservation store alone. Options other
// than WithEvents and WithClock have no effect on it.
func NewSweeper(reservations repository.ReservationRepository, opts ...CheckoutServiceOption) Sweeper {
	s := &CheckoutService{reservations: reservations, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CheckoutService) ExpirePending(ctx context.Context) ([]domain.Reservation, error) {
	expired, err := s.reservations.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, kafka.EventReservationExpired, &expired[i], "")
	}
	return expired, nil
}

func (s *CheckoutService) expireOne(ctx context.Context, id string) (*domain.Reservation, error) {
	res, err := s.reservations.ExpireOne(ctx, id, s.now())
	if errors.Is(err, repository.ErrNoChange) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventReservationExpired, res, "")
	return res, nil
}

func (s *CheckoutService) FinalizePast(ctx context.Context) ([]domain.Reservation, error) {
	finalized, err := s.reservations.FinalizeEndedBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range finalized {
		s.publish(ctx, kafka.EventReservationFinalized, &finalized[i], "")
	}
	return finalized, nil
}

func (s *CheckoutService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *CheckoutService) Cancel(ctx context.Context, reservationID, reason string) (*domain.Reservation, error) {
	res, err := s.reservations.Transition(ctx, reservationID,
		[]domain.ReservationStatus{domain.ReservationPendingPayment, domain.ReservationConfirmed},
		domain.ReservationCancelled)
	if errors.Is(err, repository.ErrNoChange) {
		current, getErr := s.reservations.GetByID(ctx, reservationID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, domain.InvalidState("no se puede cancelar una reserva %s", current.Status)
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventReservationCancelled, res, reason)
	return res, nil
}

func (s *CheckoutService) RegisterPayment(ctx context.Context, reservationID string, amount int64) (*domain.Reservation, error) {
	if amount <= 0 {
		return nil, errors.New("amount must be positive")
	}

	res, err := s.reservations.AddPayment(ctx, reservationID, amount)
	if errors.Is(err, repository.ErrNoChange) {
		current, getErr := s.reservations.GetByID(ctx, reservationID)
		if getErr != nil {
			return nil, getErr
		}
		if !acceptsPayments(current.Status) {
			return nil, domain.InvalidState("no se pueden registrar pagos en una reserva %s", current.Status)
		}
		return nil, domain.InvalidState("el pago de $%d supera el saldo pendiente de $%d", amount, current.Balance())
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventPaymentRegistered, res, "")
	return res, nil
}

func (s *CheckoutService) publish(ctx context.Context, eventType string, res *domain.Reservation, reason string) {
	metrics.ReservationEvents.WithLabelValues(eventType).Inc()
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.NewReservationEvent(eventType, res, s.now())
	event.Reason = reason
	if err := s.producer.Publish(ctx, s.topic, res.ID, event); err != nil {
		logger.FromContext(ctx).Warn("publish reservation event", "type", eventType, "reservation_id", res.ID, "error", err)
	}
}

func (s *CheckoutService) resultLink(reservationID string) string {
	if s.resultURL == "" {
		return ""
	}
	u, err := url.Parse(s.resultURL)
	if err != nil {
		return s.resultURL
	}
	q := u.Query()
	q.Set("reserva", reservationID)
	u.RawQuery = q.Encode()
	return u.String()
}

func acceptsPayments(status domain.ReservationStatus) bool {
	switch status {
	case domain.ReservationPendingPayment, domain.ReservationConfirmed, domain.ReservationFinalized:
		return true
	}
	return false
}

func wrap(op string, err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

var _ CheckoutUseCase = (*CheckoutService)(nil)
