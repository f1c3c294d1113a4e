package api

import (
	"context"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/Domenick1991/courtbooking/internal/service/hold"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/Domenick1991/courtbooking/internal/service/recurring"
	"github.com/stretchr/testify/mock"
)

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) ListCourts(ctx context.Context, clubID string) ([]domain.Court, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Court), args.Error(1)
}

func (m *MockAvailability) Day(ctx context.Context, query availability.DayQuery) (*availability.Day, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Day), args.Error(1)
}

type MockHold struct {
	mock.Mock
}

func (m *MockHold) CreateDraft(ctx context.Context, input hold.CreateDraftInput) (*domain.Draft, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockHold) GetDraft(ctx context.Context, sessionID string) (*domain.Draft, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockHold) ClearDraft(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockPricing struct {
	mock.Mock
}

func (m *MockPricing) Quote(ctx context.Context, input pricing.QuoteInput) (*domain.Quote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) Checkout(ctx context.Context, input checkout.CheckoutInput) (*domain.CheckoutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutResult), args.Error(1)
}

func (m *MockCheckout) Restore(ctx context.Context, sessionID string) (*domain.RestoreResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RestoreResult), args.Error(1)
}

func (m *MockCheckout) HandlePaymentResult(ctx context.Context, providerPaymentID string, status domain.PaymentStatus) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, providerPaymentID, status))
}

func (m *MockCheckout) ExpirePending(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockCheckout) FinalizePast(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockCheckout) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockCheckout) Cancel(ctx context.Context, reservationID, reason string) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, reservationID, reason))
}

func (m *MockCheckout) RegisterPayment(ctx context.Context, reservationID string, amount int64) (*domain.Reservation, error) {
	return m.reservation(m.Called(ctx, reservationID, amount))
}

func (m *MockCheckout) reservation(args mock.Arguments) (*domain.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

type MockRecurring struct {
	mock.Mock
}

func (m *MockRecurring) Generate(ctx context.Context, req recurring.Request) (*recurring.Summary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recurring.Summary), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyNotification(paymentID, status, token string) bool {
	return m.Called(paymentID, status, token).Bool(0)
}
