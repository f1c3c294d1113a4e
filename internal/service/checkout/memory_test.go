package checkout

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/repository"
)

// memoryStore реализует репозитории черновиков, бронирований и платежей в памяти
// с теми же условными переходами, что и PostgreSQL-реализация.
type memoryStore struct {
	mu           sync.Mutex
	drafts       map[string]domain.Draft
	reservations map[string]domain.Reservation
	payments     map[string]domain.Payment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		drafts:       map[string]domain.Draft{},
		reservations: map[string]domain.Reservation{},
		payments:     map[string]domain.Payment{},
	}
}

var (
	_ repository.DraftRepository       = (*memoryStore)(nil)
	_ repository.ReservationRepository = (*memoryStore)(nil)
	_ repository.PaymentRepository     = (*memoryStore)(nil)
)

func (m *memoryStore) Create(_ context.Context, d *domain.Draft, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.SessionID] = *d
	return nil
}

func (m *memoryStore) GetBySession(_ context.Context, sessionID string) (*domain.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[sessionID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memoryStore) DeleteBySession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, sessionID)
	return nil
}

func (m *memoryStore) ListActiveForDay(_ context.Context, clubID string, courtID int64, date, now time.Time) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reservation
	for _, r := range m.reservations {
		if r.ClubID == clubID && r.CourtID == courtID && r.Date.Equal(date) && r.Blocks(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domain.NotFound("reserva")
	}
	return &r, nil
}

func (m *memoryStore) CreateFromDraft(_ context.Context, res *domain.Reservation, payment *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ClubID == res.ClubID && r.CourtID == res.CourtID && r.Date.Equal(res.Date) &&
			r.Blocks(res.CreatedAt) && domain.Overlaps(r.Start, r.End, res.Start, res.End) {
			return domain.ErrSlotTaken
		}
	}
	m.reservations[res.ID] = *res
	if payment != nil {
		m.payments[payment.ID] = *payment
	} else {
		delete(m.drafts, res.SessionID)
	}
	return nil
}

func (m *memoryStore) DeletePending(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok && r.Status == domain.ReservationPendingPayment {
		delete(m.reservations, id)
		for pid, p := range m.payments {
			if p.ReservationID == id {
				delete(m.payments, pid)
			}
		}
	}
	return nil
}

func (m *memoryStore) ConfirmPaid(_ context.Context, id string, now time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != domain.ReservationPendingPayment || r.HoldExpiresAt == nil || !r.HoldExpiresAt.After(now) {
		return nil, repository.ErrNoChange
	}
	r.Status = domain.ReservationConfirmed
	r.AmountPaid = min(r.TotalPrice, r.AmountPaid+r.Deposit)
	r.HoldExpiresAt = nil
	m.reservations[id] = r
	return &r, nil
}

func (m *memoryStore) Transition(_ context.Context, id string, from []domain.ReservationStatus, to domain.ReservationStatus) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNoChange
	}
	for _, s := range from {
		if r.Status == s {
			r.Status = to
			m.reservations[id] = r
			return &r, nil
		}
	}
	return nil, repository.ErrNoChange
}

func (m *memoryStore) expireLocked(r domain.Reservation) domain.Reservation {
	r.Status = domain.ReservationExpired
	m.reservations[r.ID] = r
	for pid, p := range m.payments {
		if p.ReservationID == r.ID && p.Status == domain.PaymentPending {
			p.Status = domain.PaymentExpired
			m.payments[pid] = p
		}
	}
	return r
}

func (m *memoryStore) ExpireOne(_ context.Context, id string, now time.Time) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Status != domain.ReservationPendingPayment || r.HoldExpiresAt == nil || r.HoldExpiresAt.After(now) {
		return nil, repository.ErrNoChange
	}
	r = m.expireLocked(r)
	return &r, nil
}

func (m *memoryStore) ExpirePendingBefore(_ context.Context, now time.Time) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reservation
	for _, r := range m.reservations {
		if r.Status == domain.ReservationPendingPayment && r.HoldExpiresAt != nil && !r.HoldExpiresAt.After(now) {
			out = append(out, m.expireLocked(r))
		}
	}
	return out, nil
}

func (m *memoryStore) FinalizeEndedBefore(_ context.Context, now time.Time) ([]domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Reservation
	for id, r := range m.reservations {
		if r.Status == domain.ReservationConfirmed && !r.EndsAt().After(now) {
			r.Status = domain.ReservationFinalized
			m.reservations[id] = r
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) AddPayment(_ context.Context, id string, amount int64) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || !acceptsPayments(r.Status) || r.AmountPaid+amount > r.TotalPrice {
		return nil, repository.ErrNoChange
	}
	r.AmountPaid += amount
	m.reservations[id] = r
	return &r, nil
}

func (m *memoryStore) GetByProviderID(_ context.Context, providerPaymentID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ProviderPaymentID == providerPaymentID {
			return &p, nil
		}
	}
	return nil, domain.NotFound("pago")
}

func (m *memoryStore) GetLatestForSession(_ context.Context, sessionID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.Payment
	for _, p := range m.payments {
		if p.SessionID == sessionID {
			list = append(list, p)
		}
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return &list[0], nil
}

func (m *memoryStore) AttachProvider(_ context.Context, id, providerPaymentID, redirectURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return domain.NotFound("pago")
	}
	p.ProviderPaymentID = providerPaymentID
	p.RedirectURL = redirectURL
	m.payments[id] = p
	return nil
}

func (m *memoryStore) SetStatus(_ context.Context, id string, from, to domain.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != from {
		return repository.ErrNoChange
	}
	p.Status = to
	m.payments[id] = p
	return nil
}

func (m *memoryStore) reservation(id string) domain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[id]
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}
