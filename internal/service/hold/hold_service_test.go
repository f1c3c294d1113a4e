package hold

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/schedule"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock структуры

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) Day(ctx context.Context, query availability.DayQuery) (*availability.Day, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Day), args.Error(1)
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

type MockDraftRepository struct {
	mock.Mock
}

func (m *MockDraftRepository) Create(ctx context.Context, d *domain.Draft, staleBefore time.Time) error {
	args := m.Called(ctx, d, staleBefore)
	return args.Error(0)
}

func (m *MockDraftRepository) GetBySession(ctx context.Context, sessionID string) (*domain.Draft, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireSlotLock(ctx context.Context, key domain.SlotKey, owner string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, owner, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) ReleaseSlotLock(ctx context.Context, key domain.SlotKey, owner string) error {
	args := m.Called(ctx, key, owner)
	return args.Error(0)
}

// In-memory реализации для проверки взаимного исключения

type memoryDrafts struct {
	mu        sync.Mutex
	bySlot    map[domain.SlotKey]*domain.Draft
	bySession map[string]*domain.Draft
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{bySlot: map[domain.SlotKey]*domain.Draft{}, bySession: map[string]*domain.Draft{}}
}

func (r *memoryDrafts) Create(_ context.Context, d *domain.Draft, staleBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bySlot[d.Key()]; ok && existing.SessionID != d.SessionID {
		if !existing.CreatedAt.Before(staleBefore) {
			return domain.ErrSlotTaken
		}
		delete(r.bySession, existing.SessionID)
	}
	if prev, ok := r.bySession[d.SessionID]; ok {
		delete(r.bySlot, prev.Key())
	}
	r.bySlot[d.Key()] = d
	r.bySession[d.SessionID] = d
	return nil
}

func (r *memoryDrafts) GetBySession(_ context.Context, sessionID string) (*domain.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bySession[sessionID], nil
}

func (r *memoryDrafts) DeleteBySession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.bySession[sessionID]; ok {
		delete(r.bySlot, d.Key())
		delete(r.bySession, sessionID)
	}
	return nil
}

type memoryLocks struct {
	mu    sync.Mutex
	owner map[domain.SlotKey]string
}

func (l *memoryLocks) AcquireSlotLock(_ context.Context, key domain.SlotKey, owner string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.owner[key]; held {
		return false, nil
	}
	l.owner[key] = owner
	return true, nil
}

func (l *memoryLocks) ReleaseSlotLock(_ context.Context, key domain.SlotKey, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.owner[key] == owner {
		delete(l.owner, key)
	}
	return nil
}

var (
	testDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	testNow  = time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC)
)

func openDay(reservations ...domain.Reservation) *availability.Day {
	return &availability.Day{
		ClubID:  "padel-norte",
		Court:   domain.Court{ID: 3, ClubID: "padel-norte"},
		Date:    testDate,
		Segment: domain.SegmentPublic,
		Allowed: []int{60, 90, 120},
		Cells: schedule.BuildGrid(schedule.GridInput{
			Date:         testDate,
			Open:         8 * 60,
			Close:        24 * 60,
			Reservations: reservations,
			MinDuration:  60,
		}),
	}
}

func draftInput(session string) CreateDraftInput {
	return CreateDraftInput{
		SessionID: session,
		ClubID:    "padel-norte",
		CourtID:   3,
		Date:      testDate,
		Start:     19 * 60,
		End:       20*60 + 30,
		Segment:   domain.SegmentPublic,
	}
}

var testQuote = &domain.Quote{TariffID: 1, RuleID: 2, DurationMinutes: 90, TotalPrice: 36000, Deposit: 10800, DepositPercent: 30}

func TestHoldService_CreateDraft_Success(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	drafts := &MockDraftRepository{}
	locks := &MockLocker{}
	service := NewHoldService(avail, prices, drafts, locks, 5*time.Second, 30*time.Minute, WithClock(func() time.Time { return testNow }))

	ctx := context.Background()
	avail.On("Day", ctx, mock.AnythingOfType("availability.DayQuery")).Return(openDay(), nil).Once()
	prices.On("Quote", ctx, pricing.QuoteInput{
		ClubID: "padel-norte", CourtID: 3, Date: testDate, Start: 19 * 60, End: 20*60 + 30, Segment: domain.SegmentPublic,
	}).Return(testQuote, nil).Once()
	locks.On("AcquireSlotLock", ctx, mock.AnythingOfType("domain.SlotKey"), "sess-1", 5*time.Second).Return(true, nil).Once()
	drafts.On("Create", ctx, mock.AnythingOfType("*domain.Draft"), testNow.Add(-30*time.Minute)).Return(nil).Once()
	locks.On("ReleaseSlotLock", mock.Anything, mock.AnythingOfType("domain.SlotKey"), "sess-1").Return(nil).Once()

	draft, err := service.CreateDraft(ctx, draftInput("sess-1"))

	require.NoError(t, err)
	assert.Equal(t, "sess-1", draft.SessionID)
	assert.Equal(t, domain.Minute(19*60), draft.Start)
	assert.Equal(t, domain.Minute(20*60+30), draft.End)
	assert.Equal(t, 90, draft.DurationMinutes)
	assert.Equal(t, int64(36000), draft.TotalPrice)
	assert.Equal(t, int64(10800), draft.Deposit)
	assert.Equal(t, testNow, draft.CreatedAt)
	assert.NotEmpty(t, draft.ID)

	avail.AssertExpectations(t)
	prices.AssertExpectations(t)
	drafts.AssertExpectations(t)
	locks.AssertExpectations(t)
}

func TestHoldService_CreateDraft_InvalidRange(t *testing.T) {
	testCases := []struct {
		name  string
		start domain.Minute
		end   domain.Minute
		kind  domain.ErrorKind
	}{
		{name: "misaligned", start: 19*60 + 15, end: 20*60 + 15, kind: domain.KindInvalidRange},
		{name: "duration not allowed", start: 19 * 60, end: 19*60 + 30, kind: domain.KindInvalidRange},
		{name: "over a reservation", start: 9 * 60, end: 11 * 60, kind: domain.KindSlotTaken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			avail := &MockAvailability{}
			prices := &MockPricing{}
			drafts := &MockDraftRepository{}
			locks := &MockLocker{}
			service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute)

			ctx := context.Background()
			avail.On("Day", ctx, mock.Anything).Return(openDay(domain.Reservation{Date: testDate, Start: 10 * 60, End: 11*60 + 30}), nil)

			input := draftInput("sess-1")
			input.Start, input.End = tc.start, tc.end
			draft, err := service.CreateDraft(ctx, input)

			assert.Nil(t, draft)
			assert.Equal(t, tc.kind, domain.KindOf(err))
			prices.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything)
			locks.AssertNotCalled(t, "AcquireSlotLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			drafts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHoldService_CreateDraft_LockHeld(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	drafts := &MockDraftRepository{}
	locks := &MockLocker{}
	service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute)

	ctx := context.Background()
	avail.On("Day", ctx, mock.Anything).Return(openDay(), nil)
	prices.On("Quote", ctx, mock.Anything).Return(testQuote, nil)
	locks.On("AcquireSlotLock", ctx, mock.Anything, "sess-2", time.Second).Return(false, nil).Once()

	draft, err := service.CreateDraft(ctx, draftInput("sess-2"))

	assert.Nil(t, draft)
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	drafts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	locks.AssertNotCalled(t, "ReleaseSlotLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestHoldService_CreateDraft_RedisDownFallsBackToDatabase(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	drafts := &MockDraftRepository{}
	locks := &MockLocker{}
	service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute)

	ctx := context.Background()
	avail.On("Day", ctx, mock.Anything).Return(openDay(), nil)
	prices.On("Quote", ctx, mock.Anything).Return(testQuote, nil)
	locks.On("AcquireSlotLock", ctx, mock.Anything, "sess-1", time.Second).Return(false, errors.New("connection refused")).Once()
	drafts.On("Create", ctx, mock.Anything, mock.Anything).Return(domain.ErrSlotTaken).Once()

	draft, err := service.CreateDraft(ctx, draftInput("sess-1"))

	assert.Nil(t, draft)
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
	drafts.AssertExpectations(t)
	locks.AssertNotCalled(t, "ReleaseSlotLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestHoldService_CreateDraft_RepositoryErrorReleasesLock(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	drafts := &MockDraftRepository{}
	locks := &MockLocker{}
	service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute)

	ctx := context.Background()
	avail.On("Day", ctx, mock.Anything).Return(openDay(), nil)
	prices.On("Quote", ctx, mock.Anything).Return(testQuote, nil)
	locks.On("AcquireSlotLock", ctx, mock.Anything, "sess-1", time.Second).Return(true, nil).Once()
	drafts.On("Create", ctx, mock.Anything, mock.Anything).Return(errors.New("deadlock detected")).Once()
	locks.On("ReleaseSlotLock", mock.Anything, mock.Anything, "sess-1").Return(nil).Once()

	_, err := service.CreateDraft(ctx, draftInput("sess-1"))

	assert.ErrorContains(t, err, "create draft: deadlock detected")
	assert.Empty(t, domain.KindOf(err))
	locks.AssertExpectations(t)
}

func TestHoldService_CreateDraft_ConcurrentSessions(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	avail.On("Day", mock.Anything, mock.Anything).Return(openDay(), nil)
	prices.On("Quote", mock.Anything, mock.Anything).Return(testQuote, nil)

	for round := 0; round < 50; round++ {
		drafts := newMemoryDrafts()
		locks := &memoryLocks{owner: map[domain.SlotKey]string{}}
		service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, 2)
		)
		for i, session := range []string{"sess-a", "sess-b"} {
			wg.Add(1)
			go func(i int, session string) {
				defer wg.Done()
				<-start
				_, errs[i] = service.CreateDraft(context.Background(), draftInput(session))
			}(i, session)
		}
		close(start)
		wg.Wait()

		var ok, taken int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrSlotTaken):
				taken++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 1, ok, "round %d", round)
		require.Equal(t, 1, taken, "round %d", round)
		assert.Len(t, drafts.bySlot, 1)
	}
}

func TestHoldService_GetDraft(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := NewHoldService(nil, nil, drafts, nil, time.Second, 30*time.Minute, WithClock(func() time.Time { return testNow }))
	ctx := context.Background()

	fresh := &domain.Draft{ID: "d-1", SessionID: "sess-1", CreatedAt: testNow.Add(-10 * time.Minute)}
	old := &domain.Draft{ID: "d-2", SessionID: "sess-2", CreatedAt: testNow.Add(-5 * time.Hour)}
	drafts.On("GetBySession", ctx, "sess-1").Return(fresh, nil)
	drafts.On("GetBySession", ctx, "sess-2").Return(old, nil)
	drafts.On("GetBySession", ctx, "sess-3").Return(nil, nil)

	got, err := service.GetDraft(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	// без TTL: старый черновик по-прежнему виден своей сессии
	got, err = service.GetDraft(ctx, "sess-2")
	require.NoError(t, err)
	assert.Equal(t, old, got)

	got, err = service.GetDraft(ctx, "sess-3")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestHoldService_CreateDraft_DisplacesOnlyOldDrafts(t *testing.T) {
	avail := &MockAvailability{}
	prices := &MockPricing{}
	avail.On("Day", mock.Anything, mock.Anything).Return(openDay(), nil)
	prices.On("Quote", mock.Anything, mock.Anything).Return(testQuote, nil)

	now := testNow
	drafts := newMemoryDrafts()
	locks := &memoryLocks{owner: map[domain.SlotKey]string{}}
	service := NewHoldService(avail, prices, drafts, locks, time.Second, 30*time.Minute, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := service.CreateDraft(ctx, draftInput("sess-1"))
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	_, err = service.CreateDraft(ctx, draftInput("sess-2"))
	assert.ErrorIs(t, err, domain.ErrSlotTaken)

	// владелец видит черновик сколько угодно, пока слот никто не занял
	now = now.Add(3 * time.Hour)
	got, err := service.GetDraft(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	_, err = service.CreateDraft(ctx, draftInput("sess-2"))
	require.NoError(t, err)

	got, err = service.GetDraft(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got, "displaced by another session")
}

func TestHoldService_ClearDraft(t *testing.T) {
	drafts := &MockDraftRepository{}
	service := NewHoldService(nil, nil, drafts, nil, time.Second, 30*time.Minute)
	ctx := context.Background()

	drafts.On("DeleteBySession", ctx, "sess-1").Return(nil).Once()

	assert.NoError(t, service.ClearDraft(ctx, "sess-1"))
	drafts.AssertExpectations(t)
}
