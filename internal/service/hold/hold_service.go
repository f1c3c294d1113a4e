package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/metrics"
	"github.com/Domenick1991/courtbooking/internal/repository"
	"github.com/Domenick1991/courtbooking/internal/schedule"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/google/uuid"
)

type HoldUseCase interface {
	CreateDraft(ctx context.Context, input CreateDraftInput) (*domain.Draft, error)
	GetDraft(ctx context.Context, sessionID string) (*domain.Draft, error)
	ClearDraft(ctx context.Context, sessionID string) error
}

type Availability interface {
	Day(ctx context.Context, query availability.DayQuery) (*availability.Day, error)
}

type SlotLocker interface {
	AcquireSlotLock(ctx context.Context, key domain.SlotKey, owner string, ttl time.Duration) (bool, error)
	ReleaseSlotLock(ctx context.Context, key domain.SlotKey, owner string) error
}

type CreateDraftInput struct {
	SessionID string
	ClubID    string
	CourtID   int64
	Date      time.Time
	Start     domain.Minute
	End       domain.Minute
	Segment   domain.Segment
}

type HoldService struct {
	availability Availability
	pricing      pricing.PricingUseCase
	drafts       repository.DraftRepository
	locks        SlotLocker
	lockTTL      time.Duration
	// another session may claim the slot of a draft older than this;
	// the owner keeps seeing its draft until then
	reclaimAfter time.Duration
	now          func() time.Time
}

type HoldServiceOption func(*HoldService)

func WithClock(now func() time.Time) HoldServiceOption {
	return func(s *HoldService) {
		s.now = now
	}
}

func NewHoldService(
	availability Availability,
	pricing pricing.PricingUseCase,
	drafts repository.DraftRepository,
	locks SlotLocker,
	lockTTL, reclaimAfter time.Duration,
	opts ...HoldServiceOption,
) *HoldService {
	s := &HoldService{
		availability: availability,
		pricing:      pricing,
		drafts:       drafts,
		locks:        locks,
		lockTTL:      lockTTL,
		reclaimAfter: reclaimAfter,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HoldService) CreateDraft(ctx context.Context, input CreateDraftInput) (*domain.Draft, error) {
	if input.SessionID == "" {
		return nil, errors.New("session id is required")
	}

	date := domain.DateOf(input.Date)
	day, err := s.availability.Day(ctx, availability.DayQuery{
		ClubID:  input.ClubID,
		CourtID: input.CourtID,
		Date:    date,
		Segment: input.Segment,
	})
	if err != nil {
		return nil, err
	}

	start, end := schedule.Normalize(day.Cells, input.Start, input.End)
	if err := schedule.ValidateRange(day.Cells, start, end, day.Allowed); err != nil {
		s.count(err)
		return nil, err
	}

	quote, err := s.pricing.Quote(ctx, pricing.QuoteInput{
		ClubID:  input.ClubID,
		CourtID: input.CourtID,
		Date:    date,
		Start:   start,
		End:     end,
		Segment: input.Segment,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	draft := &domain.Draft{
		ID:              uuid.NewString(),
		SessionID:       input.SessionID,
		ClubID:          input.ClubID,
		CourtID:         input.CourtID,
		Segment:         input.Segment,
		Date:            date,
		Start:           start,
		End:             end,
		DurationMinutes: quote.DurationMinutes,
		TariffID:        quote.TariffID,
		RuleID:          quote.RuleID,
		TotalPrice:      quote.TotalPrice,
		Deposit:         quote.Deposit,
		DepositPercent:  quote.DepositPercent,
		CreatedAt:       now,
	}

	log := logger.FromContext(ctx).With("slot", draft.Key().String(), "session", input.SessionID)

	if s.locks != nil {
		locked, err := s.locks.AcquireSlotLock(ctx, draft.Key(), input.SessionID, s.lockTTL)
		switch {
		case err != nil:
			log.Warn("slot lock unavailable, relying on database", "error", err)
		case !locked:
			s.count(domain.ErrSlotTaken)
			return nil, domain.ErrSlotTaken
		default:
			defer func() {
				if err := s.locks.ReleaseSlotLock(context.WithoutCancel(ctx), draft.Key(), input.SessionID); err != nil {
					log.Warn("release slot lock", "error", err)
				}
			}()
		}
	}

	if err := s.drafts.Create(ctx, draft, now.Add(-s.reclaimAfter)); err != nil {
		s.count(err)
		if domain.KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("create draft: %w", err)
	}

	s.count(nil)
	log.Info("draft created", "total", draft.TotalPrice, "deposit", draft.Deposit)
	return draft, nil
}

func (s *HoldService) GetDraft(ctx context.Context, sessionID string) (*domain.Draft, error) {
	draft, err := s.drafts.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *HoldService) ClearDraft(ctx context.Context, sessionID string) error {
	return s.drafts.DeleteBySession(ctx, sessionID)
}

func (s *HoldService) count(err error) {
	result := "created"
	if err != nil {
		result = string(domain.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	metrics.Drafts.WithLabelValues(result).Inc()
}

var _ HoldUseCase = (*HoldService)(nil)
