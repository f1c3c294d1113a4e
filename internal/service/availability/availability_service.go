package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/repository"
	"github.com/Domenick1991/courtbooking/internal/schedule"
)

type AvailabilityUseCase interface {
	ListCourts(ctx context.Context, clubID string) ([]domain.Court, error)
	Day(ctx context.Context, query DayQuery) (*Day, error)
}

type CourtCache interface {
	GetCourts(ctx context.Context, clubID string) ([]domain.Court, error)
	SetCourts(ctx context.Context, clubID string, courts []domain.Court) error
}

type DayQuery struct {
	ClubID  string
	CourtID int64
	Date    time.Time
	Segment domain.Segment
}

// Day is the bookable picture of one court on one date.
type Day struct {
	ClubID  string
	Court   domain.Court
	Date    time.Time
	Segment domain.Segment
	Allowed []int
	Cells   []schedule.Cell
}

type AvailabilityService struct {
	clubs        repository.ClubRepository
	courts       repository.CourtRepository
	closures     repository.ClosureRepository
	reservations repository.ReservationRepository
	cache        CourtCache
	durations    domain.DurationPolicy
	now          func() time.Time
}

func NewAvailabilityService(
	clubs repository.ClubRepository,
	courts repository.CourtRepository,
	closures repository.ClosureRepository,
	reservations repository.ReservationRepository,
	cache CourtCache,
	durations domain.DurationPolicy,
) *AvailabilityService {
	return &AvailabilityService{
		clubs:        clubs,
		courts:       courts,
		closures:     closures,
		reservations: reservations,
		cache:        cache,
		durations:    durations,
		now:          time.Now,
	}
}

func (s *AvailabilityService) ListCourts(ctx context.Context, clubID string) ([]domain.Court, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCourts(ctx, clubID); err == nil && cached != nil {
			return cached, nil
		}
	}

	courts, err := s.courts.ListByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetCourts(ctx, clubID, courts)
	}
	return courts, nil
}

func (s *AvailabilityService) Day(ctx context.Context, query DayQuery) (*Day, error) {
	club, err := s.clubs.GetByID(ctx, query.ClubID)
	if err != nil {
		return nil, err
	}
	court, err := s.courts.GetByID(ctx, query.ClubID, query.CourtID)
	if err != nil {
		return nil, err
	}

	date := domain.DateOf(query.Date)
	closures, err := s.closures.ListForDay(ctx, club.ID, court.ID, date)
	if err != nil {
		return nil, fmt.Errorf("list closures: %w", err)
	}
	reservations, err := s.reservations.ListActiveForDay(ctx, club.ID, court.ID, date, s.now())
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	allowed := s.durations.Allowed(query.Segment, date.Weekday())
	cells := schedule.BuildGrid(schedule.GridInput{
		Date:         date,
		Open:         club.OpenMinute,
		Close:        club.CloseMinute,
		Reservations: reservations,
		Closures:     closures,
		MinDuration:  s.durations.Min(query.Segment, date.Weekday()),
	})

	return &Day{
		ClubID:  club.ID,
		Court:   *court,
		Date:    date,
		Segment: query.Segment,
		Allowed: allowed,
		Cells:   cells,
	}, nil
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
