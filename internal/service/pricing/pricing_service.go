package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/repository"
)

type PricingUseCase interface {
	Quote(ctx context.Context, input QuoteInput) (*domain.Quote, error)
}

type QuoteInput struct {
	ClubID  string
	CourtID int64
	Date    time.Time
	Start   domain.Minute
	End     domain.Minute
	Segment domain.Segment
}

type PricingService struct {
	courts  repository.CourtRepository
	tariffs repository.TariffRepository
}

func NewPricingService(courts repository.CourtRepository, tariffs repository.TariffRepository) *PricingService {
	return &PricingService{courts: courts, tariffs: tariffs}
}

func (s *PricingService) Quote(ctx context.Context, input QuoteInput) (*domain.Quote, error) {
	if input.End <= input.Start {
		return nil, domain.InvalidRange("el fin debe ser posterior al inicio")
	}

	court, err := s.courts.GetByID(ctx, input.ClubID, input.CourtID)
	if err != nil {
		return nil, err
	}

	tariff, err := s.tariffFor(ctx, court)
	if err != nil {
		return nil, err
	}
	return Resolve(tariff, input.Date.Weekday(), input.Start, input.End, input.Segment)
}

func (s *PricingService) tariffFor(ctx context.Context, court *domain.Court) (*domain.Tariff, error) {
	var (
		tariff *domain.Tariff
		err    error
	)
	if court.TariffID != nil {
		tariff, err = s.tariffs.GetByID(ctx, *court.TariffID)
	} else {
		tariff, err = s.tariffs.GetDefaultForClub(ctx, court.ClubID)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoApplicableTariff
	}
	if err != nil {
		return nil, fmt.Errorf("load tariff: %w", err)
	}
	return tariff, nil
}

type candidate struct {
	rule  domain.Rule
	score int
	width domain.Minute
	total int64
	dep   int64
}

func (c candidate) moreSpecific(other candidate) bool {
	return c.score > other.score || (c.score == other.score && c.width < other.width)
}

// Resolve picks the single most specific rule whose window contains [start,end)
// and prices the interval with it.
func Resolve(tariff *domain.Tariff, day time.Weekday, start, end domain.Minute, segment domain.Segment) (*domain.Quote, error) {
	if tariff == nil {
		return nil, domain.ErrNoApplicableTariff
	}
	minutes := int(end - start)

	var best, partial []candidate
	for _, rule := range tariff.Rules {
		if !rule.MatchesDay(day) || !rule.MatchesSegment(segment) {
			continue
		}
		ws, we := rule.Window()
		c := candidate{rule: rule, score: specificity(rule), width: we - ws}
		contains, overlaps := fit(rule, start, end)
		if !contains {
			if overlaps {
				partial = append(partial, c)
			}
			continue
		}
		c.total = price(rule, minutes)
		c.dep = deposit(c.total, rule.DepositPercent)
		switch {
		case len(best) == 0 || c.moreSpecific(best[0]):
			best = []candidate{c}
		case c.score == best[0].score && c.width == best[0].width:
			best = append(best, c)
		}
	}

	if len(best) == 0 {
		if len(partial) > 0 {
			return nil, domain.ErrRangeSpansRules
		}
		return nil, domain.ErrNoApplicableTariff
	}
	// a more specific rule covering only part of the range would be bypassed
	for _, p := range partial {
		if p.moreSpecific(best[0]) {
			return nil, domain.ErrRangeSpansRules
		}
	}

	winner := best[0]
	for _, c := range best[1:] {
		if c.total != winner.total || c.dep != winner.dep || c.rule.DepositPercent != winner.rule.DepositPercent {
			return nil, domain.ErrAmbiguousTariff
		}
		if c.rule.ID < winner.rule.ID {
			winner = c
		}
	}

	return &domain.Quote{
		TariffID:        tariff.ID,
		RuleID:          winner.rule.ID,
		DurationMinutes: minutes,
		TotalPrice:      winner.total,
		Deposit:         winner.dep,
		DepositPercent:  winner.rule.DepositPercent,
	}, nil
}

// fit tests the rule window against the interval, also trying the window shifted
// to the next day so early-morning rules apply to the tail of a late session.
func fit(rule domain.Rule, start, end domain.Minute) (contains, overlaps bool) {
	ws, we := rule.Window()
	for _, shift := range []domain.Minute{0, domain.MinutesPerDay} {
		s, e := ws+shift, we+shift
		if s <= start && end <= e {
			return true, true
		}
		if domain.Overlaps(s, e, start, end) {
			overlaps = true
		}
	}
	return false, overlaps
}

func specificity(rule domain.Rule) int {
	score := 0
	if rule.Segment != nil {
		score += 4
	}
	if len(rule.Weekdays) > 0 {
		score += 2
	}
	if rule.WindowStart != nil && rule.WindowEnd != nil {
		score++
	}
	return score
}

func price(rule domain.Rule, minutes int) int64 {
	if rule.FlatPrice != nil {
		return *rule.FlatPrice
	}
	return roundDiv(rule.PricePerHour*int64(minutes), 60)
}

func deposit(total int64, percent int) int64 {
	if percent <= 0 || total <= 0 {
		return 0
	}
	return roundDiv(total*int64(percent), 100)
}

// roundDiv divides rounding halves away from zero; operands are non-negative.
func roundDiv(n, d int64) int64 {
	return (n + d/2) / d
}

var _ PricingUseCase = (*PricingService)(nil)
