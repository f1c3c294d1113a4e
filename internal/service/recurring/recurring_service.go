package recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/Domenick1991/courtbooking/internal/service/hold"
)

const MaxWeeksAhead = 52

type RecurringUseCase interface {
	Generate(ctx context.Context, req Request) (*Summary, error)
}

// Request describes a "turno fijo": the same court and time every week.
type Request struct {
	SessionID  string
	ClubID     string
	CourtID    int64
	FirstDate  time.Time
	Start      domain.Minute
	End        domain.Minute
	Segment    domain.Segment
	WeeksAhead int
	Until      *time.Time // exclusive
	Client     domain.Client
	Notes      string
}

type Instance struct {
	Date            time.Time
	Reservation     *domain.Reservation
	PaymentRequired bool
	RedirectURL     string
}

type Skipped struct {
	Date   time.Time
	Kind   domain.ErrorKind
	Reason string
}

type Summary struct {
	Created []Instance
	Skipped []Skipped
}

type RecurringService struct {
	holds    hold.HoldUseCase
	checkout checkout.CheckoutUseCase
}

func NewRecurringService(holds hold.HoldUseCase, checkout checkout.CheckoutUseCase) *RecurringService {
	return &RecurringService{holds: holds, checkout: checkout}
}

// Generate books every instance independently. A failed week is recorded in
// Skipped and the remaining weeks are still attempted.
func (s *RecurringService) Generate(ctx context.Context, req Request) (*Summary, error) {
	dates, err := Dates(req.FirstDate, req.WeeksAhead, req.Until)
	if err != nil {
		return nil, err
	}
	if req.SessionID == "" {
		return nil, errors.New("session id is required")
	}
	if req.Client.Name == "" {
		return nil, errors.New("client name is required")
	}

	log := logger.FromContext(ctx).With("club_id", req.ClubID, "court_id", req.CourtID, "session", req.SessionID)
	summary := &Summary{Created: []Instance{}, Skipped: []Skipped{}}

	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		inst, err := s.book(ctx, req, date)
		if err != nil {
			kind := domain.KindOf(err)
			reason := err.Error()
			if kind == "" {
				log.Error("recurring instance failed", "date", date.Format(domain.DateLayout), "error", err)
				reason = "error interno"
			}
			summary.Skipped = append(summary.Skipped, Skipped{Date: date, Kind: kind, Reason: reason})
			continue
		}
		summary.Created = append(summary.Created, *inst)
	}

	log.Info("recurring booking generated", "created", len(summary.Created), "skipped", len(summary.Skipped))
	return summary, nil
}

func (s *RecurringService) book(ctx context.Context, req Request, date time.Time) (*Instance, error) {
	session := InstanceSession(req.SessionID, date)
	if _, err := s.holds.CreateDraft(ctx, hold.CreateDraftInput{
		SessionID: session,
		ClubID:    req.ClubID,
		CourtID:   req.CourtID,
		Date:      date,
		Start:     req.Start,
		End:       req.End,
		Segment:   req.Segment,
	}); err != nil {
		return nil, err
	}

	result, err := s.checkout.Checkout(ctx, checkout.CheckoutInput{
		SessionID: session,
		Client:    req.Client,
		Notes:     req.Notes,
	})
	if err != nil {
		if clearErr := s.holds.ClearDraft(context.WithoutCancel(ctx), session); clearErr != nil {
			logger.FromContext(ctx).Warn("clear recurring draft", "session", session, "error", clearErr)
		}
		return nil, err
	}
	return &Instance{
		Date:            date,
		Reservation:     result.Reservation,
		PaymentRequired: result.PaymentRequired,
		RedirectURL:     result.RedirectURL,
	}, nil
}

// Dates lists first, first+7d, ... up to weeks instances, stopping before until.
func Dates(first time.Time, weeks int, until *time.Time) ([]time.Time, error) {
	if weeks < 1 || weeks > MaxWeeksAhead {
		return nil, domain.InvalidRange("weeks_ahead debe estar entre 1 y %d", MaxWeeksAhead)
	}
	first = domain.DateOf(first)
	dates := make([]time.Time, 0, weeks)
	for k := 0; k < weeks; k++ {
		d := first.AddDate(0, 0, 7*k)
		if until != nil && !d.Before(domain.DateOf(*until)) {
			break
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func InstanceSession(session string, date time.Time) string {
	return fmt.Sprintf("%s#%s", session, date.Format(domain.DateLayout))
}

var _ RecurringUseCase = (*RecurringService)(nil)
