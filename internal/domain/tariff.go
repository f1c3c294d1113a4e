package domain

import "time"

type Tariff struct {
	ID        int64
	ClubID    string
	Name      string
	IsDefault bool
	Rules     []Rule
}

// Rule prices one window of a tariff. Empty Weekdays matches every day, nil
// WindowStart/WindowEnd matches the whole day and nil Segment matches any client.
type Rule struct {
	ID             int64
	TariffID       int64
	Weekdays       []time.Weekday
	WindowStart    *Minute
	WindowEnd      *Minute
	Segment        *Segment
	PricePerHour   int64
	FlatPrice      *int64
	DepositPercent int
}

func (r Rule) MatchesDay(day time.Weekday) bool {
	if len(r.Weekdays) == 0 {
		return true
	}
	for _, w := range r.Weekdays {
		if w == day {
			return true
		}
	}
	return false
}

func (r Rule) MatchesSegment(s Segment) bool {
	return r.Segment == nil || *r.Segment == s
}

// Window returns the rule window in absolute minutes.
func (r Rule) Window() (Minute, Minute) {
	if r.WindowStart == nil || r.WindowEnd == nil {
		return 0, 2 * MinutesPerDay
	}
	return Span(*r.WindowStart, *r.WindowEnd)
}

// Quote is a resolved price for one slot range.
type Quote struct {
	TariffID        int64 `json:"tariff_id"`
	RuleID          int64 `json:"rule_id"`
	DurationMinutes int   `json:"duracion_minutos"`
	TotalPrice      int64 `json:"precio_total"`
	Deposit         int64 `json:"monto_anticipo"`
	DepositPercent  int   `json:"anticipo_porcentaje"`
}
