package domain

import "time"

type Club struct {
	ID              string
	Name            string
	OpenMinute      Minute
	CloseMinute     Minute
	DefaultTariffID *int64
}

// Window returns the operating hours in absolute minutes. A closing time at or
// before the opening time crosses midnight; identical values mean a zero-length day.
func (c Club) Window() (Minute, Minute) {
	if c.CloseMinute == c.OpenMinute {
		return c.OpenMinute, c.OpenMinute
	}
	return Span(c.OpenMinute, c.CloseMinute)
}

type Court struct {
	ID       int64  `json:"id"`
	ClubID   string `json:"club_id"`
	Name     string `json:"name"`
	Exterior bool   `json:"exterior"`
	TariffID *int64 `json:"tariff_id,omitempty"`
}

// Closure blocks a court, or the whole club when CourtID is nil.
// Nil Start/End means the whole day.
type Closure struct {
	ID              int64
	ClubID          string
	CourtID         *int64
	Date            time.Time
	Start           *Minute
	End             *Minute
	CrossesMidnight bool
	Reason          string
}

// Interval returns the blocked range in absolute minutes relative to the closure's own date.
func (c Closure) Interval() (Minute, Minute) {
	if c.Start == nil || c.End == nil {
		return 0, MinutesPerDay
	}
	start, end := *c.Start, *c.End
	if c.CrossesMidnight || end <= start {
		return Span(start, end)
	}
	return start, end
}
