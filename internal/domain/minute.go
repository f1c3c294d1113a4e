package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay = 24 * 60
	CellMinutes   = 30
	DateLayout    = "2006-01-02"
)

// Minute is a time of day counted from the booking date's midnight.
// Values of MinutesPerDay and above belong to the following day.
type Minute int

// ParseMinute accepts "HH:MM" and "HH:MM:SS". "24:00" is accepted as the end of the day.
func ParseMinute(s string) (Minute, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time out of range %q", s)
	}
	return Minute(h*60 + m), nil
}

// String renders the wall-clock label, wrapping past midnight.
func (m Minute) String() string {
	w := int(m) % MinutesPerDay
	if w < 0 {
		w += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", w/60, w%60)
}

func (m Minute) DayOffset() int {
	if m >= MinutesPerDay {
		return 1
	}
	return 0
}

// Wall drops the day offset.
func (m Minute) Wall() Minute {
	return Minute(int(m) % MinutesPerDay)
}

func (m Minute) OnCellBoundary() bool {
	return int(m)%CellMinutes == 0
}

// Span resolves a start/end wall-clock pair into absolute minutes.
// An end at or before the start is read as the next day.
func Span(start, end Minute) (Minute, Minute) {
	start = start.Wall()
	if end <= start {
		end += MinutesPerDay
	}
	return start, end
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd Minute) bool {
	return aStart < bEnd && bStart < aEnd
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
