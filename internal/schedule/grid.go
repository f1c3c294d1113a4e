// Package schedule builds the half-hour availability grid of a court and the
// pure selection logic a client runs on top of it.
package schedule

import (
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
)

type Reason string

const (
	ReasonNone     Reason = ""
	ReasonReserved Reason = "reservado"
	ReasonBlocked  Reason = "bloqueado"
)

type Cell struct {
	Offset    domain.Minute `json:"offset"`
	Label     string        `json:"label"`
	DayOffset int           `json:"day_offset"`
	CanStart  bool          `json:"can_start"`
	CanEnd    bool          `json:"can_end"`
	// FitsMinimum reports that the minimum duration of free cells starts here.
	FitsMinimum bool   `json:"fits_minimum"`
	Reason      Reason `json:"reason,omitempty"`
}

func (c Cell) Free() bool {
	return c.Reason == ReasonNone
}

func (c Cell) End() domain.Minute {
	return c.Offset + domain.CellMinutes
}

// GridInput describes one court on one date. Reservations and closures may be
// dated the day before or after Date; they are shifted onto Date's axis.
type GridInput struct {
	Date         time.Time
	Open         domain.Minute
	Close        domain.Minute
	Reservations []domain.Reservation
	Closures     []domain.Closure
	MinDuration  int
}

type interval struct {
	start, end domain.Minute
}

// BuildGrid marks every cell of the operating window as free, reserved or blocked.
//
// Occupancy is a linear scan over cells × bookings. Courts rarely carry more than a
// few dozen bookings per day; if that changes, an interval tree keyed by start is
// the replacement.
func BuildGrid(in GridInput) []Cell {
	open, end := in.Open, in.Close
	if end != open {
		open, end = domain.Span(open, end)
	}
	if end <= open {
		return []Cell{}
	}

	reserved := make([]interval, 0, len(in.Reservations))
	for _, r := range in.Reservations {
		shift := dayShift(in.Date, r.Date)
		reserved = append(reserved, interval{start: r.Start + shift, end: r.End + shift})
	}
	blocked := make([]interval, 0, len(in.Closures))
	for _, c := range in.Closures {
		shift := dayShift(in.Date, c.Date)
		cs, ce := c.Interval()
		blocked = append(blocked, interval{start: cs + shift, end: ce + shift})
	}

	count := int(end-open) / domain.CellMinutes
	cells := make([]Cell, count)
	for i := range cells {
		offset := open + domain.Minute(i*domain.CellMinutes)
		cell := Cell{Offset: offset, Label: offset.String(), DayOffset: offset.DayOffset()}
		switch {
		case overlapsAny(reserved, offset, cell.End()):
			cell.Reason = ReasonReserved
		case overlapsAny(blocked, offset, cell.End()):
			cell.Reason = ReasonBlocked
		}
		cells[i] = cell
	}

	need := in.MinDuration / domain.CellMinutes
	if need < 1 {
		need = 1
	}
	for i := range cells {
		if !cells[i].Free() {
			continue
		}
		// a free cell has no booking starting or ending strictly inside it
		cells[i].CanStart = true
		cells[i].CanEnd = true
		cells[i].FitsMinimum = freeRun(cells, i, 1) >= need
	}
	return cells
}

func dayShift(base, day time.Time) domain.Minute {
	days := int(domain.DateOf(day).Sub(domain.DateOf(base)).Hours() / 24)
	return domain.Minute(days * domain.MinutesPerDay)
}

func overlapsAny(list []interval, start, end domain.Minute) bool {
	for _, iv := range list {
		if domain.Overlaps(start, end, iv.start, iv.end) {
			return true
		}
	}
	return false
}

// freeRun counts consecutive free cells from i in direction step, including i.
func freeRun(cells []Cell, i, step int) int {
	n := 0
	for j := i; j >= 0 && j < len(cells) && cells[j].Free(); j += step {
		n++
	}
	return n
}

// Normalize maps a wall-clock request onto the grid axis: a start before the
// first cell belongs to the post-midnight tail and an end at or before the start
// is on the next day.
func Normalize(cells []Cell, start, end domain.Minute) (domain.Minute, domain.Minute) {
	if len(cells) > 0 && start < cells[0].Offset && start+domain.MinutesPerDay < cells[len(cells)-1].End() {
		start += domain.MinutesPerDay
		end += domain.MinutesPerDay
	}
	if end <= start {
		end += domain.MinutesPerDay
	}
	return start, end
}

// IndexOf returns the index of the cell starting at offset, or -1.
func IndexOf(cells []Cell, offset domain.Minute) int {
	for i, c := range cells {
		if c.Offset == offset {
			return i
		}
	}
	return -1
}
