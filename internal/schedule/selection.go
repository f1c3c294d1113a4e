package schedule

import (
	"github.com/Domenick1991/courtbooking/internal/domain"
)

type State int

const (
	StateEmpty State = iota
	StateAnchorSet
	StateRangeComplete
)

func (s State) String() string {
	switch s {
	case StateAnchorSet:
		return "anchor_set"
	case StateRangeComplete:
		return "range_complete"
	default:
		return "empty"
	}
}

// Selection is the client-side pick of a contiguous range of cells.
// The zero value is an empty selection.
type Selection struct {
	State  State
	Anchor int
	Last   int
}

// Tap applies one tap on cell index and returns the resulting selection.
func (s Selection) Tap(cells []Cell, index int, allowed []int) Selection {
	if index < 0 || index >= len(cells) || !cells[index].Free() {
		return s
	}

	switch s.State {
	case StateAnchorSet:
		for _, end := range ValidEnds(cells, s.Anchor, allowed) {
			if end == index {
				return Selection{State: StateRangeComplete, Anchor: s.Anchor, Last: index}
			}
		}
		if index == s.Anchor {
			return Selection{}
		}
	}
	return Selection{State: StateAnchorSet, Anchor: index, Last: index}
}

// Range returns the selected interval and its length. ok is false unless the
// selection is complete.
func (s Selection) Range(cells []Cell) (start, end domain.Minute, minutes int, ok bool) {
	if s.State != StateRangeComplete || s.Anchor < 0 || s.Last >= len(cells) || s.Last < s.Anchor {
		return 0, 0, 0, false
	}
	start = cells[s.Anchor].Offset
	end = cells[s.Last].End()
	return start, end, int(end - start), true
}

// ValidEnds lists the cell indexes that close a range of an allowed length when
// the range starts at anchor. The walk stops at the first occupied cell.
func ValidEnds(cells []Cell, anchor int, allowed []int) []int {
	if anchor < 0 || anchor >= len(cells) || !cells[anchor].Free() {
		return nil
	}
	ok := make(map[int]bool, len(allowed))
	for _, d := range allowed {
		ok[d] = true
	}
	var ends []int
	for i := anchor; i < len(cells) && cells[i].Free(); i++ {
		if ok[(i-anchor+1)*domain.CellMinutes] {
			ends = append(ends, i)
		}
	}
	return ends
}

// ValidateRange checks a requested [start,end) against the grid the same way a
// client selection would have been constrained.
func ValidateRange(cells []Cell, start, end domain.Minute, allowed []int) error {
	if !start.OnCellBoundary() || !end.OnCellBoundary() {
		return domain.InvalidRange("el horario debe caer en bloques de %d minutos", domain.CellMinutes)
	}
	if end <= start {
		return domain.InvalidRange("el fin debe ser posterior al inicio")
	}
	minutes := int(end - start)
	if !contains(allowed, minutes) {
		return domain.InvalidRange("duración de %d minutos no permitida", minutes)
	}
	first := IndexOf(cells, start)
	last := IndexOf(cells, end-domain.CellMinutes)
	if first < 0 || last < 0 {
		return domain.InvalidRange("el horario %s-%s está fuera del horario del club", start, end)
	}
	for i := first; i <= last; i++ {
		if !cells[i].Free() {
			return domain.ErrSlotTaken
		}
	}
	return nil
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
