package domain

import (
	"sort"
	"time"
)

// DurationPolicy lists the booking lengths a client may select.
type DurationPolicy struct {
	Default   []int
	BySegment map[Segment][]int
	ByWeekday map[time.Weekday][]int
}

// Allowed resolves the durations for a segment on a given day. A weekday override
// wins over a segment override, which wins over the default.
func (p DurationPolicy) Allowed(segment Segment, day time.Weekday) []int {
	var out []int
	switch {
	case len(p.ByWeekday[day]) > 0:
		out = p.ByWeekday[day]
	case len(p.BySegment[segment]) > 0:
		out = p.BySegment[segment]
	default:
		out = p.Default
	}
	sorted := append([]int(nil), out...)
	sort.Ints(sorted)
	return sorted
}

func (p DurationPolicy) Min(segment Segment, day time.Weekday) int {
	allowed := p.Allowed(segment, day)
	if len(allowed) == 0 {
		return 0
	}
	return allowed[0]
}
