package domain

import (
	"fmt"
	"time"
)

type Segment string

const (
	SegmentPublic     Segment = "publico"
	SegmentInstructor Segment = "profe"
)

func ParseSegment(s string) (Segment, error) {
	switch Segment(s) {
	case "", SegmentPublic:
		return SegmentPublic, nil
	case SegmentInstructor:
		return SegmentInstructor, nil
	default:
		return "", fmt.Errorf("unknown segment %q", s)
	}
}

// Draft is the exclusive hold one browsing session keeps on a slot during checkout.
type Draft struct {
	ID              string
	SessionID       string
	ClubID          string
	CourtID         int64
	Segment         Segment
	Date            time.Time
	Start           Minute
	End             Minute
	DurationMinutes int
	TariffID        int64
	RuleID          int64
	TotalPrice      int64
	Deposit         int64
	DepositPercent  int
	CreatedAt       time.Time
}

func (d Draft) Key() SlotKey {
	return SlotKey{ClubID: d.ClubID, CourtID: d.CourtID, Date: d.Date, Start: d.Start, End: d.End}
}

// SlotKey identifies one exact slot range; at most one live draft may hold it.
type SlotKey struct {
	ClubID  string
	CourtID int64
	Date    time.Time
	Start   Minute
	End     Minute
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%d:%s:%d-%d", k.ClubID, k.CourtID, k.Date.Format(DateLayout), k.Start, k.End)
}
