package domain

import "time"

type ReservationStatus string

const (
	ReservationPendingPayment ReservationStatus = "pendiente_pago"
	ReservationConfirmed      ReservationStatus = "confirmada"
	ReservationCancelled      ReservationStatus = "cancelada"
	ReservationExpired        ReservationStatus = "expirada"
	ReservationRejected       ReservationStatus = "rechazada"
	ReservationFinalized      ReservationStatus = "finalizada"
)

type Client struct {
	Name  string `json:"nombre"`
	Phone string `json:"telefono"`
	Email string `json:"email"`
}

type Reservation struct {
	ID            string
	ClubID        string
	CourtID       int64
	Date          time.Time
	Start         Minute
	End           Minute // absolute, may exceed MinutesPerDay
	Status        ReservationStatus
	Segment       Segment
	TotalPrice    int64
	Deposit       int64
	AmountPaid    int64
	Client        Client
	Notes         string
	SessionID     string
	TariffID      int64
	RuleID        int64
	HoldExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r Reservation) EndDayOffset() int {
	return r.End.DayOffset()
}

// Balance is the outstanding amount (saldo pendiente).
func (r Reservation) Balance() int64 {
	if r.AmountPaid >= r.TotalPrice {
		return 0
	}
	return r.TotalPrice - r.AmountPaid
}

// Blocks reports whether the reservation still occupies its slot at instant now.
// A pending reservation past its hold deadline is treated as already expired.
func (r Reservation) Blocks(now time.Time) bool {
	switch r.Status {
	case ReservationConfirmed, ReservationFinalized:
		return true
	case ReservationPendingPayment:
		return r.HoldExpiresAt == nil || now.Before(*r.HoldExpiresAt)
	default:
		return false
	}
}

// EndsAt returns the wall-clock instant the reservation ends, in UTC.
func (r Reservation) EndsAt() time.Time {
	return r.Date.Add(time.Duration(r.End) * time.Minute)
}
