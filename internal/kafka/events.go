package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/courtbooking/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	EventReservationPending   = "reservation_pending"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationExpired   = "reservation_expired"
	EventReservationRejected  = "reservation_rejected"
	EventReservationFinalized = "reservation_finalized"
	EventPaymentRegistered    = "payment_registered"
)

type ReservationEvent struct {
	Type          string     `json:"type"`
	ReservationID string     `json:"reservation_id"`
	ClubID        string     `json:"club_id"`
	CourtID       int64      `json:"court_id"`
	Date          string     `json:"date"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	EndDayOffset  int        `json:"end_day_offset"`
	Status        string     `json:"status"`
	ClientName    string     `json:"client_name"`
	ClientEmail   string     `json:"client_email"`
	TotalPrice    int64      `json:"total_price"`
	Deposit       int64      `json:"deposit"`
	AmountPaid    int64      `json:"amount_paid"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func NewReservationEvent(eventType string, r *domain.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:          eventType,
		ReservationID: r.ID,
		ClubID:        r.ClubID,
		CourtID:       r.CourtID,
		Date:          r.Date.Format(domain.DateLayout),
		Start:         r.Start.String(),
		End:           r.End.String(),
		EndDayOffset:  r.EndDayOffset(),
		Status:        string(r.Status),
		ClientName:    r.Client.Name,
		ClientEmail:   r.Client.Email,
		TotalPrice:    r.TotalPrice,
		Deposit:       r.Deposit,
		AmountPaid:    r.AmountPaid,
		ExpiresAt:     r.HoldExpiresAt,
		OccurredAt:    at,
	}
}

func DecodeReservationEvent(msg kafka.Message) (ReservationEvent, error) {
	var event ReservationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return ReservationEvent{}, fmt.Errorf("decode event at offset %d: %w", msg.Offset, err)
	}
	return event, nil
}
