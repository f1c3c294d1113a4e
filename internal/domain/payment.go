package domain

import "time"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentExpired   PaymentStatus = "expired"
)

type Payment struct {
	ID                string
	ReservationID     string
	SessionID         string
	Amount            int64
	ProviderPaymentID string
	RedirectURL       string
	Status            PaymentStatus
	ExpiresAt         time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type CheckoutResult struct {
	Reservation     *Reservation
	PaymentRequired bool
	RedirectURL     string
	ExpiresAt       *time.Time
}

const (
	RestoreReasonNoHold  = "no_hold"
	RestoreReasonExpired = "expired"
)

type RestoreResult struct {
	OK          bool
	Reason      string
	Reservation *Reservation
	RedirectURL string
	ExpiresAt   *time.Time
}
