package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindSlotTaken          ErrorKind = "SlotTaken"
	KindNoApplicableTariff ErrorKind = "NoApplicableTariff"
	KindAmbiguousTariff    ErrorKind = "AmbiguousTariff"
	KindRangeSpansRules    ErrorKind = "RangeSpansRules"
	KindHoldExpired        ErrorKind = "HoldExpired"
	KindNoActiveHold       ErrorKind = "NoActiveHold"
	KindPaymentRejected    ErrorKind = "PaymentRejected"
	KindInvalidRange       ErrorKind = "InvalidRange"
	KindNotFound           ErrorKind = "NotFound"
	KindInvalidState       ErrorKind = "InvalidState"
)

// Error is a recoverable business failure the caller can show to the user.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is
// even when the message was customised.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrSlotTaken          = &Error{Kind: KindSlotTaken, Message: "el turno ya no está disponible"}
	ErrNoApplicableTariff = &Error{Kind: KindNoApplicableTariff, Message: "sin tarifa aplicable"}
	ErrAmbiguousTariff    = &Error{Kind: KindAmbiguousTariff, Message: "más de una tarifa aplicable"}
	ErrRangeSpansRules    = &Error{Kind: KindRangeSpansRules, Message: "el rango abarca más de una franja de tarifa"}
	ErrHoldExpired        = &Error{Kind: KindHoldExpired, Message: "la reserva expiró"}
	ErrNoActiveHold       = &Error{Kind: KindNoActiveHold, Message: "no hay una reserva en curso"}
	ErrPaymentRejected    = &Error{Kind: KindPaymentRejected, Message: "el pago fue rechazado"}
	ErrInvalidRange       = &Error{Kind: KindInvalidRange, Message: "rango horario inválido"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "no encontrado"}
	ErrInvalidState       = &Error{Kind: KindInvalidState, Message: "la reserva no admite esta operación"}
)

func InvalidRange(format string, args ...any) error {
	return &Error{Kind: KindInvalidRange, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: "no encontrado: " + what}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the business kind of err, or "" for infrastructure failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
