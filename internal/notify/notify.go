// Package notify turns reservation events into client notifications.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/courtbooking/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a rendered message. The default transport only logs.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

type LogTransport struct {
	log *slog.Logger
}

func NewLogTransport(log *slog.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Deliver(_ context.Context, msg Message) error {
	t.log.Info("notification", "to", msg.To, "subject", msg.Subject)
	return nil
}

type Sender struct {
	transport Transport
	log       *slog.Logger
}

func NewSender(transport Transport, log *slog.Logger) *Sender {
	return &Sender{transport: transport, log: log}
}

// Send notifies the client about event. Events without a recipient or of a
// type clients do not care about are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	if event.ClientEmail == "" {
		return nil
	}
	msg, ok := Render(event)
	if !ok {
		return nil
	}
	return s.transport.Deliver(ctx, msg)
}

// Handle adapts Send to a Kafka consumer handler. Undecodable messages are
// logged and skipped so one bad payload does not stall the partition.
func (s *Sender) Handle(ctx context.Context, msg kafkago.Message) error {
	event, err := kafka.DecodeReservationEvent(msg)
	if err != nil {
		s.log.Warn("skip malformed event", "error", err)
		return nil
	}
	return s.Send(ctx, event)
}

func Render(event kafka.ReservationEvent) (Message, bool) {
	when := fmt.Sprintf("%s %s-%s", event.Date, event.Start, event.End)
	msg := Message{To: event.ClientEmail}

	switch event.Type {
	case kafka.EventReservationPending:
		msg.Subject = "Reserva pendiente de pago"
		msg.Body = fmt.Sprintf("Tu turno %s en la cancha %d queda reservado hasta completar el pago de $%d.", when, event.CourtID, event.Deposit)
	case kafka.EventReservationConfirmed:
		msg.Subject = "Reserva confirmada"
		msg.Body = fmt.Sprintf("Tu turno %s en la cancha %d está confirmado. Saldo pendiente: $%d.", when, event.CourtID, event.TotalPrice-event.AmountPaid)
	case kafka.EventReservationCancelled:
		msg.Subject = "Reserva cancelada"
		msg.Body = fmt.Sprintf("Tu turno %s fue cancelado.", when)
	case kafka.EventReservationExpired:
		msg.Subject = "Reserva vencida"
		msg.Body = fmt.Sprintf("El plazo para pagar el turno %s venció y el horario fue liberado.", when)
	case kafka.EventReservationRejected:
		msg.Subject = "Pago rechazado"
		msg.Body = fmt.Sprintf("El pago del turno %s fue rechazado.", when)
	default:
		return Message{}, false
	}
	return msg, true
}
