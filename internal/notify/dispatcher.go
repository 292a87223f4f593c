package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/calendar"
	"github.com/Leganyst/wellness-booking/internal/model"
)

// Тема события для брокера.
const EventBookingCreated = "booking.created"

type Config struct {
	PractitionerEmail string
	// Чат практика в Telegram; пусто: без Telegram.
	PractitionerChatID string
	ClientSMS          bool
	Events             bool
	Location           *time.Location
}

// Dispatcher собирает уведомления о новом бронировании и передаёт их в Sink.
type Dispatcher struct {
	sink Sink
	cfg  Config
	log  logrus.FieldLogger
}

func NewDispatcher(sink Sink, cfg Config, log logrus.FieldLogger) *Dispatcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Dispatcher{sink: sink, cfg: cfg, log: log}
}

// SendBookingNotifications отправляет письмо клиенту, письмо практику и,
// если настроено, SMS, сообщение в Telegram и событие в брокер.
// Возвращает объединённую ошибку неудавшихся отправок.
func (d *Dispatcher) SendBookingNotifications(ctx context.Context, b *model.Booking, q *model.Quote) error {
	msgs := d.BookingMessages(b, q)

	var errs []error
	for _, m := range msgs {
		if err := d.sink.Send(ctx, m); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"channel":        m.Channel,
				"booking_number": b.BookingNumber,
			}).Warn("notification not sent")
			errs = append(errs, fmt.Errorf("%s to %s: %w", m.Channel, m.To, err))
		}
	}
	return errors.Join(errs...)
}

// BookingMessages строит сообщения без отправки.
func (d *Dispatcher) BookingMessages(b *model.Booking, q *model.Quote) []Message {
	payload := bookingPayload(b, q)
	slot := d.slotText(b)

	msgs := []Message{{
		To:      b.Contact.Email,
		Kind:    KindBookingConfirmation,
		Channel: ChannelEmail,
		Subject: fmt.Sprintf("Votre demande de réservation %s", b.BookingNumber),
		Body:    clientEmailBody(b, q, slot),
		Payload: payload,
	}}

	if d.cfg.PractitionerEmail != "" {
		msgs = append(msgs, Message{
			To:      d.cfg.PractitionerEmail,
			Kind:    KindBookingConfirmation,
			Channel: ChannelEmail,
			Subject: fmt.Sprintf("Nouvelle réservation %s : %s", b.BookingNumber, b.ServiceName),
			Body:    practitionerBody(b, slot),
			Payload: payload,
		})
	}

	if d.cfg.ClientSMS && b.Contact.Phone != "" {
		msgs = append(msgs, Message{
			To:      b.Contact.Phone,
			Kind:    KindBookingConfirmation,
			Channel: ChannelSMS,
			Body: fmt.Sprintf("Demande %s reçue : %s, %s. Devis envoyé par email.",
				b.BookingNumber, b.ServiceName, slot),
			Payload: payload,
		})
	}

	if d.cfg.PractitionerChatID != "" {
		msgs = append(msgs, Message{
			To:      d.cfg.PractitionerChatID,
			Kind:    KindBookingConfirmation,
			Channel: ChannelTelegram,
			Body:    practitionerBody(b, slot),
			Payload: payload,
		})
	}

	if d.cfg.Events {
		msgs = append(msgs, Message{
			To:      EventBookingCreated,
			Kind:    KindBookingConfirmation,
			Channel: ChannelEvent,
			Payload: payload,
		})
	}
	return msgs
}

func (d *Dispatcher) slotText(b *model.Booking) string {
	tr, err := calendar.ParseSlot(b.Date, b.Time, b.Duration, d.cfg.Location)
	if err != nil {
		return strings.TrimSpace(b.Date + " " + b.Time)
	}
	return calendar.FormatSlot(tr, d.cfg.Location)
}

func bookingPayload(b *model.Booking, q *model.Quote) map[string]any {
	p := map[string]any{
		"bookingId":     b.ID.String(),
		"bookingNumber": b.BookingNumber,
		"quoteNumber":   b.QuoteNumber,
		"serviceName":   b.ServiceName,
		"date":          b.Date,
		"time":          b.Time,
		"duration":      b.Duration,
		"participants":  b.Participants,
		"total":         b.Pricing.Total.StringFixed(2),
		"clientName":    b.Contact.Name,
		"clientEmail":   b.Contact.Email,
	}
	if q != nil {
		p["validUntil"] = q.ValidUntil.Format(calendar.DateLayout)
	}
	return p
}

func clientEmailBody(b *model.Booking, q *model.Quote, slot string) string {
	var sb strings.Builder
	name := b.Contact.Name
	if name == "" {
		name = b.Contact.Email
	}
	fmt.Fprintf(&sb, "Bonjour %s,\n\n", name)
	sb.WriteString("Merci pour votre demande de réservation.\n\n")
	fmt.Fprintf(&sb, "Prestation : %s\n", b.ServiceName)
	fmt.Fprintf(&sb, "Date : %s\n", slot)
	fmt.Fprintf(&sb, "Participants : %d\n", b.Participants)
	fmt.Fprintf(&sb, "Total : %s €\n\n", b.Pricing.Total.StringFixed(2))
	if q != nil {
		fmt.Fprintf(&sb, "Votre devis %s est valable jusqu'au %s.\n", q.Number, q.ValidUntil.Format("02/01/2006"))
	}
	fmt.Fprintf(&sb, "Référence de réservation : %s\n", b.BookingNumber)
	return sb.String()
}

func practitionerBody(b *model.Booking, slot string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Nouvelle réservation %s\n", b.BookingNumber)
	fmt.Fprintf(&sb, "%s, %s\n", b.ServiceName, slot)
	fmt.Fprintf(&sb, "Client : %s <%s>", b.Contact.Name, b.Contact.Email)
	if b.Contact.Phone != "" {
		fmt.Fprintf(&sb, ", %s", b.Contact.Phone)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Participants : %d, total %s €\n", b.Participants, b.Pricing.Total.StringFixed(2))
	if b.Message != "" {
		fmt.Fprintf(&sb, "Message : %s\n", b.Message)
	}
	return sb.String()
}
