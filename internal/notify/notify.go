// Package notify рассылает уведомления о бронированиях по каналам:
// email, SMS, Telegram и события для брокера.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelTelegram Channel = "telegram"
	ChannelEvent    Channel = "event"
)

type Kind string

const KindBookingConfirmation Kind = "booking_confirmation"

var (
	ErrNoRoute  = errors.New("no sink for channel")
	ErrDelivery = errors.New("delivery failed")
)

// Message: одно уведомление. Доставка не подтверждается и не повторяется.
type Message struct {
	To      string         `json:"to"`
	Kind    Kind           `json:"kind"`
	Channel Channel        `json:"channel"`
	Subject string         `json:"subject,omitempty"`
	Body    string         `json:"body,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

type Sink interface {
	Send(ctx context.Context, m Message) error
}

type SinkFunc func(ctx context.Context, m Message) error

func (f SinkFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// Router выбирает приёмник по каналу сообщения.
type Router map[Channel]Sink

func (r Router) Send(ctx context.Context, m Message) error {
	sink, ok := r[m.Channel]
	if !ok || sink == nil {
		return fmt.Errorf("%w: %s", ErrNoRoute, m.Channel)
	}
	return sink.Send(ctx, m)
}

// Has сообщает, настроен ли приёмник для канала.
func (r Router) Has(ch Channel) bool {
	sink, ok := r[ch]
	return ok && sink != nil
}

// Fanout отправляет сообщение во все приёмники и собирает ошибки.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, m Message) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink только пишет сообщение в лог.
type LogSink struct {
	log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, m Message) error {
	s.log.WithFields(logrus.Fields{
		"channel": m.Channel,
		"kind":    m.Kind,
		"to":      m.To,
		"subject": m.Subject,
	}).Info("notification")
	return nil
}
