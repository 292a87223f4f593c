package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/calendar"
	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/repository"
)

// BookedSlot: занятый интервал для календаря на сайте.
type BookedSlot struct {
	Date     string     `json:"date"`
	Time     string     `json:"time"`
	Duration int        `json:"duration"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// Статусы, которые занимают время в календаре.
var activeStatuses = []model.BookingStatus{
	model.BookingStatusPending,
	model.BookingStatusConfirmed,
}

// QueryService: чтение бронирований, профилей и журнала.
type QueryService struct {
	store *repository.Store
	loc   *time.Location
	log   logrus.FieldLogger
}

func NewQueryService(store *repository.Store, loc *time.Location, log logrus.FieldLogger) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryService{store: store, loc: loc, log: log}
}

// GetAllBookings: все бронирования, новые первыми.
func (s *QueryService) GetAllBookings(ctx context.Context) ([]model.Booking, error) {
	bookings, _, err := s.store.Bookings.List(ctx, repository.BookingFilter{}, 0, 0)
	if err != nil {
		s.log.WithError(err).Error("list bookings failed")
		return nil, err
	}
	return nonNil(bookings), nil
}

// ListBookings: то же, постранично.
func (s *QueryService) ListBookings(ctx context.Context, page, pageSize int) (calendar.Page[model.Booking], error) {
	page, pageSize, limit, offset := calendar.Normalize(page, pageSize)
	bookings, total, err := s.store.Bookings.List(ctx, repository.BookingFilter{}, limit, offset)
	if err != nil {
		s.log.WithError(err).Error("list bookings failed")
		return calendar.Page[model.Booking]{}, err
	}
	return calendar.FromQuery(bookings, page, pageSize, total), nil
}

// GetUserBookings: бронирования клиента по точному email, новые первыми.
func (s *QueryService) GetUserBookings(ctx context.Context, email string) ([]model.Booking, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.ValidationError("email", "is required")
	}
	bookings, _, err := s.store.Bookings.List(ctx, repository.BookingFilter{Email: email}, 0, 0)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Error("list user bookings failed")
		return nil, err
	}
	return nonNil(bookings), nil
}

// GetBookedDates: занятые слоты бронирований в статусах pending и confirmed.
// Если дату и время не удаётся разобрать, слот отдаётся без start/end.
func (s *QueryService) GetBookedDates(ctx context.Context) ([]BookedSlot, error) {
	bookings, _, err := s.store.Bookings.List(ctx, repository.BookingFilter{Statuses: activeStatuses}, 0, 0)
	if err != nil {
		s.log.WithError(err).Error("list booked dates failed")
		return nil, err
	}

	slots := make([]BookedSlot, 0, len(bookings))
	for _, b := range bookings {
		slot := BookedSlot{Date: b.Date, Time: b.Time, Duration: b.Duration}
		if tr, err := calendar.ParseSlot(b.Date, b.Time, b.Duration, s.loc); err == nil {
			start, end := tr.Start.UTC(), tr.End.UTC()
			slot.Start, slot.End = &start, &end
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// GetClientHistory: журнал клиента, новые записи первыми.
func (s *QueryService) GetClientHistory(ctx context.Context, email string) ([]model.HistoryEntry, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.ValidationError("email", "is required")
	}
	entries, err := s.store.History.ListByEmail(ctx, email, 0)
	if err != nil {
		s.log.WithError(err).WithField("email", email).Error("client history failed")
		return nil, err
	}
	return nonNil(entries), nil
}

func (s *QueryService) GetClientProfile(ctx context.Context, email string) (*model.ClientProfile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.ValidationError("email", "is required")
	}
	return s.store.Clients.GetByEmail(ctx, email)
}

func (s *QueryService) GetBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}
	return s.store.Bookings.GetByID(ctx, id)
}

// GetBookingHistory: журнал одного бронирования в порядке событий.
func (s *QueryService) GetBookingHistory(ctx context.Context, bookingID string) ([]model.HistoryEntry, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.History.ListByBooking(ctx, b.ID)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("booking history failed")
		return nil, err
	}
	return nonNil(entries), nil
}

func (s *QueryService) GetInvoice(ctx context.Context, invoiceID string) (*model.Invoice, error) {
	id, err := parseID(invoiceID, "invoice")
	if err != nil {
		return nil, err
	}
	return s.store.Invoices.GetByID(ctx, id)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
