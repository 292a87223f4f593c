package transport

import (
	"context"

	"github.com/Leganyst/wellness-booking/internal/calendar"
	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/service"
)

// Операции, которые транспорты отдают наружу.

type Workflow interface {
	CreateFullBooking(ctx context.Context, req service.CreateBookingRequest) (*service.CreateBookingResult, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*service.ConfirmResult, error)
	GenerateInvoiceDocument(ctx context.Context, bookingID string) (*model.Invoice, error)
	RecordPayment(ctx context.Context, invoiceID string, data service.PaymentData) (*service.PaymentResult, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (*model.Booking, error)
	CompleteBooking(ctx context.Context, bookingID string) (*model.Booking, error)
}

type Queries interface {
	GetAllBookings(ctx context.Context) ([]model.Booking, error)
	ListBookings(ctx context.Context, page, pageSize int) (calendar.Page[model.Booking], error)
	GetUserBookings(ctx context.Context, email string) ([]model.Booking, error)
	GetBookedDates(ctx context.Context) ([]service.BookedSlot, error)
	GetClientHistory(ctx context.Context, email string) ([]model.HistoryEntry, error)
	GetClientProfile(ctx context.Context, email string) (*model.ClientProfile, error)
	GetBooking(ctx context.Context, bookingID string) (*model.Booking, error)
	GetBookingHistory(ctx context.Context, bookingID string) ([]model.HistoryEntry, error)
	GetInvoice(ctx context.Context, invoiceID string) (*model.Invoice, error)
}

type Profiles interface {
	CreateOrUpdate(ctx context.Context, data service.ClientData) (service.ProfileResult, error)
}
