package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Тип события журнала.
type EventType string

const (
	EventTypeBookingCreated   EventType = "booking_created"
	EventTypeBookingConfirmed EventType = "booking_confirmed"
	EventTypeInvoiceGenerated EventType = "invoice_generated"
	EventTypePaymentRecorded  EventType = "payment_recorded"
	EventTypeBookingCancelled EventType = "booking_cancelled"
	EventTypeBookingCompleted EventType = "booking_completed"
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeBookingCreated, EventTypeBookingConfirmed, EventTypeInvoiceGenerated,
		EventTypePaymentRecorded, EventTypeBookingCancelled, EventTypeBookingCompleted:
		return true
	}
	return false
}

// history: журнал аудита, записи только добавляются.
type HistoryEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Type EventType `gorm:"type:varchar(64);not null;index" json:"type"`

	BookingID     *uuid.UUID `gorm:"type:uuid;index" json:"bookingId,omitempty"`
	BookingNumber string     `gorm:"type:varchar(32)" json:"bookingNumber,omitempty"`
	InvoiceID     *uuid.UUID `gorm:"type:uuid;index" json:"invoiceId,omitempty"`
	InvoiceNumber string     `gorm:"type:varchar(32)" json:"invoiceNumber,omitempty"`
	ClientEmail   string     `gorm:"type:varchar(255);index" json:"clientEmail,omitempty"`

	Amount *decimal.Decimal `gorm:"type:numeric" json:"amount,omitempty"`
	Method PaymentMethod    `gorm:"type:varchar(32)" json:"method,omitempty"`

	Description string    `gorm:"type:text" json:"description"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	// Порядок вставки: различает записи с одинаковым Timestamp.
	Seq int64 `gorm:"not null;default:0" json:"-"`
}

func (HistoryEntry) TableName() string { return "history" }

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if !h.Type.Valid() {
		return ValidationError("history type", "is unknown")
	}
	if h.Timestamp.IsZero() {
		return ValidationError("history timestamp", "is required")
	}
	return nil
}
