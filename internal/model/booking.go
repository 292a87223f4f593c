package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Stage: этап жизненного цикла бронирования, вычисляется по отметкам workflow.
type Stage string

const (
	StageCreated   Stage = "created"
	StageQuoted    Stage = "quoted"
	StageConfirmed Stage = "confirmed"
	StageInvoiced  Stage = "invoiced"
	StagePaid      Stage = "paid"
	StageCompleted Stage = "completed"
	StageCancelled Stage = "cancelled"
)

var bookingNumberRe = regexp.MustCompile(`^RES\d{8,}$`)

// Снимок цены на момент создания бронирования.
type PricingSnapshot struct {
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	Discount      decimal.Decimal `gorm:"type:numeric;not null" json:"discount"`
	PromoDiscount decimal.Decimal `gorm:"type:numeric;not null" json:"promoDiscount"`
	Total         decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
	PromoCode     string          `gorm:"type:varchar(64)" json:"promoCode,omitempty"`
}

// Контактные данные клиента из формы.
type Contact struct {
	FirstName string `gorm:"type:varchar(255)" json:"firstName,omitempty"`
	LastName  string `gorm:"type:varchar(255)" json:"lastName,omitempty"`
	Name      string `gorm:"type:varchar(255)" json:"name"`
	Email     string `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone     string `gorm:"type:varchar(32)" json:"phone,omitempty"`
}

// Workflow: отметки времени этапов. nil, пока этап не пройден.
type Workflow struct {
	Created     *time.Time `json:"created"`
	QuoteSent   *time.Time `json:"quoteSent"`
	Confirmed   *time.Time `json:"confirmed"`
	InvoiceSent *time.Time `json:"invoiceSent"`
	Paid        *time.Time `json:"paid"`
	Completed   *time.Time `json:"completed"`
	Cancelled   *time.Time `json:"cancelled"`
}

// bookings
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Номер присваивается один раз при создании и больше не меняется.
	BookingNumber string  `gorm:"type:varchar(32);not null;uniqueIndex" json:"bookingNumber"`
	QuoteNumber   string  `gorm:"type:varchar(32);not null;index" json:"quoteNumber"`
	InvoiceNumber *string `gorm:"type:varchar(32);index" json:"invoiceNumber"`

	ServiceID   string `gorm:"type:varchar(64)" json:"serviceId"`
	ServiceName string `gorm:"type:varchar(255);not null" json:"serviceName"`
	Date        string `gorm:"type:varchar(10);not null" json:"date"`
	Time        string `gorm:"type:varchar(5);not null" json:"time"`
	Duration    int    `gorm:"not null" json:"duration"`

	Participants int `gorm:"not null" json:"participants"`

	Pricing PricingSnapshot `gorm:"embedded;embeddedPrefix:price_" json:"pricing"`
	Contact Contact         `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`
	Message string          `gorm:"type:text" json:"message,omitempty"`

	Status        BookingStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null" json:"paymentStatus"`

	Workflow Workflow `gorm:"embedded;embeddedPrefix:workflow_" json:"workflow"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b.Validate()
}

// Validate проверяет документ на границе хранилища.
func (b *Booking) Validate() error {
	if !BookingNumberValid(b.BookingNumber) {
		return ValidationError("bookingNumber", "has invalid format")
	}
	if b.QuoteNumber == "" {
		return ValidationError("quoteNumber", "is required")
	}
	if strings.TrimSpace(b.Contact.Email) == "" {
		return ValidationError("email", "is required")
	}
	if b.Participants < 1 {
		return ValidationError("participants", "must be at least 1")
	}
	if b.Duration < 0 {
		return ValidationError("duration", "must not be negative")
	}
	if !b.Status.Valid() {
		return ValidationError("status", "is unknown")
	}
	if !b.PaymentStatus.Valid() {
		return ValidationError("paymentStatus", "is unknown")
	}
	return nil
}

// Stage возвращает текущий этап по отметкам workflow.
func (b *Booking) Stage() Stage {
	w := b.Workflow
	switch {
	case b.Status == BookingStatusCancelled:
		return StageCancelled
	case w.Completed != nil:
		return StageCompleted
	case w.Paid != nil:
		return StagePaid
	case w.InvoiceSent != nil:
		return StageInvoiced
	case w.Confirmed != nil:
		return StageConfirmed
	case w.QuoteSent != nil:
		return StageQuoted
	default:
		return StageCreated
	}
}

// BookingNumberValid сообщает, соответствует ли строка формату RESyymm####.
func BookingNumberValid(s string) bool {
	return bookingNumberRe.MatchString(s)
}
