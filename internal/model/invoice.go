package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck:
		return true
	}
	return false
}

// Payment: запись в invoice.payments. Только добавляется.
type Payment struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

type InvoicePricing struct {
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Subtotal      decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:numeric;not null" json:"discount"`
	PromoDiscount decimal.Decimal `gorm:"type:numeric;not null" json:"promoDiscount"`
	Total         decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
	VAT           decimal.Decimal `gorm:"type:numeric;not null" json:"tva"`
	Paid          decimal.Decimal `gorm:"type:numeric;not null" json:"paid"`
	Remaining     decimal.Decimal `gorm:"type:numeric;not null" json:"remaining"`
}

// invoices: создаётся только при подтверждении, 1:1 с бронированием.
type Invoice struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Number        string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	BookingID     uuid.UUID `gorm:"type:uuid;not null;index" json:"bookingId"`
	BookingNumber string    `gorm:"type:varchar(32);not null" json:"bookingNumber"`
	QuoteNumber   string    `gorm:"type:varchar(32)" json:"quoteNumber"`

	IssuedAt time.Time `gorm:"not null" json:"date"`
	DueDate  time.Time `gorm:"not null" json:"dueDate"`

	Client  DocumentClient  `gorm:"embedded;embeddedPrefix:client_" json:"client"`
	Service DocumentService `gorm:"embedded;embeddedPrefix:service_" json:"service"`
	Pricing InvoicePricing  `gorm:"embedded;embeddedPrefix:price_" json:"pricing"`

	Payments datatypes.JSONSlice[Payment] `json:"payments"`

	Status        InvoiceStatus `gorm:"type:varchar(32);not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(32);not null" json:"paymentStatus"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return i.Validate()
}

func (i *Invoice) Validate() error {
	if i.Number == "" {
		return ValidationError("invoice number", "is required")
	}
	if i.BookingID == uuid.Nil {
		return ValidationError("invoice bookingId", "is required")
	}
	if !i.PaymentStatus.Valid() {
		return ValidationError("invoice paymentStatus", "is unknown")
	}
	for _, p := range i.Payments {
		if !p.Method.Valid() {
			return ValidationError("payment method", "is unknown")
		}
	}
	return nil
}

// Settle пересчитывает оплату по всем платежам:
// paid, если остаток <= 0; partial, если что-то оплачено; иначе unpaid.
func Settle(total decimal.Decimal, payments []Payment) (paid, remaining decimal.Decimal, status PaymentStatus) {
	paid = decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	remaining = total.Sub(paid)
	switch {
	case !remaining.IsPositive():
		status = PaymentStatusPaid
	case paid.IsPositive():
		status = PaymentStatusPartial
	default:
		status = PaymentStatusUnpaid
	}
	return paid, remaining, status
}
