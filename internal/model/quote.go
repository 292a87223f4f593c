package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
)

// Условия, печатаемые в каждом devis.
var DefaultQuoteTerms = []string{
	"Devis valable 30 jours",
	"Acompte de 30% à la réservation",
	"Solde à régler le jour de la séance",
	"Annulation gratuite jusqu'à 48h avant la séance",
}

// Блок клиента в документах (devis, facture).
type DocumentClient struct {
	Name  string `gorm:"type:varchar(255)" json:"name"`
	Email string `gorm:"type:varchar(255);not null" json:"email"`
	Phone string `gorm:"type:varchar(32)" json:"phone,omitempty"`
}

// Блок услуги в документах.
type DocumentService struct {
	Name         string `gorm:"type:varchar(255)" json:"name"`
	Date         string `gorm:"type:varchar(10)" json:"date"`
	Time         string `gorm:"type:varchar(5)" json:"time"`
	Duration     int    `json:"duration"`
	Participants int    `json:"participants"`
}

type QuotePricing struct {
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Subtotal      decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:numeric;not null" json:"discount"`
	PromoDiscount decimal.Decimal `gorm:"type:numeric;not null" json:"promoDiscount"`
	Total         decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
	// TVA non applicable pour les services thérapeutiques.
	VAT decimal.Decimal `gorm:"type:numeric;not null" json:"tva"`
}

// quotes: неизменяемый снимок предложения, меняется только статус.
type Quote struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Number        string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"number"`
	BookingID     uuid.UUID `gorm:"type:uuid;not null;index" json:"bookingId"`
	BookingNumber string    `gorm:"type:varchar(32);not null" json:"bookingNumber"`
	ClientID      uuid.UUID `gorm:"type:uuid;index" json:"clientId"`

	IssuedAt   time.Time `gorm:"not null" json:"date"`
	ValidUntil time.Time `gorm:"not null" json:"validUntil"`

	Client  DocumentClient  `gorm:"embedded;embeddedPrefix:client_" json:"client"`
	Service DocumentService `gorm:"embedded;embeddedPrefix:service_" json:"service"`
	Pricing QuotePricing    `gorm:"embedded;embeddedPrefix:price_" json:"pricing"`

	Terms  datatypes.JSONSlice[string] `json:"terms"`
	Status QuoteStatus                 `gorm:"type:varchar(32);not null" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	Booking *Booking `gorm:"foreignKey:BookingID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return q.Validate()
}

func (q *Quote) Validate() error {
	if q.Number == "" {
		return ValidationError("quote number", "is required")
	}
	if q.BookingID == uuid.Nil {
		return ValidationError("quote bookingId", "is required")
	}
	if q.Client.Email == "" {
		return ValidationError("quote client email", "is required")
	}
	if !q.ValidUntil.After(q.IssuedAt) {
		return ValidationError("quote validUntil", "must be after issue date")
	}
	return nil
}
