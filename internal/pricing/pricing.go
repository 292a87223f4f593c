// Package pricing считает стоимость сеанса: групповая скидка и промокод.
package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinParticipants = 1
	MaxParticipants = 10

	// Групповая скидка действует начиная с этого числа участников (строго больше).
	GroupThreshold = 3

	PromoDecouverte = "DECOUVERTE20"
)

var (
	ErrInvalidPromoCode = errors.New("invalid promo code")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrParticipants     = errors.New("participants must be at least 1")
)

var (
	groupRate = decimal.RequireFromString("0.10")
	promoRate = decimal.RequireFromString("0.20")
)

// Breakdown: детализация расчёта. Все суммы без округления.
type Breakdown struct {
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Participants  int             `json:"participants"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GroupDiscount decimal.Decimal `json:"discount"`
	PromoDiscount decimal.Decimal `json:"promoDiscount"`
	Total         decimal.Decimal `json:"total"`
	PromoCode     string          `json:"promoCode,omitempty"`
}

// Calculate считает стоимость.
//
// Неизвестный непустой промокод не прерывает расчёт: возвращается полная
// детализация без промо-скидки вместе с ErrInvalidPromoCode.
func Calculate(unitPrice decimal.Decimal, participants int, promoCode string) (Breakdown, error) {
	if unitPrice.IsNegative() {
		return Breakdown{}, ErrNegativePrice
	}
	if participants < MinParticipants {
		return Breakdown{}, ErrParticipants
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(participants)))

	group := decimal.Zero
	if participants > GroupThreshold {
		group = subtotal.Mul(groupRate)
	}

	b := Breakdown{
		UnitPrice:     unitPrice,
		Participants:  participants,
		Subtotal:      subtotal,
		GroupDiscount: group,
		PromoDiscount: decimal.Zero,
	}

	var promoErr error
	code := NormalizePromoCode(promoCode)
	switch {
	case code == "":
	case code == PromoDecouverte:
		b.PromoDiscount = subtotal.Sub(group).Mul(promoRate)
		b.PromoCode = code
	default:
		promoErr = ErrInvalidPromoCode
	}

	b.Total = subtotal.Sub(group).Sub(b.PromoDiscount)
	return b, promoErr
}

// NormalizePromoCode обрезает пробелы и приводит код к верхнему регистру.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Rounded возвращает копию с суммами, округлёнными до центов.
func (b Breakdown) Rounded() Breakdown {
	r := b
	r.UnitPrice = b.UnitPrice.Round(2)
	r.Subtotal = b.Subtotal.Round(2)
	r.GroupDiscount = b.GroupDiscount.Round(2)
	r.PromoDiscount = b.PromoDiscount.Round(2)
	r.Total = b.Total.Round(2)
	return r
}

// Display: итог для отображения, например "172.80".
func (b Breakdown) Display() string {
	return b.Total.StringFixed(2)
}
