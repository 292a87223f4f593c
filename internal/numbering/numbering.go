// Package numbering выдаёт номера бронирований RESyymm#### и выводит из них
// номера devis (DEV…) и factures (FACT…).
package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	PrefixBooking = "RES"
	PrefixQuote   = "DEV"
	PrefixInvoice = "FACT"
)

// Sequencer возвращает следующий порядковый номер в месяце now.
type Sequencer interface {
	Next(ctx context.Context, now time.Time) (int64, error)
}

// Format собирает номер бронирования: RES + yy + mm + номер с ведущими нулями до 4 цифр.
func Format(now time.Time, seq int64) string {
	return fmt.Sprintf("%s%02d%02d%04d", PrefixBooking, now.Year()%100, int(now.Month()), seq)
}

// QuoteNumber: чистая подстановка префикса RES -> DEV.
func QuoteNumber(bookingNumber string) string {
	return replacePrefix(bookingNumber, PrefixQuote)
}

// InvoiceNumber: чистая подстановка префикса RES -> FACT.
func InvoiceNumber(bookingNumber string) string {
	return replacePrefix(bookingNumber, PrefixInvoice)
}

func replacePrefix(bookingNumber, prefix string) string {
	return strings.Replace(bookingNumber, PrefixBooking, prefix, 1)
}

// MonthRange: полуинтервал [начало месяца, начало следующего месяца) в поясе now.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// Generator выдаёт номера бронирований по часам и часовому поясу практики.
type Generator struct {
	seq Sequencer
	loc *time.Location
	now func() time.Time
}

func NewGenerator(seq Sequencer, loc *time.Location, now func() time.Time) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{seq: seq, loc: loc, now: now}
}

// BookingNumber возвращает новый номер бронирования.
func (g *Generator) BookingNumber(ctx context.Context) (string, error) {
	now := g.now().In(g.loc)
	n, err := g.seq.Next(ctx, now)
	if err != nil {
		return "", fmt.Errorf("next booking sequence: %w", err)
	}
	return Format(now, n), nil
}
