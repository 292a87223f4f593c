package model

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSettle(t *testing.T) {
	total := dec("120")
	pay := func(amounts ...string) []Payment {
		out := make([]Payment, 0, len(amounts))
		for _, a := range amounts {
			out = append(out, Payment{Amount: dec(a), Method: PaymentMethodCard})
		}
		return out
	}

	tests := []struct {
		name       string
		payments   []Payment
		wantPaid   string
		wantRemain string
		wantStatus PaymentStatus
	}{
		{"no payments", nil, "0", "120", PaymentStatusUnpaid},
		{"partial", pay("50"), "50", "70", PaymentStatusPartial},
		{"exact", pay("50", "70"), "120", "0", PaymentStatusPaid},
		{"overpaid", pay("100", "30"), "130", "-10", PaymentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid, remaining, status := Settle(total, tt.payments)
			assert.True(t, paid.Equal(dec(tt.wantPaid)), "paid = %s", paid)
			assert.True(t, remaining.Equal(dec(tt.wantRemain)), "remaining = %s", remaining)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestLoyaltyPointsFor(t *testing.T) {
	assert.Equal(t, int64(0), LoyaltyPointsFor(dec("9.99")))
	assert.Equal(t, int64(21), LoyaltyPointsFor(dec("216")))
	assert.Equal(t, int64(17), LoyaltyPointsFor(dec("172.80")))
	assert.Equal(t, int64(0), LoyaltyPointsFor(dec("-50")))
}

func TestBookingStage(t *testing.T) {
	now := time.Now()
	b := &Booking{Status: BookingStatusPending}
	assert.Equal(t, StageCreated, b.Stage())

	b.Workflow.Created, b.Workflow.QuoteSent = &now, &now
	assert.Equal(t, StageQuoted, b.Stage())

	b.Workflow.Confirmed = &now
	assert.Equal(t, StageConfirmed, b.Stage())

	b.Workflow.InvoiceSent = &now
	assert.Equal(t, StageInvoiced, b.Stage())

	b.Workflow.Paid = &now
	assert.Equal(t, StagePaid, b.Stage())

	b.Workflow.Completed = &now
	assert.Equal(t, StageCompleted, b.Stage())

	b.Status = BookingStatusCancelled
	assert.Equal(t, StageCancelled, b.Stage())
}

func validBooking() *Booking {
	return &Booking{
		BookingNumber: "RES26030001",
		QuoteNumber:   "DEV26030001",
		ServiceName:   "Massage",
		Participants:  1,
		Contact:       Contact{Email: "a@example.com"},
		Status:        BookingStatusPending,
		PaymentStatus: PaymentStatusUnpaid,
	}
}

func TestBookingValidate(t *testing.T) {
	require.NoError(t, validBooking().Validate())

	tests := map[string]func(b *Booking){
		"bad number":     func(b *Booking) { b.BookingNumber = "RES2603" },
		"no quote":       func(b *Booking) { b.QuoteNumber = "" },
		"blank email":    func(b *Booking) { b.Contact.Email = "  " },
		"no people":      func(b *Booking) { b.Participants = 0 },
		"status":         func(b *Booking) { b.Status = "archived" },
		"payment status": func(b *Booking) { b.PaymentStatus = "refunded" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			b := validBooking()
			mutate(b)
			assert.ErrorIs(t, b.Validate(), ErrValidation)
		})
	}
}

func TestBookingNumberValid(t *testing.T) {
	assert.True(t, BookingNumberValid("RES26030001"))
	assert.True(t, BookingNumberValid("RES260312345"))
	assert.False(t, BookingNumberValid("DEV26030001"))
	assert.False(t, BookingNumberValid("RES2603001"))
}

func TestQuoteValidate(t *testing.T) {
	now := time.Now()
	q := &Quote{
		Number:     "DEV26030001",
		BookingID:  uuid.New(),
		Client:     DocumentClient{Email: "a@example.com"},
		IssuedAt:   now,
		ValidUntil: now.AddDate(0, 0, 30),
	}
	require.NoError(t, q.Validate())

	q.ValidUntil = now
	assert.ErrorIs(t, q.Validate(), ErrValidation)
}

func TestInvoiceValidate_PaymentMethod(t *testing.T) {
	inv := &Invoice{
		Number:        "FACT26030001",
		BookingID:     uuid.New(),
		PaymentStatus: PaymentStatusUnpaid,
		Status:        InvoiceStatusPending,
	}
	require.NoError(t, inv.Validate())

	inv.Payments = append(inv.Payments, Payment{Amount: dec("10"), Method: "crypto"})
	assert.ErrorIs(t, inv.Validate(), ErrValidation)
}

func TestPartialWorkflowError(t *testing.T) {
	cause := errors.New("smtp down")
	err := error(&PartialWorkflowError{Step: "notify", Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"notify"`)

	var pwe *PartialWorkflowError
	require.ErrorAs(t, err, &pwe)
	assert.Equal(t, "notify", pwe.Step)
}
