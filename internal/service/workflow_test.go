package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/repository"
)

func TestCreateFullBooking_PersistsBookingQuoteProfileAndHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req := groupRequest("jeanne@example.com")
	req.PromoCode = "decouverte20"

	res, err := env.workflow.CreateFullBooking(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "RES26030001", res.BookingNumber)
	assert.Equal(t, "DEV26030001", res.QuoteNumber)
	assert.True(t, res.IsNewClient)
	assert.False(t, res.InvalidPromoCode)
	assert.Equal(t, "172.80", res.Pricing.Display())

	b, err := env.store.Bookings.GetByID(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, b.PaymentStatus)
	assert.Nil(t, b.InvoiceNumber)
	require.NotNil(t, b.Workflow.Created)
	require.NotNil(t, b.Workflow.QuoteSent)
	assert.Nil(t, b.Workflow.Confirmed)
	assert.Equal(t, model.StageQuoted, b.Stage())
	assert.True(t, b.Pricing.Total.Equal(dec("172.8")), "total = %s", b.Pricing.Total)
	assert.True(t, b.Pricing.Discount.Equal(dec("24")))
	assert.True(t, b.Pricing.PromoDiscount.Equal(dec("43.2")))
	assert.Equal(t, "DECOUVERTE20", b.Pricing.PromoCode)
	assert.Equal(t, "Jeanne Martin", b.Contact.Name)

	q, err := env.store.Quotes.GetByBookingID(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "DEV26030001", q.Number)
	assert.Equal(t, res.ClientID, q.ClientID)
	assert.Equal(t, model.QuoteStatusSent, q.Status)
	assert.Len(t, q.Terms, 4)
	assert.True(t, q.Pricing.Subtotal.Equal(dec("240")))
	assert.True(t, q.Pricing.VAT.IsZero())
	assert.Equal(t, 4, q.Pricing.Quantity)
	assert.True(t, q.ValidUntil.Equal(env.clock.Now().AddDate(0, 0, 30)))

	p, err := env.store.Clients.GetByEmail(ctx, "jeanne@example.com")
	require.NoError(t, err)
	assert.Equal(t, res.ClientID, p.ID)
	assert.Equal(t, 1, p.TotalBookings)
	assert.Equal(t, int64(17), p.LoyaltyPoints)

	history, err := env.store.History.ListByBooking(ctx, res.BookingID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.EventTypeBookingCreated, history[0].Type)
	assert.Equal(t, "jeanne@example.com", history[0].ClientEmail)

	env.hooks.Wait()
	assert.Equal(t, []string{"RES26030001/DEV26030001"}, env.notifier.calls)
}

func TestCreateFullBooking_SecondBookingUpdatesProfileAndNumber(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req := groupRequest("jeanne@example.com")
	req.PromoCode = "DECOUVERTE20"
	first, err := env.workflow.CreateFullBooking(ctx, req)
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	single := groupRequest("jeanne@example.com")
	single.Participants = 1
	second, err := env.workflow.CreateFullBooking(ctx, single)
	require.NoError(t, err)

	assert.Equal(t, "RES26030002", second.BookingNumber)
	assert.Less(t, first.BookingNumber, second.BookingNumber)
	assert.False(t, second.IsNewClient)
	assert.Equal(t, first.ClientID, second.ClientID)

	p, err := env.store.Clients.GetByEmail(ctx, "jeanne@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, p.TotalBookings)
	assert.True(t, p.TotalSpent.Equal(dec("232.8")), "totalSpent = %s", p.TotalSpent)
	assert.Equal(t, int64(23), p.LoyaltyPoints)
}

func TestCreateFullBooking_NumberResetsEachMonth(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.workflow.CreateFullBooking(ctx, groupRequest("a@example.com"))
	require.NoError(t, err)

	env.clock.Advance(30 * 24 * time.Hour) // April 13th
	res, err := env.workflow.CreateFullBooking(ctx, groupRequest("b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "RES26040001", res.BookingNumber)
}

func TestCreateFullBooking_InvalidPromoStillBooks(t *testing.T) {
	env := newTestEnv(t, nil)

	req := groupRequest("jeanne@example.com")
	req.PromoCode = "XYZ"

	res, err := env.workflow.CreateFullBooking(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.InvalidPromoCode)
	assert.True(t, res.Pricing.PromoDiscount.IsZero())
	assert.True(t, res.Pricing.Total.Equal(dec("216")))
}

func TestCreateFullBooking_ValidationLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateBookingRequest)
	}{
		{"missing email", func(r *CreateBookingRequest) { r.Email = "  " }},
		{"malformed email", func(r *CreateBookingRequest) { r.Email = "jeanne" }},
		{"no participants", func(r *CreateBookingRequest) { r.Participants = 0 }},
		{"too many participants", func(r *CreateBookingRequest) { r.Participants = 11 }},
		{"bad date", func(r *CreateBookingRequest) { r.Date = "02/04/2026" }},
		{"bad time", func(r *CreateBookingRequest) { r.Time = "2pm" }},
		{"negative price", func(r *CreateBookingRequest) { r.UnitPrice = dec("-5") }},
		{"missing service", func(r *CreateBookingRequest) { r.ServiceName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			ctx := context.Background()

			req := groupRequest("jeanne@example.com")
			tt.mutate(&req)

			_, err := env.workflow.CreateFullBooking(ctx, req)
			require.ErrorIs(t, err, model.ErrValidation)

			all, err := env.query.GetAllBookings(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
			env.hooks.Wait()
			assert.Empty(t, env.notifier.calls)
		})
	}
}

func TestCreateFullBooking_UsesCatalog(t *testing.T) {
	catalog := NewCatalog([]CatalogItem{
		{ID: "reiki", Name: "Soin Reiki", Price: dec("70"), Duration: 75},
	})
	env := newTestEnv(t, catalog)
	ctx := context.Background()

	req := groupRequest("jeanne@example.com")
	req.ServiceID = "reiki"
	req.ServiceName = "whatever the form says"
	req.UnitPrice = dec("1")
	req.Participants = 1

	res, err := env.workflow.CreateFullBooking(ctx, req)
	require.NoError(t, err)
	assert.True(t, res.Pricing.Total.Equal(dec("70")))

	b, err := env.store.Bookings.GetByID(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "Soin Reiki", b.ServiceName)
	assert.Equal(t, 75, b.Duration)

	req.ServiceID = "unknown"
	_, err = env.workflow.CreateFullBooking(ctx, req)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateFullBooking_SideEffectFailuresAreNotSurfaced(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	env.notifier.err = assert.AnError
	flaky := &flakyHistory{HistoryRepository: env.store.History, failures: 2}
	env.store.History = flaky

	res, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	require.NotNil(t, res)

	// Two failed attempts, the third one lands.
	assert.Equal(t, 3, flaky.calls)
	history, err := env.store.History.ListByBooking(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	env.hooks.Wait()
	assert.Len(t, env.notifier.calls, 1)
}

func TestCreateFullBooking_HistoryGivesUpAfterRetries(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	flaky := &flakyHistory{HistoryRepository: env.store.History, failures: 10}
	env.store.History = flaky

	res, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 3, flaky.calls)

	b, err := env.store.Bookings.GetByID(ctx, res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, res.BookingNumber, b.BookingNumber)
}

func TestConfirmBooking_IssuesInvoice(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)
	res, err := env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	require.NoError(t, err)

	inv := res.Invoice
	assert.Equal(t, "FACT26030001", inv.Number)
	assert.Equal(t, created.QuoteNumber, inv.QuoteNumber)
	assert.Equal(t, model.InvoiceStatusPending, inv.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, inv.PaymentStatus)
	assert.Empty(t, inv.Payments)
	assert.True(t, inv.Pricing.Paid.IsZero())
	assert.True(t, inv.Pricing.Remaining.Equal(inv.Pricing.Total))
	assert.True(t, inv.Pricing.Total.Equal(dec("216")))
	assert.True(t, inv.DueDate.Equal(env.clock.Now().AddDate(0, 0, 15)))

	b, err := env.store.Bookings.GetByID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, b.Status)
	require.NotNil(t, b.InvoiceNumber)
	assert.Equal(t, "FACT26030001", *b.InvoiceNumber)
	require.NotNil(t, b.Workflow.Confirmed)
	require.NotNil(t, b.Workflow.InvoiceSent)
	assert.True(t, b.Workflow.Confirmed.Equal(env.clock.Now()))
	assert.Equal(t, model.StageInvoiced, b.Stage())

	q, err := env.store.Quotes.GetByBookingID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusAccepted, q.Status)

	// Invoice and confirmation share a timestamp; insertion order breaks the tie.
	history, err := env.query.GetClientHistory(ctx, "jeanne@example.com")
	require.NoError(t, err)
	var types []model.EventType
	for _, h := range history {
		types = append(types, h.Type)
	}
	assert.Equal(t, []model.EventType{
		model.EventTypeBookingConfirmed,
		model.EventTypeInvoiceGenerated,
		model.EventTypeBookingCreated,
	}, types)
	assert.True(t, history[0].Timestamp.Equal(history[1].Timestamp))
}

func TestConfirmBooking_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.workflow.ConfirmBooking(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = env.workflow.ConfirmBooking(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrNotFound)

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	_, err = env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	require.NoError(t, err)

	_, err = env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	other, err := env.workflow.CreateFullBooking(ctx, groupRequest("paul@example.com"))
	require.NoError(t, err)
	_, err = env.workflow.CancelBooking(ctx, other.BookingID.String(), "")
	require.NoError(t, err)
	_, err = env.workflow.ConfirmBooking(ctx, other.BookingID.String())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestGenerateInvoiceDocument_Standalone(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)

	inv, err := env.workflow.GenerateInvoiceDocument(ctx, created.BookingID.String())
	require.NoError(t, err)
	assert.Equal(t, "FACT26030001", inv.Number)

	_, err = env.workflow.GenerateInvoiceDocument(ctx, created.BookingID.String())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = env.workflow.GenerateInvoiceDocument(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConfirmBooking_AfterStandaloneInvoiceReusesIt(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	env.clock.Advance(time.Hour)
	inv, err := env.workflow.GenerateInvoiceDocument(ctx, created.BookingID.String())
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	res, err := env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	require.NoError(t, err)
	assert.Equal(t, inv.ID, res.Invoice.ID)
	assert.Equal(t, "FACT26030001", res.Invoice.Number)
	assert.Equal(t, model.BookingStatusConfirmed, res.Booking.Status)

	b, err := env.store.Bookings.GetByID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, b.Status)
	require.NotNil(t, b.InvoiceNumber)
	assert.Equal(t, "FACT26030001", *b.InvoiceNumber)

	q, err := env.store.Quotes.GetByBookingID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteStatusAccepted, q.Status)

	history, err := env.store.History.ListByBooking(ctx, created.BookingID)
	require.NoError(t, err)
	var types []model.EventType
	for _, h := range history {
		types = append(types, h.Type)
	}
	assert.Equal(t, []model.EventType{
		model.EventTypeBookingCreated,
		model.EventTypeInvoiceGenerated,
		model.EventTypeBookingConfirmed,
	}, types)

	_, err = env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	completed, err := env.workflow.CompleteBooking(ctx, created.BookingID.String())
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, completed.Status)
}

func TestRecordPayment_PartialThenPaid(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	confirmed, err := env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	require.NoError(t, err)
	invoiceID := confirmed.Invoice.ID.String()

	env.clock.Advance(time.Hour)
	first, err := env.workflow.RecordPayment(ctx, invoiceID, PaymentData{
		Amount: dec("100"),
		Method: model.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPartial, first.PaymentStatus)
	assert.True(t, first.TotalPaid.Equal(dec("100")))
	assert.True(t, first.Remaining.Equal(dec("116")))
	assert.Contains(t, first.Payment.ID, "PAY-")
	assert.True(t, first.Payment.Date.Equal(env.clock.Now()))

	b, err := env.store.Bookings.GetByID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPartial, b.PaymentStatus)
	assert.Nil(t, b.Workflow.Paid)

	env.clock.Advance(time.Hour)
	paidOn := time.Date(2026, time.March, 13, 18, 0, 0, 0, time.UTC)
	second, err := env.workflow.RecordPayment(ctx, invoiceID, PaymentData{
		Amount:    dec("116"),
		Method:    model.PaymentMethodTransfer,
		Date:      &paidOn,
		Reference: "VIR-0042",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, second.PaymentStatus)
	assert.True(t, second.Remaining.IsZero())
	assert.True(t, second.Payment.Date.Equal(paidOn))

	b, err = env.store.Bookings.GetByID(ctx, created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, b.PaymentStatus)
	require.NotNil(t, b.Workflow.Paid)
	assert.True(t, b.Workflow.Paid.Equal(env.clock.Now()))

	inv, err := env.store.Invoices.GetByID(ctx, confirmed.Invoice.ID)
	require.NoError(t, err)
	require.Len(t, inv.Payments, 2)
	assert.Equal(t, first.Payment.ID, inv.Payments[0].ID)
	assert.Equal(t, "VIR-0042", inv.Payments[1].Reference)
	assert.Equal(t, model.PaymentStatusPaid, inv.PaymentStatus)

	history, err := env.query.GetClientHistory(ctx, "jeanne@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, model.EventTypePaymentRecorded, history[0].Type)
	require.NotNil(t, history[0].Amount)
	assert.True(t, history[0].Amount.Equal(dec("116")))
	assert.Equal(t, model.PaymentMethodTransfer, history[0].Method)
}

func TestRecordPayment_OverpaymentStaysPaid(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	req := groupRequest("jeanne@example.com")
	req.Participants = 1
	created, err := env.workflow.CreateFullBooking(ctx, req)
	require.NoError(t, err)
	confirmed, err := env.workflow.ConfirmBooking(ctx, created.BookingID.String())
	require.NoError(t, err)

	res, err := env.workflow.RecordPayment(ctx, confirmed.Invoice.ID.String(), PaymentData{Amount: dec("80"), Method: model.PaymentMethodCash})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, res.PaymentStatus)
	assert.True(t, res.Remaining.Equal(dec("-20")))
}

func TestRecordPayment_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.workflow.RecordPayment(ctx, uuid.NewString(), PaymentData{Amount: dec("10"), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = env.workflow.RecordPayment(ctx, uuid.NewString(), PaymentData{Amount: dec("0"), Method: model.PaymentMethodCash})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = env.workflow.RecordPayment(ctx, uuid.NewString(), PaymentData{Amount: dec("10"), Method: "bitcoin"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCancelAndCompleteTransitions(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
	require.NoError(t, err)
	id := created.BookingID.String()

	_, err = env.workflow.CompleteBooking(ctx, id)
	assert.ErrorIs(t, err, model.ErrInvalidTransition, "pending booking cannot be completed")

	_, err = env.workflow.ConfirmBooking(ctx, id)
	require.NoError(t, err)

	env.clock.Advance(24 * time.Hour)
	b, err := env.workflow.CompleteBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, b.Status)
	require.NotNil(t, b.Workflow.Completed)
	assert.Equal(t, model.StageCompleted, b.Stage())

	_, err = env.workflow.CancelBooking(ctx, id, "changement de planning")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	other, err := env.workflow.CreateFullBooking(ctx, groupRequest("paul@example.com"))
	require.NoError(t, err)
	env.clock.Advance(time.Minute)
	cancelled, err := env.workflow.CancelBooking(ctx, other.BookingID.String(), "malade")
	require.NoError(t, err)
	assert.Equal(t, model.StageCancelled, cancelled.Stage())

	stored, err := env.store.Bookings.GetByID(ctx, other.BookingID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, stored.Status)
	require.NotNil(t, stored.Workflow.Cancelled)

	history, err := env.store.History.ListByBooking(ctx, other.BookingID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.EventTypeBookingCancelled, history[1].Type)
	assert.Contains(t, history[1].Description, "malade")
}

func TestCreateFullBooking_RepeatClientKeepsOneProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var numbers []string
	for i := 0; i < 3; i++ {
		env.clock.Advance(time.Minute)
		res, err := env.workflow.CreateFullBooking(ctx, groupRequest("jeanne@example.com"))
		require.NoError(t, err)
		numbers = append(numbers, res.BookingNumber)
	}
	assert.Equal(t, []string{"RES26030001", "RES26030002", "RES26030003"}, numbers)

	_, total, err := env.store.Bookings.List(ctx, repository.BookingFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	p, err := env.store.Clients.GetByEmail(ctx, "jeanne@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, p.TotalBookings)
}
