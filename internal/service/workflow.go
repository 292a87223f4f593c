package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/calendar"
	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/numbering"
	"github.com/Leganyst/wellness-booking/internal/pricing"
	"github.com/Leganyst/wellness-booking/internal/repository"
)

const (
	DefaultQuoteValidityDays = 30
	DefaultInvoiceDueDays    = 15
)

// Notifier рассылает уведомления о новом бронировании.
type Notifier interface {
	SendBookingNotifications(ctx context.Context, booking *model.Booking, quote *model.Quote) error
}

type WorkflowConfig struct {
	// Пояс практики: в нём трактуются дата и время сеанса.
	Location          *time.Location
	QuoteValidityDays int
	InvoiceDueDays    int
	HistoryRetry      RetryPolicy
	Catalog           *Catalog
	Now               func() time.Time
}

// WorkflowService проводит бронирование по этапам: заявка с devis,
// подтверждение с facture, оплаты, отмена и завершение.
// Состояния между вызовами не хранит.
type WorkflowService struct {
	store    *repository.Store
	numbers  *numbering.Generator
	notifier Notifier
	hooks    *PostCommit
	cfg      WorkflowConfig
	log      logrus.FieldLogger
}

func NewWorkflowService(
	store *repository.Store,
	numbers *numbering.Generator,
	notifier Notifier,
	hooks *PostCommit,
	cfg WorkflowConfig,
	log logrus.FieldLogger,
) *WorkflowService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.QuoteValidityDays <= 0 {
		cfg.QuoteValidityDays = DefaultQuoteValidityDays
	}
	if cfg.InvoiceDueDays <= 0 {
		cfg.InvoiceDueDays = DefaultInvoiceDueDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if hooks == nil {
		hooks = NewPostCommit(log, 0)
	}
	return &WorkflowService{
		store:    store,
		numbers:  numbers,
		notifier: notifier,
		hooks:    hooks,
		cfg:      cfg,
		log:      log,
	}
}

type CreateBookingRequest struct {
	ServiceID    string          `json:"serviceId"`
	ServiceName  string          `json:"serviceName"`
	UnitPrice    decimal.Decimal `json:"price"`
	Duration     int             `json:"duration"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Participants int             `json:"participants"`
	PromoCode    string          `json:"promoCode"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Message      string          `json:"message"`
}

type CreateBookingResult struct {
	BookingID        uuid.UUID         `json:"bookingId"`
	BookingNumber    string            `json:"bookingNumber"`
	QuoteNumber      string            `json:"quoteNumber"`
	Quote            *model.Quote      `json:"quote"`
	ClientID         uuid.UUID         `json:"clientId"`
	IsNewClient      bool              `json:"isNewClient"`
	Pricing          pricing.Breakdown `json:"pricing"`
	InvalidPromoCode bool              `json:"invalidPromoCode,omitempty"`
}

type ConfirmResult struct {
	Booking *model.Booking `json:"booking"`
	Invoice *model.Invoice `json:"invoice"`
}

type PaymentData struct {
	Amount    decimal.Decimal     `json:"amount"`
	Method    model.PaymentMethod `json:"method"`
	Date      *time.Time          `json:"date,omitempty"`
	Reference string              `json:"reference"`
	Notes     string              `json:"notes"`
}

type PaymentResult struct {
	Payment       model.Payment       `json:"payment"`
	TotalPaid     decimal.Decimal     `json:"totalPaid"`
	Remaining     decimal.Decimal     `json:"remaining"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
}

// bookingDraft: проверенная заявка до присвоения номера.
type bookingDraft struct {
	serviceID    string
	serviceName  string
	duration     int
	breakdown    pricing.Breakdown
	invalidPromo bool
	contact      model.Contact
	req          CreateBookingRequest
}

func (s *WorkflowService) now() time.Time {
	return s.cfg.Now().UTC()
}

func (s *WorkflowService) prepare(req CreateBookingRequest) (*bookingDraft, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, model.ValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return nil, model.ValidationError("email", "is malformed")
	}
	if req.Participants < pricing.MinParticipants || req.Participants > pricing.MaxParticipants {
		return nil, model.ValidationError("participants", fmt.Sprintf("must be between %d and %d", pricing.MinParticipants, pricing.MaxParticipants))
	}

	d := &bookingDraft{
		serviceID:   strings.TrimSpace(req.ServiceID),
		serviceName: strings.TrimSpace(req.ServiceName),
		duration:    req.Duration,
		req:         req,
	}
	unitPrice := req.UnitPrice

	if !s.cfg.Catalog.Empty() {
		item, ok := s.cfg.Catalog.Lookup(d.serviceID)
		if !ok {
			return nil, model.ValidationError("serviceId", "is unknown")
		}
		d.serviceID, d.serviceName, d.duration, unitPrice = item.ID, item.Name, item.Duration, item.Price
	}
	if d.serviceName == "" {
		return nil, model.ValidationError("serviceName", "is required")
	}

	if _, err := calendar.ParseSlot(req.Date, req.Time, d.duration, s.cfg.Location); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	b, err := pricing.Calculate(unitPrice, req.Participants, req.PromoCode)
	switch {
	case errors.Is(err, pricing.ErrInvalidPromoCode):
		d.invalidPromo = true
	case err != nil:
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	d.breakdown = b

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(req.FirstName) + " " + strings.TrimSpace(req.LastName))
	}
	d.contact = model.Contact{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Name:      name,
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
	}
	return d, nil
}

// CreateFullBooking оформляет заявку: номер, бронирование, профиль клиента
// и devis в одной транзакции; журнал и уведомления после фиксации.
func (s *WorkflowService) CreateFullBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResult, error) {
	d, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	bookingNumber, err := s.numbers.BookingNumber(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	quoteNumber := numbering.QuoteNumber(bookingNumber)

	now := s.now()
	created, quoteSent := now, now
	booking := &model.Booking{
		BookingNumber: bookingNumber,
		QuoteNumber:   quoteNumber,
		ServiceID:     d.serviceID,
		ServiceName:   d.serviceName,
		Date:          strings.TrimSpace(req.Date),
		Time:          strings.TrimSpace(req.Time),
		Duration:      d.duration,
		Participants:  req.Participants,
		Pricing: model.PricingSnapshot{
			UnitPrice:     d.breakdown.UnitPrice,
			Discount:      d.breakdown.GroupDiscount,
			PromoDiscount: d.breakdown.PromoDiscount,
			Total:         d.breakdown.Total,
			PromoCode:     d.breakdown.PromoCode,
		},
		Contact:       d.contact,
		Message:       strings.TrimSpace(req.Message),
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		Workflow:      model.Workflow{Created: &created, QuoteSent: &quoteSent},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var (
		profile ProfileResult
		quote   *model.Quote
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Bookings.Create(ctx, booking); err != nil {
			return err
		}

		var err error
		profile, err = upsertProfile(ctx, tx.Clients, ClientData{
			Email:     booking.Contact.Email,
			FirstName: booking.Contact.FirstName,
			LastName:  booking.Contact.LastName,
			Name:      booking.Contact.Name,
			Phone:     booking.Contact.Phone,
			Amount:    booking.Pricing.Total,
		}, now)
		if err != nil {
			return err
		}

		quote = s.buildQuote(booking, profile.ClientID, now)
		return tx.Quotes.Create(ctx, quote)
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_number", bookingNumber).Error("create booking failed")
		return nil, err
	}

	fields := logrus.Fields{"booking_id": booking.ID, "booking_number": bookingNumber}
	s.log.WithFields(fields).WithField("is_new_client", profile.IsNew).Info("booking created")

	bookingID := booking.ID
	_ = s.hooks.Run(ctx, fields, s.historyHook(&model.HistoryEntry{
		Type:          model.EventTypeBookingCreated,
		BookingID:     &bookingID,
		BookingNumber: bookingNumber,
		ClientEmail:   booking.Contact.Email,
		Description:   fmt.Sprintf("Nouvelle réservation créée: %s", booking.ServiceName),
		Timestamp:     now,
	}))
	// Внешние каналы медленные: ответ их не ждёт.
	if s.notifier != nil {
		s.hooks.Go(ctx, fields, Hook{
			Name: "notify",
			Run: func(ctx context.Context) error {
				return s.notifier.SendBookingNotifications(ctx, booking, quote)
			},
		})
	}

	return &CreateBookingResult{
		BookingID:        booking.ID,
		BookingNumber:    bookingNumber,
		QuoteNumber:      quoteNumber,
		Quote:            quote,
		ClientID:         profile.ClientID,
		IsNewClient:      profile.IsNew,
		Pricing:          d.breakdown,
		InvalidPromoCode: d.invalidPromo,
	}, nil
}

func (s *WorkflowService) buildQuote(b *model.Booking, clientID uuid.UUID, now time.Time) *model.Quote {
	return &model.Quote{
		Number:        b.QuoteNumber,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		ClientID:      clientID,
		IssuedAt:      now,
		ValidUntil:    now.AddDate(0, 0, s.cfg.QuoteValidityDays),
		Client:        documentClient(b),
		Service:       documentService(b),
		Pricing: model.QuotePricing{
			UnitPrice:     b.Pricing.UnitPrice,
			Quantity:      b.Participants,
			Subtotal:      subtotal(b),
			Discount:      b.Pricing.Discount,
			PromoDiscount: b.Pricing.PromoDiscount,
			Total:         b.Pricing.Total,
			VAT:           decimal.Zero,
		},
		Terms:     slices.Clone(model.DefaultQuoteTerms),
		Status:    model.QuoteStatusSent,
		CreatedAt: now,
	}
}

// ConfirmBooking подтверждает бронирование и выставляет facture.
func (s *WorkflowService) ConfirmBooking(ctx context.Context, bookingID string) (*ConfirmResult, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		booking *model.Booking
		invoice *model.Invoice
		reused  bool
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status != model.BookingStatusPending && b.Status != model.BookingStatusConfirmed {
			return transitionErr(b, "confirm")
		}
		// Facture, выставленная до подтверждения, переиспользуется.
		invoiced := b.InvoiceNumber != nil
		if invoiced && b.Status == model.BookingStatusConfirmed {
			return alreadyInvoicedErr(b)
		}

		err = tx.Bookings.Update(ctx, id, map[string]any{
			"status":             model.BookingStatusConfirmed,
			"workflow_confirmed": now,
			"updated_at":         now,
		})
		if err != nil {
			return err
		}
		confirmed := now
		b.Status = model.BookingStatusConfirmed
		b.Workflow.Confirmed = &confirmed
		b.UpdatedAt = now

		var inv *model.Invoice
		if invoiced {
			inv, err = tx.Invoices.GetByBookingID(ctx, id)
		} else {
			inv, err = s.issueInvoice(ctx, tx, b, now)
		}
		if err != nil {
			return err
		}

		q, err := tx.Quotes.GetByBookingID(ctx, id)
		switch {
		case err == nil:
			if err := tx.Quotes.UpdateStatus(ctx, q.ID, model.QuoteStatusAccepted); err != nil {
				return err
			}
		case !errors.Is(err, model.ErrNotFound):
			return err
		}

		booking, invoice, reused = b, inv, invoiced
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_id", bookingID).Error("confirm booking failed")
		return nil, err
	}

	fields := logrus.Fields{"booking_id": booking.ID, "booking_number": booking.BookingNumber, "invoice_id": invoice.ID}
	s.log.WithFields(fields).WithField("invoice_reused", reused).Info("booking confirmed")

	var hooks []Hook
	if !reused {
		hooks = append(hooks, s.historyHook(invoiceHistory(booking, invoice, now)))
	}
	hooks = append(hooks, s.historyHook(&model.HistoryEntry{
		Type:          model.EventTypeBookingConfirmed,
		BookingID:     &booking.ID,
		BookingNumber: booking.BookingNumber,
		InvoiceNumber: invoice.Number,
		ClientEmail:   booking.Contact.Email,
		Description:   fmt.Sprintf("Réservation confirmée: %s", booking.BookingNumber),
		Timestamp:     now,
	}))
	_ = s.hooks.Run(ctx, fields, hooks...)

	return &ConfirmResult{Booking: booking, Invoice: invoice}, nil
}

// GenerateInvoiceDocument выставляет facture без смены статуса бронирования.
func (s *WorkflowService) GenerateInvoiceDocument(ctx context.Context, bookingID string) (*model.Invoice, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		booking *model.Booking
		invoice *model.Invoice
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.Status == model.BookingStatusCancelled || b.Status == model.BookingStatusCompleted {
			return transitionErr(b, "invoice")
		}
		inv, err := s.issueInvoice(ctx, tx, b, now)
		if err != nil {
			return err
		}
		booking, invoice = b, inv
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("booking_id", bookingID).Error("generate invoice failed")
		return nil, err
	}

	fields := logrus.Fields{"booking_id": booking.ID, "invoice_id": invoice.ID, "invoice_number": invoice.Number}
	s.log.WithFields(fields).Info("invoice generated")
	_ = s.hooks.Run(ctx, fields, s.historyHook(invoiceHistory(booking, invoice, now)))

	return invoice, nil
}

// issueInvoice создаёт facture и проставляет её номер в бронирование.
// Бронированию полагается ровно один счёт.
func (s *WorkflowService) issueInvoice(
	ctx context.Context,
	tx *repository.Store,
	b *model.Booking,
	now time.Time,
) (*model.Invoice, error) {
	if b.InvoiceNumber != nil {
		return nil, alreadyInvoicedErr(b)
	}

	number := numbering.InvoiceNumber(b.BookingNumber)
	inv := &model.Invoice{
		Number:        number,
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		QuoteNumber:   b.QuoteNumber,
		IssuedAt:      now,
		DueDate:       now.AddDate(0, 0, s.cfg.InvoiceDueDays),
		Client:        documentClient(b),
		Service:       documentService(b),
		Pricing: model.InvoicePricing{
			UnitPrice:     b.Pricing.UnitPrice,
			Quantity:      b.Participants,
			Subtotal:      subtotal(b),
			Discount:      b.Pricing.Discount,
			PromoDiscount: b.Pricing.PromoDiscount,
			Total:         b.Pricing.Total,
			VAT:           decimal.Zero,
			Paid:          decimal.Zero,
			Remaining:     b.Pricing.Total,
		},
		Payments:      []model.Payment{},
		Status:        model.InvoiceStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}

	err := tx.Bookings.Update(ctx, b.ID, map[string]any{
		"invoice_number":        number,
		"workflow_invoice_sent": now,
		"updated_at":            now,
	})
	if err != nil {
		return nil, err
	}
	sent := now
	b.InvoiceNumber = &number
	b.Workflow.InvoiceSent = &sent
	b.UpdatedAt = now
	return inv, nil
}

func invoiceHistory(b *model.Booking, inv *model.Invoice, now time.Time) *model.HistoryEntry {
	bookingID, invoiceID := b.ID, inv.ID
	return &model.HistoryEntry{
		Type:          model.EventTypeInvoiceGenerated,
		BookingID:     &bookingID,
		BookingNumber: b.BookingNumber,
		InvoiceID:     &invoiceID,
		InvoiceNumber: inv.Number,
		ClientEmail:   b.Contact.Email,
		Description:   fmt.Sprintf("Facture générée: %s", inv.Number),
		Timestamp:     now,
	}
}

// RecordPayment добавляет платёж в facture и пересчитывает статус оплаты
// счёта и связанного бронирования.
func (s *WorkflowService) RecordPayment(ctx context.Context, invoiceID string, data PaymentData) (*PaymentResult, error) {
	id, err := parseID(invoiceID, "invoice")
	if err != nil {
		return nil, err
	}
	if !data.Amount.IsPositive() {
		return nil, model.ValidationError("amount", "must be positive")
	}
	if !data.Method.Valid() {
		return nil, model.ValidationError("method", "must be one of cash, card, transfer, check")
	}

	now := s.now()
	payment := model.Payment{
		ID:        "PAY-" + uuid.NewString(),
		Amount:    data.Amount,
		Method:    data.Method,
		Date:      now,
		Reference: strings.TrimSpace(data.Reference),
		Notes:     strings.TrimSpace(data.Notes),
	}
	if data.Date != nil && !data.Date.IsZero() {
		payment.Date = data.Date.UTC()
	}

	var (
		invoice *model.Invoice
		booking *model.Booking
		state   repository.PaymentState
	)
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		inv, err := tx.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}

		payments := append(slices.Clone([]model.Payment(inv.Payments)), payment)
		paid, remaining, status := model.Settle(inv.Pricing.Total, payments)
		state = repository.PaymentState{
			Payments:  payments,
			Paid:      paid,
			Remaining: remaining,
			Status:    status,
			UpdatedAt: now,
		}
		if err := tx.Invoices.SavePayments(ctx, id, state); err != nil {
			return err
		}

		b, err := tx.Bookings.GetByInvoiceNumber(ctx, inv.Number)
		switch {
		case errors.Is(err, model.ErrNotFound):
			// Счёт без бронирования: обновлять нечего.
		case err != nil:
			return err
		default:
			// Отметка paid пересчитывается при каждом платеже: время
			// последнего платежа, закрывшего счёт, либо nil.
			var paidAt any
			if status == model.PaymentStatusPaid {
				paidAt = now
			}
			err = tx.Bookings.Update(ctx, b.ID, map[string]any{
				"payment_status": status,
				"workflow_paid":  paidAt,
				"updated_at":     now,
			})
			if err != nil {
				return err
			}
			booking = b
		}

		invoice = inv
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("invoice_id", invoiceID).Error("record payment failed")
		return nil, err
	}

	fields := logrus.Fields{"invoice_id": invoice.ID, "invoice_number": invoice.Number, "payment_status": state.Status}
	s.log.WithFields(fields).Info("payment recorded")

	invID, amount := invoice.ID, data.Amount
	entry := &model.HistoryEntry{
		Type:          model.EventTypePaymentRecorded,
		InvoiceID:     &invID,
		InvoiceNumber: invoice.Number,
		BookingNumber: invoice.BookingNumber,
		ClientEmail:   invoice.Client.Email,
		Amount:        &amount,
		Method:        data.Method,
		Description:   fmt.Sprintf("Paiement enregistré: %s€ (%s)", data.Amount.StringFixed(2), data.Method),
		Timestamp:     now,
	}
	if booking != nil {
		entry.BookingID = &booking.ID
	}
	_ = s.hooks.Run(ctx, fields, s.historyHook(entry))

	return &PaymentResult{
		Payment:       payment,
		TotalPaid:     state.Paid,
		Remaining:     state.Remaining,
		PaymentStatus: state.Status,
	}, nil
}

// CancelBooking отменяет ещё не завершённое бронирование.
func (s *WorkflowService) CancelBooking(ctx context.Context, bookingID, reason string) (*model.Booking, error) {
	b, err := s.transition(ctx, bookingID, "cancel",
		func(b *model.Booking) bool {
			return b.Status == model.BookingStatusPending || b.Status == model.BookingStatusConfirmed
		},
		model.BookingStatusCancelled, "workflow_cancelled",
		func(b *model.Booking, at *time.Time) { b.Workflow.Cancelled = at },
	)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Réservation annulée: %s", b.BookingNumber)
	if r := strings.TrimSpace(reason); r != "" {
		desc += " (" + r + ")"
	}
	s.afterTransition(ctx, b, model.EventTypeBookingCancelled, desc)
	return b, nil
}

// CompleteBooking отмечает, что сеанс подтверждённого бронирования состоялся.
func (s *WorkflowService) CompleteBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.transition(ctx, bookingID, "complete",
		func(b *model.Booking) bool { return b.Status == model.BookingStatusConfirmed },
		model.BookingStatusCompleted, "workflow_completed",
		func(b *model.Booking, at *time.Time) { b.Workflow.Completed = at },
	)
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, b, model.EventTypeBookingCompleted, fmt.Sprintf("Prestation terminée: %s", b.BookingNumber))
	return b, nil
}

func (s *WorkflowService) transition(
	ctx context.Context,
	bookingID, action string,
	allowed func(*model.Booking) bool,
	to model.BookingStatus,
	column string,
	mark func(*model.Booking, *time.Time),
) (*model.Booking, error) {
	id, err := parseID(bookingID, "booking")
	if err != nil {
		return nil, err
	}

	now := s.now()
	var booking *model.Booking
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !allowed(b) {
			return transitionErr(b, action)
		}
		err = tx.Bookings.Update(ctx, id, map[string]any{
			"status":     to,
			column:       now,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		at := now
		b.Status = to
		b.UpdatedAt = now
		mark(b, &at)
		booking = b
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"booking_id": bookingID, "action": action}).Error("booking transition failed")
		return nil, err
	}
	return booking, nil
}

func (s *WorkflowService) afterTransition(ctx context.Context, b *model.Booking, typ model.EventType, desc string) {
	fields := logrus.Fields{"booking_id": b.ID, "booking_number": b.BookingNumber, "status": b.Status}
	s.log.WithFields(fields).Info("booking status changed")

	bookingID := b.ID
	_ = s.hooks.Run(ctx, fields, s.historyHook(&model.HistoryEntry{
		Type:          typ,
		BookingID:     &bookingID,
		BookingNumber: b.BookingNumber,
		InvoiceNumber: deref(b.InvoiceNumber),
		ClientEmail:   b.Contact.Email,
		Description:   desc,
		Timestamp:     b.UpdatedAt,
	}))
}

func (s *WorkflowService) historyHook(entry *model.HistoryEntry) Hook {
	return Hook{
		Name:   "history:" + string(entry.Type),
		Policy: s.cfg.HistoryRetry,
		Run: func(ctx context.Context) error {
			return s.store.History.Append(ctx, entry)
		},
	}
}

func documentClient(b *model.Booking) model.DocumentClient {
	return model.DocumentClient{
		Name:  b.Contact.Name,
		Email: b.Contact.Email,
		Phone: b.Contact.Phone,
	}
}

func documentService(b *model.Booking) model.DocumentService {
	return model.DocumentService{
		Name:         b.ServiceName,
		Date:         b.Date,
		Time:         b.Time,
		Duration:     b.Duration,
		Participants: b.Participants,
	}
}

func subtotal(b *model.Booking) decimal.Decimal {
	return b.Pricing.UnitPrice.Mul(decimal.NewFromInt(int64(b.Participants)))
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %w", what, model.ErrNotFound)
	}
	return id, nil
}

func transitionErr(b *model.Booking, action string) error {
	return fmt.Errorf("%w: cannot %s booking %s in status %s", model.ErrInvalidTransition, action, b.BookingNumber, b.Status)
}

func alreadyInvoicedErr(b *model.Booking) error {
	return fmt.Errorf("%w: booking %s is already invoiced as %s", model.ErrInvalidTransition, b.BookingNumber, deref(b.InvoiceNumber))
}

func storeErr(err error) error {
	if errors.Is(err, model.ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStore, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
