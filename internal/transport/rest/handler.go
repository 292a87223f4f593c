package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/service"
	"github.com/Leganyst/wellness-booking/internal/transport"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	workflow transport.Workflow
	queries  transport.Queries
	profiles transport.Profiles
	catalog  *service.Catalog
	health   Pinger
	log      logrus.FieldLogger
}

func NewHandler(workflow transport.Workflow, queries transport.Queries, profiles transport.Profiles, catalog *service.Catalog, health Pinger, log logrus.FieldLogger) *Handler {
	return &Handler{
		workflow: workflow,
		queries:  queries,
		profiles: profiles,
		catalog:  catalog,
		health:   health,
		log:      log,
	}
}

func bindErr(err error) error {
	return fmt.Errorf("%w: %w", model.ErrValidation, err)
}

type pricingRequest struct {
	Price        decimal.Decimal `json:"price"`
	ServiceID    string          `json:"serviceId"`
	Participants int             `json:"participants" binding:"required,min=1,max=10"`
	PromoCode    string          `json:"promoCode"`
}

// CalculatePrice: POST /api/v1/pricing
func (h *Handler) CalculatePrice(c *gin.Context) {
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindErr(err))
		return
	}

	res, err := service.CalculatePrice(h.catalog, service.PriceRequest{
		ServiceID:    req.ServiceID,
		Price:        req.Price,
		Participants: req.Participants,
		PromoCode:    req.PromoCode,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// ListServices: GET /api/v1/services
func (h *Handler) ListServices(c *gin.Context) {
	items := h.catalog.Items()
	if items == nil {
		items = []service.CatalogItem{}
	}
	ok(c, http.StatusOK, gin.H{"services": items})
}

// CreateBooking: POST /api/v1/bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindErr(err))
		return
	}

	res, err := h.workflow.CreateFullBooking(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

// ListBookings: GET /api/v1/bookings[?page=&page_size=]
func (h *Handler) ListBookings(c *gin.Context) {
	if c.Query("page") == "" && c.Query("page_size") == "" {
		bookings, err := h.queries.GetAllBookings(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"bookings": bookings})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	p, err := h.queries.ListBookings(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"bookings": p.Items,
		"page":     p.Page,
		"pageSize": p.PageSize,
		"hasNext":  p.HasNext,
		"hasPrev":  p.HasPrev,
		"total":    p.Total,
	})
}

// BookedDates: GET /api/v1/bookings/booked-dates
func (h *Handler) BookedDates(c *gin.Context) {
	slots, err := h.queries.GetBookedDates(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"bookedDates": slots})
}

// GetBooking: GET /api/v1/bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.queries.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"booking": b})
}

// BookingHistory: GET /api/v1/bookings/:id/history
func (h *Handler) BookingHistory(c *gin.Context) {
	entries, err := h.queries.GetBookingHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"history": entries})
}

// ConfirmBooking: POST /api/v1/bookings/:id/confirm
func (h *Handler) ConfirmBooking(c *gin.Context) {
	res, err := h.workflow.ConfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// GenerateInvoice: POST /api/v1/bookings/:id/invoice
func (h *Handler) GenerateInvoice(c *gin.Context) {
	inv, err := h.workflow.GenerateInvoiceDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"invoice": inv})
}

type cancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CancelBooking: POST /api/v1/bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, bindErr(err))
			return
		}
	}

	b, err := h.workflow.CancelBooking(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"booking": b})
}

// CompleteBooking: POST /api/v1/bookings/:id/complete
func (h *Handler) CompleteBooking(c *gin.Context) {
	b, err := h.workflow.CompleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"booking": b})
}

type paymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,oneof=cash card transfer check"`
	Date      *time.Time      `json:"date"`
	Reference string          `json:"reference" binding:"max=255"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// RecordPayment: POST /api/v1/invoices/:id/payments
func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindErr(err))
		return
	}

	res, err := h.workflow.RecordPayment(c.Request.Context(), c.Param("id"), service.PaymentData{
		Amount:    req.Amount,
		Method:    model.PaymentMethod(req.Method),
		Date:      req.Date,
		Reference: req.Reference,
		Notes:     req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, res)
}

// GetInvoice: GET /api/v1/invoices/:id
func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.queries.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"invoice": inv})
}

// UpsertClient: POST /api/v1/clients
func (h *Handler) UpsertClient(c *gin.Context) {
	var req service.ClientData
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindErr(err))
		return
	}

	res, err := h.profiles.CreateOrUpdate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, res)
}

// GetClient: GET /api/v1/clients/:email
func (h *Handler) GetClient(c *gin.Context) {
	p, err := h.queries.GetClientProfile(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"client": p})
}

// ClientBookings: GET /api/v1/clients/:email/bookings
func (h *Handler) ClientBookings(c *gin.Context) {
	bookings, err := h.queries.GetUserBookings(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"bookings": bookings})
}

// ClientHistory: GET /api/v1/clients/:email/history
func (h *Handler) ClientHistory(c *gin.Context) {
	entries, err := h.queries.GetClientHistory(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"history": entries})
}

// Health: GET /health
func (h *Handler) Health(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.log.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
