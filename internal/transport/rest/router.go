// Package rest: HTTP API рабочего процесса на gin. Каждый ответ :
// конверт {success, ...}, паника тоже превращается в success:false.
package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, opts RouterOptions, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery(log))
	router.Use(CORS(opts.AllowedOrigins))
	router.Use(Logger(log))
	router.Use(Timeout(opts.RequestTimeout))

	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/pricing", h.CalculatePrice)
		api.GET("/services", h.ListServices)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/booked-dates", h.BookedDates)
			bookings.GET("/:id", h.GetBooking)
			bookings.GET("/:id/history", h.BookingHistory)
			bookings.POST("/:id/confirm", h.ConfirmBooking)
			bookings.POST("/:id/invoice", h.GenerateInvoice)
			bookings.POST("/:id/cancel", h.CancelBooking)
			bookings.POST("/:id/complete", h.CompleteBooking)
		}

		invoices := api.Group("/invoices")
		{
			invoices.GET("/:id", h.GetInvoice)
			invoices.POST("/:id/payments", h.RecordPayment)
		}

		clients := api.Group("/clients")
		{
			clients.POST("", h.UpsertClient)
			clients.GET("/:email", h.GetClient)
			clients.GET("/:email/bookings", h.ClientBookings)
			clients.GET("/:email/history", h.ClientHistory)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"success": false, "error": "route not found"})
	})

	return router
}
