package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// PaymentState: пересчитанное состояние оплаты счёта.
type PaymentState struct {
	Payments  []model.Payment
	Paid      decimal.Decimal
	Remaining decimal.Decimal
	Status    model.PaymentStatus
	UpdatedAt time.Time
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Invoice, error)
	// Перезаписывает список платежей и итоги оплаты.
	SavePayments(ctx context.Context, id uuid.UUID, state PaymentState) error
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return mapErr(r.db.WithContext(ctx).Omit("Booking").Create(invoice).Error)
}

func (r *GormInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "booking_id = ?", bookingID).Error; err != nil {
		return nil, notFound(err, "invoice")
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) SavePayments(ctx context.Context, id uuid.UUID, state PaymentState) error {
	for _, p := range state.Payments {
		if !p.Method.Valid() {
			return model.ValidationError("payment method", "is unknown")
		}
	}

	res := r.db.WithContext(ctx).
		Model(&model.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payments":        datatypes.JSONSlice[model.Payment](state.Payments),
			"price_paid":      state.Paid,
			"price_remaining": state.Remaining,
			"payment_status":  state.Status,
			"updated_at":      state.UpdatedAt,
		})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "invoice")
	}
	return nil
}
