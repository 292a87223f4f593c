package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/wellness-booking/internal/model"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuoteStatus) error
}

type GormQuoteRepository struct {
	db *gorm.DB
}

func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

func (r *GormQuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return mapErr(r.db.WithContext(ctx).Omit("Booking").Create(quote).Error)
}

func (r *GormQuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "quote")
	}
	return &q, nil
}

func (r *GormQuoteRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*model.Quote, error) {
	var q model.Quote
	if err := r.db.WithContext(ctx).First(&q, "booking_id = ?", bookingID).Error; err != nil {
		return nil, notFound(err, "quote")
	}
	return &q, nil
}

// UpdateStatus: единственное изменяемое поле devis.
func (r *GormQuoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuoteStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Quote{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "quote")
	}
	return nil
}
