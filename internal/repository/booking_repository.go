package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// BookingFilter: условия выборки списка бронирований. Пустые поля не фильтруют.
type BookingFilter struct {
	Email    string
	Statuses []model.BookingStatus
}

type BookingRepository interface {
	// Создать новое бронирование.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Получить бронирование по номеру счёта FACT….
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*model.Booking, error)
	// Частичное обновление по именам колонок.
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// Список по фильтру, новые первыми. limit <= 0: без ограничения.
	List(ctx context.Context, filter BookingFilter, limit, offset int) ([]model.Booking, int64, error)
	// Сколько бронирований создано в [from, to).
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return mapErr(r.db.WithContext(ctx).Create(booking).Error)
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return &b, nil
}

func (r *GormBookingRepository) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "invoice_number = ?", invoiceNumber).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "booking")
	}
	return nil
}

func (r *GormBookingRepository) List(
	ctx context.Context,
	filter BookingFilter,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if filter.Email != "" {
		q = q.Where("contact_email = ?", filter.Email)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, mapErr(err)
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Count(&n).
		Error
	return n, mapErr(err)
}
