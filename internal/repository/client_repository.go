package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Leganyst/wellness-booking/internal/model"
)

type ClientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ClientProfile, error)
	// Точное совпадение email.
	GetByEmail(ctx context.Context, email string) (*model.ClientProfile, error)
	Create(ctx context.Context, client *model.ClientProfile) error
	// ApplyBooking учитывает ещё одно бронирование: счётчики увеличиваются
	// выражениями SQL, поэтому параллельные обновления не теряются.
	ApplyBooking(ctx context.Context, id uuid.UUID, amount decimal.Decimal, points int64, at time.Time) error
}

type GormClientRepository struct {
	db *gorm.DB
}

func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

func (r *GormClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ClientProfile, error) {
	var c model.ClientProfile
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "client")
	}
	return &c, nil
}

func (r *GormClientRepository) GetByEmail(ctx context.Context, email string) (*model.ClientProfile, error) {
	var c model.ClientProfile
	if err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		return nil, notFound(err, "client")
	}
	return &c, nil
}

func (r *GormClientRepository) Create(ctx context.Context, client *model.ClientProfile) error {
	return mapErr(r.db.WithContext(ctx).Create(client).Error)
}

func (r *GormClientRepository) ApplyBooking(
	ctx context.Context,
	id uuid.UUID,
	amount decimal.Decimal,
	points int64,
	at time.Time,
) error {
	res := r.db.WithContext(ctx).
		Model(&model.ClientProfile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_bookings":    gorm.Expr("total_bookings + ?", 1),
			"total_spent":       gorm.Expr("total_spent + ?", amount),
			"loyalty_points":    gorm.Expr("loyalty_points + ?", points),
			"last_booking_date": at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "client")
	}
	return nil
}
