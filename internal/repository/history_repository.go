package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// Журнал только дописывается: обновления и удаления не предусмотрены.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.HistoryEntry) error
	// Записи клиента, новые первыми. limit <= 0: все.
	ListByEmail(ctx context.Context, email string, limit int) ([]model.HistoryEntry, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.HistoryEntry, error)
}

type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

func (r *GormHistoryRepository) Append(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.Seq == 0 {
		entry.Seq = nextSeq()
	}
	return mapErr(r.db.WithContext(ctx).Create(entry).Error)
}

var lastSeq atomic.Int64

// nextSeq: строго возрастающее в процессе значение, близкое к UnixNano.
func nextSeq() int64 {
	for {
		prev := lastSeq.Load()
		n := time.Now().UnixNano()
		if n <= prev {
			n = prev + 1
		}
		if lastSeq.CompareAndSwap(prev, n) {
			return n
		}
	}
}

func (r *GormHistoryRepository) ListByEmail(ctx context.Context, email string, limit int) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	q := r.db.WithContext(ctx).
		Where("client_email = ?", email).
		Order(byTimestamp(true)).
		Order(bySeq(true))
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, mapErr(err)
	}
	return entries, nil
}

func (r *GormHistoryRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order(byTimestamp(false)).
		Order(bySeq(false)).
		Find(&entries).
		Error
	if err != nil {
		return nil, mapErr(err)
	}
	return entries, nil
}

// timestamp: ключевое слово в postgres, колонку нужно квотировать.
func byTimestamp(desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: desc}
}

func bySeq(desc bool) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Name: "seq"}, Desc: desc}
}
