package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store собирает репозитории всех коллекций поверх одного *gorm.DB.
type Store struct {
	db *gorm.DB

	Bookings BookingRepository
	Clients  ClientRepository
	Quotes   QuoteRepository
	Invoices InvoiceRepository
	History  HistoryRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Bookings: NewGormBookingRepository(db),
		Clients:  NewGormClientRepository(db),
		Quotes:   NewGormQuoteRepository(db),
		Invoices: NewGormInvoiceRepository(db),
		History:  NewGormHistoryRepository(db),
	}
}

// Transaction выполняет fn в одной транзакции. Внутри fn пользоваться
// только переданным tx, иначе запрос уйдёт мимо транзакции.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return mapErr(err)
}

// Ping проверяет соединение с базой.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return mapErr(err)
	}
	return mapErr(sqlDB.PingContext(ctx))
}
