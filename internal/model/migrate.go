package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех коллекций рабочего процесса.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Booking{},
		&ClientProfile{},
		&Quote{},
		&Invoice{},
		&HistoryEntry{},
	)
}
