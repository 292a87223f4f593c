package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leganyst/wellness-booking/internal/model"
)

// mapErr переводит ошибки gorm/драйвера в таксономию model.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.ErrNotFound
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrStore),
		errors.Is(err, model.ErrInvalidTransition):
		return err
	default:
		return fmt.Errorf("%w: %w", model.ErrStore, err)
	}
}

// notFound уточняет, что именно не найдено.
func notFound(err error, what string) error {
	err = mapErr(err)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%s %w", what, model.ErrNotFound)
	}
	return err
}
