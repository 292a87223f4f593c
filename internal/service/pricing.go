package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/pricing"
)

type PriceRequest struct {
	ServiceID    string          `json:"serviceId"`
	Price        decimal.Decimal `json:"price"`
	Participants int             `json:"participants"`
	PromoCode    string          `json:"promoCode"`
}

// PriceResult: детализация, округлённая до центов, и итог для отображения.
// Неизвестный промокод не ошибка: выставляется InvalidPromoCode.
type PriceResult struct {
	pricing.Breakdown
	Display          string `json:"display"`
	InvalidPromoCode bool   `json:"invalidPromoCode"`
	PromoError       string `json:"promoError,omitempty"`
}

// CalculatePrice считает стоимость для формы. При непустом каталоге
// цена берётся из каталога по serviceId.
func CalculatePrice(catalog *Catalog, req PriceRequest) (*PriceResult, error) {
	price := req.Price
	if !catalog.Empty() {
		item, ok := catalog.Lookup(req.ServiceID)
		if !ok {
			return nil, model.ValidationError("serviceId", "is unknown")
		}
		price = item.Price
	}

	b, err := pricing.Calculate(price, req.Participants, req.PromoCode)
	res := &PriceResult{Breakdown: b.Rounded(), Display: b.Display()}
	switch {
	case errors.Is(err, pricing.ErrInvalidPromoCode):
		res.InvalidPromoCode = true
		res.PromoError = err.Error()
	case err != nil:
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	return res, nil
}
