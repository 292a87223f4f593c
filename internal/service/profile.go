package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/wellness-booking/internal/model"
	"github.com/Leganyst/wellness-booking/internal/repository"
)

// ClientData: данные клиента из заявки и сумма бронирования.
type ClientData struct {
	Email     string          `json:"email"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Amount    decimal.Decimal `json:"amount"`
}

type ProfileResult struct {
	ClientID uuid.UUID `json:"id"`
	IsNew    bool      `json:"isNew"`
}

// ProfileService ведёт профили клиентов: один профиль на email.
type ProfileService struct {
	clients repository.ClientRepository
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewProfileService(clients repository.ClientRepository, log logrus.FieldLogger, now func() time.Time) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{clients: clients, log: log, now: now}
}

// CreateOrUpdate создаёт профиль при первом бронировании или
// увеличивает счётчики существующего.
func (s *ProfileService) CreateOrUpdate(ctx context.Context, data ClientData) (ProfileResult, error) {
	res, err := upsertProfile(ctx, s.clients, data, s.now().UTC())
	if err != nil {
		s.log.WithError(err).WithField("email", data.Email).Error("client profile upsert failed")
		return ProfileResult{}, err
	}
	s.log.WithFields(logrus.Fields{
		"client_id": res.ClientID,
		"is_new":    res.IsNew,
	}).Info("client profile saved")
	return res, nil
}

// upsertProfile работает на переданном репозитории, чтобы его можно было
// вызвать внутри транзакции бронирования.
func upsertProfile(
	ctx context.Context,
	clients repository.ClientRepository,
	data ClientData,
	now time.Time,
) (ProfileResult, error) {
	email := strings.TrimSpace(data.Email)
	if email == "" {
		return ProfileResult{}, model.ValidationError("email", "is required")
	}
	if data.Amount.IsNegative() {
		return ProfileResult{}, model.ValidationError("amount", "must not be negative")
	}
	points := model.LoyaltyPointsFor(data.Amount)

	existing, err := clients.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := clients.ApplyBooking(ctx, existing.ID, data.Amount, points, now); err != nil {
			return ProfileResult{}, err
		}
		return ProfileResult{ClientID: existing.ID, IsNew: false}, nil
	case !errors.Is(err, model.ErrNotFound):
		return ProfileResult{}, err
	}

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = strings.TrimSpace(data.FirstName + " " + data.LastName)
	}

	c := &model.ClientProfile{
		Email:            email,
		FirstName:        strings.TrimSpace(data.FirstName),
		LastName:         strings.TrimSpace(data.LastName),
		Name:             name,
		Phone:            strings.TrimSpace(data.Phone),
		TotalBookings:    1,
		TotalSpent:       data.Amount,
		LoyaltyPoints:    points,
		FirstBookingDate: now,
		LastBookingDate:  now,
		Status:           model.ClientStatusActive,
		Tags:             []string{model.TagNewClient},
		Notes:            []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := clients.Create(ctx, c); err != nil {
		return ProfileResult{}, err
	}
	return ProfileResult{ClientID: c.ID, IsNew: true}, nil
}
