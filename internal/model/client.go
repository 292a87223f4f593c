package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ClientStatusActive = "active"
	TagNewClient       = "nouveau-client"
)

// clients: один профиль на уникальный email.
type ClientProfile struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Email     string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName string `gorm:"type:varchar(255)" json:"firstName,omitempty"`
	LastName  string `gorm:"type:varchar(255)" json:"lastName,omitempty"`
	Name      string `gorm:"type:varchar(255)" json:"name,omitempty"`
	Phone     string `gorm:"type:varchar(32)" json:"phone,omitempty"`

	// Агрегаты только растут.
	TotalBookings int             `gorm:"not null;default:0" json:"totalBookings"`
	TotalSpent    decimal.Decimal `gorm:"type:numeric;not null" json:"totalSpent"`
	LoyaltyPoints int64           `gorm:"not null;default:0" json:"loyaltyPoints"`

	FirstBookingDate time.Time `gorm:"not null" json:"firstBookingDate"`
	LastBookingDate  time.Time `gorm:"not null" json:"lastBookingDate"`

	Status string                     `gorm:"type:varchar(32);not null" json:"status"`
	Tags   datatypes.JSONSlice[string] `json:"tags"`
	Notes  datatypes.JSONSlice[string] `json:"notes"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (ClientProfile) TableName() string { return "clients" }

func (c *ClientProfile) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return c.Validate()
}

func (c *ClientProfile) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ValidationError("email", "is required")
	}
	if c.TotalBookings < 0 {
		return ValidationError("totalBookings", "must not be negative")
	}
	return nil
}

// LoyaltyPointsFor: floor(amount/10), отрицательные суммы баллов не дают.
func LoyaltyPointsFor(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	return amount.Div(decimal.NewFromInt(10)).Floor().IntPart()
}
