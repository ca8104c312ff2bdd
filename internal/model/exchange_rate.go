package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExchangeRate stores reference currency->PEN rates with temporal
// validity. The active rate is used to normalize submissions that do
// not carry their own rate.
type ExchangeRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Currency      string          `gorm:"type:varchar(3);not null;index" json:"currency"` // e.g. USD
	Rate          decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"rate"`        // 1 unit of Currency in PEN
	EffectiveFrom time.Time       `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo   *time.Time      `gorm:"type:date;index" json:"effective_to"` // Nullable = currently active
	Description   string          `gorm:"type:text" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (e *ExchangeRate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
