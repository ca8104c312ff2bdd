package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FixedCost is a one-time cost line item belonging to exactly one
// Transaction (installation work, hardware, one-off fees).
type FixedCost struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`

	Category    string `gorm:"type:varchar(128)" json:"category"`
	ServiceType string `gorm:"type:varchar(128)" json:"service_type"`
	Ticket      string `gorm:"type:varchar(128)" json:"ticket"`
	Location    string `gorm:"type:varchar(128)" json:"location"`

	Quantity         *decimal.Decimal `gorm:"type:decimal(18,4)" json:"quantity"`
	UnitCostOriginal *decimal.Decimal `gorm:"type:decimal(18,4)" json:"unit_cost_original"`
	UnitCostCurrency string           `gorm:"type:varchar(3);not null;default:'PEN'" json:"unit_cost_currency"`
	UnitCostPEN      *decimal.Decimal `gorm:"column:unit_cost_pen;type:decimal(18,4)" json:"unit_cost_pen"`
}

func (f *FixedCost) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Total is the normalized cost of the line: quantity x unit cost
// (PEN). Nil when either operand is missing.
func (f *FixedCost) Total() *decimal.Decimal {
	if f.Quantity == nil || f.UnitCostPEN == nil {
		return nil
	}
	total := f.Quantity.Mul(*f.UnitCostPEN)
	return &total
}
