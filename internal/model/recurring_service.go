package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecurringService is a monthly revenue/cost line item belonging to
// exactly one Transaction. Price (P) drives income; the two unit-cost
// components (CU1, CU2) drive expense.
type RecurringService struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`

	ServiceType string `gorm:"type:varchar(128)" json:"service_type"`
	Note        string `gorm:"type:varchar(256)" json:"note"`
	Location    string `gorm:"type:varchar(128)" json:"location"`
	Provider    string `gorm:"type:varchar(128)" json:"provider"`

	Quantity *decimal.Decimal `gorm:"type:decimal(18,4)" json:"quantity"`

	PriceOriginal *decimal.Decimal `gorm:"type:decimal(18,4)" json:"price_original"`
	PriceCurrency string           `gorm:"type:varchar(3);not null;default:'PEN'" json:"price_currency"`
	PricePEN      *decimal.Decimal `gorm:"column:price_pen;type:decimal(18,4)" json:"price_pen"`

	// CU1 and CU2 share one currency
	UnitCost1Original *decimal.Decimal `gorm:"column:cu1_original;type:decimal(18,4)" json:"cu1_original"`
	UnitCost1PEN      *decimal.Decimal `gorm:"column:cu1_pen;type:decimal(18,4)" json:"cu1_pen"`
	UnitCost2Original *decimal.Decimal `gorm:"column:cu2_original;type:decimal(18,4)" json:"cu2_original"`
	UnitCost2PEN      *decimal.Decimal `gorm:"column:cu2_pen;type:decimal(18,4)" json:"cu2_pen"`
	UnitCostCurrency  string           `gorm:"column:cu_currency;type:varchar(3);not null;default:'PEN'" json:"cu_currency"`
}

func (r *RecurringService) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Income is the normalized monthly revenue of the line: Q x P (PEN).
// Nil when either operand is missing.
func (r *RecurringService) Income() *decimal.Decimal {
	if r.Quantity == nil || r.PricePEN == nil {
		return nil
	}
	income := r.Quantity.Mul(*r.PricePEN)
	return &income
}

// Expense is the normalized monthly cost of the line:
// (CU1 + CU2) x Q, with missing components treated as zero.
func (r *RecurringService) Expense() decimal.Decimal {
	cu1 := decimal.Zero
	if r.UnitCost1PEN != nil {
		cu1 = *r.UnitCost1PEN
	}
	cu2 := decimal.Zero
	if r.UnitCost2PEN != nil {
		cu2 = *r.UnitCost2PEN
	}
	q := decimal.Zero
	if r.Quantity != nil {
		q = *r.Quantity
	}
	return cu1.Add(cu2).Mul(q)
}
