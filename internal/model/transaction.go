package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovalStatus enum constants
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"

	// StatusLegacyDraft existed in old data sets and is folded back
	// into PENDING at startup.
	StatusLegacyDraft = "BORRADOR"
)

// BaseCurrency is the currency every monetary field is normalized to.
const BaseCurrency = "PEN"

// Transaction represents a submitted sales deal with its financial
// terms. It moves through PENDING -> APPROVED/REJECTED and owns the
// fixed-cost and recurring-service line items backing its numbers.
type Transaction struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessUnit string    `gorm:"type:varchar(128)" json:"business_unit"`
	ClientName   string    `gorm:"type:varchar(128)" json:"client_name"`
	CompanyID    string    `gorm:"type:varchar(128)" json:"company_id"`
	Salesman     string    `gorm:"type:varchar(128)" json:"salesman"`
	OrderID      string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"order_id"`

	// Exchange rate used to normalize foreign-currency amounts to PEN
	ExchangeRate decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1" json:"exchange_rate"`

	// Monthly recurring charge (original currency + PEN normalized)
	MRCOriginal *decimal.Decimal `gorm:"type:decimal(18,4)" json:"mrc_original"`
	MRCCurrency string           `gorm:"type:varchar(3);not null;default:'PEN'" json:"mrc_currency"`
	MRCPEN      decimal.Decimal  `gorm:"column:mrc_pen;type:decimal(18,4);not null;default:0" json:"mrc_pen"`

	// Non-recurring charge (original currency + PEN normalized)
	NRCOriginal *decimal.Decimal `gorm:"type:decimal(18,4)" json:"nrc_original"`
	NRCCurrency string           `gorm:"type:varchar(3);not null;default:'PEN'" json:"nrc_currency"`
	NRCPEN      decimal.Decimal  `gorm:"column:nrc_pen;type:decimal(18,4);not null;default:0" json:"nrc_pen"`

	// Financial metrics, recomputed server-side on submission
	TotalRevenue          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"total_revenue"`
	TotalExpense          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"total_expense"`
	GrossMargin           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"gross_margin"`
	GrossMarginRatio      decimal.Decimal  `gorm:"type:decimal(10,6);not null;default:0" json:"gross_margin_ratio"`
	Commission            decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"commission"`
	CommissionRate        decimal.Decimal  `gorm:"type:decimal(10,6);not null;default:0" json:"commission_rate"`
	InstallationCost      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0" json:"installation_cost"`
	InstallationCostRatio decimal.Decimal  `gorm:"type:decimal(10,6);not null;default:0" json:"installation_cost_ratio"`
	NPV                   *decimal.Decimal `gorm:"column:npv;type:decimal(18,4)" json:"npv"`
	IRR                   *decimal.Decimal `gorm:"column:irr;type:decimal(10,6)" json:"irr"`
	PaybackMonths         *int             `gorm:"type:int" json:"payback_months"`

	ContractTermMonths  int             `gorm:"type:int;not null;default:0" json:"contract_term_months"`
	AnnualCostOfCapital decimal.Decimal `gorm:"type:decimal(10,6);not null;default:0" json:"annual_cost_of_capital"`

	ApprovalStatus string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"approval_status"`
	SubmissionDate time.Time  `gorm:"not null;index" json:"submission_date"`
	ApprovalDate   *time.Time `json:"approval_date"`
	RejectionNote  string     `gorm:"type:text" json:"rejection_note"`
	ApprovedBy     *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver       *User      `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`

	FixedCosts        []FixedCost        `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"fixed_costs"`
	RecurringServices []RecurringService `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"recurring_services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the UUID client-side so the schema works the
// same across database engines.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
