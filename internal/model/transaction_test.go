package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFixedCostTotal(t *testing.T) {
	tests := []struct {
		name     string
		cost     FixedCost
		expected string // empty = nil expected
	}{
		{
			name:     "quantity times unit cost",
			cost:     FixedCost{Quantity: dec("3"), UnitCostPEN: dec("150.50")},
			expected: "451.5",
		},
		{
			name:     "missing quantity",
			cost:     FixedCost{UnitCostPEN: dec("150.50")},
			expected: "",
		},
		{
			name:     "missing unit cost",
			cost:     FixedCost{Quantity: dec("3")},
			expected: "",
		},
		{
			name:     "zero quantity",
			cost:     FixedCost{Quantity: dec("0"), UnitCostPEN: dec("99")},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := tt.cost.Total()
			if tt.expected == "" {
				assert.Nil(t, total)
				return
			}
			require.NotNil(t, total)
			assert.True(t, total.Equal(decimal.RequireFromString(tt.expected)), "got %s", total)
		})
	}
}

func TestRecurringServiceIncome(t *testing.T) {
	tests := []struct {
		name     string
		svc      RecurringService
		expected string
	}{
		{
			name:     "quantity times price",
			svc:      RecurringService{Quantity: dec("2"), PricePEN: dec("500")},
			expected: "1000",
		},
		{
			name:     "missing price",
			svc:      RecurringService{Quantity: dec("2")},
			expected: "",
		},
		{
			name:     "missing quantity",
			svc:      RecurringService{PricePEN: dec("500")},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := tt.svc.Income()
			if tt.expected == "" {
				assert.Nil(t, income)
				return
			}
			require.NotNil(t, income)
			assert.True(t, income.Equal(decimal.RequireFromString(tt.expected)), "got %s", income)
		})
	}
}

func TestRecurringServiceExpense(t *testing.T) {
	tests := []struct {
		name     string
		svc      RecurringService
		expected string
	}{
		{
			name:     "both unit costs",
			svc:      RecurringService{Quantity: dec("2"), UnitCost1PEN: dec("100"), UnitCost2PEN: dec("50")},
			expected: "300",
		},
		{
			name:     "missing cu2 treated as zero",
			svc:      RecurringService{Quantity: dec("2"), UnitCost1PEN: dec("100")},
			expected: "200",
		},
		{
			name:     "no costs at all",
			svc:      RecurringService{Quantity: dec("2")},
			expected: "0",
		},
		{
			name:     "no quantity",
			svc:      RecurringService{UnitCost1PEN: dec("100"), UnitCost2PEN: dec("50")},
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := tt.svc.Expense()
			assert.True(t, expense.Equal(decimal.RequireFromString(tt.expected)), "got %s", expense)
		})
	}
}
