package service

import (
	"math"
	"testing"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNormalizeToPEN(t *testing.T) {
	rate := decimal.RequireFromString("3.8")

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, NormalizeToPEN(nil, "USD", rate))
	})

	t.Run("PEN passes through", func(t *testing.T) {
		got := NormalizeToPEN(decPtr("100"), model.BaseCurrency, rate)
		require.NotNil(t, got)
		assert.True(t, got.Equal(decimal.RequireFromString("100")))
	})

	t.Run("empty currency treated as PEN", func(t *testing.T) {
		got := NormalizeToPEN(decPtr("100"), "", rate)
		require.NotNil(t, got)
		assert.True(t, got.Equal(decimal.RequireFromString("100")))
	})

	t.Run("foreign currency multiplied by rate", func(t *testing.T) {
		got := NormalizeToPEN(decPtr("100"), "USD", rate)
		require.NotNil(t, got)
		assert.True(t, got.Equal(decimal.RequireFromString("380")), "got %s", got)
	})
}

func TestComputeFinancials(t *testing.T) {
	txn := &model.Transaction{
		MRCPEN:              decimal.RequireFromString("1000"),
		NRCPEN:              decimal.RequireFromString("500"),
		ContractTermMonths:  12,
		CommissionRate:      decimal.RequireFromString("0.1"),
		AnnualCostOfCapital: decimal.Zero,
		RecurringServices: []model.RecurringService{
			{
				Quantity:     decPtr("1"),
				PricePEN:     decPtr("200"),
				UnitCost1PEN: decPtr("100"),
			},
		},
		FixedCosts: []model.FixedCost{
			{Quantity: decPtr("2"), UnitCostPEN: decPtr("250")},
		},
	}

	ComputeFinancials(txn)

	// monthly revenue 1000 + 1*200 = 1200; monthly expense 100; installation 500
	assert.True(t, txn.TotalRevenue.Equal(decimal.RequireFromString("14900")), "total revenue %s", txn.TotalRevenue)
	assert.True(t, txn.TotalExpense.Equal(decimal.RequireFromString("1700")), "total expense %s", txn.TotalExpense)
	assert.True(t, txn.GrossMargin.Equal(decimal.RequireFromString("13200")), "gross margin %s", txn.GrossMargin)
	assert.True(t, txn.InstallationCost.Equal(decimal.RequireFromString("500")))
	assert.True(t, txn.Commission.Equal(decimal.RequireFromString("1490")), "commission %s", txn.Commission)

	marginRatio, _ := txn.GrossMarginRatio.Float64()
	assert.InDelta(t, 13200.0/14900.0, marginRatio, 1e-6)
	installRatio, _ := txn.InstallationCostRatio.Float64()
	assert.InDelta(t, 500.0/14900.0, installRatio, 1e-6)

	// Zero cost of capital: NPV is the plain sum of flows.
	// t0 = 500 - 500 = 0, then 12 x 1100.
	require.NotNil(t, txn.NPV)
	npv, _ := txn.NPV.Float64()
	assert.InDelta(t, 13200, npv, 1e-3)

	// The initial flow is already non-negative, so payback is month 0
	// and there is no sign change for an IRR.
	require.NotNil(t, txn.PaybackMonths)
	assert.Equal(t, 0, *txn.PaybackMonths)
	assert.Nil(t, txn.IRR)
}

func TestComputeFinancialsUpfrontInvestment(t *testing.T) {
	// NRC 0 with a 1000 installation: -1000 up front, +200/month.
	txn := &model.Transaction{
		ContractTermMonths:  12,
		AnnualCostOfCapital: decimal.RequireFromString("0.12"),
		RecurringServices: []model.RecurringService{
			{Quantity: decPtr("1"), PricePEN: decPtr("200")},
		},
		FixedCosts: []model.FixedCost{
			{Quantity: decPtr("1"), UnitCostPEN: decPtr("1000")},
		},
	}

	ComputeFinancials(txn)

	// Breaks even in month 5: -1000 + 5 x 200 = 0
	require.NotNil(t, txn.PaybackMonths)
	assert.Equal(t, 5, *txn.PaybackMonths)

	require.NotNil(t, txn.NPV)
	npv, _ := txn.NPV.Float64()
	assert.Greater(t, npv, 0.0)

	require.NotNil(t, txn.IRR)
	irr, _ := txn.IRR.Float64()
	assert.Greater(t, irr, 0.0)
}

func TestComputeFinancialsZeroRevenue(t *testing.T) {
	txn := &model.Transaction{ContractTermMonths: 6}

	ComputeFinancials(txn)

	assert.True(t, txn.TotalRevenue.IsZero())
	assert.True(t, txn.GrossMarginRatio.IsZero())
	assert.True(t, txn.InstallationCostRatio.IsZero())
	assert.Nil(t, txn.IRR)
}

func TestNetPresentValue(t *testing.T) {
	flows := []float64{-1000, 600, 600}

	assert.InDelta(t, 200, netPresentValue(flows, 0), 1e-9)

	// At 10% per period: -1000 + 600/1.1 + 600/1.21
	expected := -1000 + 600/1.1 + 600/1.21
	assert.InDelta(t, expected, netPresentValue(flows, 0.1), 1e-9)
}

func TestInternalRateOfReturn(t *testing.T) {
	t.Run("two equal repayments", func(t *testing.T) {
		// -1000 then 2 x 600: IRR satisfies 600/(1+r) + 600/(1+r)^2 = 1000
		irr, ok := internalRateOfReturn([]float64{-1000, 600, 600})
		require.True(t, ok)
		npv := netPresentValue([]float64{-1000, 600, 600}, irr)
		assert.InDelta(t, 0, npv, 1e-6)
		assert.InDelta(t, 0.1306, irr, 1e-3)
	})

	t.Run("no sign change", func(t *testing.T) {
		_, ok := internalRateOfReturn([]float64{100, 100, 100})
		assert.False(t, ok)

		_, ok = internalRateOfReturn([]float64{-100, -100})
		assert.False(t, ok)
	})
}

func TestPaybackMonths(t *testing.T) {
	tests := []struct {
		name     string
		flows    []float64
		expected *int
	}{
		{name: "recovers mid-term", flows: []float64{-500, 200, 200, 200}, expected: intPtr(3)},
		{name: "recovers immediately", flows: []float64{0, 100}, expected: intPtr(0)},
		{name: "never recovers", flows: []float64{-1000, 100, 100}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paybackMonths(tt.flows)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestCashFlows(t *testing.T) {
	flows := cashFlows(decimal.RequireFromString("-250"), decimal.RequireFromString("100"), 3)

	require.Len(t, flows, 4)
	assert.InDelta(t, -250, flows[0], 1e-9)
	for t_ := 1; t_ <= 3; t_++ {
		assert.InDelta(t, 100, flows[t_], 1e-9)
	}
	assert.False(t, math.IsNaN(flows[0]))
}

func intPtr(v int) *int { return &v }
