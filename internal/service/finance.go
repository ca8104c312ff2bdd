package service

import (
	"math"

	"backend/internal/model"

	"github.com/shopspring/decimal"
)

// NormalizeToPEN converts an amount in the given currency to PEN using
// the exchange rate. Amounts already in PEN pass through unchanged;
// nil stays nil.
func NormalizeToPEN(amount *decimal.Decimal, currency string, exchangeRate decimal.Decimal) *decimal.Decimal {
	if amount == nil {
		return nil
	}
	if currency == "" || currency == model.BaseCurrency {
		v := *amount
		return &v
	}
	v := amount.Mul(exchangeRate)
	return &v
}

// ComputeFinancials recomputes every derived financial metric of the
// transaction from its normalized fields and line items. Stored inputs
// (MRC/NRC PEN, children, term, cost of capital, commission rate) are
// the only source; nothing submitted for the derived fields survives.
func ComputeFinancials(txn *model.Transaction) {
	monthlyRevenue := txn.MRCPEN
	monthlyExpense := decimal.Zero
	for i := range txn.RecurringServices {
		if income := txn.RecurringServices[i].Income(); income != nil {
			monthlyRevenue = monthlyRevenue.Add(*income)
		}
		monthlyExpense = monthlyExpense.Add(txn.RecurringServices[i].Expense())
	}

	installationCost := decimal.Zero
	for i := range txn.FixedCosts {
		if total := txn.FixedCosts[i].Total(); total != nil {
			installationCost = installationCost.Add(*total)
		}
	}

	term := decimal.NewFromInt(int64(txn.ContractTermMonths))
	txn.TotalRevenue = monthlyRevenue.Mul(term).Add(txn.NRCPEN)
	txn.TotalExpense = monthlyExpense.Mul(term).Add(installationCost)
	txn.GrossMargin = txn.TotalRevenue.Sub(txn.TotalExpense)
	txn.InstallationCost = installationCost
	txn.Commission = txn.CommissionRate.Mul(txn.TotalRevenue)

	if txn.TotalRevenue.IsZero() {
		txn.GrossMarginRatio = decimal.Zero
		txn.InstallationCostRatio = decimal.Zero
	} else {
		txn.GrossMarginRatio = txn.GrossMargin.Div(txn.TotalRevenue)
		txn.InstallationCostRatio = installationCost.Div(txn.TotalRevenue)
	}

	flows := cashFlows(txn.NRCPEN.Sub(installationCost), monthlyRevenue.Sub(monthlyExpense), txn.ContractTermMonths)
	annualRate, _ := txn.AnnualCostOfCapital.Float64()
	monthlyRate := math.Pow(1+annualRate, 1.0/12.0) - 1

	npv := decimal.NewFromFloat(netPresentValue(flows, monthlyRate)).Round(4)
	txn.NPV = &npv

	txn.IRR = nil
	if irr, ok := internalRateOfReturn(flows); ok {
		annualized := decimal.NewFromFloat(math.Pow(1+irr, 12) - 1).Round(6)
		txn.IRR = &annualized
	}

	txn.PaybackMonths = paybackMonths(flows)
}

// cashFlows builds the monthly series: the initial flow at t=0, then
// the net recurring flow for each month of the contract.
func cashFlows(initial, monthlyNet decimal.Decimal, termMonths int) []float64 {
	flows := make([]float64, termMonths+1)
	flows[0], _ = initial.Float64()
	net, _ := monthlyNet.Float64()
	for t := 1; t <= termMonths; t++ {
		flows[t] = net
	}
	return flows
}

func netPresentValue(flows []float64, monthlyRate float64) float64 {
	npv := 0.0
	for t, flow := range flows {
		npv += flow / math.Pow(1+monthlyRate, float64(t))
	}
	return npv
}

// internalRateOfReturn finds the monthly rate where NPV crosses zero,
// by bisection. Returns false when the flows never change sign.
func internalRateOfReturn(flows []float64) (float64, bool) {
	hasPositive, hasNegative := false, false
	for _, flow := range flows {
		if flow > 0 {
			hasPositive = true
		}
		if flow < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0, false
	}

	lo, hi := -0.9999, 10.0
	fLo := netPresentValue(flows, lo)
	fHi := netPresentValue(flows, hi)
	if fLo*fHi > 0 {
		return 0, false
	}

	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		fMid := netPresentValue(flows, mid)
		if math.Abs(fMid) < 1e-9 {
			return mid, true
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo = mid
			fLo = fMid
		}
	}
	return (lo + hi) / 2, true
}

// paybackMonths is the first month where the cumulative undiscounted
// flow turns non-negative. Nil when the deal never pays back.
func paybackMonths(flows []float64) *int {
	cumulative := 0.0
	for t, flow := range flows {
		cumulative += flow
		if cumulative >= 0 {
			month := t
			return &month
		}
	}
	return nil
}
