package pnl

import (
	"github.com/shopspring/decimal"
)

// Assumptions are the fixed business ratios the financial model applies.
// They are assumptions, not values derived from data; callers override them
// through configuration.
type Assumptions struct {
	// GrossSalesMultiplier is the assumed average sales-to-spend ratio.
	GrossSalesMultiplier decimal.Decimal
	// COGSRatio is the assumed cost of goods sold as a fraction of gross sales.
	COGSRatio decimal.Decimal
}

// DefaultAssumptions returns the standard model ratios (4x sales, 0.6 COGS)
func DefaultAssumptions() Assumptions {
	return Assumptions{
		GrossSalesMultiplier: decimal.NewFromInt(4),
		COGSRatio:            decimal.NewFromFloat(0.6),
	}
}

// FactTotals are the raw per-dimension sums fetched from the fact stores.
// A dimension with no matching facts in a side table carries zero for that
// component.
type FactTotals struct {
	TradeSpend decimal.Decimal
	Accrued    decimal.Decimal
	Settled    decimal.Decimal
	Claimed    decimal.Decimal
	Deducted   decimal.Decimal
	Budgeted   decimal.Decimal
}

// Metrics is the full derived metric set, used both per line item and as
// report header totals.
type Metrics struct {
	GrossSales        decimal.Decimal
	TradeSpend        decimal.Decimal
	NetSales          decimal.Decimal
	COGS              decimal.Decimal
	GrossProfit       decimal.Decimal
	GrossMarginPct    decimal.Decimal
	Accruals          decimal.Decimal
	Settlements       decimal.Decimal
	Claims            decimal.Decimal
	Deductions        decimal.Decimal
	NetTradeCost      decimal.Decimal
	NetProfit         decimal.Decimal
	NetMarginPct      decimal.Decimal
	BudgetAmount      decimal.Decimal
	BudgetVariance    decimal.Decimal
	BudgetVariancePct decimal.Decimal
	ROI               decimal.Decimal
}

// ZeroMetrics returns a metric set with every field at zero
func ZeroMetrics() Metrics {
	return Metrics{}
}

// DeriveMetrics maps one dimension's raw fact totals to the derived metric
// set. The result is unrounded; call Rounded before presenting or persisting.
//
// The cost model is asymmetric on purpose: the customer dimension nets
// accruals, claims and deductions against profit and joins budget; the
// promotion dimension nets accruals only and never joins budget, claims or
// deductions.
func DeriveMetrics(dim DimensionKind, f FactTotals, a Assumptions) Metrics {
	if dim == DimensionPromotion {
		f.Claimed = decimal.Zero
		f.Deducted = decimal.Zero
		f.Budgeted = decimal.Zero
	}

	grossSales := f.TradeSpend.Mul(a.GrossSalesMultiplier)
	netSales := grossSales.Sub(f.TradeSpend)
	cogs := grossSales.Mul(a.COGSRatio)
	grossProfit := netSales.Sub(cogs)

	netTradeCost := f.Accrued
	if dim == DimensionCustomer {
		netTradeCost = f.Accrued.Add(f.Claimed).Add(f.Deducted)
	}
	netProfit := grossProfit.Sub(netTradeCost)

	// No budget join on the promotion dimension: variance stays zero rather
	// than reading as an overspend of the full trade spend.
	budgetVariance := decimal.Zero
	if dim == DimensionCustomer {
		budgetVariance = f.Budgeted.Sub(f.TradeSpend)
	}

	return Metrics{
		GrossSales:        grossSales,
		TradeSpend:        f.TradeSpend,
		NetSales:          netSales,
		COGS:              cogs,
		GrossProfit:       grossProfit,
		GrossMarginPct:    ratioPct(grossProfit, grossSales),
		Accruals:          f.Accrued,
		Settlements:       f.Settled,
		Claims:            f.Claimed,
		Deductions:        f.Deducted,
		NetTradeCost:      netTradeCost,
		NetProfit:         netProfit,
		NetMarginPct:      ratioPct(netProfit, grossSales),
		BudgetAmount:      f.Budgeted,
		BudgetVariance:    budgetVariance,
		BudgetVariancePct: ratioPct(budgetVariance, f.Budgeted),
		ROI:               ratioPct(netProfit, f.TradeSpend),
	}
}

// Rounded returns a copy with every field rounded to 2 decimal places
// (round half away from zero).
func (m Metrics) Rounded() Metrics {
	return Metrics{
		GrossSales:        m.GrossSales.Round(2),
		TradeSpend:        m.TradeSpend.Round(2),
		NetSales:          m.NetSales.Round(2),
		COGS:              m.COGS.Round(2),
		GrossProfit:       m.GrossProfit.Round(2),
		GrossMarginPct:    m.GrossMarginPct.Round(2),
		Accruals:          m.Accruals.Round(2),
		Settlements:       m.Settlements.Round(2),
		Claims:            m.Claims.Round(2),
		Deductions:        m.Deductions.Round(2),
		NetTradeCost:      m.NetTradeCost.Round(2),
		NetProfit:         m.NetProfit.Round(2),
		NetMarginPct:      m.NetMarginPct.Round(2),
		BudgetAmount:      m.BudgetAmount.Round(2),
		BudgetVariance:    m.BudgetVariance.Round(2),
		BudgetVariancePct: m.BudgetVariancePct.Round(2),
		ROI:               m.ROI.Round(2),
	}
}

// TotalsAccumulator sums the additive metric fields across line items
// pre-rounding. Finalize recomputes the percentage fields from the grand
// totals and rounds once, so header percentages never drift from summed
// per-row percentages.
type TotalsAccumulator struct {
	sum Metrics
}

// Add accumulates one unrounded per-dimension metric set
func (t *TotalsAccumulator) Add(m Metrics) {
	t.sum.GrossSales = t.sum.GrossSales.Add(m.GrossSales)
	t.sum.TradeSpend = t.sum.TradeSpend.Add(m.TradeSpend)
	t.sum.NetSales = t.sum.NetSales.Add(m.NetSales)
	t.sum.COGS = t.sum.COGS.Add(m.COGS)
	t.sum.GrossProfit = t.sum.GrossProfit.Add(m.GrossProfit)
	t.sum.Accruals = t.sum.Accruals.Add(m.Accruals)
	t.sum.Settlements = t.sum.Settlements.Add(m.Settlements)
	t.sum.Claims = t.sum.Claims.Add(m.Claims)
	t.sum.Deductions = t.sum.Deductions.Add(m.Deductions)
	t.sum.NetTradeCost = t.sum.NetTradeCost.Add(m.NetTradeCost)
	t.sum.NetProfit = t.sum.NetProfit.Add(m.NetProfit)
	t.sum.BudgetAmount = t.sum.BudgetAmount.Add(m.BudgetAmount)
	t.sum.BudgetVariance = t.sum.BudgetVariance.Add(m.BudgetVariance)
}

// Finalize returns the rounded grand totals
func (t *TotalsAccumulator) Finalize() Metrics {
	out := t.sum
	out.GrossMarginPct = ratioPct(out.GrossProfit, out.GrossSales)
	out.NetMarginPct = ratioPct(out.NetProfit, out.GrossSales)
	out.BudgetVariancePct = ratioPct(out.BudgetVariance, out.BudgetAmount)
	out.ROI = ratioPct(out.NetProfit, out.TradeSpend)
	return out.Rounded()
}

// ratioPct returns numerator/denominator*100, or zero when the denominator
// is not positive.
func ratioPct(numerator, denominator decimal.Decimal) decimal.Decimal {
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return numerator.Div(denominator).Mul(decimal.NewFromInt(100))
}
