package pnl

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tpm/backend/internal/domain/pnl"
)

// pipelineRow pairs one aggregated dimension value with its unrounded
// derived metrics.
type pipelineRow struct {
	Row     pnl.AggregateRow
	Metrics pnl.Metrics
}

// computeRows runs the aggregate-enrich-derive pipeline once. Both the
// persisted generation path and the live views go through here so the two
// can never drift numerically.
//
// Enrichment is batched: one sum query per fact table over the full id set,
// joined in memory. The promotion dimension only enriches from accruals and
// settlements; claims, deductions and budget are customer-only.
func computeRows(ctx context.Context, facts pnl.FactStores, tenantID uuid.UUID, dim pnl.DimensionKind, window pnl.DateWindow, dimensionID *uuid.UUID, assumptions pnl.Assumptions) ([]pipelineRow, error) {
	rows, err := facts.TradeSpend.AggregateByDimension(ctx, tenantID, dim, window, dimensionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.DimensionID)
	}

	accrued, err := facts.Accruals.SumByDimension(ctx, tenantID, dim, ids, window)
	if err != nil {
		return nil, err
	}
	settled, err := facts.Settlements.SumByDimension(ctx, tenantID, dim, ids, window)
	if err != nil {
		return nil, err
	}

	var claimed, deducted, budgeted map[uuid.UUID]decimal.Decimal
	if dim == pnl.DimensionCustomer {
		if claimed, err = facts.Claims.SumByDimension(ctx, tenantID, dim, ids, window); err != nil {
			return nil, err
		}
		if deducted, err = facts.Deductions.SumByDimension(ctx, tenantID, dim, ids, window); err != nil {
			return nil, err
		}
		if budgeted, err = facts.Budgets.SumByDimension(ctx, tenantID, dim, ids, window); err != nil {
			return nil, err
		}
	}

	out := make([]pipelineRow, 0, len(rows))
	for _, row := range rows {
		totals := pnl.FactTotals{
			TradeSpend: row.TotalTradeSpend,
			Accrued:    accrued[row.DimensionID],
			Settled:    settled[row.DimensionID],
			Claimed:    claimed[row.DimensionID],
			Deducted:   deducted[row.DimensionID],
			Budgeted:   budgeted[row.DimensionID],
		}
		out = append(out, pipelineRow{
			Row:     row,
			Metrics: pnl.DeriveMetrics(dim, totals, assumptions),
		})
	}
	return out, nil
}
