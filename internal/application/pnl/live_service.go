package pnl

import (
	"context"

	"github.com/google/uuid"

	"github.com/tpm/backend/internal/domain/pnl"
	"github.com/tpm/backend/internal/infrastructure/telemetry"
)

// LiveViewService serves ad hoc dashboard P&L views. It runs the same
// pipeline as report generation but never touches report storage.
type LiveViewService struct {
	facts       pnl.FactStores
	assumptions pnl.Assumptions
}

// NewLiveViewService creates a new LiveViewService
func NewLiveViewService(facts pnl.FactStores, assumptions pnl.Assumptions) *LiveViewService {
	return &LiveViewService{
		facts:       facts,
		assumptions: assumptions,
	}
}

// ByCustomer computes live P&L rows across all customers for the tenant
func (s *LiveViewService) ByCustomer(ctx context.Context, tenantID uuid.UUID, filter LiveViewFilter) ([]LiveRowResponse, error) {
	return s.compute(ctx, tenantID, pnl.DimensionCustomer, filter)
}

// ByPromotion computes live P&L rows across all promotions for the tenant
func (s *LiveViewService) ByPromotion(ctx context.Context, tenantID uuid.UUID, filter LiveViewFilter) ([]LiveRowResponse, error) {
	return s.compute(ctx, tenantID, pnl.DimensionPromotion, filter)
}

func (s *LiveViewService) compute(ctx context.Context, tenantID uuid.UUID, dim pnl.DimensionKind, filter LiveViewFilter) ([]LiveRowResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl_live", string(dim),
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	window := pnl.DateWindow{Start: filter.StartDate, End: filter.EndDate}
	rows, err := computeRows(ctx, s.facts, tenantID, dim, window, nil, s.assumptions)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out := make([]LiveRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, LiveRowResponse{
			DimensionID:      row.Row.DimensionID,
			DimensionName:    row.Row.DimensionName,
			TransactionCount: row.Row.TransactionCount,
			Metrics:          ToMetricsResponse(row.Metrics.Rounded()),
		})
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrLineItemCount, len(out))
	telemetry.SetOK(span)
	return out, nil
}
