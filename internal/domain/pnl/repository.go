package pnl

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tpm/backend/internal/domain/shared"
)

// Summary is the cross-report dashboard rollup for a tenant. The monetary
// sums only cover reports that have reached GENERATED or a later status.
type Summary struct {
	TotalReports    int64
	CountsByStatus  map[ReportStatus]int64
	CountsByType    map[ReportType]int64
	TotalTradeSpend decimal.Decimal
	TotalNetProfit  decimal.Decimal
}

// ReportRepository persists report headers and their line items
type ReportRepository interface {
	// FindByIDForTenant loads a report header; shared.ErrNotFound when the
	// id is absent or belongs to another tenant.
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Report, error)

	// FindAllForTenant lists report headers matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Report, error)

	// CountForTenant counts report headers matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a report header with an optimistic version
	// check; shared.ErrConcurrencyConflict on a stale version.
	Save(ctx context.Context, report *Report) error

	// UpdateStatus persists only a status change on the header
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status ReportStatus) error

	// ReplaceGenerated atomically swaps in a generation result: it row-locks
	// the header, deletes every existing line item, inserts report.LineItems,
	// and updates the header totals and status in one transaction.
	ReplaceGenerated(ctx context.Context, report *Report) error

	// FindLineItems returns a report's line items ordered by sort order
	FindLineItems(ctx context.Context, tenantID, reportID uuid.UUID) ([]LineItem, error)

	// DeleteForTenant removes the header and all of its line items
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// Summarize computes the tenant dashboard rollup
	Summarize(ctx context.Context, tenantID uuid.UUID) (*Summary, error)
}
