package pnl

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DimensionKind is the grouping key family for aggregation
type DimensionKind string

const (
	DimensionCustomer  DimensionKind = "CUSTOMER"
	DimensionPromotion DimensionKind = "PROMOTION"
)

// String returns the string representation of DimensionKind
func (d DimensionKind) String() string {
	return string(d)
}

// DateWindow is an optional inclusive reporting window. Nil bounds are open.
type DateWindow struct {
	Start *time.Time
	End   *time.Time
}

// AggregateRow is one dimension value's trade-spend aggregate
type AggregateRow struct {
	DimensionID      uuid.UUID
	DimensionName    string
	TransactionCount int64
	TotalTradeSpend  decimal.Decimal
}

// TradeSpendStore aggregates trade-spend facts by dimension. Rows with a
// null dimension id are excluded; results are ordered by descending spend.
// When dimensionID is non-nil the aggregation is restricted to that single
// dimension value.
type TradeSpendStore interface {
	AggregateByDimension(ctx context.Context, tenantID uuid.UUID, dim DimensionKind, window DateWindow, dimensionID *uuid.UUID) ([]AggregateRow, error)
}

// FactSumStore sums one fact table's amounts per dimension id, batched over
// the full id set. Ids absent from the result map have no matching facts
// and contribute zero.
type FactSumStore interface {
	SumByDimension(ctx context.Context, tenantID uuid.UUID, dim DimensionKind, ids []uuid.UUID, window DateWindow) (map[uuid.UUID]decimal.Decimal, error)
}

// FactStores bundles the six independently owned fact repositories the
// engine reads from. The engine never writes to any of them.
type FactStores struct {
	TradeSpend  TradeSpendStore
	Accruals    FactSumStore
	Settlements FactSumStore
	Claims      FactSumStore
	Deductions  FactSumStore
	Budgets     FactSumStore
}
