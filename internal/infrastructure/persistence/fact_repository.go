package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tpm/backend/internal/domain/pnl"
)

// dimensionColumn maps a dimension kind to its fact-table foreign key
func dimensionColumn(dim pnl.DimensionKind) string {
	if dim == pnl.DimensionPromotion {
		return "promotion_id"
	}
	return "customer_id"
}

// GormTradeSpendStore implements pnl.TradeSpendStore using GORM
type GormTradeSpendStore struct {
	db *gorm.DB
}

// NewGormTradeSpendStore creates a new GormTradeSpendStore
func NewGormTradeSpendStore(db *gorm.DB) *GormTradeSpendStore {
	return &GormTradeSpendStore{db: db}
}

// AggregateByDimension sums trade spend per distinct dimension id within an
// optional date window, ordered by descending total. Rows with a null
// dimension id are excluded; the display name comes from a left join so a
// missing dimension record never drops the row.
func (s *GormTradeSpendStore) AggregateByDimension(ctx context.Context, tenantID uuid.UUID, dim pnl.DimensionKind, window pnl.DateWindow, dimensionID *uuid.UUID) ([]pnl.AggregateRow, error) {
	type aggregateResult struct {
		DimensionID      uuid.UUID
		DimensionName    string
		TransactionCount int64
		TotalTradeSpend  decimal.Decimal
	}

	col := dimensionColumn(dim)
	dimTable := "customers"
	if dim == pnl.DimensionPromotion {
		dimTable = "promotions"
	}

	query := s.db.WithContext(ctx).Table("trade_spends ts").
		Select(`
			ts.`+col+` as dimension_id,
			COALESCE(d.name, '') as dimension_name,
			COUNT(ts.id) as transaction_count,
			COALESCE(SUM(ts.amount), 0) as total_trade_spend
		`).
		Joins("LEFT JOIN "+dimTable+" d ON d.id = ts."+col).
		Where("ts.tenant_id = ?", tenantID).
		Where("ts." + col + " IS NOT NULL")

	if dimensionID != nil {
		query = query.Where("ts."+col+" = ?", *dimensionID)
	}
	if window.Start != nil {
		query = query.Where("ts.transaction_date >= ?", *window.Start)
	}
	if window.End != nil {
		query = query.Where("ts.transaction_date <= ?", *window.End)
	}

	var results []aggregateResult
	// Secondary sort keeps row order (and therefore line-item sortOrder)
	// stable when two dimensions tie on spend.
	if err := query.
		Group("ts." + col + ", d.name").
		Order("total_trade_spend DESC, dimension_id ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]pnl.AggregateRow, len(results))
	for i, res := range results {
		rows[i] = pnl.AggregateRow{
			DimensionID:      res.DimensionID,
			DimensionName:    res.DimensionName,
			TransactionCount: res.TransactionCount,
			TotalTradeSpend:  res.TotalTradeSpend,
		}
	}
	return rows, nil
}

// GormFactSumStore implements pnl.FactSumStore over a single fact table.
// Each fact table carries customer_id/promotion_id columns, an amount and
// its own effective-date column.
type GormFactSumStore struct {
	db         *gorm.DB
	table      string
	dateColumn string
}

// NewGormAccrualStore sums provisioned trade-spend liabilities
func NewGormAccrualStore(db *gorm.DB) *GormFactSumStore {
	return &GormFactSumStore{db: db, table: "accruals", dateColumn: "accrual_date"}
}

// NewGormSettlementStore sums paid/cleared amounts against accruals
func NewGormSettlementStore(db *gorm.DB) *GormFactSumStore {
	return &GormFactSumStore{db: db, table: "settlements", dateColumn: "settlement_date"}
}

// NewGormClaimStore sums customer reimbursement claims
func NewGormClaimStore(db *gorm.DB) *GormFactSumStore {
	return &GormFactSumStore{db: db, table: "claims", dateColumn: "claim_date"}
}

// NewGormDeductionStore sums amounts customers withheld from payment
func NewGormDeductionStore(db *gorm.DB) *GormFactSumStore {
	return &GormFactSumStore{db: db, table: "deductions", dateColumn: "deduction_date"}
}

// NewGormBudgetStore sums planned trade-spend budgets
func NewGormBudgetStore(db *gorm.DB) *GormFactSumStore {
	return &GormFactSumStore{db: db, table: "budgets", dateColumn: "period_start"}
}

// SumByDimension sums the table's amount for each of the given dimension ids
// in one set-based query. Ids with no matching rows are absent from the
// result map; callers treat absence as zero.
func (s *GormFactSumStore) SumByDimension(ctx context.Context, tenantID uuid.UUID, dim pnl.DimensionKind, ids []uuid.UUID, window pnl.DateWindow) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return sums, nil
	}

	type sumResult struct {
		DimensionID uuid.UUID
		Total       decimal.Decimal
	}

	col := dimensionColumn(dim)
	query := s.db.WithContext(ctx).Table(s.table).
		Select(col+" as dimension_id, COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ?", tenantID).
		Where(col+" IN ?", ids)

	if window.Start != nil {
		query = query.Where(s.dateColumn+" >= ?", *window.Start)
	}
	if window.End != nil {
		query = query.Where(s.dateColumn+" <= ?", *window.End)
	}

	var results []sumResult
	if err := query.Group(col).Scan(&results).Error; err != nil {
		return nil, err
	}

	for _, res := range results {
		sums[res.DimensionID] = res.Total
	}
	return sums, nil
}

// NewGormFactStores wires all six fact stores against one database handle
func NewGormFactStores(db *gorm.DB) pnl.FactStores {
	return pnl.FactStores{
		TradeSpend:  NewGormTradeSpendStore(db),
		Accruals:    NewGormAccrualStore(db),
		Settlements: NewGormSettlementStore(db),
		Claims:      NewGormClaimStore(db),
		Deductions:  NewGormDeductionStore(db),
		Budgets:     NewGormBudgetStore(db),
	}
}

var (
	_ pnl.TradeSpendStore = (*GormTradeSpendStore)(nil)
	_ pnl.FactSumStore    = (*GormFactSumStore)(nil)
)
