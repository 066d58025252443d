package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tpm/backend/internal/domain/pnl"
	"github.com/tpm/backend/internal/domain/shared"
	"github.com/tpm/backend/internal/infrastructure/persistence/models"
)

// PnLReportSortFields contains allowed sort fields for P&L reports
var PnLReportSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"status":       true,
	"report_type":  true,
	"generated_at": true,
	"trade_spend":  true,
	"net_profit":   true,
}

// GormPnLReportRepository implements pnl.ReportRepository using GORM
type GormPnLReportRepository struct {
	db *gorm.DB
}

// NewGormPnLReportRepository creates a new GormPnLReportRepository
func NewGormPnLReportRepository(db *gorm.DB) *GormPnLReportRepository {
	return &GormPnLReportRepository{db: db}
}

// FindByIDForTenant finds a report header by ID within a tenant
func (r *GormPnLReportRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*pnl.Report, error) {
	var model models.PnLReportModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds report headers for a tenant with filtering
func (r *GormPnLReportRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]pnl.Report, error) {
	var reportModels []models.PnLReportModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.PnLReportModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&reportModels).Error; err != nil {
		return nil, err
	}

	reports := make([]pnl.Report, len(reportModels))
	for i := range reportModels {
		reports[i] = *reportModels[i].ToDomain()
	}
	return reports, nil
}

// CountForTenant counts report headers for a tenant with optional filters
func (r *GormPnLReportRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PnLReportModel{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates a new report header or updates an existing one with an
// optimistic version check.
func (r *GormPnLReportRepository) Save(ctx context.Context, report *pnl.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PnLReportModel{}).
			Where("id = ?", report.GetID()).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			model := models.PnLReportModelFromDomain(report)
			return tx.Create(model).Error
		}

		currentVersion := report.GetVersion()
		report.IncrementVersion()
		report.UpdatedAt = time.Now()
		model := models.PnLReportModelFromDomain(report)

		result := tx.Model(&models.PnLReportModel{}).
			Where("tenant_id = ? AND id = ? AND version = ?", report.TenantID, report.GetID(), currentVersion).
			Updates(r.headerColumns(model))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// UpdateStatus persists only a status change on the header
func (r *GormPnLReportRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status pnl.ReportStatus) error {
	result := r.db.WithContext(ctx).Model(&models.PnLReportModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(map[string]interface{}{
			"status":     status.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceGenerated atomically swaps in a generation result. The header row
// is locked for the duration of the transaction so concurrent runs cannot
// interleave the delete and insert of line items.
func (r *GormPnLReportRepository) ReplaceGenerated(ctx context.Context, report *pnl.Report) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.PnLReportModel
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tenant_id = ? AND id = ?", report.TenantID, report.GetID()).
			First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("report_id = ?", report.GetID()).
			Delete(&models.PnLLineItemModel{}).Error; err != nil {
			return err
		}

		if len(report.LineItems) > 0 {
			itemModels := make([]models.PnLLineItemModel, len(report.LineItems))
			for i := range report.LineItems {
				itemModels[i].FromDomain(&report.LineItems[i])
			}
			if err := tx.Create(&itemModels).Error; err != nil {
				return err
			}
		}

		report.BaseAggregateRoot.Version = locked.Version + 1
		report.UpdatedAt = time.Now()
		model := models.PnLReportModelFromDomain(report)

		result := tx.Model(&models.PnLReportModel{}).
			Where("tenant_id = ? AND id = ? AND version = ?", report.TenantID, report.GetID(), locked.Version).
			Updates(r.headerColumns(model))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// headerColumns builds the update column map for a report header
func (r *GormPnLReportRepository) headerColumns(m *models.PnLReportModel) map[string]interface{} {
	return map[string]interface{}{
		"name":                m.Name,
		"description":         m.Description,
		"report_type":         m.ReportType,
		"period_type":         m.PeriodType,
		"start_date":          m.StartDate,
		"end_date":            m.EndDate,
		"customer_id":         m.CustomerID,
		"promotion_id":        m.PromotionID,
		"product_id":          m.ProductID,
		"category":            m.Category,
		"channel":             m.Channel,
		"region":              m.Region,
		"currency":            m.Currency,
		"status":              m.Status,
		"gross_sales":         m.GrossSales,
		"trade_spend":         m.TradeSpend,
		"net_sales":           m.NetSales,
		"cogs":                m.COGS,
		"gross_profit":        m.GrossProfit,
		"gross_margin_pct":    m.GrossMarginPct,
		"accruals":            m.Accruals,
		"settlements":         m.Settlements,
		"claims":              m.Claims,
		"deductions":          m.Deductions,
		"net_trade_cost":      m.NetTradeCost,
		"net_profit":          m.NetProfit,
		"net_margin_pct":      m.NetMarginPct,
		"budget_amount":       m.BudgetAmount,
		"budget_variance":     m.BudgetVariance,
		"budget_variance_pct": m.BudgetVariancePct,
		"roi":                 m.ROI,
		"generated_at":        m.GeneratedAt,
		"generated_by":        m.GeneratedBy,
		"extension_data":      m.ExtensionData,
		"version":             m.Version,
		"updated_at":          m.UpdatedAt,
	}
}

// FindLineItems returns a report's line items ordered by sort order
func (r *GormPnLReportRepository) FindLineItems(ctx context.Context, tenantID, reportID uuid.UUID) ([]pnl.LineItem, error) {
	var itemModels []models.PnLLineItemModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND report_id = ?", tenantID, reportID).
		Order("sort_order ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]pnl.LineItem, len(itemModels))
	for i := range itemModels {
		items[i] = *itemModels[i].ToDomain()
	}
	return items, nil
}

// DeleteForTenant removes the header and all of its line items
func (r *GormPnLReportRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.PnLReportModel
		if err := tx.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("report_id = ?", id).Delete(&models.PnLLineItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.PnLReportModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Summarize computes the tenant dashboard rollup
func (r *GormPnLReportRepository) Summarize(ctx context.Context, tenantID uuid.UUID) (*pnl.Summary, error) {
	type groupCount struct {
		Key   string
		Count int64
	}

	var statusCounts []groupCount
	if err := r.db.WithContext(ctx).
		Model(&models.PnLReportModel{}).
		Select("status as key, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	var typeCounts []groupCount
	if err := r.db.WithContext(ctx).
		Model(&models.PnLReportModel{}).
		Select("report_type as key, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("report_type").
		Scan(&typeCounts).Error; err != nil {
		return nil, err
	}

	summary := &pnl.Summary{
		CountsByStatus: make(map[pnl.ReportStatus]int64, len(statusCounts)),
		CountsByType:   make(map[pnl.ReportType]int64, len(typeCounts)),
	}
	for _, row := range statusCounts {
		summary.CountsByStatus[pnl.ReportStatus(row.Key)] = row.Count
		summary.TotalReports += row.Count
	}
	for _, row := range typeCounts {
		summary.CountsByType[pnl.ReportType(row.Key)] = row.Count
	}

	// Monetary rollups only cover reports whose totals are populated.
	generatedStatuses := []string{
		pnl.ReportStatusGenerated.String(),
		pnl.ReportStatusApproved.String(),
		pnl.ReportStatusPublished.String(),
		pnl.ReportStatusArchived.String(),
	}
	var sums struct {
		TotalTradeSpend decimal.Decimal
		TotalNetProfit  decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PnLReportModel{}).
		Select("COALESCE(SUM(trade_spend), 0) as total_trade_spend, COALESCE(SUM(net_profit), 0) as total_net_profit").
		Where("tenant_id = ? AND status IN ?", tenantID, generatedStatuses).
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	summary.TotalTradeSpend = sums.TotalTradeSpend
	summary.TotalNetProfit = sums.TotalNetProfit

	return summary, nil
}

// applyFilter applies filter options to the query
func (r *GormPnLReportRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	col := sortColumn(filter.OrderBy, PnLReportSortFields, "created_at")
	return query.Order(col + " " + sortOrder(filter.OrderDir))
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPnLReportRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "report_type":
			query = query.Where("report_type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "promotion_id":
			query = query.Where("promotion_id = ?", value)
		}
	}

	return query
}

// Ensure GormPnLReportRepository implements pnl.ReportRepository
var _ pnl.ReportRepository = (*GormPnLReportRepository)(nil)
