package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tpm/backend/internal/domain/pnl"
	"github.com/tpm/backend/internal/domain/shared"
)

// newMockPnLReportRepository creates a GormPnLReportRepository with a mocked SQL connection
func newMockPnLReportRepository(t *testing.T) (*GormPnLReportRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPnLReportRepository(gormDB), mock, mockDB
}

func reportHeaderRows(reportID, tenantID uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "report_type", "period_type", "currency", "status", "extension_data"}).
		AddRow(reportID, tenantID, 1, "Q1 Customer P&L", "CUSTOMER", "QUARTERLY", "ZAR", status, "{}")
}

func TestGormPnLReportRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing report", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		reportID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, reportID, 1).
			WillReturnRows(reportHeaderRows(reportID, tenantID, "DRAFT"))

		report, err := repo.FindByIDForTenant(context.Background(), tenantID, reportID)

		assert.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, reportID, report.ID)
		assert.Equal(t, tenantID, report.TenantID)
		assert.Equal(t, "Q1 Customer P&L", report.Name)
		assert.Equal(t, pnl.ReportStatusDraft, report.Status)
		assert.Equal(t, pnl.ReportTypeCustomer, report.ReportType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing report", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		reportID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, reportID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		report, err := repo.FindByIDForTenant(context.Background(), tenantID, reportID)

		assert.Error(t, err)
		assert.Nil(t, report)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_FindAllForTenant(t *testing.T) {
	t.Run("applies status filter and pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		reportID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, "GENERATED", 20).
			WillReturnRows(reportHeaderRows(reportID, tenantID, "GENERATED"))

		filter := shared.DefaultFilter()
		filter.Filters["status"] = "GENERATED"

		reports, err := repo.FindAllForTenant(context.Background(), tenantID, filter)

		assert.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, pnl.ReportStatusGenerated, reports[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unsafe sort fields", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		// Unknown sort field falls back to created_at.
		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, 20).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		filter := shared.DefaultFilter()
		filter.OrderBy = "name; DROP TABLE pnl_reports"

		_, err := repo.FindAllForTenant(context.Background(), tenantID, filter)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_CountForTenant(t *testing.T) {
	repo, mock, mockDB := newMockPnLReportRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "pnl_reports" WHERE tenant_id = \$1`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountForTenant(context.Background(), tenantID, shared.Filter{})

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPnLReportRepository_UpdateStatus(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		reportID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectExec(`UPDATE "pnl_reports" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), tenantID, reportID, pnl.ReportStatusGenerating)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no row matched", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "pnl_reports" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), uuid.New(), uuid.New(), pnl.ReportStatusDraft)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_Save(t *testing.T) {
	t.Run("updates existing report with version check", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		report, err := pnl.NewReport(tenantID, "Monthly view", pnl.ReportTypeCustomer, pnl.PeriodTypeMonthly)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "pnl_reports" WHERE id = \$1`).
			WithArgs(report.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE "pnl_reports" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.Save(context.Background(), report)

		assert.NoError(t, err)
		assert.Equal(t, 2, report.GetVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrConcurrencyConflict on stale version", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		report, err := pnl.NewReport(tenantID, "Monthly view", pnl.ReportTypeCustomer, pnl.PeriodTypeMonthly)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "pnl_reports" WHERE id = \$1`).
			WithArgs(report.ID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec(`UPDATE "pnl_reports" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.Save(context.Background(), report)

		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_ReplaceGenerated(t *testing.T) {
	newGeneratedReport := func(t *testing.T, tenantID uuid.UUID) *pnl.Report {
		t.Helper()
		report, err := pnl.NewReport(tenantID, "Q1 Customer P&L", pnl.ReportTypeCustomer, pnl.PeriodTypeQuarterly)
		require.NoError(t, err)
		require.NoError(t, report.BeginGeneration())

		metrics := pnl.Metrics{
			GrossSales:        decimal.RequireFromString("4000"),
			TradeSpend:        decimal.RequireFromString("1000"),
			NetSales:          decimal.RequireFromString("3000"),
			COGS:              decimal.RequireFromString("2400"),
			GrossProfit:       decimal.RequireFromString("600"),
			GrossMarginPct:    decimal.RequireFromString("15"),
			Accruals:          decimal.RequireFromString("100"),
			Settlements:       decimal.RequireFromString("80"),
			Claims:            decimal.RequireFromString("50"),
			Deductions:        decimal.RequireFromString("20"),
			NetTradeCost:      decimal.RequireFromString("170"),
			NetProfit:         decimal.RequireFromString("430"),
			NetMarginPct:      decimal.RequireFromString("10.75"),
			BudgetAmount:      decimal.RequireFromString("900"),
			BudgetVariance:    decimal.RequireFromString("-100"),
			BudgetVariancePct: decimal.RequireFromString("-11.11"),
			ROI:               decimal.RequireFromString("43"),
		}
		row := pnl.AggregateRow{DimensionID: uuid.New(), DimensionName: "Acme Retail", TransactionCount: 12, TotalTradeSpend: metrics.TradeSpend}
		item, err := pnl.NewLineItem(report.ID, tenantID, pnl.DimensionCustomer, row, 1, metrics)
		require.NoError(t, err)

		generatedBy := uuid.New()
		require.NoError(t, report.CompleteGeneration(metrics, []pnl.LineItem{*item}, generatedBy))
		return report
	}

	t.Run("locks header, replaces items and updates totals in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		report := newGeneratedReport(t, tenantID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, report.ID, 1).
			WillReturnRows(reportHeaderRows(report.ID, tenantID, "GENERATING"))
		mock.ExpectExec(`DELETE FROM "pnl_line_items" WHERE report_id = \$1`).
			WithArgs(report.ID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		// Every default-tagged metric column carries a non-zero value here, so
		// GORM issues a plain INSERT with the full column list and no RETURNING.
		item := report.LineItems[0]
		mock.ExpectExec(`INSERT INTO "pnl_line_items"`).
			WithArgs(
				item.ID, report.ID, tenantID, "CUSTOMER", "Acme Retail", 1,
				item.DimensionID, "Acme Retail",
				item.Metrics.GrossSales, item.Metrics.TradeSpend, item.Metrics.NetSales,
				item.Metrics.COGS, item.Metrics.GrossProfit, item.Metrics.GrossMarginPct,
				item.Metrics.Accruals, item.Metrics.Settlements, item.Metrics.Claims,
				item.Metrics.Deductions, item.Metrics.NetTradeCost, item.Metrics.NetProfit,
				item.Metrics.NetMarginPct, item.Metrics.BudgetAmount, item.Metrics.BudgetVariance,
				item.Metrics.BudgetVariancePct, item.Metrics.ROI,
				sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "pnl_reports" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ReplaceGenerated(context.Background(), report)

		assert.NoError(t, err)
		assert.Equal(t, 2, report.GetVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when header is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		report := newGeneratedReport(t, tenantID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .* FOR UPDATE`).
			WithArgs(tenantID, report.ID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		err := repo.ReplaceGenerated(context.Background(), report)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_FindLineItems(t *testing.T) {
	repo, mock, mockDB := newMockPnLReportRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	reportID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "report_id", "tenant_id", "line_type", "label", "sort_order", "dimension_id", "dimension_name", "trade_spend"}).
		AddRow(uuid.New(), reportID, tenantID, "CUSTOMER", "Acme Retail", 1, uuid.New(), "Acme Retail", decimal.RequireFromString("1000")).
		AddRow(uuid.New(), reportID, tenantID, "CUSTOMER", "Beta Stores", 2, uuid.New(), "Beta Stores", decimal.RequireFromString("400"))

	mock.ExpectQuery(`SELECT \* FROM "pnl_line_items" WHERE tenant_id = \$1 AND report_id = \$2 ORDER BY sort_order ASC`).
		WithArgs(tenantID, reportID).
		WillReturnRows(rows)

	items, err := repo.FindLineItems(context.Background(), tenantID, reportID)

	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].SortOrder)
	assert.Equal(t, "Acme Retail", items[0].Label)
	assert.Equal(t, 2, items[1].SortOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPnLReportRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes line items then header", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		reportID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, reportID, 1).
			WillReturnRows(reportHeaderRows(reportID, tenantID, "DRAFT"))
		mock.ExpectExec(`DELETE FROM "pnl_line_items" WHERE report_id = \$1`).
			WithArgs(reportID).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, reportID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteForTenant(context.Background(), tenantID, reportID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing report", func(t *testing.T) {
		repo, mock, mockDB := newMockPnLReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		reportID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "pnl_reports" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, reportID, 1).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectRollback()

		err := repo.DeleteForTenant(context.Background(), tenantID, reportID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPnLReportRepository_Summarize(t *testing.T) {
	repo, mock, mockDB := newMockPnLReportRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT status as key, COUNT\(\*\) as count FROM "pnl_reports" WHERE tenant_id = \$1 GROUP BY "status"`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("DRAFT", 2).
			AddRow("GENERATED", 3))
	mock.ExpectQuery(`SELECT report_type as key, COUNT\(\*\) as count FROM "pnl_reports" WHERE tenant_id = \$1 GROUP BY "report_type"`).
		WithArgs(tenantID).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("CUSTOMER", 4).
			AddRow("PROMOTION", 1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(trade_spend\), 0\) as total_trade_spend, COALESCE\(SUM\(net_profit\), 0\) as total_net_profit FROM "pnl_reports" WHERE tenant_id = \$1 AND status IN \(\$2,\$3,\$4,\$5\)`).
		WithArgs(tenantID, "GENERATED", "APPROVED", "PUBLISHED", "ARCHIVED").
		WillReturnRows(sqlmock.NewRows([]string{"total_trade_spend", "total_net_profit"}).
			AddRow(decimal.RequireFromString("1400"), decimal.RequireFromString("670")))

	summary, err := repo.Summarize(context.Background(), tenantID)

	assert.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, int64(5), summary.TotalReports)
	assert.Equal(t, int64(3), summary.CountsByStatus[pnl.ReportStatusGenerated])
	assert.Equal(t, int64(4), summary.CountsByType[pnl.ReportTypeCustomer])
	assert.True(t, decimal.RequireFromString("1400").Equal(summary.TotalTradeSpend))
	assert.True(t, decimal.RequireFromString("670").Equal(summary.TotalNetProfit))
	assert.NoError(t, mock.ExpectationsWereMet())
}
