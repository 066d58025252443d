package pnl

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestReport(t *testing.T) *Report {
	report, err := NewReport(uuid.New(), "Q1 Customer P&L", ReportTypeCustomer, PeriodTypeQuarterly)
	require.NoError(t, err)
	return report
}

// ============================================
// ReportStatus Tests
// ============================================

func TestReportStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  ReportStatus
		isValid bool
	}{
		{ReportStatusDraft, true},
		{ReportStatusGenerating, true},
		{ReportStatusGenerated, true},
		{ReportStatusApproved, true},
		{ReportStatusPublished, true},
		{ReportStatusArchived, true},
		{ReportStatus("INVALID"), false},
		{ReportStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestReportStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     ReportStatus
		to       ReportStatus
		canTrans bool
	}{
		{ReportStatusGenerated, ReportStatusApproved, true},
		{ReportStatusGenerated, ReportStatusPublished, true},
		{ReportStatusGenerated, ReportStatusArchived, true},
		{ReportStatusApproved, ReportStatusPublished, true},
		{ReportStatusApproved, ReportStatusArchived, true},
		{ReportStatusPublished, ReportStatusArchived, true},
		{ReportStatusDraft, ReportStatusArchived, true},
		// GENERATING belongs to the engine.
		{ReportStatusDraft, ReportStatusGenerating, false},
		{ReportStatusGenerating, ReportStatusGenerated, false},
		// No moving backwards or skipping into approval from draft.
		{ReportStatusDraft, ReportStatusApproved, false},
		{ReportStatusDraft, ReportStatusPublished, false},
		{ReportStatusApproved, ReportStatusGenerated, false},
		{ReportStatusPublished, ReportStatusApproved, false},
		{ReportStatusArchived, ReportStatusDraft, false},
		{ReportStatusArchived, ReportStatusPublished, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// ReportType Tests
// ============================================

func TestReportType_Dimension(t *testing.T) {
	assert.Equal(t, DimensionPromotion, ReportTypePromotion.Dimension())
	for _, rt := range []ReportType{ReportTypeCustomer, ReportTypeProduct, ReportTypeChannel, ReportTypePeriod, ReportTypeConsolidated} {
		assert.Equal(t, DimensionCustomer, rt.Dimension(), "type %s", rt)
	}
}

// ============================================
// Report Aggregate Tests
// ============================================

func TestNewReport(t *testing.T) {
	t.Run("creates draft with defaults", func(t *testing.T) {
		tenantID := uuid.New()
		report, err := NewReport(tenantID, "Annual P&L", ReportTypeCustomer, PeriodTypeAnnually)
		require.NoError(t, err)

		assert.Equal(t, ReportStatusDraft, report.Status)
		assert.Equal(t, tenantID, report.TenantID)
		assert.Equal(t, DefaultCurrency, report.Currency)
		assert.Equal(t, 1, report.GetVersion())
		assert.NotEqual(t, uuid.Nil, report.GetID())
		assert.Nil(t, report.GeneratedAt)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewReport(uuid.New(), "", ReportTypeCustomer, PeriodTypeMonthly)
		assert.Error(t, err)
	})

	t.Run("rejects unknown report type", func(t *testing.T) {
		_, err := NewReport(uuid.New(), "P&L", ReportType("WEIRD"), PeriodTypeMonthly)
		assert.Error(t, err)
	})

	t.Run("defaults empty type and period", func(t *testing.T) {
		report, err := NewReport(uuid.New(), "P&L", "", "")
		require.NoError(t, err)
		assert.Equal(t, ReportTypeCustomer, report.ReportType)
		assert.Equal(t, PeriodTypeCustom, report.PeriodType)
	})
}

func TestReport_DateRange(t *testing.T) {
	report := createTestReport(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, report.DateRange(&start, &end))
	assert.Equal(t, &start, report.StartDate)

	err := report.DateRange(&end, &start)
	assert.Error(t, err)
}

func TestReport_GenerationLifecycle(t *testing.T) {
	t.Run("draft to generated", func(t *testing.T) {
		report := createTestReport(t)
		userID := uuid.New()

		require.NoError(t, report.BeginGeneration())
		assert.Equal(t, ReportStatusGenerating, report.Status)

		totals := DeriveMetrics(DimensionCustomer, FactTotals{TradeSpend: dec("1000")}, DefaultAssumptions()).Rounded()
		require.NoError(t, report.CompleteGeneration(totals, nil, userID))

		assert.Equal(t, ReportStatusGenerated, report.Status)
		assert.NotNil(t, report.GeneratedAt)
		assert.Equal(t, userID, *report.GeneratedBy)
		assert.True(t, dec("1000.00").Equal(report.Totals.TradeSpend))
	})

	t.Run("regeneration allowed from generated", func(t *testing.T) {
		report := createTestReport(t)
		require.NoError(t, report.BeginGeneration())
		require.NoError(t, report.CompleteGeneration(ZeroMetrics(), nil, uuid.New()))

		assert.NoError(t, report.BeginGeneration())
	})

	t.Run("concurrent generation rejected", func(t *testing.T) {
		report := createTestReport(t)
		require.NoError(t, report.BeginGeneration())
		assert.Error(t, report.BeginGeneration())
	})

	t.Run("regeneration rejected once frozen", func(t *testing.T) {
		for _, status := range []ReportStatus{ReportStatusApproved, ReportStatusPublished, ReportStatusArchived} {
			report := createTestReport(t)
			report.Status = status

			err := report.BeginGeneration()
			assert.Error(t, err, "from %s", status)
			assert.Equal(t, status, report.Status, "status unchanged after rejected run from %s", status)
		}
	})

	t.Run("failure forces draft from any status", func(t *testing.T) {
		for _, status := range []ReportStatus{ReportStatusDraft, ReportStatusGenerating, ReportStatusGenerated, ReportStatusApproved} {
			report := createTestReport(t)
			report.Status = status
			report.FailGeneration()
			assert.Equal(t, ReportStatusDraft, report.Status, "from %s", status)
		}
	})

	t.Run("complete requires generating", func(t *testing.T) {
		report := createTestReport(t)
		err := report.CompleteGeneration(ZeroMetrics(), nil, uuid.New())
		assert.Error(t, err)
	})
}

func TestReport_TransitionTo(t *testing.T) {
	report := createTestReport(t)
	require.NoError(t, report.BeginGeneration())
	require.NoError(t, report.CompleteGeneration(ZeroMetrics(), nil, uuid.New()))

	require.NoError(t, report.TransitionTo(ReportStatusApproved))
	require.NoError(t, report.TransitionTo(ReportStatusPublished))
	require.NoError(t, report.TransitionTo(ReportStatusArchived))

	err := report.TransitionTo(ReportStatusDraft)
	assert.Error(t, err)

	// Same-status update is a no-op, not an error.
	assert.NoError(t, report.TransitionTo(ReportStatusArchived))
}

func TestReport_DimensionFilter(t *testing.T) {
	customerID := uuid.New()
	promotionID := uuid.New()

	report := createTestReport(t)
	report.CustomerID = &customerID
	report.PromotionID = &promotionID
	assert.Equal(t, &customerID, report.DimensionFilter())

	promo, err := NewReport(uuid.New(), "Promo P&L", ReportTypePromotion, PeriodTypeMonthly)
	require.NoError(t, err)
	promo.CustomerID = &customerID
	promo.PromotionID = &promotionID
	assert.Equal(t, &promotionID, promo.DimensionFilter())
}

// ============================================
// LineItem Tests
// ============================================

func TestNewLineItem(t *testing.T) {
	reportID := uuid.New()
	tenantID := uuid.New()
	row := AggregateRow{
		DimensionID:      uuid.New(),
		DimensionName:    "Acme Retail",
		TransactionCount: 12,
		TotalTradeSpend:  dec("1000"),
	}
	metrics := DeriveMetrics(DimensionCustomer, FactTotals{TradeSpend: row.TotalTradeSpend}, DefaultAssumptions()).Rounded()

	t.Run("valid", func(t *testing.T) {
		item, err := NewLineItem(reportID, tenantID, DimensionCustomer, row, 1, metrics)
		require.NoError(t, err)
		assert.Equal(t, LineTypeCustomer, item.LineType)
		assert.Equal(t, "Acme Retail", item.Label)
		assert.Equal(t, 1, item.SortOrder)
		assert.True(t, dec("4000.00").Equal(item.Metrics.GrossSales))
	})

	t.Run("label falls back to dimension id", func(t *testing.T) {
		anon := row
		anon.DimensionName = ""
		item, err := NewLineItem(reportID, tenantID, DimensionCustomer, anon, 2, metrics)
		require.NoError(t, err)
		assert.Equal(t, anon.DimensionID.String(), item.Label)
	})

	t.Run("rejects zero sort order", func(t *testing.T) {
		_, err := NewLineItem(reportID, tenantID, DimensionCustomer, row, 0, metrics)
		assert.Error(t, err)
	})

	t.Run("rejects nil dimension", func(t *testing.T) {
		_, err := NewLineItem(reportID, tenantID, DimensionCustomer, AggregateRow{}, 1, metrics)
		assert.Error(t, err)
	})
}
