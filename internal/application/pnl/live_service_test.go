package pnl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tpm/backend/internal/domain/pnl"
)

func TestLiveViewService_ByCustomer(t *testing.T) {
	tenantID := uuid.New()
	svc := NewLiveViewService(generationFactStores(), pnl.DefaultAssumptions())

	rows, err := svc.ByCustomer(context.Background(), tenantID, LiveViewFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Acme Retail", rows[0].DimensionName)
	assert.Equal(t, int64(12), rows[0].TransactionCount)
	assert.True(t, dec("430.00").Equal(rows[0].Metrics.NetProfit), "got %s", rows[0].Metrics.NetProfit)
	assert.True(t, dec("-100.00").Equal(rows[0].Metrics.BudgetVariance))
}

func TestLiveViewService_ByPromotion_SkipsCustomerOnlyStores(t *testing.T) {
	tenantID := uuid.New()
	facts := generationFactStores()
	claims := facts.Claims.(*fakeSumStore)
	deductions := facts.Deductions.(*fakeSumStore)
	budgets := facts.Budgets.(*fakeSumStore)

	svc := NewLiveViewService(facts, pnl.DefaultAssumptions())
	rows, err := svc.ByPromotion(context.Background(), tenantID, LiveViewFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Promotion views net accruals only.
	assert.True(t, dec("100.00").Equal(rows[0].Metrics.NetTradeCost))
	assert.True(t, rows[0].Metrics.BudgetAmount.IsZero())
	assert.Zero(t, claims.calls)
	assert.Zero(t, deductions.calls)
	assert.Zero(t, budgets.calls)
}

func TestLiveViewService_EmptyTenant(t *testing.T) {
	svc := NewLiveViewService(emptyFactStores(), pnl.DefaultAssumptions())
	rows, err := svc.ByCustomer(context.Background(), uuid.New(), LiveViewFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Live rows and persisted line items must come out of the same model: for
// identical facts they carry identical metrics.
func TestLiveViewService_MatchesGeneratedLineItems(t *testing.T) {
	tenantID := uuid.New()
	facts := generationFactStores()

	liveSvc := NewLiveViewService(facts, pnl.DefaultAssumptions())
	liveRows, err := liveSvc.ByCustomer(context.Background(), tenantID, LiveViewFilter{})
	require.NoError(t, err)

	report := newDraftReport(t, tenantID)
	repo := new(MockReportRepository)
	repo.On("FindByIDForTenant", mock.Anything, tenantID, report.GetID()).Return(report, nil)
	repo.On("UpdateStatus", mock.Anything, tenantID, report.GetID(), pnl.ReportStatusGenerating).Return(nil)
	repo.On("ReplaceGenerated", mock.Anything, report).Return(nil)

	genSvc := NewReportService(repo, facts, pnl.DefaultAssumptions(), nil)
	detail, err := genSvc.Generate(context.Background(), tenantID, report.GetID(), uuid.New())
	require.NoError(t, err)

	require.Len(t, liveRows, len(detail.LineItems))
	for i := range liveRows {
		assert.Equal(t, liveRows[i].DimensionID, detail.LineItems[i].DimensionID)
		assert.True(t, liveRows[i].Metrics.NetProfit.Equal(detail.LineItems[i].Metrics.NetProfit))
		assert.True(t, liveRows[i].Metrics.ROI.Equal(detail.LineItems[i].Metrics.ROI))
		assert.True(t, liveRows[i].Metrics.GrossSales.Equal(detail.LineItems[i].Metrics.GrossSales))
	}
}
