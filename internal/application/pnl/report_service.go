package pnl

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tpm/backend/internal/domain/pnl"
	"github.com/tpm/backend/internal/domain/shared"
	"github.com/tpm/backend/internal/infrastructure/telemetry"
)

// GenerationLocker serializes generation runs per report id across
// processes. Acquire returns shared.ErrGenerationInFlight when the key is
// already held; the returned release function frees the lease.
type GenerationLocker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// ReportService handles P&L report business operations
type ReportService struct {
	reports         pnl.ReportRepository
	facts           pnl.FactStores
	assumptions     pnl.Assumptions
	locker          GenerationLocker
	defaultCurrency string
	logger          *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports pnl.ReportRepository, facts pnl.FactStores, assumptions pnl.Assumptions, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:     reports,
		facts:       facts,
		assumptions: assumptions,
		logger:      logger,
	}
}

// SetLocker installs the cross-process generation lease. Without one, the
// repository's transactional row lock is the only serialization.
func (s *ReportService) SetLocker(locker GenerationLocker) {
	s.locker = locker
}

// SetDefaultCurrency overrides the currency applied to reports created
// without one.
func (s *ReportService) SetDefaultCurrency(code string) {
	if code != "" {
		s.defaultCurrency = code
	}
}

// Create creates a new draft report
func (s *ReportService) Create(ctx context.Context, tenantID uuid.UUID, createdBy *uuid.UUID, req CreateReportRequest) (*ReportResponse, error) {
	report, err := pnl.NewReport(tenantID, req.Name, pnl.ReportType(req.ReportType), pnl.PeriodType(req.PeriodType))
	if err != nil {
		return nil, err
	}
	if err := report.DateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	report.Description = req.Description
	report.CustomerID = req.CustomerID
	report.PromotionID = req.PromotionID
	report.ProductID = req.ProductID
	report.Category = req.Category
	report.Channel = req.Channel
	report.Region = req.Region
	if req.Currency != "" {
		report.Currency = req.Currency
	} else if s.defaultCurrency != "" {
		report.Currency = s.defaultCurrency
	}
	if req.Extension != nil {
		report.ExtensionData = req.Extension
	}
	if createdBy != nil {
		report.SetCreatedBy(*createdBy)
	}

	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}

	response := ToReportResponse(report)
	return &response, nil
}

// GetByID retrieves a report header with its ordered line items
func (s *ReportService) GetByID(ctx context.Context, tenantID, reportID uuid.UUID) (*ReportDetailResponse, error) {
	report, err := s.reports.FindByIDForTenant(ctx, tenantID, reportID)
	if err != nil {
		return nil, err
	}
	items, err := s.reports.FindLineItems(ctx, tenantID, reportID)
	if err != nil {
		return nil, err
	}
	response := ToReportDetailResponse(report, items)
	return &response, nil
}

// List retrieves report headers with filtering and pagination
func (s *ReportService) List(ctx context.Context, tenantID uuid.UUID, filter ReportListFilter) ([]ReportResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.ReportType != nil {
		domainFilter.Filters["report_type"] = *filter.ReportType
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.PromotionID != nil {
		domainFilter.Filters["promotion_id"] = *filter.PromotionID
	}

	reports, err := s.reports.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.reports.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ReportResponse, 0, len(reports))
	for i := range reports {
		responses = append(responses, ToReportResponse(&reports[i]))
	}
	return responses, total, nil
}

// Update applies field updates, including manual status transitions
func (s *ReportService) Update(ctx context.Context, tenantID, reportID uuid.UUID, req UpdateReportRequest) (*ReportResponse, error) {
	report, err := s.reports.FindByIDForTenant(ctx, tenantID, reportID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := report.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.StartDate != nil || req.EndDate != nil {
		start := report.StartDate
		end := report.EndDate
		if req.StartDate != nil {
			start = req.StartDate
		}
		if req.EndDate != nil {
			end = req.EndDate
		}
		if err := report.DateRange(start, end); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil {
		report.CustomerID = req.CustomerID
	}
	if req.PromotionID != nil {
		report.PromotionID = req.PromotionID
	}
	if req.ProductID != nil {
		report.ProductID = req.ProductID
	}
	if req.Category != nil {
		report.Category = *req.Category
	}
	if req.Channel != nil {
		report.Channel = *req.Channel
	}
	if req.Region != nil {
		report.Region = *req.Region
	}
	if req.Currency != nil {
		report.Currency = *req.Currency
	}
	if req.Extension != nil {
		report.ExtensionData = req.Extension
	}
	if req.Status != nil {
		if err := report.TransitionTo(pnl.ReportStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}

	response := ToReportResponse(report)
	return &response, nil
}

// Delete removes a report header and all of its line items
func (s *ReportService) Delete(ctx context.Context, tenantID, reportID uuid.UUID) error {
	return s.reports.DeleteForTenant(ctx, tenantID, reportID)
}

// GetLineItems returns a report's line items ordered by sort order
func (s *ReportService) GetLineItems(ctx context.Context, tenantID, reportID uuid.UUID) ([]LineItemResponse, error) {
	if _, err := s.reports.FindByIDForTenant(ctx, tenantID, reportID); err != nil {
		return nil, err
	}
	items, err := s.reports.FindLineItems(ctx, tenantID, reportID)
	if err != nil {
		return nil, err
	}
	return ToLineItemResponses(items), nil
}

// GetSummary computes the cross-report dashboard rollup for a tenant
func (s *ReportService) GetSummary(ctx context.Context, tenantID uuid.UUID) (*SummaryResponse, error) {
	summary, err := s.reports.Summarize(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := ToSummaryResponse(summary)
	return &response, nil
}

// Generate runs the full aggregate-enrich-derive pipeline for a report and
// atomically replaces its line items. On any failure after the report has
// entered GENERATING, the status is forced back to DRAFT before returning.
func (s *ReportService) Generate(ctx context.Context, tenantID, reportID, requestedBy uuid.UUID) (*ReportDetailResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pnl_report", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrReportID, reportID.String()),
	)
	defer span.End()

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "pnl:generate:"+reportID.String())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				s.logger.Warn("failed to release generation lease",
					zap.String("report_id", reportID.String()),
					zap.Error(rerr))
			}
		}()
	}

	report, err := s.reports.FindByIDForTenant(ctx, tenantID, reportID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrReportType, report.ReportType.String())
	if err := report.BeginGeneration(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.reports.UpdateStatus(ctx, tenantID, reportID, pnl.ReportStatusGenerating); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	detail, err := s.runGeneration(ctx, report, requestedBy)
	if err != nil {
		s.logger.Error("report generation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("report_id", reportID.String()),
			zap.Error(err))
		report.FailGeneration()
		// Best effort: the report must not stay stuck in GENERATING.
		if uerr := s.reports.UpdateStatus(context.WithoutCancel(ctx), tenantID, reportID, pnl.ReportStatusDraft); uerr != nil {
			s.logger.Error("failed to reset report to draft after generation failure",
				zap.String("report_id", reportID.String()),
				zap.Error(uerr))
		}
		genErr := shared.NewDomainError(shared.ErrGenerationFailed.Code, "Report generation failed: "+err.Error())
		telemetry.RecordError(span, genErr)
		return nil, genErr
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrLineItemCount, len(detail.LineItems))
	telemetry.SetOK(span)
	return detail, nil
}

func (s *ReportService) runGeneration(ctx context.Context, report *pnl.Report, requestedBy uuid.UUID) (*ReportDetailResponse, error) {
	dim := report.ReportType.Dimension()
	window := pnl.DateWindow{Start: report.StartDate, End: report.EndDate}

	rows, err := computeRows(ctx, s.facts, report.TenantID, dim, window, report.DimensionFilter(), s.assumptions)
	if err != nil {
		return nil, err
	}

	items := make([]pnl.LineItem, 0, len(rows))
	var acc pnl.TotalsAccumulator
	for i, row := range rows {
		acc.Add(row.Metrics)
		item, err := pnl.NewLineItem(report.GetID(), report.TenantID, dim, row.Row, i+1, row.Metrics.Rounded())
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := report.CompleteGeneration(acc.Finalize(), items, requestedBy); err != nil {
		return nil, err
	}
	if err := s.reports.ReplaceGenerated(ctx, report); err != nil {
		return nil, err
	}
	telemetry.AddEvent(telemetry.SpanFromContext(ctx), "line_items_replaced",
		telemetry.SpanAttrReportID, report.GetID().String(),
		telemetry.SpanAttrLineItemCount, len(items))

	s.logger.Info("report generated",
		zap.String("tenant_id", report.TenantID.String()),
		zap.String("report_id", report.GetID().String()),
		zap.Int("line_items", len(items)))

	response := ToReportDetailResponse(report, report.LineItems)
	return &response, nil
}
