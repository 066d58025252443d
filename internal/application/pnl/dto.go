package pnl

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tpm/backend/internal/domain/pnl"
)

// ==================== Report DTOs ====================

// CreateReportRequest represents a request to create a P&L report
type CreateReportRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=200"`
	Description string                 `json:"description" binding:"max=2000"`
	ReportType  string                 `json:"report_type" binding:"omitempty,oneof=CUSTOMER PROMOTION PRODUCT CHANNEL PERIOD CONSOLIDATED"`
	PeriodType  string                 `json:"period_type" binding:"omitempty,oneof=WEEKLY MONTHLY QUARTERLY ANNUALLY CUSTOM"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
	CustomerID  *uuid.UUID             `json:"customer_id"`
	PromotionID *uuid.UUID             `json:"promotion_id"`
	ProductID   *uuid.UUID             `json:"product_id"`
	Category    string                 `json:"category" binding:"max=100"`
	Channel     string                 `json:"channel" binding:"max=100"`
	Region      string                 `json:"region" binding:"max=100"`
	Currency    string                 `json:"currency" binding:"omitempty,len=3"`
	Extension   map[string]interface{} `json:"extension_data"`
}

// UpdateReportRequest represents a request to update report fields. Nil
// pointers leave the field untouched.
type UpdateReportRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string                `json:"description" binding:"omitempty,max=2000"`
	StartDate   *time.Time             `json:"start_date"`
	EndDate     *time.Time             `json:"end_date"`
	CustomerID  *uuid.UUID             `json:"customer_id"`
	PromotionID *uuid.UUID             `json:"promotion_id"`
	ProductID   *uuid.UUID             `json:"product_id"`
	Category    *string                `json:"category" binding:"omitempty,max=100"`
	Channel     *string                `json:"channel" binding:"omitempty,max=100"`
	Region      *string                `json:"region" binding:"omitempty,max=100"`
	Currency    *string                `json:"currency" binding:"omitempty,len=3"`
	Status      *string                `json:"status" binding:"omitempty,oneof=DRAFT GENERATED APPROVED PUBLISHED ARCHIVED"`
	Extension   map[string]interface{} `json:"extension_data"`
}

// ReportListFilter represents filter options for the report list
type ReportListFilter struct {
	Search      string     `form:"search"`
	Status      *string    `form:"status"`
	ReportType  *string    `form:"report_type"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	PromotionID *uuid.UUID `form:"promotion_id"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LiveViewFilter represents the optional date window for live views
type LiveViewFilter struct {
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// MetricsResponse is the derived metric set in API responses
type MetricsResponse struct {
	GrossSales        decimal.Decimal `json:"gross_sales"`
	TradeSpend        decimal.Decimal `json:"trade_spend"`
	NetSales          decimal.Decimal `json:"net_sales"`
	COGS              decimal.Decimal `json:"cogs"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	GrossMarginPct    decimal.Decimal `json:"gross_margin_pct"`
	Accruals          decimal.Decimal `json:"accruals"`
	Settlements       decimal.Decimal `json:"settlements"`
	Claims            decimal.Decimal `json:"claims"`
	Deductions        decimal.Decimal `json:"deductions"`
	NetTradeCost      decimal.Decimal `json:"net_trade_cost"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	NetMarginPct      decimal.Decimal `json:"net_margin_pct"`
	BudgetAmount      decimal.Decimal `json:"budget_amount"`
	BudgetVariance    decimal.Decimal `json:"budget_variance"`
	BudgetVariancePct decimal.Decimal `json:"budget_variance_pct"`
	ROI               decimal.Decimal `json:"roi"`
}

// ReportResponse represents a report header in API responses
type ReportResponse struct {
	ID            uuid.UUID              `json:"id"`
	TenantID      uuid.UUID              `json:"tenant_id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	ReportType    string                 `json:"report_type"`
	PeriodType    string                 `json:"period_type"`
	StartDate     *time.Time             `json:"start_date,omitempty"`
	EndDate       *time.Time             `json:"end_date,omitempty"`
	CustomerID    *uuid.UUID             `json:"customer_id,omitempty"`
	PromotionID   *uuid.UUID             `json:"promotion_id,omitempty"`
	ProductID     *uuid.UUID             `json:"product_id,omitempty"`
	Category      string                 `json:"category,omitempty"`
	Channel       string                 `json:"channel,omitempty"`
	Region        string                 `json:"region,omitempty"`
	Currency      string                 `json:"currency"`
	Status        string                 `json:"status"`
	Totals        MetricsResponse        `json:"totals"`
	GeneratedAt   *time.Time             `json:"generated_at,omitempty"`
	GeneratedBy   *uuid.UUID             `json:"generated_by,omitempty"`
	ExtensionData map[string]interface{} `json:"extension_data,omitempty"`
	Version       int                    `json:"version"`
	CreatedBy     *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// ReportDetailResponse is a report header plus its ordered line items
type ReportDetailResponse struct {
	ReportResponse
	LineItems []LineItemResponse `json:"line_items"`
}

// LineItemResponse represents one line item in API responses
type LineItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ReportID      uuid.UUID       `json:"report_id"`
	LineType      string          `json:"line_type"`
	Label         string          `json:"label"`
	SortOrder     int             `json:"sort_order"`
	DimensionID   uuid.UUID       `json:"dimension_id"`
	DimensionName string          `json:"dimension_name"`
	Metrics       MetricsResponse `json:"metrics"`
}

// LiveRowResponse is one dimension value's live (non-persisted) P&L row
type LiveRowResponse struct {
	DimensionID      uuid.UUID       `json:"dimension_id"`
	DimensionName    string          `json:"dimension_name"`
	TransactionCount int64           `json:"transaction_count"`
	Metrics          MetricsResponse `json:"metrics"`
}

// SummaryResponse is the cross-report dashboard rollup
type SummaryResponse struct {
	TotalReports    int64            `json:"total_reports"`
	CountsByStatus  map[string]int64 `json:"counts_by_status"`
	CountsByType    map[string]int64 `json:"counts_by_type"`
	TotalTradeSpend decimal.Decimal  `json:"total_trade_spend"`
	TotalNetProfit  decimal.Decimal  `json:"total_net_profit"`
}

// ==================== Mappers ====================

// ToMetricsResponse maps a domain metric set to its response form
func ToMetricsResponse(m pnl.Metrics) MetricsResponse {
	return MetricsResponse{
		GrossSales:        m.GrossSales,
		TradeSpend:        m.TradeSpend,
		NetSales:          m.NetSales,
		COGS:              m.COGS,
		GrossProfit:       m.GrossProfit,
		GrossMarginPct:    m.GrossMarginPct,
		Accruals:          m.Accruals,
		Settlements:       m.Settlements,
		Claims:            m.Claims,
		Deductions:        m.Deductions,
		NetTradeCost:      m.NetTradeCost,
		NetProfit:         m.NetProfit,
		NetMarginPct:      m.NetMarginPct,
		BudgetAmount:      m.BudgetAmount,
		BudgetVariance:    m.BudgetVariance,
		BudgetVariancePct: m.BudgetVariancePct,
		ROI:               m.ROI,
	}
}

// ToReportResponse maps a report aggregate to its response form
func ToReportResponse(r *pnl.Report) ReportResponse {
	return ReportResponse{
		ID:            r.GetID(),
		TenantID:      r.TenantID,
		Name:          r.Name,
		Description:   r.Description,
		ReportType:    r.ReportType.String(),
		PeriodType:    r.PeriodType.String(),
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CustomerID:    r.CustomerID,
		PromotionID:   r.PromotionID,
		ProductID:     r.ProductID,
		Category:      r.Category,
		Channel:       r.Channel,
		Region:        r.Region,
		Currency:      r.Currency,
		Status:        r.Status.String(),
		Totals:        ToMetricsResponse(r.Totals),
		GeneratedAt:   r.GeneratedAt,
		GeneratedBy:   r.GeneratedBy,
		ExtensionData: r.ExtensionData,
		Version:       r.GetVersion(),
		CreatedBy:     r.GetCreatedBy(),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToLineItemResponse maps a line item to its response form
func ToLineItemResponse(item *pnl.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:            item.ID,
		ReportID:      item.ReportID,
		LineType:      item.LineType.String(),
		Label:         item.Label,
		SortOrder:     item.SortOrder,
		DimensionID:   item.DimensionID,
		DimensionName: item.DimensionName,
		Metrics:       ToMetricsResponse(item.Metrics),
	}
}

// ToLineItemResponses maps a slice of line items preserving order
func ToLineItemResponses(items []pnl.LineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for i := range items {
		out = append(out, ToLineItemResponse(&items[i]))
	}
	return out
}

// ToReportDetailResponse maps a report plus its line items
func ToReportDetailResponse(r *pnl.Report, items []pnl.LineItem) ReportDetailResponse {
	return ReportDetailResponse{
		ReportResponse: ToReportResponse(r),
		LineItems:      ToLineItemResponses(items),
	}
}

// ToSummaryResponse maps the domain summary rollup
func ToSummaryResponse(s *pnl.Summary) SummaryResponse {
	byStatus := make(map[string]int64, len(s.CountsByStatus))
	for k, v := range s.CountsByStatus {
		byStatus[k.String()] = v
	}
	byType := make(map[string]int64, len(s.CountsByType))
	for k, v := range s.CountsByType {
		byType[k.String()] = v
	}
	return SummaryResponse{
		TotalReports:    s.TotalReports,
		CountsByStatus:  byStatus,
		CountsByType:    byType,
		TotalTradeSpend: s.TotalTradeSpend,
		TotalNetProfit:  s.TotalNetProfit,
	}
}
