package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tpm/backend/internal/domain/pnl"
)

// PnLReportModel is the persistence model for the P&L report aggregate root.
type PnLReportModel struct {
	TenantAggregateModel
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	ReportType  string     `gorm:"type:varchar(20);not null;default:'CUSTOMER';index"`
	PeriodType  string     `gorm:"type:varchar(20);not null;default:'CUSTOM'"`
	StartDate   *time.Time `gorm:"index"`
	EndDate     *time.Time `gorm:"index"`

	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
	PromotionID *uuid.UUID `gorm:"type:uuid;index"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Category    string     `gorm:"type:varchar(100)"`
	Channel     string     `gorm:"type:varchar(100)"`
	Region      string     `gorm:"type:varchar(100)"`

	Currency string `gorm:"type:varchar(3);not null;default:'ZAR'"`
	Status   string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	GrossSales        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TradeSpend        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetSales          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	COGS              decimal.Decimal `gorm:"column:cogs;type:decimal(18,2);not null;default:0"`
	GrossProfit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossMarginPct    decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	Accruals          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Settlements       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Claims            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Deductions        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetTradeCost      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetProfit         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetMarginPct      decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	BudgetAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BudgetVariance    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BudgetVariancePct decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	ROI               decimal.Decimal `gorm:"column:roi;type:decimal(9,2);not null;default:0"`

	GeneratedAt *time.Time `gorm:"index"`
	GeneratedBy *uuid.UUID `gorm:"type:uuid"`

	ExtensionData string `gorm:"type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (PnLReportModel) TableName() string {
	return "pnl_reports"
}

// ToDomain converts the persistence model to a domain Report aggregate.
func (m *PnLReportModel) ToDomain() *pnl.Report {
	report := &pnl.Report{
		TenantAggregateRoot: m.ToDomainRoot(),
		Name:                m.Name,
		Description:         m.Description,
		ReportType:          pnl.ReportType(m.ReportType),
		PeriodType:          pnl.PeriodType(m.PeriodType),
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		CustomerID:          m.CustomerID,
		PromotionID:         m.PromotionID,
		ProductID:           m.ProductID,
		Category:            m.Category,
		Channel:             m.Channel,
		Region:              m.Region,
		Currency:            m.Currency,
		Status:              pnl.ReportStatus(m.Status),
		Totals:              m.toDomainMetrics(),
		GeneratedAt:         m.GeneratedAt,
		GeneratedBy:         m.GeneratedBy,
	}
	if m.ExtensionData != "" {
		var ext map[string]interface{}
		if err := json.Unmarshal([]byte(m.ExtensionData), &ext); err == nil {
			report.ExtensionData = ext
		}
	}
	if report.ExtensionData == nil {
		report.ExtensionData = make(map[string]interface{})
	}
	return report
}

func (m *PnLReportModel) toDomainMetrics() pnl.Metrics {
	return pnl.Metrics{
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

// FromDomain populates the persistence model from a domain Report aggregate.
func (m *PnLReportModel) FromDomain(r *pnl.Report) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Description = r.Description
	m.ReportType = r.ReportType.String()
	m.PeriodType = r.PeriodType.String()
	m.StartDate = r.StartDate
	m.EndDate = r.EndDate
	m.CustomerID = r.CustomerID
	m.PromotionID = r.PromotionID
	m.ProductID = r.ProductID
	m.Category = r.Category
	m.Channel = r.Channel
	m.Region = r.Region
	m.Currency = r.Currency
	m.Status = r.Status.String()
	m.fromDomainMetrics(r.Totals)
	m.GeneratedAt = r.GeneratedAt
	m.GeneratedBy = r.GeneratedBy

	m.ExtensionData = "{}"
	if len(r.ExtensionData) > 0 {
		if raw, err := json.Marshal(r.ExtensionData); err == nil {
			m.ExtensionData = string(raw)
		}
	}
}

func (m *PnLReportModel) fromDomainMetrics(t pnl.Metrics) {
	m.GrossSales = t.GrossSales
	m.TradeSpend = t.TradeSpend
	m.NetSales = t.NetSales
	m.COGS = t.COGS
	m.GrossProfit = t.GrossProfit
	m.GrossMarginPct = t.GrossMarginPct
	m.Accruals = t.Accruals
	m.Settlements = t.Settlements
	m.Claims = t.Claims
	m.Deductions = t.Deductions
	m.NetTradeCost = t.NetTradeCost
	m.NetProfit = t.NetProfit
	m.NetMarginPct = t.NetMarginPct
	m.BudgetAmount = t.BudgetAmount
	m.BudgetVariance = t.BudgetVariance
	m.BudgetVariancePct = t.BudgetVariancePct
	m.ROI = t.ROI
}

// PnLReportModelFromDomain creates a new persistence model from a domain Report.
func PnLReportModelFromDomain(r *pnl.Report) *PnLReportModel {
	m := &PnLReportModel{}
	m.FromDomain(r)
	return m
}

// PnLLineItemModel is the persistence model for a report line item.
type PnLLineItemModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	ReportID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	LineType      string    `gorm:"type:varchar(20);not null"`
	Label         string    `gorm:"type:varchar(200);not null"`
	SortOrder     int       `gorm:"not null"`
	DimensionID   uuid.UUID `gorm:"type:uuid;not null;index"`
	DimensionName string    `gorm:"type:varchar(200)"`

	GrossSales        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TradeSpend        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetSales          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	COGS              decimal.Decimal `gorm:"column:cogs;type:decimal(18,2);not null;default:0"`
	GrossProfit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrossMarginPct    decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	Accruals          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Settlements       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Claims            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Deductions        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetTradeCost      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetProfit         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetMarginPct      decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	BudgetAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BudgetVariance    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BudgetVariancePct decimal.Decimal `gorm:"type:decimal(9,2);not null;default:0"`
	ROI               decimal.Decimal `gorm:"column:roi;type:decimal(9,2);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PnLLineItemModel) TableName() string {
	return "pnl_line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *PnLLineItemModel) ToDomain() *pnl.LineItem {
	return &pnl.LineItem{
		ID:            m.ID,
		ReportID:      m.ReportID,
		TenantID:      m.TenantID,
		LineType:      pnl.LineType(m.LineType),
		Label:         m.Label,
		SortOrder:     m.SortOrder,
		DimensionID:   m.DimensionID,
		DimensionName: m.DimensionName,
		Metrics: pnl.Metrics{
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
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *PnLLineItemModel) FromDomain(i *pnl.LineItem) {
	m.ID = i.ID
	m.ReportID = i.ReportID
	m.TenantID = i.TenantID
	m.LineType = i.LineType.String()
	m.Label = i.Label
	m.SortOrder = i.SortOrder
	m.DimensionID = i.DimensionID
	m.DimensionName = i.DimensionName
	m.GrossSales = i.Metrics.GrossSales
	m.TradeSpend = i.Metrics.TradeSpend
	m.NetSales = i.Metrics.NetSales
	m.COGS = i.Metrics.COGS
	m.GrossProfit = i.Metrics.GrossProfit
	m.GrossMarginPct = i.Metrics.GrossMarginPct
	m.Accruals = i.Metrics.Accruals
	m.Settlements = i.Metrics.Settlements
	m.Claims = i.Metrics.Claims
	m.Deductions = i.Metrics.Deductions
	m.NetTradeCost = i.Metrics.NetTradeCost
	m.NetProfit = i.Metrics.NetProfit
	m.NetMarginPct = i.Metrics.NetMarginPct
	m.BudgetAmount = i.Metrics.BudgetAmount
	m.BudgetVariance = i.Metrics.BudgetVariance
	m.BudgetVariancePct = i.Metrics.BudgetVariancePct
	m.ROI = i.Metrics.ROI
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PnLLineItemModelFromDomain creates a new persistence model from a domain LineItem.
func PnLLineItemModelFromDomain(i *pnl.LineItem) *PnLLineItemModel {
	m := &PnLLineItemModel{}
	m.FromDomain(i)
	return m
}
