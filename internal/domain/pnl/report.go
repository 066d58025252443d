package pnl

import (
	"time"

	"github.com/google/uuid"
	"github.com/tpm/backend/internal/domain/shared"
)

// ReportStatus represents the lifecycle status of a P&L report
type ReportStatus string

const (
	ReportStatusDraft      ReportStatus = "DRAFT"
	ReportStatusGenerating ReportStatus = "GENERATING"
	ReportStatusGenerated  ReportStatus = "GENERATED"
	ReportStatusApproved   ReportStatus = "APPROVED"
	ReportStatusPublished  ReportStatus = "PUBLISHED"
	ReportStatusArchived   ReportStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid ReportStatus
func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusGenerating, ReportStatusGenerated,
		ReportStatusApproved, ReportStatusPublished, ReportStatusArchived:
		return true
	}
	return false
}

// String returns the string representation of ReportStatus
func (s ReportStatus) String() string {
	return string(s)
}

// CanTransitionTo checks whether an external status update may move the
// report from s to target. GENERATING is owned by the engine and is never
// a valid target or source for manual transitions.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	switch s {
	case ReportStatusDraft:
		return target == ReportStatusArchived
	case ReportStatusGenerated:
		return target == ReportStatusApproved || target == ReportStatusPublished || target == ReportStatusArchived
	case ReportStatusApproved:
		return target == ReportStatusPublished || target == ReportStatusArchived
	case ReportStatusPublished:
		return target == ReportStatusArchived
	case ReportStatusGenerating, ReportStatusArchived:
		return false
	}
	return false
}

// ReportType represents the reporting dimension family of a report
type ReportType string

const (
	ReportTypeCustomer     ReportType = "CUSTOMER"
	ReportTypePromotion    ReportType = "PROMOTION"
	ReportTypeProduct      ReportType = "PRODUCT"
	ReportTypeChannel      ReportType = "CHANNEL"
	ReportTypePeriod       ReportType = "PERIOD"
	ReportTypeConsolidated ReportType = "CONSOLIDATED"
)

// IsValid checks if the type is a valid ReportType
func (t ReportType) IsValid() bool {
	switch t {
	case ReportTypeCustomer, ReportTypePromotion, ReportTypeProduct,
		ReportTypeChannel, ReportTypePeriod, ReportTypeConsolidated:
		return true
	}
	return false
}

// String returns the string representation of ReportType
func (t ReportType) String() string {
	return string(t)
}

// Dimension returns the grouping dimension implied by the report type.
// Only PROMOTION reports group by promotion; every other type groups by
// customer.
func (t ReportType) Dimension() DimensionKind {
	if t == ReportTypePromotion {
		return DimensionPromotion
	}
	return DimensionCustomer
}

// PeriodType represents the reporting period granularity
type PeriodType string

const (
	PeriodTypeWeekly    PeriodType = "WEEKLY"
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeAnnually  PeriodType = "ANNUALLY"
	PeriodTypeCustom    PeriodType = "CUSTOM"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodTypeWeekly, PeriodTypeMonthly, PeriodTypeQuarterly, PeriodTypeAnnually, PeriodTypeCustom:
		return true
	}
	return false
}

// String returns the string representation of PeriodType
func (p PeriodType) String() string {
	return string(p)
}

// DefaultCurrency is applied when a report is created without one.
const DefaultCurrency = "ZAR"

// Report is the P&L report aggregate root. Header totals are only
// meaningful once Status has reached GENERATED.
type Report struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
	ReportType  ReportType
	PeriodType  PeriodType
	StartDate   *time.Time
	EndDate     *time.Time

	// Dimension filters; all optional. When CustomerID or PromotionID is
	// set, generation is restricted to that single dimension value.
	CustomerID  *uuid.UUID
	PromotionID *uuid.UUID
	ProductID   *uuid.UUID
	Category    string
	Channel     string
	Region      string

	Currency string
	Status   ReportStatus

	Totals Metrics

	GeneratedAt *time.Time
	GeneratedBy *uuid.UUID

	// ExtensionData carries opaque caller-defined key/value data.
	ExtensionData map[string]interface{}

	LineItems []LineItem
}

// NewReport creates a draft report for a tenant
func NewReport(tenantID uuid.UUID, name string, reportType ReportType, periodType PeriodType) (*Report, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_REPORT_NAME", "Report name cannot be empty")
	}
	if reportType == "" {
		reportType = ReportTypeCustomer
	}
	if !reportType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REPORT_TYPE", "Unknown report type: "+reportType.String())
	}
	if periodType == "" {
		periodType = PeriodTypeCustom
	}
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD_TYPE", "Unknown period type: "+periodType.String())
	}

	return &Report{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ReportType:          reportType,
		PeriodType:          periodType,
		Currency:            DefaultCurrency,
		Status:              ReportStatusDraft,
		ExtensionData:       make(map[string]interface{}),
	}, nil
}

// DateRange validates and sets the reporting window
func (r *Report) DateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	r.StartDate = start
	r.EndDate = end
	r.UpdatedAt = time.Now()
	return nil
}

// DimensionFilter returns the single-dimension restriction for generation,
// or nil when the report spans all dimension values.
func (r *Report) DimensionFilter() *uuid.UUID {
	if r.ReportType.Dimension() == DimensionPromotion {
		return r.PromotionID
	}
	return r.CustomerID
}

// BeginGeneration moves the report into GENERATING. A report already in
// GENERATING is being processed by another run and is rejected; approved,
// published and archived reports are frozen and cannot be regenerated.
func (r *Report) BeginGeneration() error {
	if r.Status == ReportStatusGenerating {
		return shared.ErrGenerationInFlight
	}
	if r.Status != ReportStatusDraft && r.Status != ReportStatusGenerated {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot regenerate a report in status "+r.Status.String())
	}
	r.Status = ReportStatusGenerating
	r.UpdatedAt = time.Now()
	return nil
}

// CompleteGeneration records the derived totals and marks the report GENERATED
func (r *Report) CompleteGeneration(totals Metrics, items []LineItem, generatedBy uuid.UUID) error {
	if r.Status != ReportStatusGenerating {
		return shared.ErrInvalidState
	}
	now := time.Now()
	r.Totals = totals
	r.LineItems = items
	r.Status = ReportStatusGenerated
	r.GeneratedAt = &now
	r.GeneratedBy = &generatedBy
	r.UpdatedAt = now
	return nil
}

// FailGeneration forces the report back to DRAFT after a failed run,
// regardless of the status it held before the run started.
func (r *Report) FailGeneration() {
	r.Status = ReportStatusDraft
	r.UpdatedAt = time.Now()
}

// TransitionTo applies an externally requested status change
func (r *Report) TransitionTo(target ReportStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown report status: "+target.String())
	}
	if target == r.Status {
		return nil
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATUS_TRANSITION",
			"Cannot transition report from "+r.Status.String()+" to "+target.String())
	}
	r.Status = target
	r.UpdatedAt = time.Now()
	return nil
}

// Rename validates and applies a new report name
func (r *Report) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_REPORT_NAME", "Report name cannot be empty")
	}
	r.Name = name
	r.UpdatedAt = time.Now()
	return nil
}
