package pnl

import (
	"time"

	"github.com/google/uuid"
	"github.com/tpm/backend/internal/domain/shared"
)

// LineType identifies the dimension family of a line item
type LineType string

const (
	LineTypeCustomer  LineType = "CUSTOMER"
	LineTypePromotion LineType = "PROMOTION"
)

// IsValid checks if the line type is valid
func (t LineType) IsValid() bool {
	return t == LineTypeCustomer || t == LineTypePromotion
}

// String returns the string representation of LineType
func (t LineType) String() string {
	return string(t)
}

// LineTypeFor maps a dimension kind to its line type
func LineTypeFor(dim DimensionKind) LineType {
	if dim == DimensionPromotion {
		return LineTypePromotion
	}
	return LineTypeCustomer
}

// LineItem is one dimension value's row of derived metrics within a report.
// SortOrder is the 1-based rank by descending trade spend, contiguous per
// report.
type LineItem struct {
	ID            uuid.UUID
	ReportID      uuid.UUID
	TenantID      uuid.UUID
	LineType      LineType
	Label         string
	SortOrder     int
	DimensionID   uuid.UUID
	DimensionName string
	Metrics       Metrics
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewLineItem creates a line item for a report dimension row
func NewLineItem(reportID, tenantID uuid.UUID, dim DimensionKind, row AggregateRow, sortOrder int, metrics Metrics) (*LineItem, error) {
	if reportID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REPORT_ID", "Report ID cannot be empty")
	}
	if row.DimensionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DIMENSION", "Dimension ID cannot be empty")
	}
	if sortOrder < 1 {
		return nil, shared.NewDomainError("INVALID_SORT_ORDER", "Sort order must be 1-based")
	}

	label := row.DimensionName
	if label == "" {
		label = row.DimensionID.String()
	}

	now := time.Now()
	return &LineItem{
		ID:            uuid.New(),
		ReportID:      reportID,
		TenantID:      tenantID,
		LineType:      LineTypeFor(dim),
		Label:         label,
		SortOrder:     sortOrder,
		DimensionID:   row.DimensionID,
		DimensionName: row.DimensionName,
		Metrics:       metrics,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
