package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pnlapp "github.com/tpm/backend/internal/application/pnl"
)

// ReportHandler handles P&L report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *pnlapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *pnlapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// Create godoc
// @Summary      Create a P&L report
// @Description  Creates a new report shell in DRAFT status. Line items are
// @Description  produced later by the generate operation.
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        request body pnlapp.CreateReportRequest true "Report definition"
// @Success      201 {object} dto.Response{data=pnlapp.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req pnlapp.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	var createdBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		createdBy = &userID
	}

	report, err := h.reportService.Create(c.Request.Context(), tenantID, createdBy, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, report)
}

// List godoc
// @Summary      List P&L reports
// @Description  Returns report headers for the tenant with filtering and pagination
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        status query string false "Filter by status"
// @Param        report_type query string false "Filter by report type"
// @Param        customer_id query string false "Filter by customer ID"
// @Param        promotion_id query string false "Filter by promotion ID"
// @Param        page query int false "Page number (default 1)"
// @Param        page_size query int false "Page size (default 20, max 100)"
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction (asc/desc)"
// @Success      200 {object} dto.Response{data=[]pnlapp.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter pnlapp.ReportListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	reports, total, err := h.reportService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, reports, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a P&L report
// @Description  Returns the report header together with its ordered line items
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=pnlapp.ReportDetailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports/{id} [get]
func (h *ReportHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID")
		return
	}

	report, err := h.reportService.GetByID(c.Request.Context(), tenantID, reportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Update godoc
// @Summary      Update a P&L report
// @Description  Updates descriptive fields and, when a status is supplied,
// @Description  applies a manual lifecycle transition
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID"
// @Param        request body pnlapp.UpdateReportRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=pnlapp.ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports/{id} [put]
func (h *ReportHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID")
		return
	}

	var req pnlapp.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	report, err := h.reportService.Update(c.Request.Context(), tenantID, reportID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// Delete godoc
// @Summary      Delete a P&L report
// @Description  Deletes the report and all of its line items
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID")
		return
	}

	if err := h.reportService.Delete(c.Request.Context(), tenantID, reportID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Generate godoc
// @Summary      Generate a P&L report
// @Description  Aggregates the fact stores over the report window, computes the
// @Description  financial model and atomically replaces the line items
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=pnlapp.ReportDetailResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports/{id}/generate [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID")
		return
	}

	requestedBy, err := getUserID(c)
	if err != nil {
		requestedBy = uuid.Nil
	}

	report, err := h.reportService.Generate(c.Request.Context(), tenantID, reportID, requestedBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// GetLineItems godoc
// @Summary      Get report line items
// @Description  Returns the persisted line items of a report in display order
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=[]pnlapp.LineItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/reports/{id}/line-items [get]
func (h *ReportHandler) GetLineItems(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid report ID")
		return
	}

	items, err := h.reportService.GetLineItems(c.Request.Context(), tenantID, reportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// GetSummary godoc
// @Summary      Get cross-report summary
// @Description  Returns report counts by status and type plus trade spend and
// @Description  net profit totals over generated reports
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=pnlapp.SummaryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.reportService.GetSummary(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// RegisterRoutes registers all P&L report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pnl := rg.Group("/pnl")
	{
		pnl.POST("/reports", h.Create)
		pnl.GET("/reports", h.List)
		pnl.GET("/reports/:id", h.GetByID)
		pnl.PUT("/reports/:id", h.Update)
		pnl.DELETE("/reports/:id", h.Delete)
		pnl.POST("/reports/:id/generate", h.Generate)
		pnl.GET("/reports/:id/line-items", h.GetLineItems)
		pnl.GET("/summary", h.GetSummary)
	}
}
