package handler

import (
	"github.com/gin-gonic/gin"

	pnlapp "github.com/tpm/backend/internal/application/pnl"
)

// LiveViewHandler handles live (non-persisted) P&L view endpoints
type LiveViewHandler struct {
	BaseHandler
	liveService *pnlapp.LiveViewService
}

// NewLiveViewHandler creates a new LiveViewHandler
func NewLiveViewHandler(liveService *pnlapp.LiveViewService) *LiveViewHandler {
	return &LiveViewHandler{
		liveService: liveService,
	}
}

// ByCustomer godoc
// @Summary      Live P&L by customer
// @Description  Computes one P&L row per customer from the current fact data
// @Description  without persisting anything
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        start_date query string false "Window start (YYYY-MM-DD)"
// @Param        end_date query string false "Window end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]pnlapp.LiveRowResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/live/customers [get]
func (h *LiveViewHandler) ByCustomer(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter pnlapp.LiveViewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rows, err := h.liveService.ByCustomer(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// ByPromotion godoc
// @Summary      Live P&L by promotion
// @Description  Computes one P&L row per promotion from the current fact data
// @Description  without persisting anything
// @Tags         pnl
// @Accept       json
// @Produce      json
// @Param        start_date query string false "Window start (YYYY-MM-DD)"
// @Param        end_date query string false "Window end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=[]pnlapp.LiveRowResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /pnl/live/promotions [get]
func (h *LiveViewHandler) ByPromotion(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter pnlapp.LiveViewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rows, err := h.liveService.ByPromotion(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// RegisterRoutes registers live view routes
func (h *LiveViewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	live := rg.Group("/pnl/live")
	{
		live.GET("/customers", h.ByCustomer)
		live.GET("/promotions", h.ByPromotion)
	}
}
