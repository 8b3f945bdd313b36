package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/mantispro/satinalma/internal/procure/service"
)

// DashboardHandler serves the aggregate summary view.
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}
