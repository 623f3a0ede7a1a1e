package handler

import (
	"github.com/gin-gonic/gin"

	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// DashboardHandler 首页 HTTP 处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	authSvc      service.AuthService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService, authSvc service.AuthService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, authSvc: authSvc}
}

// Stats 首页统计
// GET /api/v1/console/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	stats, err := h.dashboardSvc.Stats(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, stats)
}
