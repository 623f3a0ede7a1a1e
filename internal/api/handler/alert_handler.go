package handler

import (
	"github.com/gin-gonic/gin"

	"unihub-board/internal/alert"
	"unihub-board/pkg/response"
)

// AlertHandler 全局提示
type AlertHandler struct {
	alerts *alert.Center
}

// NewAlertHandler 创建 AlertHandler
func NewAlertHandler(alerts *alert.Center) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Current 当前提示，没有时 visible=false
// GET /api/v1/console/alert
func (h *AlertHandler) Current(c *gin.Context) {
	a, visible := h.alerts.Current()
	if !visible {
		response.OK(c, gin.H{"visible": false})
		return
	}
	response.OK(c, gin.H{"visible": true, "alert": a})
}

// Dismiss 手动关闭提示
// DELETE /api/v1/console/alert
func (h *AlertHandler) Dismiss(c *gin.Context) {
	h.alerts.Hide()
	response.OK(c, gin.H{"visible": false})
}
