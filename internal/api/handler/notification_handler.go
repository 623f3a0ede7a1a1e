package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/dto"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// NotificationHandler 发送通知页 HTTP 处理器
type NotificationHandler struct {
	notifySvc service.NotificationService
	authSvc   service.AuthService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notifySvc service.NotificationService, authSvc service.AuthService) *NotificationHandler {
	return &NotificationHandler{notifySvc: notifySvc, authSvc: authSvc}
}

// Targets 可选发送对象
// GET /api/v1/console/notifications/targets
func (h *NotificationHandler) Targets(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	sel, err := h.notifySvc.Targets(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, sel)
}

// ToggleTarget 选中 / 取消一个对象
// POST /api/v1/console/notifications/targets/:key/toggle
func (h *NotificationHandler) ToggleTarget(c *gin.Context) {
	sel, err := h.notifySvc.Toggle(c.Param("key"))
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}
	response.OK(c, sel)
}

// SelectAll 全选 / 取消全选
// POST /api/v1/console/notifications/select-all
func (h *NotificationHandler) SelectAll(c *gin.Context) {
	response.OK(c, h.notifySvc.SelectAll())
}

// Send 发送通知
// POST /api/v1/console/notifications
func (h *NotificationHandler) Send(c *gin.Context) {
	var req dto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	report, err := h.notifySvc.Send(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleNotificationError(c, report, err)
		return
	}

	response.OK(c, report)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, report *service.SendReport, err error) {
	switch {
	case errors.Is(err, service.ErrPartialDelivery):
		status := http.StatusMultiStatus
		if report != nil && len(report.Succeeded) == 0 {
			status = http.StatusBadGateway
		}
		response.ErrorWithData(c, status, 15001, err.Error(), report)
	default:
		respondError(c, h.authSvc, err)
	}
}
