package handler

import (
	"github.com/gin-gonic/gin"

	"unihub-board/internal/dto"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// LeaveHandler 请假审批页 HTTP 处理器
type LeaveHandler struct {
	leaveSvc service.LeaveService
	authSvc  service.AuthService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService, authSvc service.AuthService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc, authSvc: authSvc}
}

// ListPending 待审批列表
// GET /api/v1/console/leaves/pending
func (h *LeaveHandler) ListPending(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	list, err := h.leaveSvc.ListPending(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Audit 审批，返回刷新后的待审批列表
// POST /api/v1/console/leaves/audit
func (h *LeaveHandler) Audit(c *gin.Context) {
	var req dto.AuditLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	list, err := h.leaveSvc.Audit(c.Request.Context(), sess, req.LeaveID, req.Status)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
