package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/dto"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// DingHandler 打卡管理 / 返校签到页 HTTP 处理器
type DingHandler struct {
	dingSvc service.DingService
	authSvc service.AuthService
}

// NewDingHandler 创建 DingHandler
func NewDingHandler(dingSvc service.DingService, authSvc service.AuthService) *DingHandler {
	return &DingHandler{dingSvc: dingSvc, authSvc: authSvc}
}

// List 我发起的打卡任务
// GET /api/v1/console/dings?view=normal|return
func (h *DingHandler) List(c *gin.Context) {
	var q dto.DingListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	view, err := h.dingSvc.List(c.Request.Context(), sess, q.View)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, view)
}

// Create 发起打卡
// POST /api/v1/console/dings
func (h *DingHandler) Create(c *gin.Context) {
	var req dto.CreateDingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	task, err := h.dingSvc.Create(c.Request.Context(), sess, &req)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.Created(c, task)
}

// ToggleRecords 展开 / 收起一个任务的打卡记录
// POST /api/v1/console/dings/views/:view/:id/toggle
func (h *DingHandler) ToggleRecords(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	res, err := h.dingSvc.ToggleRecords(c.Request.Context(), sess, c.Param("view"), id)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, res)
}

// Calendar 打卡任务日历订阅
// GET /api/v1/console/dings/calendar.ics?view=normal|return
func (h *DingHandler) Calendar(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	data, err := h.dingSvc.Calendar(c.Request.Context(), sess, c.Query("view"))
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape("打卡任务.ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
