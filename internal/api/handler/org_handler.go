package handler

import (
	"github.com/gin-gonic/gin"

	"unihub-board/internal/dto"
	"unihub-board/internal/model"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// OrgHandler 部门管理 / 班级管理页 HTTP 处理器
// 两个页面结构相同，路由注册时绑定组织类型
type OrgHandler struct {
	orgSvc  service.OrgService
	authSvc service.AuthService
}

// NewOrgHandler 创建 OrgHandler
func NewOrgHandler(orgSvc service.OrgService, authSvc service.AuthService) *OrgHandler {
	return &OrgHandler{orgSvc: orgSvc, authSvc: authSvc}
}

// List 进入页面：拉取列表并生成新的视图
// GET /api/v1/console/departments | /classes
func (h *OrgHandler) List(kind model.OrgKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := MustGetSession(c)
		if !ok {
			return
		}

		view, err := h.orgSvc.Activate(c.Request.Context(), sess, kind)
		if err != nil {
			respondError(c, h.authSvc, err)
			return
		}

		response.OK(c, view)
	}
}

// Create 创建部门 / 班级，返回刷新后的视图
// POST /api/v1/console/departments | /classes
func (h *OrgHandler) Create(kind model.OrgKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateOrgRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "请输入"+kind.Label()+"名称")
			return
		}
		sess, ok := MustGetSession(c)
		if !ok {
			return
		}

		view, err := h.orgSvc.Create(c.Request.Context(), sess, kind, req.Name)
		if err != nil {
			respondError(c, h.authSvc, err)
			return
		}

		response.Created(c, view)
	}
}

// Toggle 展开 / 收起一行的花名册
// POST /api/v1/console/departments/views/:view/:id/toggle
func (h *OrgHandler) Toggle(kind model.OrgKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		sess, ok := MustGetSession(c)
		if !ok {
			return
		}

		res, err := h.orgSvc.Toggle(c.Request.Context(), sess, kind, c.Param("view"), id)
		if err != nil {
			respondError(c, h.authSvc, err)
			return
		}

		response.OK(c, res)
	}
}

// InviteQR 班级二维码内容
// GET /api/v1/console/classes/:id/qr
func (h *OrgHandler) InviteQR(kind model.OrgKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		sess, ok := MustGetSession(c)
		if !ok {
			return
		}

		payload, err := h.orgSvc.InviteQR(c.Request.Context(), sess, kind, id)
		if err != nil {
			respondError(c, h.authSvc, err)
			return
		}

		response.OK(c, payload)
	}
}
