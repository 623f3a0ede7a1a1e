package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/client"
	"unihub-board/internal/dto"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// AuthHandler 登录 / 注册页 HTTP 处理器
type AuthHandler struct {
	authSvc    service.AuthService
	profileSvc service.ProfileService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, profileSvc service.ProfileService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, profileSvc: profileSvc}
}

// Login 登录
// POST /api/v1/console/session
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 退出登录
// DELETE /api/v1/console/session
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authSvc.Logout(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"redirect": response.LoginRoute})
}

// Register 注册，成功后自动登录
// POST /api/v1/console/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Profile 当前用户资料
// GET /api/v1/console/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.Get(c.Request.Context(), sess)
	if err != nil {
		respondError(c, h.authSvc, err)
		return
	}

	response.OK(c, profile)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		// 登录 / 注册接口的 401 表示凭证错误，不是登录态失效
		response.Error(c, http.StatusUnauthorized, 11001, apiErr.Message)
	case errors.Is(err, service.ErrLoginNoToken):
		response.Error(c, http.StatusUnauthorized, 11001, err.Error())
	case errors.Is(err, service.ErrRegisterNoToken):
		response.Error(c, http.StatusBadGateway, 11002, err.Error())
	default:
		respondError(c, nil, err)
	}
}
