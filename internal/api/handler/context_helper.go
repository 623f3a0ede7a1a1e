package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/client"
	"unihub-board/internal/service"
	"unihub-board/internal/session"
	"unihub-board/pkg/response"
)

// MustGetSession 从请求 context 中提取登录态。
// 如果 SessionAuth 中间件未注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.FromContext(c.Request.Context())
	if !ok || sess.Token == "" {
		response.Unauthorized(c, 10002, "请先登录")
		return nil, false
	}
	return sess, true
}

// parseID 解析路径中的正整数 ID
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, name+" 必须是正整数")
		return 0, false
	}
	return id, true
}

// clearStoredSession 只有失效的 Token 正是持久化的那一个时才清除
// 通过 Authorization 头携带其他 Token 的请求不影响控制台自身的登录态
func clearStoredSession(c *gin.Context, authSvc service.AuthService) {
	if authSvc == nil {
		return
	}
	ctx := c.Request.Context()
	sess, ok := session.FromContext(ctx)
	if !ok {
		return
	}
	stored, err := authSvc.CurrentSession(ctx)
	if err != nil || stored.Token != sess.Token {
		return
	}
	_ = authSvc.Logout(ctx)
}

// respondError 各模块共用的错误映射
// 上游 401 时清除登录态并要求前端跳转登录页；其他上游错误原样返回上游的 message
func respondError(c *gin.Context, authSvc service.AuthService, err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, session.ErrNoSession):
		clearStoredSession(c, authSvc)
		response.Unauthorized(c, 10002, client.ErrUnauthorized.Error())
	case errors.Is(err, service.ErrDuplicateSubmission):
		response.Conflict(c, 10006, err.Error())
	case errors.Is(err, service.ErrViewNotFound):
		response.NotFound(c, 10007, err.Error())
	case errors.Is(err, service.ErrRowNotFound):
		response.NotFound(c, 10008, err.Error())
	case errors.Is(err, client.ErrForbidden):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, client.ErrNotFound):
		response.NotFound(c, 20404, err.Error())
	case errors.Is(err, client.ErrTransport):
		response.BadGateway(c, 20002, client.ErrTransport.Error())
	case errors.Is(err, client.ErrDecode):
		response.BadGateway(c, 20003, err.Error())
	case errors.As(err, &apiErr):
		// message 原样展示上游文案，details 标明是哪个上游接口返回了什么状态
		response.ErrorWithDetails(c, http.StatusBadGateway, 20001, apiErr.Message,
			fmt.Sprintf("%s: HTTP %d", apiErr.Operation, apiErr.StatusCode))
	default:
		response.Error(c, http.StatusInternalServerError, 50000, err.Error())
	}
}
