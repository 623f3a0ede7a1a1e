package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/service"
	"unihub-board/internal/session"
	"unihub-board/pkg/jwt"
	"unihub-board/pkg/response"
)

const (
	roleKey          = "role"
	sessionSourceKey = "session_source"
)

// SessionAuth 登录态中间件
// 优先读取 Authorization: Bearer <token>，没有时回退到持久化的登录态
// 注入 gin 上下文的 role 与请求 context 中的 *session.Session
func SessionAuth(authSvc service.AuthService, inspector *jwt.Inspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session
		source := "bearer"

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				response.Unauthorized(c, 10002, "认证头格式无效")
				c.Abort()
				return
			}
			sess = session.FromToken(strings.TrimSpace(parts[1]), inspector)
			if sess.IsExpired(time.Now()) {
				response.Unauthorized(c, 10002, "登录已过期，请重新登录")
				c.Abort()
				return
			}
		} else {
			source = "store"
			var err error
			sess, err = authSvc.CurrentSession(c.Request.Context())
			if err != nil {
				msg := "请先登录"
				if !errors.Is(err, session.ErrNoSession) {
					msg = "读取登录态失败，请重新登录"
				}
				response.Unauthorized(c, 10002, msg)
				c.Abort()
				return
			}
		}

		c.Set(roleKey, sess.Role)
		c.Set(sessionSourceKey, source)
		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), sess))

		c.Next()
	}
}
