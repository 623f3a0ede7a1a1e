package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"unihub-board/pkg/response"
)

// 控制台前端需要读取的响应头：追踪 ID 与 xlsx 下载文件名
const (
	corsAllowHeaders  = "Content-Type, Authorization, X-Request-ID"
	corsExposeHeaders = "X-Request-ID, Content-Disposition"
	corsAllowMethods  = "GET, POST, DELETE, OPTIONS"
)

// CORS 跨域中间件
// 只放行配置中的前端地址；未放行来源的预检请求直接拒绝
func CORS(allowOrigins []string) gin.HandlerFunc {
	originsMap := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		originsMap[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := originsMap[origin]
		c.Header("Vary", "Origin")

		if allowed {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
		}

		if c.Request.Method == http.MethodOptions {
			if origin != "" && !allowed {
				response.Forbidden(c, 10003, "跨域来源不被允许")
				c.Abort()
				return
			}
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
