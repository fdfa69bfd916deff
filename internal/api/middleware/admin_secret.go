package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"talentflow/internal/errcode"
)

// AdminSecretHeader 携带运维接口密钥。
const AdminSecretHeader = "X-Admin-Secret"

// AdminSecretMiddleware 校验运维接口密钥；未配置密钥时不做限制（本地开发）。
func AdminSecretMiddleware(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		// 密钥只从 Header 读取，避免 query 泄露到日志。
		token := strings.TrimSpace(c.GetHeader(AdminSecretHeader))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "unauthorized",
				"code":    errcode.Unauthorized,
			})
			return
		}
		c.Next()
	}
}
