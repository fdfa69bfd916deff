package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"talentflow/internal/chaos"
	"talentflow/internal/metrics"
)

const failureCodeKey = "failureCode"

// ChaosMiddleware 是每条模拟路由前的统一阶段：先等待随机延迟，
// 再按错误率掷骰，命中时以路由自己的 {message, code} 返回 500。
func ChaosMiddleware(injector *chaos.Injector, route string, failure chaos.Failure) gin.HandlerFunc {
	return func(c *gin.Context) {
		delay := injector.Delay()
		if err := chaos.Sleep(c.Request.Context(), delay); err != nil {
			// 客户端已断开，不再执行处理器
			LoggerFromContext(c).Debug("request canceled during injected delay", slog.Any("error", err))
			c.Abort()
			return
		}
		metrics.ObserveChaosDelay(route, delay)

		if injector.ShouldFail() {
			metrics.IncChaosFailure(route, failure.Code)
			c.Set(failureCodeKey, failure.Code)
			c.AbortWithStatusJSON(http.StatusInternalServerError, failure)
			return
		}
		c.Next()
	}
}

// SetFailureCode 记录响应错误码，供请求日志输出。
func SetFailureCode(c *gin.Context, code string) {
	c.Set(failureCodeKey, code)
}
