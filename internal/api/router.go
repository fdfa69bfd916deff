package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"talentflow/internal/api/middleware"
	"talentflow/internal/chaos"
	"talentflow/internal/config"
	"talentflow/internal/metrics"
	"talentflow/internal/persistence"
)

// Deps 汇总路由需要的依赖。Enqueuer、Snapshots、Redis 可为空，此时快照相关接口返回 503。
type Deps struct {
	Config    *config.Config
	Service   *persistence.Service
	Injector  *chaos.Injector
	Logger    *slog.Logger
	Enqueuer  TaskEnqueuer
	Snapshots SnapshotLister
	Redis     *redis.Client
}

// NewRouter 构建 Gin 路由引擎：健康检查、指标、模拟网关与运维接口。
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CorrelationIDMiddleware(),
		metrics.GinMiddleware(),
		middleware.SlogLoggerMiddleware(deps.Logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"initialized": deps.Service.Initialized(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler := NewHandler(deps.Service, deps.Config.Gateway)
	gateway := router.Group(deps.Config.Gateway.BasePath)
	RegisterRoutes(gateway, handler.Routes(), deps.Injector)

	admin := router.Group("/admin", middleware.AdminSecretMiddleware(deps.Config.Admin.Secret))
	RegisterAdminRoutes(admin,
		NewAdminHandler(deps.Service, deps.Enqueuer, deps.Snapshots),
		NewWsHandler(deps.Redis, deps.Logger),
	)

	return router
}
