package api

import (
	"talentflow/internal/config"
	"talentflow/internal/persistence"
)

// Handler 实现模拟网关的各条业务路由。
type Handler struct {
	svc             *persistence.Service
	defaultPageSize int
	maxPageSize     int
}

// NewHandler 构造业务路由处理器。
func NewHandler(svc *persistence.Service, cfg config.GatewayConfig) *Handler {
	return &Handler{
		svc:             svc,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
	}
}
