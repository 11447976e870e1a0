package api

import (
	"backend/internal/config"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/metrics"
	middlewarepkg "backend/internal/middleware"
	"backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter 设置并返回 Gin 路由和 Worker 服务器
func SetupRouter(db *gorm.DB, cfg *config.Config) (*gin.Engine, *worker.Server) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewarepkg.RequestIDMiddleware())
	router.Use(RequestLogger())
	router.Use(CORS())
	router.Use(metrics.GinMiddleware())

	// 任务队列客户端，通知经由 Redis 异步投递
	queueClient := queue.NewClient(cfg.Redis, cfg.Approval.NotifyQueue)

	container := BuildContainer(db, cfg, queueClient)
	RegisterRoutes(router, container)

	// 探针与指标
	router.GET("/health", HealthCheck())
	router.GET("/ready", ReadinessCheck(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	workerServer := worker.NewServer(cfg.Redis, container.Notifier, container.IdentityStore, logger.Get())

	return router, workerServer
}
