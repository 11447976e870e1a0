package api

import (
	approvalHandlers "backend/api/handlers/approval"
	authHandlers "backend/api/handlers/auth"
	notificationHandlers "backend/api/handlers/notifications"
	"backend/internal/auth"
	middlewarepkg "backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册业务路由
func RegisterRoutes(router *gin.Engine, container *AppContainer) {
	authHandler := authHandlers.NewAuthHandler(container.IdentityStore, container.JWTService)
	documentHandler := approvalHandlers.NewDocumentHandler(container.DocumentService, container.EventBus)
	decisionHandler := approvalHandlers.NewDecisionHandler(container.Processor)
	adminHandler := approvalHandlers.NewAdminHandler(container.AdminService)
	policyHandler := approvalHandlers.NewPolicyHandler(container.PolicyService)
	wsHandler := notificationHandlers.NewWSHandler(container.Hub)

	loginLimiter := middlewarepkg.NewLoginRateLimiter(2, 10)

	// 公开路由
	public := router.Group("/api/auth")
	{
		public.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	}

	// 认证路由
	authorized := router.Group("/api")
	authorized.Use(auth.AuthMiddleware(container.JWTService))
	{
		authorized.GET("/auth/me", authHandler.Me)
		authorized.GET("/ws", wsHandler.Connect)

		approvals := authorized.Group("/approvals")
		{
			approvals.POST("", documentHandler.Submit)
			approvals.GET("", documentHandler.List)
			approvals.GET("/preview-line", documentHandler.PreviewLine)
			approvals.GET("/:id", documentHandler.Get)
			approvals.GET("/:id/history", documentHandler.History)
			approvals.GET("/:id/wait", documentHandler.Wait)
			approvals.POST("/:id/approve", decisionHandler.Approve)
			approvals.POST("/:id/reject", decisionHandler.Reject)
		}

		// 管理员路由
		admin := authorized.Group("/admin")
		admin.Use(auth.RequireAdmin())
		{
			admin.POST("/approvals/:id/force-approve", adminHandler.ForceApprove)
			admin.POST("/approvals/:id/force-reject", adminHandler.ForceReject)
			admin.DELETE("/approvals/:id", adminHandler.Delete)
			admin.POST("/approvals/:id/restore", adminHandler.Restore)

			policies := admin.Group("/policies")
			{
				policies.POST("", policyHandler.Create)
				policies.GET("", policyHandler.List)
				policies.GET("/:id", policyHandler.Get)
				policies.PUT("/:id", policyHandler.Update)
				policies.POST("/:id/activate", policyHandler.Activate)
				policies.POST("/:id/deactivate", policyHandler.Deactivate)
				policies.DELETE("/:id", policyHandler.Delete)
			}
		}
	}
}
