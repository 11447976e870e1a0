package api

import (
	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/config"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/notification"

	"gorm.io/gorm"
)

// AppContainer 汇集各业务服务，供路由注册使用
type AppContainer struct {
	Config *config.Config

	IdentityStore *auth.IdentityStore
	JWTService    *auth.JWTService

	Hub      *notification.WebSocketHub
	Notifier *notification.MultiNotifier
	Queue    queue.Client

	EventBus        *approval.DocumentEventBus
	Dispatcher      *approval.Dispatcher
	DocumentService *approval.DocumentService
	Processor       *approval.Processor
	AdminService    *approval.AdminService
	PolicyService   *approval.PolicyService
}

// BuildContainer 组装业务服务
// queueClient 传 nil 时通知降级为同进程直接投递
func BuildContainer(db *gorm.DB, cfg *config.Config, queueClient queue.Client) *AppContainer {
	log := logger.Get()

	identityStore := auth.NewIdentityStore(db, log)
	jwtService := auth.NewJWTService(&cfg.JWT)

	hub := notification.NewWebSocketHub(notification.WithHubLogger(log))
	notifier := notification.NewMultiNotifier(&cfg.Notify.SMTP, &cfg.Notify.SMS, hub)

	eventBus := approval.NewDocumentEventBus(nil)
	dispatcher := approval.NewDispatcher(&cfg.Approval,
		approval.WithQueueClient(queueClient),
		approval.WithNotifier(notifier),
		approval.WithDispatcherLogger(log),
	)

	documentService := approval.NewDocumentService(db,
		approval.WithDocumentDispatcher(dispatcher),
		approval.WithDocumentEventBus(eventBus),
		approval.WithDocumentLogger(log),
	)
	processor := approval.NewProcessor(db,
		approval.WithDispatcher(dispatcher),
		approval.WithEventBus(eventBus),
		approval.WithProcessorLogger(log),
	)
	adminService := approval.NewAdminService(db, identityStore,
		approval.WithAdminDispatcher(dispatcher),
		approval.WithAdminEventBus(eventBus),
		approval.WithAdminLogger(log),
	)
	policyService := approval.NewPolicyService(db, log)

	return &AppContainer{
		Config:          cfg,
		IdentityStore:   identityStore,
		JWTService:      jwtService,
		Hub:             hub,
		Notifier:        notifier,
		Queue:           queueClient,
		EventBus:        eventBus,
		Dispatcher:      dispatcher,
		DocumentService: documentService,
		Processor:       processor,
		AdminService:    adminService,
		PolicyService:   policyService,
	}
}
