package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/metrics"
	"backend/internal/notification"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EmailResolver 将用户ID解析为通知邮箱
type EmailResolver interface {
	ResolveEmail(ctx context.Context, userID string) string
}

// NotifyHandler 通知发送任务处理器
// 对每个接收人做站内推送，解析到邮箱时同时发邮件；
// 单个接收人失败不中断其余投递，任务本身不重试
type NotifyHandler struct {
	notifier notification.Notifier
	resolver EmailResolver
	logger   *zap.Logger
}

// NewNotifyHandler 创建通知处理器
func NewNotifyHandler(notifier notification.Notifier, resolver EmailResolver, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{
		notifier: notifier,
		resolver: resolver,
		logger:   logger,
	}
}

// HandleNotifySend 处理通知发送任务
func (h *NotifyHandler) HandleNotifySend(ctx context.Context, t *asynq.Task) error {
	var payload tasks.NotifySendPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("解析通知任务载荷失败: %w", err)
	}

	for _, userID := range payload.Recipients {
		h.send(ctx, "websocket", userID, &payload)

		if h.resolver != nil {
			if email := h.resolver.ResolveEmail(ctx, userID); email != "" {
				h.send(ctx, "email", email, &payload)
			}
		}
	}
	return nil
}

func (h *NotifyHandler) send(ctx context.Context, channel, to string, payload *tasks.NotifySendPayload) {
	err := h.notifier.Send(ctx, &notification.Notification{
		Type:    channel,
		To:      to,
		Subject: payload.Subject,
		Body:    payload.Body,
		Data: map[string]any{
			"docId":    payload.DocID,
			"template": payload.Template,
		},
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(channel, "failure").Inc()
		h.logger.Warn("通知投递失败",
			zap.String("channel", channel),
			zap.String("docId", payload.DocID),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(channel, "success").Inc()
}
