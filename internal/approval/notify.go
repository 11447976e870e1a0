package approval

import (
	"context"
	"fmt"
	"time"

	"backend/internal/config"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/notification"
	"backend/internal/worker/tasks"

	"go.uber.org/zap"
)

// 通知模板标识
const (
	TemplateApprovalRequested = "approval_requested" // 待决裁提醒，发给当前决裁人
	TemplateApprovalCompleted = "approval_completed" // 决裁完结提醒，发给起案人
	TemplateDocumentRejected  = "document_rejected"  // 驳回提醒，发给起案人
)

// Dispatcher 决裁通知分发器
// 投递即忘：失败只记日志与指标，不重试，不影响触发它的决裁操作
type Dispatcher struct {
	queue    queue.Client
	notifier notification.Notifier
	baseURL  string
	timeout  time.Duration
	logger   *zap.Logger
}

// DispatcherOption 配置分发器
type DispatcherOption func(*Dispatcher)

// WithQueueClient 经由任务队列异步投递
func WithQueueClient(client queue.Client) DispatcherOption {
	return func(d *Dispatcher) { d.queue = client }
}

// WithNotifier 设置直接投递用的通知器，队列未配置时走此通道
func WithNotifier(n notification.Notifier) DispatcherOption {
	return func(d *Dispatcher) { d.notifier = n }
}

// WithDispatcherLogger 设置日志器
func WithDispatcherLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.logger = l }
}

// NewDispatcher 创建通知分发器
func NewDispatcher(cfg *config.ApprovalConfig, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		timeout: 10 * time.Second,
		logger:  logger.Get(),
	}
	if cfg != nil {
		d.baseURL = cfg.BaseURL
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// NotifyApprovalRequested 提醒当前决裁人处理文书
func (d *Dispatcher) NotifyApprovalRequested(doc *ApprovalDocument, step ApproverStep) {
	if step.ApproverID == UnknownApproverID {
		d.logger.Debug("决裁人未绑定，跳过待办通知",
			zap.String("docId", doc.ID),
			zap.Int("order", step.Order),
		)
		return
	}
	subject := fmt.Sprintf("[결재요청] %s", doc.Title)
	body := fmt.Sprintf(
		"%s 님, 결재 대기 문서가 있습니다.<br>문서: %s<br>기안자: %s<br>바로가기: %s/approvals/%s",
		step.ApproverName, doc.Title, doc.AuthorName, d.baseURL, doc.ID,
	)
	d.dispatch(doc.ID, TemplateApprovalRequested, subject, body, []string{step.ApproverID})
}

// NotifyApprovalCompleted 提醒起案人文书已决裁完结
func (d *Dispatcher) NotifyApprovalCompleted(doc *ApprovalDocument) {
	subject := fmt.Sprintf("[결재완료] %s", doc.Title)
	body := fmt.Sprintf(
		"%s 님, 문서의 결재가 완료되었습니다.<br>문서: %s<br>바로가기: %s/approvals/%s",
		doc.AuthorName, doc.Title, d.baseURL, doc.ID,
	)
	d.dispatch(doc.ID, TemplateApprovalCompleted, subject, body, []string{doc.AuthorID})
}

// NotifyRejected 提醒起案人文书被驳回
func (d *Dispatcher) NotifyRejected(doc *ApprovalDocument, reason string) {
	subject := fmt.Sprintf("[반려] %s", doc.Title)
	body := fmt.Sprintf(
		"%s 님, 문서가 반려되었습니다.<br>문서: %s<br>반려 사유: %s<br>바로가기: %s/approvals/%s",
		doc.AuthorName, doc.Title, reason, d.baseURL, doc.ID,
	)
	d.dispatch(doc.ID, TemplateDocumentRejected, subject, body, []string{doc.AuthorID})
}

func (d *Dispatcher) dispatch(docID, template, subject, body string, recipients []string) {
	if d == nil {
		return
	}
	if d.queue != nil {
		err := d.queue.EnqueueNotify(tasks.NotifySendPayload{
			DocID:      docID,
			Recipients: recipients,
			Subject:    subject,
			Body:       body,
			Template:   template,
		})
		if err != nil {
			metrics.NotificationsTotal.WithLabelValues("queue", "failure").Inc()
			d.logger.Warn("通知任务投递失败",
				zap.String("docId", docID),
				zap.String("template", template),
				zap.Error(err),
			)
			return
		}
		metrics.NotificationsTotal.WithLabelValues("queue", "success").Inc()
		return
	}

	if d.notifier == nil {
		return
	}
	// 同进程直接投递，脱离请求上下文异步执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		for _, userID := range recipients {
			err := d.notifier.Send(ctx, &notification.Notification{
				Type:    "websocket",
				To:      userID,
				Subject: subject,
				Body:    body,
				Data:    map[string]any{"docId": docID, "template": template},
			})
			if err != nil {
				metrics.NotificationsTotal.WithLabelValues("websocket", "failure").Inc()
				d.logger.Warn("通知投递失败",
					zap.String("docId", docID),
					zap.String("userId", userID),
					zap.Error(err),
				)
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("websocket", "success").Inc()
		}
	}()
}
