package approval

import (
	"context"
	"strings"

	"backend/internal/common"
	"backend/internal/logger"
	"backend/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleChecker 管理员身份校验端口，由身份模块实现
type RoleChecker interface {
	IsAdmin(ctx context.Context, userID string) bool
}

// AdminService 管理员强制操作服务
// 强制决裁/驳回绕过决裁线直接定状态，决裁线中的步骤保持原样不回填
type AdminService struct {
	db         *gorm.DB
	roles      RoleChecker
	history    *HistoryRecorder
	dispatcher *Dispatcher
	bus        *DocumentEventBus
	logger     *zap.Logger
}

// AdminOption 配置管理服务
type AdminOption func(*AdminService)

// WithAdminDispatcher 设置通知分发器
func WithAdminDispatcher(d *Dispatcher) AdminOption {
	return func(s *AdminService) { s.dispatcher = d }
}

// WithAdminEventBus 设置事件总线
func WithAdminEventBus(bus *DocumentEventBus) AdminOption {
	return func(s *AdminService) { s.bus = bus }
}

// WithAdminLogger 设置日志器
func WithAdminLogger(l *zap.Logger) AdminOption {
	return func(s *AdminService) { s.logger = l }
}

// NewAdminService 创建管理服务
func NewAdminService(db *gorm.DB, roles RoleChecker, opts ...AdminOption) *AdminService {
	s := &AdminService{
		db:     db,
		roles:  roles,
		logger: logger.Get(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.history = NewHistoryRecorder(db, s.logger)
	return s
}

// requireAdmin 校验操作者具备管理员权限，未配置校验器时一律拒绝
func (s *AdminService) requireAdmin(ctx context.Context, actorID string) error {
	if s.roles == nil || !s.roles.IsAdmin(ctx, actorID) {
		return common.NewBusinessErrorWithCode(common.CodeAdminRequired)
	}
	return nil
}

// ForceApprove 管理员强制完结文书
func (s *AdminService) ForceApprove(ctx context.Context, docID, adminID, reason string) (*ApprovalDocument, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	doc, err := getDocument(ctx, s.db, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, common.NewBusinessErrorWithCode(common.CodeDocumentTerminal)
	}

	doc.Status = StatusApproved
	doc.UpdatedBy = adminID
	if err := commitDocument(ctx, s.db, doc, "Status", "UpdatedBy"); err != nil {
		return nil, err
	}

	s.history.Record(ctx, doc.ID, adminID, ActionForceApproved, reason)
	metrics.DecisionsTotal.WithLabelValues(string(doc.DocType), ActionApproved, "forced").Inc()
	metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Dec()
	s.publish(doc, adminID, ActionForceApproved, reason)

	if s.dispatcher != nil {
		s.dispatcher.NotifyApprovalCompleted(doc)
	}

	s.logger.Info("管理员强制决裁",
		zap.String("docId", doc.ID),
		zap.String("adminId", adminID),
	)
	return doc, nil
}

// ForceReject 管理员强制驳回文书，事由必填
func (s *AdminService) ForceReject(ctx context.Context, docID, adminID, reason string) (*ApprovalDocument, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, common.NewBusinessErrorWithCode(common.CodeCommentRequired)
	}
	doc, err := getDocument(ctx, s.db, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, common.NewBusinessErrorWithCode(common.CodeDocumentTerminal)
	}

	doc.Status = StatusRejected
	doc.UpdatedBy = adminID
	if err := commitDocument(ctx, s.db, doc, "Status", "UpdatedBy"); err != nil {
		return nil, err
	}

	s.history.Record(ctx, doc.ID, adminID, ActionForceRejected, reason)
	metrics.DecisionsTotal.WithLabelValues(string(doc.DocType), ActionRejected, "forced").Inc()
	metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Dec()
	s.publish(doc, adminID, ActionForceRejected, reason)

	if s.dispatcher != nil {
		s.dispatcher.NotifyRejected(doc, reason)
	}

	s.logger.Info("管理员强制驳回",
		zap.String("docId", doc.ID),
		zap.String("adminId", adminID),
	)
	return doc, nil
}

// Delete 管理员软删除文书，删除时点的状态暂存供复原使用
func (s *AdminService) Delete(ctx context.Context, docID, adminID string) (*ApprovalDocument, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	doc, err := getDocument(ctx, s.db, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusDeleted {
		return nil, common.NewBusinessErrorWithCode(common.CodeDocumentTerminal)
	}

	doc.PrevStatus = doc.Status
	doc.Status = StatusDeleted
	doc.UpdatedBy = adminID
	if err := commitDocument(ctx, s.db, doc, "Status", "PrevStatus", "UpdatedBy"); err != nil {
		return nil, err
	}

	if !doc.PrevStatus.IsTerminal() {
		metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Dec()
	}
	s.history.Record(ctx, doc.ID, adminID, ActionDeleted, "")
	s.publish(doc, adminID, ActionDeleted, "")

	s.logger.Info("文书已删除",
		zap.String("docId", doc.ID),
		zap.String("adminId", adminID),
	)
	return doc, nil
}

// Restore 复原已删除文书
// 优先恢复删除时点暂存的状态，缺失时从决裁线推导
func (s *AdminService) Restore(ctx context.Context, docID, adminID string) (*ApprovalDocument, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	doc, err := getDocument(ctx, s.db, docID)
	if err != nil {
		return nil, err
	}
	if doc.Status != StatusDeleted {
		return nil, common.NewBusinessErrorWithCode(common.CodeDocumentNotDeleted)
	}

	restored := doc.PrevStatus
	if restored == "" || restored == StatusDeleted {
		restored = doc.Line.DeriveStatus()
	}

	doc.Status = restored
	doc.PrevStatus = ""
	doc.UpdatedBy = adminID
	if err := commitDocument(ctx, s.db, doc, "Status", "PrevStatus", "UpdatedBy"); err != nil {
		return nil, err
	}

	if !restored.IsTerminal() {
		metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Inc()
	}
	s.history.Record(ctx, doc.ID, adminID, ActionRestored, "")
	s.publish(doc, adminID, ActionRestored, "")

	s.logger.Info("文书已复原",
		zap.String("docId", doc.ID),
		zap.String("status", string(restored)),
	)
	return doc, nil
}

func (s *AdminService) publish(doc *ApprovalDocument, actorID, action, comment string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(DocumentEvent{
		DocID:   doc.ID,
		Status:  doc.Status,
		ActorID: actorID,
		Action:  action,
		Comment: comment,
		Forced:  true,
	})
}
