package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/common"
	"backend/internal/logger"
	"backend/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ============================================================================
// 文书读取与乐观提交
// ============================================================================

// getDocument 按ID加载文书
func getDocument(ctx context.Context, db *gorm.DB, docID string) (*ApprovalDocument, error) {
	var doc ApprovalDocument
	if err := db.WithContext(ctx).Where("id = ?", docID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeDocumentNotFound)
		}
		return nil, fmt.Errorf("查询决裁文书失败: %w", err)
	}
	return &doc, nil
}

// commitDocument 以乐观锁提交文书变更
// doc 持有加载时的版本号，版本不匹配说明已被并发更新
func commitDocument(ctx context.Context, db *gorm.DB, doc *ApprovalDocument, fields ...string) error {
	updated := *doc
	updated.Version = doc.Version + 1

	res := db.WithContext(ctx).Model(&ApprovalDocument{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Select(append(fields, "Version", "UpdatedAt")).
		Updates(&updated)
	if res.Error != nil {
		return fmt.Errorf("更新决裁文书失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NewBusinessErrorWithCode(common.CodeVersionConflict)
	}
	doc.Version = updated.Version
	return nil
}

// ============================================================================
// 决裁处理器
// ============================================================================

// Processor 决裁处理器：承接决裁人的同意/驳回操作
// 前置校验全部通过后才落库，履历与通知作为旁路在提交后触发
type Processor struct {
	db         *gorm.DB
	history    *HistoryRecorder
	dispatcher *Dispatcher
	bus        *DocumentEventBus
	logger     *zap.Logger
}

// ProcessorOption 配置决裁处理器
type ProcessorOption func(*Processor)

// WithDispatcher 设置通知分发器
func WithDispatcher(d *Dispatcher) ProcessorOption {
	return func(p *Processor) { p.dispatcher = d }
}

// WithEventBus 设置事件总线
func WithEventBus(bus *DocumentEventBus) ProcessorOption {
	return func(p *Processor) { p.bus = bus }
}

// WithProcessorLogger 设置日志器
func WithProcessorLogger(l *zap.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// NewProcessor 创建决裁处理器
func NewProcessor(db *gorm.DB, opts ...ProcessorOption) *Processor {
	p := &Processor{
		db:     db,
		logger: logger.Get(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.history = NewHistoryRecorder(db, p.logger)
	return p
}

// checkActorStep 校验 actor 是否为当前决裁人，返回当前步骤下标
// 已处理过的决裁人返回步骤重复错误，其余不符返回顺序错误
func checkActorStep(doc *ApprovalDocument, actorID string) (int, error) {
	idx := doc.Line.CurrentIndex()
	if idx >= 0 && doc.Line[idx].ApproverID == actorID {
		return idx, nil
	}
	for _, step := range doc.Line {
		if step.ApproverID == actorID && step.Decision != DecisionPending {
			return 0, common.NewBusinessErrorWithCode(common.CodeStepAlreadyDecided)
		}
	}
	return 0, common.NewBusinessErrorWithCode(common.CodeNotCurrentApprover)
}

// Approve 当前决裁人同意
// 最末步骤同意后文书完结，否则推进到下一决裁人
func (p *Processor) Approve(ctx context.Context, docID, actorID, comment string) (DocStatus, error) {
	doc, err := getDocument(ctx, p.db, docID)
	if err != nil {
		return "", err
	}
	if doc.Status.IsTerminal() {
		return "", common.NewBusinessErrorWithCode(common.CodeDocumentTerminal)
	}
	idx, err := checkActorStep(doc, actorID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	line := doc.Line.Clone()
	line[idx].Decision = DecisionApproved
	line[idx].Comment = comment
	line[idx].DecidedAt = &now

	newStatus := StatusInProgress
	if line.CurrentIndex() < 0 {
		newStatus = StatusApproved
	}

	doc.Line = line
	doc.Status = newStatus
	doc.UpdatedBy = actorID
	if err := commitDocument(ctx, p.db, doc, "Status", "Line", "UpdatedBy"); err != nil {
		return "", err
	}

	p.history.Record(ctx, doc.ID, actorID, ActionApproved, comment)
	metrics.DecisionsTotal.WithLabelValues(string(doc.DocType), ActionApproved, "normal").Inc()
	if newStatus.IsTerminal() {
		metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Dec()
	}
	p.publish(doc, actorID, ActionApproved, comment, false)

	if p.dispatcher != nil {
		if newStatus == StatusApproved {
			p.dispatcher.NotifyApprovalCompleted(doc)
		} else if next, ok := doc.CurrentStep(); ok {
			p.dispatcher.NotifyApprovalRequested(doc, next)
		}
	}

	p.logger.Info("决裁同意已提交",
		zap.String("docId", doc.ID),
		zap.String("actorId", actorID),
		zap.String("status", string(newStatus)),
	)
	return newStatus, nil
}

// Reject 当前决裁人驳回，必须填写事由
// 驳回即终结，后续步骤保持 PENDING 不再处理
func (p *Processor) Reject(ctx context.Context, docID, actorID, comment string) (DocStatus, error) {
	if strings.TrimSpace(comment) == "" {
		return "", common.NewBusinessErrorWithCode(common.CodeCommentRequired)
	}

	doc, err := getDocument(ctx, p.db, docID)
	if err != nil {
		return "", err
	}
	if doc.Status.IsTerminal() {
		return "", common.NewBusinessErrorWithCode(common.CodeDocumentTerminal)
	}
	idx, err := checkActorStep(doc, actorID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	line := doc.Line.Clone()
	line[idx].Decision = DecisionRejected
	line[idx].Comment = comment
	line[idx].DecidedAt = &now

	doc.Line = line
	doc.Status = StatusRejected
	doc.UpdatedBy = actorID
	if err := commitDocument(ctx, p.db, doc, "Status", "Line", "UpdatedBy"); err != nil {
		return "", err
	}

	p.history.Record(ctx, doc.ID, actorID, ActionRejected, comment)
	metrics.DecisionsTotal.WithLabelValues(string(doc.DocType), ActionRejected, "normal").Inc()
	metrics.DocumentsPendingGauge.WithLabelValues(string(doc.DocType)).Dec()
	p.publish(doc, actorID, ActionRejected, comment, false)

	if p.dispatcher != nil {
		p.dispatcher.NotifyRejected(doc, comment)
	}

	p.logger.Info("决裁驳回已提交",
		zap.String("docId", doc.ID),
		zap.String("actorId", actorID),
	)
	return StatusRejected, nil
}

func (p *Processor) publish(doc *ApprovalDocument, actorID, action, comment string, forced bool) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(DocumentEvent{
		DocID:   doc.ID,
		Status:  doc.Status,
		ActorID: actorID,
		Action:  action,
		Comment: comment,
		Forced:  forced,
	})
}

// History 返回履历记录器，供读端与管理操作复用
func (p *Processor) History() *HistoryRecorder {
	return p.history
}
