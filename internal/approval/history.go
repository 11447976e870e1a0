package approval

import (
	"context"
	"fmt"

	"backend/internal/logger"
	"backend/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HistoryRecorder 决裁履历记录器
// 履历写入是尽力而为的旁路审计：写入失败只记日志与指标，绝不让触发它的
// 决裁操作失败
type HistoryRecorder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewHistoryRecorder 创建履历记录器
func NewHistoryRecorder(db *gorm.DB, log *zap.Logger) *HistoryRecorder {
	if log == nil {
		log = logger.Get()
	}
	return &HistoryRecorder{db: db, logger: log}
}

// Record 追加一条履历，失败时吞掉错误
func (r *HistoryRecorder) Record(ctx context.Context, docID, actorID, actionType, comment string) {
	h := &ApprovalHistory{
		DocID:         docID,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionComment: comment,
	}
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		metrics.HistoryWriteFailures.Inc()
		r.logger.Warn("决裁履历写入失败",
			zap.String("docId", docID),
			zap.String("actionType", actionType),
			zap.Error(err),
		)
	}
}

// ListByDocument 查询某文书的履历，按时间升序
// 引擎自身不读履历，此方法仅服务报表类读端
func (r *HistoryRecorder) ListByDocument(ctx context.Context, docID string) ([]*ApprovalHistory, error) {
	var items []*ApprovalHistory
	if err := r.db.WithContext(ctx).
		Where("doc_id = ?", docID).
		Order("action_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询决裁履历失败: %w", err)
	}
	return items, nil
}
