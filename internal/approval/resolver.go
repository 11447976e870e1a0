package approval

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver 决裁线解析器
// 上报时按文书类型取启用中的规程，把步骤模板固化为文书的决裁线快照
type Resolver struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewResolver 创建决裁线解析器
func NewResolver(db *gorm.DB, log *zap.Logger) *Resolver {
	if log == nil {
		log = logger.Get()
	}
	return &Resolver{db: db, logger: log}
}

// ResolveLine 解析指定文书类型的决裁线
// 无启用中规程时返回空线（文书上报后直接完结），不视为错误
// deptCode 目前仅用于记录，规程尚未按部门细分
func (r *Resolver) ResolveLine(ctx context.Context, docType DocType, deptCode string) (ApprovalLine, error) {
	var policy ApprovalPolicy
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("doc_type = ? AND is_active = ?", docType, true).
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Info("文书类型无启用中的决裁规程，按空决裁线处理",
				zap.String("docType", string(docType)),
				zap.String("deptCode", deptCode),
			)
			return ApprovalLine{}, nil
		}
		return nil, fmt.Errorf("查询决裁规程失败: %w", err)
	}

	// 快照时按 1..n 重排序号，规程后续变更不影响已上报文书
	line := make(ApprovalLine, 0, len(policy.Steps))
	for i, step := range policy.Steps {
		approverID := ""
		approverName := ""
		if step.ApproverID != nil {
			approverID = *step.ApproverID
		}
		if step.ApproverName != nil {
			approverName = *step.ApproverName
		}
		line = append(line, NewApproverStep(i+1, approverID, approverName, step.DeptName, step.PositionName))
	}
	return line, nil
}
