package approval

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/common"
	"backend/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ============================================================================
// 请求结构
// ============================================================================

// PolicyStepInput 规程步骤的写入参数
type PolicyStepInput struct {
	StepOrder    int     `json:"stepOrder" binding:"required,min=1"`
	DeptCode     string  `json:"deptCode"`
	DeptName     string  `json:"deptName"`
	PositionCode string  `json:"positionCode"`
	PositionName string  `json:"positionName"`
	ApproverID   *string `json:"approverId"`
	ApproverName *string `json:"approverName"`
}

// CreatePolicyRequest 创建决裁规程请求
type CreatePolicyRequest struct {
	PolicyName  string            `json:"policyName" binding:"required,max=100"`
	DocType     string            `json:"docType" binding:"required"`
	CreatedBy   string            `json:"-"`
	CreatedDept string            `json:"createdDept"`
	Steps       []PolicyStepInput `json:"steps" binding:"required,min=1,dive"`
}

// UpdatePolicyRequest 更新决裁规程请求，整体替换步骤列表
type UpdatePolicyRequest struct {
	PolicyName string            `json:"policyName" binding:"required,max=100"`
	Steps      []PolicyStepInput `json:"steps" binding:"required,min=1,dive"`
}

// ListPoliciesRequest 规程列表查询请求
type ListPoliciesRequest struct {
	common.PaginationRequest
	DocType string `form:"docType"`
	Keyword string `form:"keyword"`
}

// ============================================================================
// 服务
// ============================================================================

// PolicyService 决裁规程管理服务
type PolicyService struct {
	*common.BaseService
	logger *zap.Logger
}

// NewPolicyService 创建规程服务
func NewPolicyService(db *gorm.DB, log *zap.Logger) *PolicyService {
	if log == nil {
		log = logger.Get()
	}
	return &PolicyService{
		BaseService: common.NewBaseService(db),
		logger:      log,
	}
}

// validateStepOrders 校验步骤顺序为正整数、不重复且严格递增
func validateStepOrders(steps []PolicyStepInput) error {
	prev := 0
	for _, s := range steps {
		if s.StepOrder <= prev {
			return common.NewBusinessErrorWithCode(common.CodePolicyStepOrder)
		}
		prev = s.StepOrder
	}
	return nil
}

func buildPolicySteps(policyID string, inputs []PolicyStepInput) []PolicyStep {
	steps := make([]PolicyStep, 0, len(inputs))
	for _, in := range inputs {
		steps = append(steps, PolicyStep{
			PolicyID:     policyID,
			StepOrder:    in.StepOrder,
			DeptCode:     in.DeptCode,
			DeptName:     in.DeptName,
			PositionCode: in.PositionCode,
			PositionName: in.PositionName,
			ApproverID:   in.ApproverID,
			ApproverName: in.ApproverName,
		})
	}
	return steps
}

// Create 创建决裁规程，初始为停用状态
func (s *PolicyService) Create(ctx context.Context, req *CreatePolicyRequest) (*ApprovalPolicy, error) {
	docType, err := ParseDocType(req.DocType)
	if err != nil {
		return nil, err
	}
	if err := validateStepOrders(req.Steps); err != nil {
		return nil, err
	}

	policy := &ApprovalPolicy{
		ID:          uuid.New().String(),
		PolicyName:  req.PolicyName,
		DocType:     docType,
		IsActive:    false,
		CreatedBy:   req.CreatedBy,
		CreatedDept: req.CreatedDept,
	}
	policy.Steps = buildPolicySteps(policy.ID, req.Steps)

	if err := s.DB.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, fmt.Errorf("创建决裁规程失败: %w", err)
	}

	s.logger.Info("决裁规程已创建",
		zap.String("policyId", policy.ID),
		zap.String("docType", string(docType)),
		zap.Int("steps", len(policy.Steps)),
	)
	return policy, nil
}

// Get 查询单条规程（含步骤）
func (s *PolicyService) Get(ctx context.Context, policyID string) (*ApprovalPolicy, error) {
	var policy ApprovalPolicy
	err := s.DB.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("id = ?", policyID).
		First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodePolicyNotFound)
		}
		return nil, fmt.Errorf("查询决裁规程失败: %w", err)
	}
	return &policy, nil
}

// List 分页查询规程
func (s *PolicyService) List(ctx context.Context, req *ListPoliciesRequest) ([]*ApprovalPolicy, int64, error) {
	query := s.DB.Model(&ApprovalPolicy{})
	query = s.ApplyEqual(query, "doc_type", req.DocType)
	query = s.ApplyKeyword(query, "policy_name", req.Keyword)
	query = query.Order("created_at DESC")

	var items []*ApprovalPolicy
	total, err := s.CountThenFind(ctx, query, req.PaginationRequest, &items)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update 更新规程名称并整体替换步骤列表
func (s *PolicyService) Update(ctx context.Context, policyID string, req *UpdatePolicyRequest) (*ApprovalPolicy, error) {
	if err := validateStepOrders(req.Steps); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, policyID); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ApprovalPolicy{}).
			Where("id = ?", policyID).
			Update("policy_name", req.PolicyName).Error; err != nil {
			return fmt.Errorf("更新规程失败: %w", err)
		}
		if err := tx.Where("policy_id = ?", policyID).Delete(&PolicyStep{}).Error; err != nil {
			return fmt.Errorf("清除旧步骤失败: %w", err)
		}
		steps := buildPolicySteps(policyID, req.Steps)
		if err := tx.Create(&steps).Error; err != nil {
			return fmt.Errorf("写入新步骤失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("决裁规程已更新", zap.String("policyId", policyID))
	return s.Get(ctx, policyID)
}

// Activate 启用规程，同类型原启用规程自动停用
// 已上报文书的决裁线是快照，不受规程切换影响
func (s *PolicyService) Activate(ctx context.Context, policyID string) (*ApprovalPolicy, error) {
	policy, err := s.Get(ctx, policyID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ApprovalPolicy{}).
			Where("doc_type = ? AND is_active = ? AND id <> ?", policy.DocType, true, policyID).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("停用原规程失败: %w", err)
		}
		if err := tx.Model(&ApprovalPolicy{}).
			Where("id = ?", policyID).
			Update("is_active", true).Error; err != nil {
			return fmt.Errorf("启用规程失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("决裁规程已启用",
		zap.String("policyId", policyID),
		zap.String("docType", string(policy.DocType)),
	)
	return s.Get(ctx, policyID)
}

// Deactivate 停用规程，此后该类型文书上报时按空决裁线处理
func (s *PolicyService) Deactivate(ctx context.Context, policyID string) (*ApprovalPolicy, error) {
	if _, err := s.Get(ctx, policyID); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&ApprovalPolicy{}).
		Where("id = ?", policyID).
		Update("is_active", false).Error; err != nil {
		return nil, fmt.Errorf("停用规程失败: %w", err)
	}
	s.logger.Info("决裁规程已停用", zap.String("policyId", policyID))
	return s.Get(ctx, policyID)
}

// Delete 删除规程及其步骤
func (s *PolicyService) Delete(ctx context.Context, policyID string) error {
	if _, err := s.Get(ctx, policyID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("policy_id = ?", policyID).Delete(&PolicyStep{}).Error; err != nil {
			return fmt.Errorf("删除规程步骤失败: %w", err)
		}
		if err := tx.Where("id = ?", policyID).Delete(&ApprovalPolicy{}).Error; err != nil {
			return fmt.Errorf("删除规程失败: %w", err)
		}
		return nil
	})
}
