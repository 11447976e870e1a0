package approval

import (
	"strings"
	"time"

	"backend/internal/common"

	"gorm.io/datatypes"
)

// ============================================================================
// 枚举定义
// ============================================================================

// DocType 决裁文书类型
type DocType string

const (
	DocTypeReport  DocType = "REPORT"  // 业务报告
	DocTypeExpense DocType = "EXPENSE" // 支出决议
	DocTypeLeave   DocType = "LEAVE"   // 休假申请
	DocTypeGeneral DocType = "GENERAL" // 一般起案
)

var validDocTypes = map[DocType]bool{
	DocTypeReport:  true,
	DocTypeExpense: true,
	DocTypeLeave:   true,
	DocTypeGeneral: true,
}

// ParseDocType 解析文书类型，不合法时返回校验错误
func ParseDocType(raw string) (DocType, error) {
	dt := DocType(strings.ToUpper(strings.TrimSpace(raw)))
	if !validDocTypes[dt] {
		return "", common.NewBusinessErrorWithCode(common.CodeInvalidDocType)
	}
	return dt, nil
}

// DocStatus 决裁文书状态
type DocStatus string

const (
	StatusPending    DocStatus = "PENDING"     // 已上报，尚无决裁
	StatusInProgress DocStatus = "IN_PROGRESS" // 决裁进行中
	StatusApproved   DocStatus = "APPROVED"    // 决裁完结（终结态）
	StatusRejected   DocStatus = "REJECTED"    // 已驳回（终结态）
	StatusDeleted    DocStatus = "DELETED"     // 已删除（终结态，可复原）
)

// IsTerminal 是否为终结状态，终结后不再接受普通决裁
func (s DocStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusDeleted:
		return true
	}
	return false
}

// Decision 单个决裁步骤的处理结果
type Decision string

const (
	DecisionPending  Decision = "PENDING"
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

// ============================================================================
// 履历动作标签
// ============================================================================

// 履历动作标签沿用既有业务系统的韩文显示值，报表端直接展示
const (
	ActionCreated       = "등록"        // 登记
	ActionApproved      = "결재"        // 决裁
	ActionRejected      = "반려"        // 驳回
	ActionDeleted       = "삭제"        // 删除
	ActionModified      = "수정"        // 修改
	ActionRestored      = "복원"        // 复原
	ActionForceApproved = "관리자 강제결재" // 管理员强制决裁
	ActionForceRejected = "관리자 강제반려" // 管理员强制驳回
)

// ActionLabel 状态到履历动作标签的全映射
// APPROVED → 결재, REJECTED → 반려, DELETED → 삭제, 其余一律 수정
func ActionLabel(status DocStatus) string {
	switch status {
	case StatusApproved:
		return ActionApproved
	case StatusRejected:
		return ActionRejected
	case StatusDeleted:
		return ActionDeleted
	default:
		return ActionModified
	}
}

// ============================================================================
// 决裁线
// ============================================================================

// 决裁人信息缺失时的占位值
const (
	UnknownApproverID   = "-"
	UnknownApproverName = "미등록 사용자" // 未登记用户
)

// ApproverStep 决裁线中的单个步骤
// 属于文书聚合的值对象，随文书整体以 JSON 快照存储
type ApproverStep struct {
	Order         int        `json:"order"`                   // 1起始的决裁顺序
	ApproverID    string     `json:"approverId"`              // 决裁人ID，未绑定时为 "-"
	ApproverName  string     `json:"approverName"`            // 决裁人姓名
	DeptName      string     `json:"deptName"`                // 部门名
	PositionName  string     `json:"positionName"`            // 职级名
	Decision      Decision   `json:"decision"`                // 处理结果
	Comment       string     `json:"comment"`                 // 决裁意见
	DecidedAt     *time.Time `json:"decidedAt"`               // 处理时间
	SignImagePath string     `json:"signImagePath,omitempty"` // 签章图片路径
}

// NewApproverStep 创建决裁步骤并做构造期归一化：
// 空ID → "-"，空姓名 → 미등록 사용자，空决裁结果 → PENDING
func NewApproverStep(order int, approverID, approverName, deptName, positionName string) ApproverStep {
	step := ApproverStep{
		Order:        order,
		ApproverID:   strings.TrimSpace(approverID),
		ApproverName: strings.TrimSpace(approverName),
		DeptName:     deptName,
		PositionName: positionName,
		Decision:     DecisionPending,
		Comment:      "",
	}
	if step.ApproverID == "" {
		step.ApproverID = UnknownApproverID
	}
	if step.ApproverName == "" {
		step.ApproverName = UnknownApproverName
	}
	return step
}

// ApprovalLine 文书的决裁线：上报时刻的规程快照，此后长度不变
type ApprovalLine []ApproverStep

// Clone 深拷贝决裁线，决裁操作在副本上生效后整体提交
func (l ApprovalLine) Clone() ApprovalLine {
	if l == nil {
		return nil
	}
	out := make(ApprovalLine, len(l))
	copy(out, l)
	return out
}

// CurrentIndex 返回当前步骤（顺序最小的 PENDING 步骤）下标，线已耗尽时返回 -1
func (l ApprovalLine) CurrentIndex() int {
	for i, step := range l {
		if step.Decision == DecisionPending {
			return i
		}
	}
	return -1
}

// Validate 校验决裁顺序恰好为 1..n 且递增
func (l ApprovalLine) Validate() error {
	for i, step := range l {
		if step.Order != i+1 {
			return common.NewBusinessError(common.CodePolicyStepOrder,
				"决裁线顺序必须为 1..n 连续递增")
		}
	}
	return nil
}

// DeriveStatus 仅从决裁线推导文书状态
// 用于复原时缺失删除前状态的兜底
func (l ApprovalLine) DeriveStatus() DocStatus {
	if len(l) == 0 {
		return StatusPending
	}
	approved := 0
	for _, step := range l {
		switch step.Decision {
		case DecisionRejected:
			return StatusRejected
		case DecisionApproved:
			approved++
		}
	}
	switch {
	case approved == len(l):
		return StatusApproved
	case approved > 0:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// ============================================================================
// 数据模型
// ============================================================================

// ApprovalDocument 决裁文书
// 决裁线以 JSON 整体持有（聚合根独占子列表），version 字段做乐观锁
type ApprovalDocument struct {
	ID         string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title      string         `json:"title" gorm:"size:200;not null"`
	DocType    DocType        `json:"docType" gorm:"size:30;not null;index"`
	Status     DocStatus      `json:"status" gorm:"size:20;not null;default:PENDING;index"`
	PrevStatus DocStatus      `json:"prevStatus,omitempty" gorm:"size:20"` // 删除时点的状态，供复原使用
	DeptCode   string         `json:"deptCode" gorm:"size:30;index"`
	DeptName   string         `json:"deptName" gorm:"size:100"`
	AuthorID   string         `json:"authorId" gorm:"size:64;not null;index"`
	AuthorName string         `json:"authorName" gorm:"size:100"`
	Content    string         `json:"content" gorm:"type:text"`
	FormData   datatypes.JSON `json:"formData,omitempty" gorm:"type:jsonb"` // 起案表单数据
	Line       ApprovalLine   `json:"line" gorm:"type:jsonb;serializer:json"`
	Version    int            `json:"version" gorm:"not null;default:0"` // 乐观锁版本号

	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
	CreatedBy string    `json:"createdBy" gorm:"size:64"`
	UpdatedBy string    `json:"updatedBy" gorm:"size:64"`
}

// TableName 指定表名
func (ApprovalDocument) TableName() string {
	return "approval_documents"
}

// CurrentStep 返回当前待处理步骤，线已耗尽时第二返回值为 false
func (d *ApprovalDocument) CurrentStep() (ApproverStep, bool) {
	idx := d.Line.CurrentIndex()
	if idx < 0 {
		return ApproverStep{}, false
	}
	return d.Line[idx], true
}

// ApprovalHistory 决裁履历（只追加，不更新不删除）
// 引擎侧只写；报表等读端另行消费
type ApprovalHistory struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	DocID         string    `json:"docId" gorm:"type:uuid;not null;index"`
	ActorID       string    `json:"actorId" gorm:"size:64;not null"`
	ActionType    string    `json:"actionType" gorm:"size:50;not null"`
	ActionComment string    `json:"actionComment" gorm:"type:text"`
	ActionAt      time.Time `json:"actionAt" gorm:"not null;autoCreateTime;index"`
}

// TableName 指定表名
func (ApprovalHistory) TableName() string {
	return "approval_histories"
}
