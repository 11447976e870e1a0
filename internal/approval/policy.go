package approval

import "time"

// ApprovalPolicy 决裁规程：按文书类型配置的决裁线模板
// 规程独占其步骤列表；同一文书类型最多一条启用中的规程
type ApprovalPolicy struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	PolicyName  string    `json:"policyName" gorm:"size:100;not null"`
	DocType     DocType   `json:"docType" gorm:"size:30;not null;index"`
	IsActive    bool      `json:"isActive" gorm:"not null;default:false;index"`
	CreatedBy   string    `json:"createdBy" gorm:"size:64"`
	CreatedDept string    `json:"createdDept" gorm:"size:100"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`

	// 子步骤仅携带 PolicyID 回链，不反向持有规程
	Steps []PolicyStep `json:"steps" gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (ApprovalPolicy) TableName() string {
	return "approval_policies"
}

// PolicyStep 规程中的单个决裁步骤模板
type PolicyStep struct {
	ID           uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	PolicyID     string  `json:"policyId" gorm:"type:uuid;not null;index"`
	StepOrder    int     `json:"stepOrder" gorm:"not null"` // 正整数，规程内唯一且严格递增
	DeptCode     string  `json:"deptCode" gorm:"size:30"`
	DeptName     string  `json:"deptName" gorm:"size:100"`
	PositionCode string  `json:"positionCode" gorm:"size:30"`
	PositionName string  `json:"positionName" gorm:"size:100"`
	ApproverID   *string `json:"approverId,omitempty" gorm:"size:64"` // 可选的指定决裁人
	ApproverName *string `json:"approverName,omitempty" gorm:"size:100"`
}

// TableName 指定表名
func (PolicyStep) TableName() string {
	return "approval_policy_steps"
}
