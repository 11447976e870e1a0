package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/common"
	"backend/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RoleAdmin 决裁管理员角色
const RoleAdmin = "admin"

// Employee 职员账号
type Employee struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"size:200;uniqueIndex"`
	Phone        string    `json:"phone" gorm:"size:30"`
	DeptCode     string    `json:"deptCode" gorm:"size:30;index"`
	DeptName     string    `json:"deptName" gorm:"size:100"`
	PositionName string    `json:"positionName" gorm:"size:100"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Roles        string    `json:"roles" gorm:"size:200"` // 逗号分隔
	IsActive     bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 指定表名
func (Employee) TableName() string {
	return "employees"
}

// RoleList 返回角色列表
func (e *Employee) RoleList() []string {
	if e.Roles == "" {
		return nil
	}
	parts := strings.Split(e.Roles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.TrimSpace(p); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole 判断是否拥有指定角色
func (e *Employee) HasRole(role string) bool {
	for _, r := range e.RoleList() {
		if r == role {
			return true
		}
	}
	return false
}

// SetPassword 以 bcrypt 散列存储密码
func (e *Employee) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码散列失败: %w", err)
	}
	e.PasswordHash = string(hash)
	return nil
}

// CheckPassword 校验明文密码
func (e *Employee) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(plain)) == nil
}

// IdentityStore 职员身份存储
// 同时作为决裁引擎的管理员校验器与通知接收地址解析器
type IdentityStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewIdentityStore 创建身份存储
func NewIdentityStore(db *gorm.DB, log *zap.Logger) *IdentityStore {
	if log == nil {
		log = logger.Get()
	}
	return &IdentityStore{db: db, logger: log}
}

// Authenticate 校验账号密码
func (s *IdentityStore) Authenticate(ctx context.Context, userID, password string) (*Employee, error) {
	emp, err := s.GetByID(ctx, userID)
	if err != nil {
		if common.IsCode(err, common.CodeUserNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeInvalidCredentials)
		}
		return nil, err
	}
	if !emp.IsActive || !emp.CheckPassword(password) {
		return nil, common.NewBusinessErrorWithCode(common.CodeInvalidCredentials)
	}
	return emp, nil
}

// GetByID 按ID查询职员
func (s *IdentityStore) GetByID(ctx context.Context, userID string) (*Employee, error) {
	var emp Employee
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewBusinessErrorWithCode(common.CodeUserNotFound)
		}
		return nil, fmt.Errorf("查询职员失败: %w", err)
	}
	return &emp, nil
}

// IsAdmin 判断职员是否具备管理员角色
func (s *IdentityStore) IsAdmin(ctx context.Context, userID string) bool {
	emp, err := s.GetByID(ctx, userID)
	if err != nil {
		return false
	}
	return emp.IsActive && emp.HasRole(RoleAdmin)
}

// ResolveEmail 解析职员的通知邮箱，查不到时返回空串
func (s *IdentityStore) ResolveEmail(ctx context.Context, userID string) string {
	emp, err := s.GetByID(ctx, userID)
	if err != nil {
		s.logger.Debug("通知邮箱解析失败", zap.String("userId", userID), zap.Error(err))
		return ""
	}
	return emp.Email
}

// Create 创建职员账号
func (s *IdentityStore) Create(ctx context.Context, emp *Employee, password string) error {
	if err := emp.SetPassword(password); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(emp).Error; err != nil {
		return fmt.Errorf("创建职员失败: %w", err)
	}
	return nil
}
