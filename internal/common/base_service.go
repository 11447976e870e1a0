package common

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// BaseService 服务基类，封装通用的数据库查询辅助方法
// 各业务Service可嵌入此基类复用分页与过滤逻辑
type BaseService struct {
	DB *gorm.DB
}

// NewBaseService 创建BaseService实例
func NewBaseService(db *gorm.DB) *BaseService {
	return &BaseService{DB: db}
}

// ApplyPagination 应用分页条件
func (s *BaseService) ApplyPagination(query *gorm.DB, req PaginationRequest) *gorm.DB {
	return query.Offset(req.GetOffset()).Limit(req.GetPageSize())
}

// ApplyKeyword 对指定列应用关键词模糊过滤，空关键词时原样返回
func (s *BaseService) ApplyKeyword(query *gorm.DB, column, keyword string) *gorm.DB {
	if keyword == "" {
		return query
	}
	return query.Where(fmt.Sprintf("%s LIKE ?", column), "%"+keyword+"%")
}

// ApplyEqual 对指定列应用等值过滤，空值时原样返回
func (s *BaseService) ApplyEqual(query *gorm.DB, column string, value string) *gorm.DB {
	if value == "" {
		return query
	}
	return query.Where(fmt.Sprintf("%s = ?", column), value)
}

// CountThenFind 先统计总数再查询当前页，dest 必须为切片指针
func (s *BaseService) CountThenFind(ctx context.Context, query *gorm.DB, req PaginationRequest, dest any) (int64, error) {
	var total int64
	if err := query.WithContext(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("统计记录数失败: %w", err)
	}
	if err := s.ApplyPagination(query.WithContext(ctx), req).Find(dest).Error; err != nil {
		return 0, fmt.Errorf("查询列表失败: %w", err)
	}
	return total, nil
}
