package auth

import (
	"strings"

	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// gin context 键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUserName = "user_name"
	ContextKeyDeptCode = "dept_code"
	ContextKeyDeptName = "dept_name"
	ContextKeyRoles    = "roles"
)

// AuthMiddleware 解析 Bearer 令牌并注入操作者信息
func AuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			common.AbortWithError(c, common.CodeUnauthorized, "")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			common.AbortWithError(c, common.CodeUnauthorized, "Authorization 头格式错误")
			return
		}

		claims, err := jwtService.Parse(parts[1])
		if err != nil {
			common.AbortWithError(c, common.CodeUnauthorized, "令牌无效或已过期")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserName, claims.UserName)
		c.Set(ContextKeyDeptCode, claims.DeptCode)
		c.Set(ContextKeyDeptName, claims.DeptName)
		c.Set(ContextKeyRoles, claims.Roles)
		c.Next()
	}
}

// RequireAdmin 限定管理员访问
// 管理服务内部仍会二次校验，中间件只做入口拦截
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, role := range CurrentRoles(c) {
			if role == RoleAdmin {
				c.Next()
				return
			}
		}
		common.AbortWithError(c, common.CodeAdminRequired, "")
	}
}

// CurrentUserID 取当前操作者ID
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}

// CurrentUserName 取当前操作者姓名
func CurrentUserName(c *gin.Context) string {
	return c.GetString(ContextKeyUserName)
}

// CurrentDept 取当前操作者部门
func CurrentDept(c *gin.Context) (code, name string) {
	return c.GetString(ContextKeyDeptCode), c.GetString(ContextKeyDeptName)
}

// CurrentRoles 取当前操作者角色列表
func CurrentRoles(c *gin.Context) []string {
	if v, ok := c.Get(ContextKeyRoles); ok {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}
