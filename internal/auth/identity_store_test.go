package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/common"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:identity_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Employee{}))
	return db
}

func seedEmployee(t *testing.T, store *IdentityStore, id, roles string) *Employee {
	t.Helper()
	emp := &Employee{
		ID:       id,
		Name:     "홍길동",
		Email:    id + "@example.com",
		DeptCode: "D100",
		DeptName: "경영지원",
		Roles:    roles,
		IsActive: true,
	}
	require.NoError(t, store.Create(context.Background(), emp, "secret-pw"))
	return emp
}

func TestIdentityStoreAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(setupIdentityTestDB(t), nil)
	seedEmployee(t, store, "emp-1", "")

	emp, err := store.Authenticate(ctx, "emp-1", "secret-pw")
	require.NoError(t, err)
	assert.Equal(t, "emp-1", emp.ID)

	_, err = store.Authenticate(ctx, "emp-1", "wrong-pw")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInvalidCredentials))

	// 不存在的账号返回同样的凭证错误，不暴露账号存在性
	_, err = store.Authenticate(ctx, "emp-x", "secret-pw")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInvalidCredentials))
}

func TestIdentityStoreInactiveAccountRejected(t *testing.T) {
	ctx := context.Background()
	db := setupIdentityTestDB(t)
	store := NewIdentityStore(db, nil)
	seedEmployee(t, store, "emp-1", "")

	require.NoError(t, db.Model(&Employee{}).Where("id = ?", "emp-1").Update("is_active", false).Error)

	_, err := store.Authenticate(ctx, "emp-1", "secret-pw")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInvalidCredentials))
}

func TestIdentityStoreIsAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(setupIdentityTestDB(t), nil)
	seedEmployee(t, store, "emp-admin", "admin,auditor")
	seedEmployee(t, store, "emp-plain", "auditor")

	assert.True(t, store.IsAdmin(ctx, "emp-admin"))
	assert.False(t, store.IsAdmin(ctx, "emp-plain"))
	assert.False(t, store.IsAdmin(ctx, "emp-missing"))
}

func TestIdentityStoreResolveEmail(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(setupIdentityTestDB(t), nil)
	seedEmployee(t, store, "emp-1", "")

	assert.Equal(t, "emp-1@example.com", store.ResolveEmail(ctx, "emp-1"))
	assert.Equal(t, "", store.ResolveEmail(ctx, "emp-x"))
}

func TestEmployeeRoleList(t *testing.T) {
	emp := &Employee{Roles: " admin , auditor ,"}
	assert.Equal(t, []string{"admin", "auditor"}, emp.RoleList())
	assert.True(t, emp.HasRole("admin"))
	assert.False(t, emp.HasRole("root"))

	empty := &Employee{}
	assert.Nil(t, empty.RoleList())
}
