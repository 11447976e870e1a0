package approval

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

func setupPolicyServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:policy_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApprovalPolicy{}, &PolicyStep{}))
	return db
}

func TestPolicyServiceCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(setupPolicyServiceTestDB(t), nil)

	created, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "지출 기본선",
		DocType:    "EXPENSE",
		CreatedBy:  "admin-1",
		Steps: []PolicyStepInput{
			{StepOrder: 1, DeptName: "회계팀", PositionName: "팀장"},
			{StepOrder: 2, DeptName: "경영지원", PositionName: "본부장"},
		},
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 1, got.Steps[0].StepOrder)
}

func TestPolicyServiceCreateRejectsBadStepOrder(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(setupPolicyServiceTestDB(t), nil)

	cases := [][]PolicyStepInput{
		{{StepOrder: 2}, {StepOrder: 1}},          // 非递增
		{{StepOrder: 1}, {StepOrder: 1}},          // 重复
	}
	for _, steps := range cases {
		_, err := svc.Create(ctx, &CreatePolicyRequest{
			PolicyName: "잘못된 결재선",
			DocType:    "REPORT",
			Steps:      steps,
		})
		require.Error(t, err)
		assert.True(t, common.IsCode(err, common.CodePolicyStepOrder))
	}

	_, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "타입 오류",
		DocType:    "BANANA",
		Steps:      []PolicyStepInput{{StepOrder: 1}},
	})
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeInvalidDocType))
}

func TestPolicyServiceActivateSwitchesActive(t *testing.T) {
	ctx := context.Background()
	db := setupPolicyServiceTestDB(t)
	svc := NewPolicyService(db, nil)

	first, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "1차 결재선",
		DocType:    "LEAVE",
		Steps:      []PolicyStepInput{{StepOrder: 1, DeptName: "인사팀"}},
	})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "2차 결재선",
		DocType:    "LEAVE",
		Steps:      []PolicyStepInput{{StepOrder: 1, DeptName: "인사팀"}, {StepOrder: 2, DeptName: "경영지원"}},
	})
	require.NoError(t, err)

	_, err = svc.Activate(ctx, first.ID)
	require.NoError(t, err)
	activated, err := svc.Activate(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	// 同类型只剩一条启用中
	var count int64
	require.NoError(t, db.Model(&ApprovalPolicy{}).
		Where("doc_type = ? AND is_active = ?", DocTypeLeave, true).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	firstAgain, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, firstAgain.IsActive)
}

func TestPolicyServiceUpdateReplacesSteps(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(setupPolicyServiceTestDB(t), nil)

	created, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "구 결재선",
		DocType:    "GENERAL",
		Steps:      []PolicyStepInput{{StepOrder: 1, DeptName: "총무팀"}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &UpdatePolicyRequest{
		PolicyName: "신 결재선",
		Steps: []PolicyStepInput{
			{StepOrder: 1, DeptName: "총무팀"},
			{StepOrder: 2, DeptName: "경영지원"},
			{StepOrder: 3, DeptName: "대표이사"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "신 결재선", updated.PolicyName)
	require.Len(t, updated.Steps, 3)
}

func TestPolicyServiceDeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(setupPolicyServiceTestDB(t), nil)

	created, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "삭제 대상",
		DocType:    "REPORT",
		Steps:      []PolicyStepInput{{StepOrder: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodePolicyNotFound))
}

func TestPolicyServiceList(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(setupPolicyServiceTestDB(t), nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, &CreatePolicyRequest{
			PolicyName: fmt.Sprintf("결재선-%d", i),
			DocType:    "EXPENSE",
			Steps:      []PolicyStepInput{{StepOrder: 1}},
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, &CreatePolicyRequest{
		PolicyName: "휴가 결재선",
		DocType:    "LEAVE",
		Steps:      []PolicyStepInput{{StepOrder: 1}},
	})
	require.NoError(t, err)

	items, total, err := svc.List(ctx, &ListPoliciesRequest{DocType: "EXPENSE"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 3)
}
