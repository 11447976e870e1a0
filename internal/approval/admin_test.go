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

// allowAll 测试用权限校验器
type allowAll struct{}

func (allowAll) IsAdmin(ctx context.Context, userID string) bool { return true }

type denyAll struct{}

func (denyAll) IsAdmin(ctx context.Context, userID string) bool { return false }

func setupAdminTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:admin_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApprovalDocument{}, &ApprovalHistory{}))
	return db
}

func TestAdminForceApproveLeavesStepsPending(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})
	doc := seedDocument(t, db, twoStepLine())

	forced, err := svc.ForceApprove(ctx, doc.ID, "admin-1", "긴급 집행")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, forced.Status)

	var current ApprovalDocument
	require.NoError(t, db.First(&current, "id = ?", doc.ID).Error)
	assert.Equal(t, StatusApproved, current.Status)
	// 决裁线步骤不回填
	assert.Equal(t, DecisionPending, current.Line[0].Decision)
	assert.Equal(t, DecisionPending, current.Line[1].Decision)
	assert.Equal(t, 1, current.Version)

	history := listHistory(t, db, doc.ID)
	require.Len(t, history, 1)
	assert.Equal(t, ActionForceApproved, history[0].ActionType)
	assert.Equal(t, "admin-1", history[0].ActorID)
	assert.Equal(t, "긴급 집행", history[0].ActionComment)
}

func TestAdminForceRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})
	doc := seedDocument(t, db, twoStepLine())

	_, err := svc.ForceReject(ctx, doc.ID, "admin-1", " ")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeCommentRequired))

	forced, err := svc.ForceReject(ctx, doc.ID, "admin-1", "규정 위반")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, forced.Status)

	history := listHistory(t, db, doc.ID)
	require.Len(t, history, 1)
	assert.Equal(t, ActionForceRejected, history[0].ActionType)
}

func TestAdminForceOpsRefuseTerminalDocument(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})
	doc := seedDocument(t, db, twoStepLine())

	_, err := svc.ForceReject(ctx, doc.ID, "admin-1", "규정 위반")
	require.NoError(t, err)

	// 已终结的文书不再接受强制操作
	_, err = svc.ForceApprove(ctx, doc.ID, "admin-1", "")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeDocumentTerminal))
	_, err = svc.ForceReject(ctx, doc.ID, "admin-1", "사유")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeDocumentTerminal))
}

func TestAdminOperationsRequireAdminRole(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, denyAll{})
	doc := seedDocument(t, db, twoStepLine())

	_, err := svc.ForceApprove(ctx, doc.ID, "emp-a", "")
	assert.True(t, common.IsCode(err, common.CodeAdminRequired))
	_, err = svc.ForceReject(ctx, doc.ID, "emp-a", "사유")
	assert.True(t, common.IsCode(err, common.CodeAdminRequired))
	_, err = svc.Delete(ctx, doc.ID, "emp-a")
	assert.True(t, common.IsCode(err, common.CodeAdminRequired))
	_, err = svc.Restore(ctx, doc.ID, "emp-a")
	assert.True(t, common.IsCode(err, common.CodeAdminRequired))
}

func TestAdminDeleteAndRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})
	p := NewProcessor(db)
	doc := seedDocument(t, db, twoStepLine())

	// 推进到 IN_PROGRESS 后删除，复原时应回到 IN_PROGRESS
	_, err := p.Approve(ctx, doc.ID, "emp-a", "")
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, doc.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, deleted.Status)
	assert.Equal(t, StatusInProgress, deleted.PrevStatus)

	// 已删除文书不可决裁
	_, err = p.Approve(ctx, doc.ID, "emp-b", "")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeDocumentTerminal))

	// 重复删除被拒绝
	_, err = svc.Delete(ctx, doc.ID, "admin-1")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeDocumentTerminal))

	restored, err := svc.Restore(ctx, doc.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, restored.Status)
	assert.Equal(t, DocStatus(""), restored.PrevStatus)

	history := listHistory(t, db, doc.ID)
	require.Len(t, history, 3)
	assert.Equal(t, ActionApproved, history[0].ActionType)
	assert.Equal(t, ActionDeleted, history[1].ActionType)
	assert.Equal(t, ActionRestored, history[2].ActionType)

	// 复原后决裁可继续
	status, err := p.Approve(ctx, doc.ID, "emp-b", "")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, status)
}

func TestAdminRestoreRequiresDeleted(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})
	doc := seedDocument(t, db, twoStepLine())

	_, err := svc.Restore(ctx, doc.ID, "admin-1")
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeDocumentNotDeleted))
}

func TestAdminRestoreFallsBackToDerivedStatus(t *testing.T) {
	ctx := context.Background()
	db := setupAdminTestDB(t)
	svc := NewAdminService(db, allowAll{})

	// 删除前状态缺失的历史数据
	line := twoStepLine()
	line[0].Decision = DecisionApproved
	doc := seedDocument(t, db, line)
	require.NoError(t, db.Model(&ApprovalDocument{}).
		Where("id = ?", doc.ID).
		Updates(map[string]any{"status": StatusDeleted, "prev_status": ""}).Error)

	restored, err := svc.Restore(ctx, doc.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, restored.Status)
}
