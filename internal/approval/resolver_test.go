package approval

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupResolverTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:resolver_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ApprovalPolicy{}, &PolicyStep{}))
	return db
}

func strPtr(s string) *string { return &s }

func seedPolicy(t *testing.T, db *gorm.DB, docType DocType, active bool, steps ...PolicyStep) *ApprovalPolicy {
	t.Helper()
	policy := &ApprovalPolicy{
		ID:         uuid.New().String(),
		PolicyName: "기본 결재선",
		DocType:    docType,
		IsActive:   active,
		Steps:      steps,
	}
	require.NoError(t, db.Create(policy).Error)
	return policy
}

func TestResolveLineFromActivePolicy(t *testing.T) {
	db := setupResolverTestDB(t)
	resolver := NewResolver(db, nil)

	// 步骤顺序故意留空洞，快照时应重排为 1..n
	seedPolicy(t, db, DocTypeExpense, true,
		PolicyStep{StepOrder: 10, DeptName: "회계팀", PositionName: "팀장", ApproverID: strPtr("emp-1"), ApproverName: strPtr("김팀장")},
		PolicyStep{StepOrder: 20, DeptName: "경영지원", PositionName: "본부장"},
		PolicyStep{StepOrder: 30, DeptName: "경영지원", PositionName: "대표", ApproverID: strPtr("emp-3"), ApproverName: strPtr("박대표")},
	)

	line, err := resolver.ResolveLine(context.Background(), DocTypeExpense, "D100")
	require.NoError(t, err)
	require.Len(t, line, 3)

	assert.Equal(t, 1, line[0].Order)
	assert.Equal(t, "emp-1", line[0].ApproverID)
	assert.Equal(t, 2, line[1].Order)
	assert.Equal(t, UnknownApproverID, line[1].ApproverID)
	assert.Equal(t, UnknownApproverName, line[1].ApproverName)
	assert.Equal(t, 3, line[2].Order)
	assert.Equal(t, DecisionPending, line[2].Decision)
	require.NoError(t, line.Validate())
}

func TestResolveLineNoActivePolicy(t *testing.T) {
	db := setupResolverTestDB(t)
	resolver := NewResolver(db, nil)

	// 停用中的规程不参与解析
	seedPolicy(t, db, DocTypeLeave, false,
		PolicyStep{StepOrder: 1, DeptName: "인사팀"},
	)

	line, err := resolver.ResolveLine(context.Background(), DocTypeLeave, "D100")
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestResolveLineIgnoresOtherDocTypes(t *testing.T) {
	db := setupResolverTestDB(t)
	resolver := NewResolver(db, nil)

	seedPolicy(t, db, DocTypeReport, true,
		PolicyStep{StepOrder: 1, DeptName: "기획팀"},
	)

	line, err := resolver.ResolveLine(context.Background(), DocTypeGeneral, "")
	require.NoError(t, err)
	assert.Empty(t, line)
}
