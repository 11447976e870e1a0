package approval

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDecisionHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:decision_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&approval.ApprovalDocument{}, &approval.ApprovalHistory{}))

	handler := NewDecisionHandler(approval.NewProcessor(db))

	router := gin.New()
	// 测试中直接注入操作者身份，替代认证中间件
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, c.GetHeader("X-Test-User"))
		c.Next()
	})
	router.POST("/api/approvals/:id/approve", handler.Approve)
	router.POST("/api/approvals/:id/reject", handler.Reject)
	return router, db
}

func seedHandlerDocument(t *testing.T, db *gorm.DB) *approval.ApprovalDocument {
	t.Helper()
	doc := &approval.ApprovalDocument{
		ID:      uuid.New().String(),
		Title:   "지출결의서",
		DocType: approval.DocTypeExpense,
		Status:  approval.StatusPending,
		Line: approval.ApprovalLine{
			approval.NewApproverStep(1, "emp-a", "김팀장", "회계팀", "팀장"),
			approval.NewApproverStep(2, "emp-b", "박본부장", "경영지원", "본부장"),
		},
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func doRequest(t *testing.T, router *gin.Engine, method, path, user, body string) (*httptest.ResponseRecorder, common.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestDecisionHandlerApprove(t *testing.T) {
	router, db := setupDecisionHandlerTest(t)
	doc := seedHandlerDocument(t, db)

	w, resp := doRequest(t, router, http.MethodPost,
		"/api/approvals/"+doc.ID+"/approve", "emp-a", `{"comment":"확인"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestDecisionHandlerApproveOutOfOrder(t *testing.T) {
	router, db := setupDecisionHandlerTest(t)
	doc := seedHandlerDocument(t, db)

	w, resp := doRequest(t, router, http.MethodPost,
		"/api/approvals/"+doc.ID+"/approve", "emp-b", `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, common.CodeNotCurrentApprover, resp.Code)
}

func TestDecisionHandlerRejectWithoutComment(t *testing.T) {
	router, db := setupDecisionHandlerTest(t)
	doc := seedHandlerDocument(t, db)

	w, resp := doRequest(t, router, http.MethodPost,
		"/api/approvals/"+doc.ID+"/reject", "emp-a", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.CodeCommentRequired, resp.Code)
}

func TestDecisionHandlerDocumentNotFound(t *testing.T) {
	router, _ := setupDecisionHandlerTest(t)

	w, resp := doRequest(t, router, http.MethodPost,
		"/api/approvals/"+uuid.New().String()+"/approve", "emp-a", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, common.CodeDocumentNotFound, resp.Code)
}
