package approval

import (
	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// DecisionHandler 决裁操作处理器
type DecisionHandler struct {
	processor *approval.Processor
}

// NewDecisionHandler 创建决裁操作处理器
func NewDecisionHandler(processor *approval.Processor) *DecisionHandler {
	return &DecisionHandler{processor: processor}
}

// DecisionRequest 决裁请求体
type DecisionRequest struct {
	Comment string `json:"comment"` // 同意时可选，驳回时必填
}

// Approve 当前决裁人同意
// @Summary 决裁同意
// @Tags Decision
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "文书ID"
// @Param request body DecisionRequest false "决裁意见"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/approvals/{id}/approve [post]
func (h *DecisionHandler) Approve(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	status, err := h.processor.Approve(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), req.Comment)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"status": status})
}

// Reject 当前决裁人驳回
// @Summary 决裁驳回
// @Tags Decision
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "文书ID"
// @Param request body DecisionRequest true "驳回事由"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/approvals/{id}/reject [post]
func (h *DecisionHandler) Reject(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	status, err := h.processor.Reject(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), req.Comment)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, gin.H{"status": status})
}
