package approval

import (
	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理员强制操作处理器
type AdminHandler struct {
	service *approval.AdminService
}

// NewAdminHandler 创建管理处理器
func NewAdminHandler(service *approval.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// ForceRequest 强制操作请求体
type ForceRequest struct {
	Reason string `json:"reason"` // 强制驳回时必填
}

// ForceApprove 管理员强制完结
// @Summary 管理员强制决裁
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "文书ID"
// @Param request body ForceRequest false "操作事由"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/admin/approvals/{id}/force-approve [post]
func (h *AdminHandler) ForceApprove(c *gin.Context) {
	var req ForceRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	doc, err := h.service.ForceApprove(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), req.Reason)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, doc)
}

// ForceReject 管理员强制驳回
// @Summary 管理员强制驳回
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "文书ID"
// @Param request body ForceRequest true "驳回事由"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/admin/approvals/{id}/force-reject [post]
func (h *AdminHandler) ForceReject(c *gin.Context) {
	var req ForceRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	doc, err := h.service.ForceReject(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c), req.Reason)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, doc)
}

// Delete 软删除文书
// @Summary 删除决裁文书
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "文书ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/admin/approvals/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	doc, err := h.service.Delete(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, doc)
}

// Restore 复原已删除文书
// @Summary 复原决裁文书
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "文书ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Router /api/admin/approvals/{id}/restore [post]
func (h *AdminHandler) Restore(c *gin.Context) {
	doc, err := h.service.Restore(c.Request.Context(), c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, doc)
}
