package approval

import (
	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// PolicyHandler 决裁规程管理处理器
type PolicyHandler struct {
	service *approval.PolicyService
}

// NewPolicyHandler 创建规程处理器
func NewPolicyHandler(service *approval.PolicyService) *PolicyHandler {
	return &PolicyHandler{service: service}
}

// Create 创建决裁规程
// @Summary 创建决裁规程
// @Tags Policy
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body approval.CreatePolicyRequest true "规程内容"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/admin/policies [post]
func (h *PolicyHandler) Create(c *gin.Context) {
	var req approval.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}
	req.CreatedBy = auth.CurrentUserID(c)
	if req.CreatedDept == "" {
		_, req.CreatedDept = auth.CurrentDept(c)
	}

	policy, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseCreated(c, policy)
}

// Get 查询单条规程
// @Summary 查询决裁规程
// @Tags Policy
// @Security BearerAuth
// @Produce json
// @Param id path string true "规程ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/admin/policies/{id} [get]
func (h *PolicyHandler) Get(c *gin.Context) {
	policy, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, policy)
}

// List 分页查询规程
// @Summary 决裁规程列表
// @Tags Policy
// @Security BearerAuth
// @Produce json
// @Param docType query string false "文书类型过滤"
// @Param keyword query string false "规程名关键词"
// @Success 200 {object} common.APIResponse
// @Router /api/admin/policies [get]
func (h *PolicyHandler) List(c *gin.Context) {
	var req approval.ListPoliciesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	items, total, err := h.service.List(c.Request.Context(), &req)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseList(c, items, total, &req.PaginationRequest)
}

// Update 更新规程
// @Summary 更新决裁规程
// @Tags Policy
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "规程ID"
// @Param request body approval.UpdatePolicyRequest true "规程内容"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/admin/policies/{id} [put]
func (h *PolicyHandler) Update(c *gin.Context) {
	var req approval.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	policy, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, policy)
}

// Activate 启用规程
// @Summary 启用决裁规程
// @Tags Policy
// @Security BearerAuth
// @Produce json
// @Param id path string true "规程ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/admin/policies/{id}/activate [post]
func (h *PolicyHandler) Activate(c *gin.Context) {
	policy, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, policy)
}

// Deactivate 停用规程
// @Summary 停用决裁规程
// @Tags Policy
// @Security BearerAuth
// @Produce json
// @Param id path string true "规程ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/admin/policies/{id}/deactivate [post]
func (h *PolicyHandler) Deactivate(c *gin.Context) {
	policy, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, policy)
}

// Delete 删除规程
// @Summary 删除决裁规程
// @Tags Policy
// @Security BearerAuth
// @Produce json
// @Param id path string true "规程ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/admin/policies/{id} [delete]
func (h *PolicyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, nil)
}
