package approval

import (
	"time"

	"backend/internal/approval"
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// DocumentHandler 决裁文书处理器
type DocumentHandler struct {
	service *approval.DocumentService
	bus     *approval.DocumentEventBus
}

// NewDocumentHandler 创建文书处理器
func NewDocumentHandler(service *approval.DocumentService, bus *approval.DocumentEventBus) *DocumentHandler {
	return &DocumentHandler{service: service, bus: bus}
}

// Submit 上报决裁文书
// @Summary 上报决裁文书
// @Tags Approval
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body approval.SubmitDocumentRequest true "文书内容"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/approvals [post]
func (h *DocumentHandler) Submit(c *gin.Context) {
	var req approval.SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	req.AuthorID = auth.CurrentUserID(c)
	req.AuthorName = auth.CurrentUserName(c)
	req.DeptCode, req.DeptName = auth.CurrentDept(c)

	doc, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseCreated(c, doc)
}

// Get 查询单份文书
// @Summary 查询决裁文书
// @Tags Approval
// @Security BearerAuth
// @Produce json
// @Param id path string true "文书ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/approvals/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, doc)
}

// List 分页查询文书
// @Summary 决裁文书列表
// @Tags Approval
// @Security BearerAuth
// @Produce json
// @Param status query string false "状态过滤"
// @Param docType query string false "文书类型过滤"
// @Param authorId query string false "起案人过滤"
// @Param keyword query string false "标题关键词"
// @Success 200 {object} common.APIResponse
// @Router /api/approvals [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var req approval.ListDocumentsRequest
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

// History 查询文书履历
// @Summary 决裁履历
// @Tags Approval
// @Security BearerAuth
// @Produce json
// @Param id path string true "文书ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/approvals/{id}/history [get]
func (h *DocumentHandler) History(c *gin.Context) {
	items, err := h.service.ListHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, items)
}

// PreviewLine 预览决裁线
// @Summary 预览指定文书类型将固化的决裁线
// @Tags Approval
// @Security BearerAuth
// @Produce json
// @Param docType query string true "文书类型"
// @Success 200 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Router /api/approvals/preview-line [get]
func (h *DocumentHandler) PreviewLine(c *gin.Context) {
	deptCode, _ := auth.CurrentDept(c)
	line, err := h.service.PreviewLine(c.Request.Context(), c.Query("docType"), deptCode)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, line)
}

// waitTimeout 长轮询等待上限
const waitTimeout = 30 * time.Second

// Wait 长轮询等待文书状态变化
// @Summary 等待文书状态变化
// @Description 阻塞至文书发生下一次决裁事件或超时
// @Tags Approval
// @Security BearerAuth
// @Produce json
// @Param id path string true "文书ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Router /api/approvals/{id}/wait [get]
func (h *DocumentHandler) Wait(c *gin.Context) {
	docID := c.Param("id")
	if _, err := h.service.Get(c.Request.Context(), docID); err != nil {
		common.ResponseBusinessError(c, err)
		return
	}

	events, cancel := h.bus.Subscribe(docID)
	defer cancel()

	select {
	case evt, ok := <-events:
		if !ok {
			common.ResponseSuccess(c, gin.H{"timeout": true})
			return
		}
		common.ResponseSuccess(c, evt)
	case <-time.After(waitTimeout):
		common.ResponseSuccess(c, gin.H{"timeout": true})
	case <-c.Request.Context().Done():
		common.ResponseSuccess(c, gin.H{"timeout": true})
	}
}
