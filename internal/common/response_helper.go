package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseSuccess 返回成功响应
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse(data))
}

// ResponseSuccessMessage 返回成功响应（带消息）
func ResponseSuccessMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, SuccessMessageResponse(message, data))
}

// ResponseCreated 返回创建成功响应（201）
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, SuccessResponse(data))
}

// ResponseList 返回分页列表响应
func ResponseList(c *gin.Context, items any, total int64, req *PaginationRequest) {
	if req == nil {
		defaultReq := DefaultPagination()
		req = &defaultReq
	}

	response := ListResponse{
		Items:      items,
		Pagination: NewPaginationMeta(req.Page, req.GetPageSize(), total),
	}

	c.JSON(http.StatusOK, SuccessResponse(response))
}

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, code int, message string) {
	if message == "" {
		message = GetErrorMessage(code)
	}
	c.JSON(httpStatusFor(code), ErrorResponse(code, message))
}

// ResponseBusinessError 返回业务错误响应；非业务错误按内部错误处理
func ResponseBusinessError(c *gin.Context, err error) {
	if be, ok := err.(*BusinessError); ok {
		ResponseError(c, be.Code, be.Message)
		return
	}
	ResponseError(c, CodeInternalError, err.Error())
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, message string) {
	ResponseError(c, CodeInvalidRequest, message)
}

// ResponseUnauthorized 返回未认证响应
func ResponseUnauthorized(c *gin.Context, message string) {
	ResponseError(c, CodeUnauthorized, message)
}

// ResponseForbidden 返回无权限响应
func ResponseForbidden(c *gin.Context, message string) {
	ResponseError(c, CodeForbidden, message)
}

// ResponseNotFound 返回资源不存在响应
func ResponseNotFound(c *gin.Context, message string) {
	ResponseError(c, CodeNotFound, message)
}

// ResponseServerError 返回服务器错误响应
func ResponseServerError(c *gin.Context, message string) {
	ResponseError(c, CodeInternalError, message)
}

// AbortWithError 中断并返回错误
func AbortWithError(c *gin.Context, code int, message string) {
	ResponseError(c, code, message)
	c.Abort()
}

// httpStatusFor 业务状态码映射到HTTP状态码
func httpStatusFor(code int) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeAdminRequired, CodeNotCurrentApprover:
		return http.StatusForbidden
	case CodeNotFound, CodeUserNotFound, CodePolicyNotFound, CodeDocumentNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeDocumentTerminal, CodeDocumentNotDeleted,
		CodeStepAlreadyDecided, CodeVersionConflict, CodePolicyDuplicated:
		return http.StatusConflict
	case CodeInvalidRequest, CodeCommentRequired, CodeInvalidDocType,
		CodePolicyStepOrder, CodeInvalidCredentials:
		return http.StatusBadRequest
	case CodeInternalError:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}
