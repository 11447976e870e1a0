package common

import "errors"

// ============================================================================
// 业务状态码定义
// ============================================================================

const (
	// 成功状态码
	CodeSuccess = 0

	// 通用错误码 (1000-1999)
	CodeInvalidRequest = 1000 // 请求参数错误
	CodeUnauthorized   = 1001 // 未认证
	CodeForbidden      = 1002 // 禁止访问
	CodeNotFound       = 1003 // 资源不存在
	CodeConflict       = 1004 // 状态冲突
	CodeInternalError  = 1005 // 内部错误

	// 用户相关错误码 (2000-2099)
	CodeUserNotFound       = 2000 // 用户不存在
	CodeInvalidCredentials = 2001 // 凭证无效
	CodeAdminRequired      = 2002 // 需要管理员权限

	// 决裁规程相关错误码 (3000-3099)
	CodePolicyNotFound   = 3000 // 决裁规程不存在
	CodePolicyStepOrder  = 3001 // 规程步骤顺序不合法
	CodePolicyDuplicated = 3002 // 同一文书类型已存在启用中的规程

	// 决裁文书相关错误码 (4000-4099)
	CodeDocumentNotFound   = 4000 // 决裁文书不存在
	CodeDocumentTerminal   = 4001 // 文书已处于终结状态
	CodeDocumentNotDeleted = 4002 // 文书未处于删除状态
	CodeInvalidDocType     = 4003 // 文书类型不合法

	// 决裁处理相关错误码 (4100-4199)
	CodeNotCurrentApprover = 4100 // 非当前决裁顺序的决裁人
	CodeStepAlreadyDecided = 4101 // 步骤已被处理
	CodeCommentRequired    = 4102 // 驳回事由必填
	CodeVersionConflict    = 4103 // 并发更新冲突，请重试
)

// ErrorMessages 错误码对应的默认消息
var ErrorMessages = map[int]string{
	CodeSuccess:        "操作成功",
	CodeInvalidRequest: "请求参数错误",
	CodeUnauthorized:   "未认证，请先登录",
	CodeForbidden:      "无权限访问",
	CodeNotFound:       "资源不存在",
	CodeConflict:       "状态冲突",
	CodeInternalError:  "系统内部错误",

	CodeUserNotFound:       "用户不存在",
	CodeInvalidCredentials: "用户名或密码错误",
	CodeAdminRequired:      "该操作需要管理员权限",

	CodePolicyNotFound:   "决裁规程不存在",
	CodePolicyStepOrder:  "规程步骤顺序必须严格递增且不重复",
	CodePolicyDuplicated: "同一文书类型只能有一条启用中的规程",

	CodeDocumentNotFound:   "决裁文书不存在",
	CodeDocumentTerminal:   "文书已终结，无法继续处理",
	CodeDocumentNotDeleted: "文书未被删除，无法复原",
	CodeInvalidDocType:     "文书类型不合法",

	CodeNotCurrentApprover: "当前决裁顺序不属于该用户",
	CodeStepAlreadyDecided: "该决裁步骤已被处理",
	CodeCommentRequired:    "驳回时必须填写事由",
	CodeVersionConflict:    "文书已被其他人更新，请刷新后重试",
}

// GetErrorMessage 获取错误码对应的消息
func GetErrorMessage(code int) string {
	if msg, ok := ErrorMessages[code]; ok {
		return msg
	}
	return "未知错误"
}

// ============================================================================
// 通用业务错误类型
// ============================================================================

// BusinessError 业务错误
type BusinessError struct {
	Code    int    // 错误码
	Message string // 错误信息
}

// Error 实现error接口
func (e *BusinessError) Error() string {
	return e.Message
}

// NewBusinessError 创建业务错误
func NewBusinessError(code int, message string) *BusinessError {
	if message == "" {
		message = GetErrorMessage(code)
	}
	return &BusinessError{
		Code:    code,
		Message: message,
	}
}

// NewBusinessErrorWithCode 根据错误码创建业务错误
func NewBusinessErrorWithCode(code int) *BusinessError {
	return NewBusinessError(code, GetErrorMessage(code))
}

// ErrCode 提取错误对应的业务码，非业务错误返回 CodeInternalError
func ErrCode(err error) int {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return CodeInternalError
}

// IsCode 判断错误是否携带指定业务码
func IsCode(err error, code int) bool {
	return ErrCode(err) == code
}
