package auth

import (
	"backend/internal/auth"
	"backend/internal/common"

	"github.com/gin-gonic/gin"
)

// AuthHandler 登录认证处理器
type AuthHandler struct {
	store *auth.IdentityStore
	jwt   *auth.JWTService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(store *auth.IdentityStore, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{store: store, jwt: jwt}
}

// LoginRequest 登录请求
type LoginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresIn   int64          `json:"expiresIn"` // 秒
	User        *auth.Employee `json:"user"`
}

// Login 账号密码登录
// @Summary 登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录凭证"
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ResponseBadRequest(c, "参数错误: "+err.Error())
		return
	}

	emp, err := h.store.Authenticate(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}

	token, expiresIn, err := h.jwt.Issue(emp)
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}

	common.ResponseSuccess(c, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        emp,
	})
}

// Me 查询当前登录职员
// @Summary 当前用户信息
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	emp, err := h.store.GetByID(c.Request.Context(), auth.CurrentUserID(c))
	if err != nil {
		common.ResponseBusinessError(c, err)
		return
	}
	common.ResponseSuccess(c, emp)
}
