package api

import (
	"errors"
	"time"

	"budget/apperr"
	"budget/config"
	"budget/identity"
	"budget/middleware"
	"budget/models"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	gate *identity.Gate
	cfg  *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(gate *identity.Gate, cfg *config.Config) *AuthHandler {
	return &AuthHandler{gate: gate, cfg: cfg}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=100" example:"alice"`
	Password        string `json:"password" binding:"required,max=72" example:"password123"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password" example:"password123"`
	Email           string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required,max=72" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// ForgotPasswordRequest 找回密码请求
type ForgotPasswordRequest struct {
	Username        string `json:"username" binding:"required" example:"alice"`
	NewPassword     string `json:"new_password" binding:"required,max=72" example:"newpassword123"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword" example:"newpassword123"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,max=72" example:"newpassword123"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=NewPassword" example:"newpassword123"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 用户名唯一，confirm_password 必须与 password 一致
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "用户名已存在"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	user, err := h.gate.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		respondError(c, err, "注册失败")
		return
	}
	SuccessWithMessage(c, "注册成功", user)
}

// Login 用户登录
// @Summary 用户登录
// @Description 返回 JWT，同时写入 budget_token Cookie
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "用户名或密码错误"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	user, err := h.gate.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err, "登录失败")
		return
	}

	ttl := h.cfg.JWT.ExpireTime
	token, err := middleware.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}
	setTokenCookie(c, token, ttl)

	SuccessWithMessage(c, "登录成功", LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl),
		User:      user,
	})
}

// Logout 退出登录
// @Summary 退出登录
// @Description 清除 budget_token Cookie；Bearer token 由客户端自行丢弃
// @Tags 认证
// @Produce json
// @Success 200 {object} Response "已退出"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearTokenCookie(c)
	SuccessWithMessage(c, "已退出登录", nil)
}

// ForgotPassword 找回密码
// @Summary 找回密码
// @Description 按用户名直接重置密码，可通过 auth.allow_forgot_password 关闭
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "重置信息"
// @Success 200 {object} Response "重置成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 403 {object} Response "功能已关闭"
// @Failure 404 {object} Response "用户不存在"
// @Failure 429 {object} Response "请求过于频繁"
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	err := h.gate.ForgotPassword(c.Request.Context(), req.Username, req.NewPassword)
	switch {
	case err == nil:
		SuccessWithMessage(c, "密码已重置，请重新登录", nil)
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, "找回密码功能已关闭")
	case errors.Is(err, apperr.ErrNotFound):
		NotFound(c, "用户不存在")
	default:
		respondError(c, err, "重置密码失败")
	}
}

// GetProfile 当前用户信息
// @Summary 当前用户信息
// @Tags 认证
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.gate.Profile(c.Request.Context(), middleware.GetCurrentUserID(c))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			NotFound(c, "用户不存在")
			return
		}
		respondError(c, err, "获取用户信息失败")
		return
	}
	Success(c, user)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "新密码"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if err := h.gate.ResetPassword(c.Request.Context(), middleware.GetCurrentUserID(c), req.NewPassword); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			NotFound(c, "用户不存在")
			return
		}
		respondError(c, err, "修改密码失败")
		return
	}
	SuccessWithMessage(c, "密码修改成功", nil)
}
