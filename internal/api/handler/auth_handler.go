package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/dto"
	"invest-portal/internal/service"
	apperrors "invest-portal/pkg/errors"
	"invest-portal/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		var expired *apperrors.AccountExpiredError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, 11001, "用户名或密码错误")
		case errors.As(err, &expired):
			response.ErrorWithDetails(c, http.StatusForbidden, 11002, expired.Error(), "ACCOUNT_EXPIRED")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Register 激活码注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInviteCode):
			response.BadRequest(c, 12001, "激活码无效或已被使用")
		case errors.Is(err, service.ErrInviteMissingIndustry):
			response.BadRequest(c, 12001, err.Error())
		case errors.Is(err, service.ErrUsernameExists):
			response.Error(c, http.StatusConflict, 13001, "用户名已存在")
		case errors.Is(err, service.ErrEmailExists):
			response.Error(c, http.StatusConflict, 13001, "邮箱已存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// Logout 用户登出，Token 加入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp, ok := MustGetTokenInfo(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// GetCurrentUser 获取当前用户信息（含行业权限与有效期提醒）
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Unauthorized(c, 10002, "账户不存在或已删除")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, user)
}
