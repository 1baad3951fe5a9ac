package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/api/middleware"
	"invest-portal/internal/service"
	"invest-portal/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetEntitlement 从 Gin 上下文中安全提取本次请求的有效授权。
func MustGetEntitlement(c *gin.Context) (*service.Entitlement, bool) {
	v, exists := c.Get(middleware.CtxEntitlement)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	ent, ok := v.(*service.Entitlement)
	if !ok || ent == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return ent, true
}

// MustGetTokenInfo 从 Gin 上下文中提取 Token 的 jti 与过期时间（登出用）。
func MustGetTokenInfo(c *gin.Context) (string, time.Time, bool) {
	jti := c.GetString(middleware.CtxTokenID)
	if jti == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", time.Time{}, false
	}
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t, true
}
