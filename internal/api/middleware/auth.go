package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/service"
	apperrors "invest-portal/pkg/errors"
	"invest-portal/pkg/jwt"
	"invest-portal/pkg/redis"
	"invest-portal/pkg/response"
)

// 上下文键
const (
	CtxUserID      = "user_id"
	CtxUsername    = "username"
	CtxTokenID     = "jti"
	CtxTokenExp    = "token_exp"
	CtxEntitlement = "entitlement"
)

// JWTAuth JWT 认证中间件。
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 已登出（黑名单中）的 Token 拒绝；rdb 为 nil 时跳过黑名单检查。
// 只向上下文注入身份（user_id），角色与行业权限由 Entitlement 中间件
// 按当前数据库状态重新解析，不回放 Token 签发时的快照。
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if rdb != nil {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis 出错时降级放行，不阻断正常请求
			if err == nil && blacklisted {
				response.Unauthorized(c, 10002, "Token 已失效，请重新登录")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxTokenExp, claims.ExpiresAt.Time)
		} else {
			c.Set(CtxTokenExp, time.Time{})
		}

		c.Next()
	}
}

// Entitlement 授权解析中间件。
// 以 JWTAuth 注入的 user_id 为键加载账户当前状态，产出本次请求的有效授权：
// 账户已过期返回 403 ACCOUNT_EXPIRED；账户被删除返回 401。
// 管理员对行业权限或有效期的修改由此在下一个请求立即生效。
func Entitlement(entSvc service.EntitlementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserID)
		if userID == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		ent, err := entSvc.Resolve(c.Request.Context(), userID)
		if err != nil {
			var expired *apperrors.AccountExpiredError
			switch {
			case errors.As(err, &expired):
				response.ErrorWithDetails(c, http.StatusForbidden, 11002, expired.Error(), "ACCOUNT_EXPIRED")
			case errors.Is(err, service.ErrUserNotFound):
				response.Unauthorized(c, 10002, "账户不存在或已删除")
			case errors.Is(err, service.ErrEntitlementIntegrity):
				response.Forbidden(c, 10003, err.Error())
			default:
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		c.Set(CtxEntitlement, ent)
		c.Next()
	}
}

// AdminOnly 管理员守卫。
// 依据 Entitlement 中间件解析出的当前角色判断，而非 Token 中的角色声明。
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(CtxEntitlement)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		ent, ok := v.(*service.Entitlement)
		if !ok || !ent.IsAdmin() {
			response.Forbidden(c, 10003, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
