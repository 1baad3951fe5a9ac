package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invest-portal/config"
	"invest-portal/internal/api/handler"
	"invest-portal/internal/api/middleware"
	"invest-portal/internal/service"
	"invest-portal/pkg/jwt"
	"invest-portal/pkg/redis"
)

// 登录与注册接口的限流参数：每 IP 每分钟 10 次
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	entSvc service.EntitlementService,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，带限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.BodyLimit(1 << 20))
		{
			auth.POST("/login", middleware.RateLimit(rdb, authRateLimit, authRateWindow), h.Auth.Login)
			auth.POST("/register", middleware.RateLimit(rdb, authRateLimit, authRateWindow), h.Auth.Register)
		}

		// 需要认证的路由：JWT 验证身份，Entitlement 按库中最新状态解析授权
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		authorized.Use(middleware.Entitlement(entSvc))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 投资数据（按授权行业过滤）
			investments := authorized.Group("/investments")
			{
				investments.GET("", h.Investment.List)
				investments.GET("/search", h.Investment.Search)
				investments.GET("/:id", h.Investment.Get)
			}

			// 管理端（角色以库中最新值为准）
			admin := authorized.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/invite-codes", h.Invite.Create)
				admin.GET("/invite-codes", h.Invite.List)
				admin.PUT("/invite-codes/:id", h.Invite.Update)
				admin.DELETE("/invite-codes/:id", h.Invite.Delete)

				admin.GET("/users", h.AdminUser.List)
				admin.PUT("/users/:id/industries", h.AdminUser.UpdateIndustries)
				admin.PUT("/users/:id/expire", h.AdminUser.RenewExpiry)

				admin.POST("/investments", h.Investment.Create)
				admin.PUT("/investments/:id", h.Investment.Update)
				admin.DELETE("/investments/:id", h.Investment.Delete)
				admin.POST("/investments/import", middleware.BodyLimit(25<<20), h.Investment.Import)

				admin.GET("/industries", h.Investment.Industries)
				admin.GET("/stats", h.System.Stats)
				admin.POST("/backup", h.System.Backup)
				admin.GET("/backups", h.System.Backups)
			}
		}
	}

	return r
}
