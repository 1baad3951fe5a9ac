package service

import (
	"go.uber.org/zap"

	"invest-portal/config"
	"invest-portal/internal/repository"
	"invest-portal/pkg/jwt"
	"invest-portal/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Entitlement EntitlementService
	Invite      InviteService
	Investment  InvestmentService
	User        UserService
	Stats       StatsService
	Backup      BackupService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Entitlement: NewEntitlementService(repo, logger),
		Invite:      NewInviteService(repo, logger),
		Investment:  NewInvestmentService(repo, logger),
		User:        NewUserService(repo, logger),
		Stats:       NewStatsService(repo, logger),
		Backup:      NewBackupService(&cfg.Backup, repo, logger),
	}
}
