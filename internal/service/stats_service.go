package service

import (
	"context"

	"go.uber.org/zap"

	"invest-portal/internal/dto"
	"invest-portal/internal/repository"
)

// StatsService 系统统计业务接口
type StatsService interface {
	Overview(ctx context.Context) (*dto.StatsResponse, error)
}

type statsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStatsService 创建 StatsService 实例
func NewStatsService(repo *repository.Repository, logger *zap.Logger) StatsService {
	return &statsService{repo: repo, logger: logger}
}

func (s *statsService) Overview(ctx context.Context) (*dto.StatsResponse, error) {
	userStats, err := s.repo.User.Stats(ctx)
	if err != nil {
		s.logger.Error("统计用户失败", zap.Error(err))
		return nil, err
	}

	inviteStats, err := s.repo.InviteCode.Stats(ctx)
	if err != nil {
		s.logger.Error("统计激活码失败", zap.Error(err))
		return nil, err
	}

	industryStats, err := s.repo.Investment.IndustryCounts(ctx)
	if err != nil {
		s.logger.Error("统计行业数据量失败", zap.Error(err))
		return nil, err
	}

	total, err := s.repo.Investment.Count(ctx)
	if err != nil {
		s.logger.Error("统计投资数据总量失败", zap.Error(err))
		return nil, err
	}

	return &dto.StatsResponse{
		UserStats:        userStats,
		InviteStats:      inviteStats,
		IndustryStats:    industryStats,
		TotalInvestments: total,
	}, nil
}
