package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"invest-portal/config"
	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ErrBackupDisabled 备份功能未启用
var ErrBackupDisabled = errors.New("备份功能未启用")

// 备份类型，体现在文件名中
const (
	backupTypeScheduled = "scheduled"
	backupTypeManual    = "manual"
)

const backupFilePrefix = "backup-"

// backupPayload 备份文件内容：三张表的全量 JSON 快照
type backupPayload struct {
	CreatedAt   time.Time          `json:"created_at"`
	Users       []model.User       `json:"users"`
	InviteCodes []model.InviteCode `json:"invite_codes"`
	Investments []model.Investment `json:"investments"`
}

// BackupService 数据备份业务接口。
// 定时备份按配置的 cron 表达式触发，手动备份由管理端接口触发；
// 两者产物相同，仅文件名中的类型标记不同。超出保留数量的旧备份自动清理。
type BackupService interface {
	// Start 启动定时备份；配置未启用时不做任何事
	Start() error
	Stop()
	Run(ctx context.Context, backupType string) (*dto.BackupResponse, error)
	List() ([]dto.BackupInfo, error)
}

type backupService struct {
	cfg    *config.BackupConfig
	repo   *repository.Repository
	cron   *cron.Cron
	logger *zap.Logger
}

// NewBackupService 创建 BackupService 实例
func NewBackupService(cfg *config.BackupConfig, repo *repository.Repository, logger *zap.Logger) BackupService {
	return &backupService{
		cfg:    cfg,
		repo:   repo,
		cron:   cron.New(),
		logger: logger,
	}
}

// ────────────────────── 调度 ──────────────────────

func (s *backupService) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("定时备份未启用")
		return nil
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("创建备份目录失败: %w", err)
	}

	_, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Run(ctx, backupTypeScheduled); err != nil {
			s.logger.Error("定时备份失败", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("注册备份任务失败: %w", err)
	}

	s.cron.Start()
	s.logger.Info("定时备份已启动",
		zap.String("cron", s.cfg.CronSpec),
		zap.String("dir", s.cfg.Dir),
		zap.Int("max_backups", s.cfg.MaxBackups),
	)
	return nil
}

func (s *backupService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ────────────────────── Run ──────────────────────

func (s *backupService) Run(ctx context.Context, backupType string) (*dto.BackupResponse, error) {
	if !s.cfg.Enabled {
		return nil, ErrBackupDisabled
	}
	if backupType != backupTypeScheduled {
		backupType = backupTypeManual
	}

	users, err := s.repo.User.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("导出用户表失败: %w", err)
	}
	invites, err := s.repo.InviteCode.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("导出激活码表失败: %w", err)
	}
	invs, err := s.repo.Investment.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("导出投资数据表失败: %w", err)
	}

	now := time.Now()
	payload := backupPayload{
		CreatedAt:   now,
		Users:       users,
		InviteCodes: invites,
		Investments: invs,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化备份失败: %w", err)
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建备份目录失败: %w", err)
	}

	name := fmt.Sprintf("%s%s-%s.json", backupFilePrefix, now.Format("20060102-150405"), backupType)
	path := filepath.Join(s.cfg.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("写入备份文件失败: %w", err)
	}

	s.logger.Info("备份完成",
		zap.String("file", name),
		zap.String("type", backupType),
		zap.Int("users", len(users)),
		zap.Int("invite_codes", len(invites)),
		zap.Int("investments", len(invs)),
	)

	if err := s.prune(); err != nil {
		s.logger.Warn("清理过期备份失败", zap.Error(err))
	}

	return &dto.BackupResponse{Name: name, Path: path}, nil
}

// prune 按创建时间保留最近 MaxBackups 份，其余删除
func (s *backupService) prune() error {
	backups, err := s.List()
	if err != nil {
		return err
	}
	if len(backups) <= s.cfg.MaxBackups {
		return nil
	}
	for _, b := range backups[s.cfg.MaxBackups:] {
		if err := os.Remove(filepath.Join(s.cfg.Dir, b.Name)); err != nil {
			return err
		}
		s.logger.Info("已清理旧备份", zap.String("file", b.Name))
	}
	return nil
}

// ────────────────────── List ──────────────────────

// List 返回备份文件列表，按创建时间倒序
func (s *backupService) List() ([]dto.BackupInfo, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []dto.BackupInfo{}, nil
		}
		return nil, err
	}

	result := make([]dto.BackupInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupFilePrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		backupType := backupTypeManual
		if strings.HasSuffix(name, "-"+backupTypeScheduled+".json") {
			backupType = backupTypeScheduled
		}

		result = append(result, dto.BackupInfo{
			Name:    name,
			Size:    info.Size(),
			Created: info.ModTime(),
			Type:    backupType,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Created.After(result[j].Created)
	})
	return result, nil
}
