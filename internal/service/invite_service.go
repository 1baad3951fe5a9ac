package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ── 激活码模块业务错误 ──

var (
	ErrInvalidInviteCode = errors.New("无效的激活码")
	ErrInviteNotFound    = errors.New("激活码不存在")
	ErrInviteAlreadyUsed = errors.New("已使用的激活码不能修改或删除")
	ErrInvalidValidity   = errors.New("有效期只能是6个月或12个月")
	ErrInvalidIndustry   = errors.New("无效的行业选择")
	ErrInviteCodeExhaust = errors.New("生成激活码失败，请重试")
)

// 激活码格式：8 位大写字母与数字
const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// 随机碰撞时的重新生成次数上限
	inviteCodeMaxRetries = 5
)

// InviteService 激活码业务接口。
// 激活码生命周期：创建（未使用）→ 注册时核销（一次性，不可逆）。
// 已使用的码不可修改、不可删除；核销动作本身由注册事务内的
// compare-and-swap 完成（见 AuthService.Register）。
type InviteService interface {
	Issue(ctx context.Context, req *dto.CreateInviteCodesRequest) ([]dto.InviteCodeResponse, error)
	List(ctx context.Context, req *dto.InviteCodeListRequest) ([]dto.InviteCodeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateInviteCodeRequest) (*dto.InviteCodeResponse, error)
	Revoke(ctx context.Context, id string) error
}

type inviteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(repo *repository.Repository, logger *zap.Logger) InviteService {
	return &inviteService{repo: repo, logger: logger}
}

// ────────────────────── Issue ──────────────────────

func (s *inviteService) Issue(ctx context.Context, req *dto.CreateInviteCodesRequest) ([]dto.InviteCodeResponse, error) {
	if err := s.validateIndustry(ctx, req.Industry); err != nil {
		return nil, err
	}

	validity := req.ValidityMonths
	if validity == 0 {
		validity = model.ValidityOneYear
	}
	if validity != model.ValidityHalfYear && validity != model.ValidityOneYear {
		return nil, ErrInvalidValidity
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}

	result := make([]dto.InviteCodeResponse, 0, count)
	for i := 0; i < count; i++ {
		invite, err := s.createOne(ctx, req.Industry, validity)
		if err != nil {
			s.logger.Error("创建激活码失败",
				zap.String("industry", req.Industry),
				zap.Int("created", len(result)),
				zap.Error(err),
			)
			return nil, err
		}
		result = append(result, toInviteCodeResponse(invite, nil))
	}

	s.logger.Info("激活码创建成功",
		zap.String("industry", req.Industry),
		zap.Int("count", count),
		zap.Int("validity_months", validity),
	)
	return result, nil
}

// createOne 生成单个激活码并入库；随机碰撞时重新生成
func (s *inviteService) createOne(ctx context.Context, industry string, validity int) (*model.InviteCode, error) {
	for attempt := 0; attempt < inviteCodeMaxRetries; attempt++ {
		code, err := generateInviteCode(inviteCodeLength)
		if err != nil {
			return nil, err
		}

		exists, err := s.repo.InviteCode.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		invite := &model.InviteCode{
			Code:           code,
			Industry:       industry,
			ValidityMonths: validity,
		}
		if err := s.repo.InviteCode.Create(ctx, invite); err != nil {
			return nil, err
		}
		return invite, nil
	}
	return nil, ErrInviteCodeExhaust
}

// validateIndustry 校验行业标签：预设行业、数据中已出现的行业，或 "all" 哨兵
func (s *inviteService) validateIndustry(ctx context.Context, industry string) error {
	if industry == "" {
		return ErrInvalidIndustry
	}
	if industry == model.IndustryAll {
		return nil
	}
	for _, v := range model.PredefinedIndustries {
		if v == industry {
			return nil
		}
	}
	existing, err := s.repo.Investment.DistinctIndustries(ctx)
	if err != nil {
		return err
	}
	for _, v := range existing {
		if v == industry {
			return nil
		}
	}
	return ErrInvalidIndustry
}

// ────────────────────── List ──────────────────────

func (s *inviteService) List(ctx context.Context, req *dto.InviteCodeListRequest) ([]dto.InviteCodeResponse, int64, error) {
	rows, total, err := s.repo.InviteCode.List(ctx, req.Industry, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询激活码列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.InviteCodeResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toInviteCodeResponse(&rows[i].InviteCode, rows[i].UsedByUsername))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *inviteService) Update(ctx context.Context, id string, req *dto.UpdateInviteCodeRequest) (*dto.InviteCodeResponse, error) {
	invite, err := s.repo.InviteCode.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	if invite.Used {
		return nil, ErrInviteAlreadyUsed
	}

	if err := s.validateIndustry(ctx, req.Industry); err != nil {
		return nil, err
	}
	invite.Industry = req.Industry

	if req.ValidityMonths != nil {
		if *req.ValidityMonths != model.ValidityHalfYear && *req.ValidityMonths != model.ValidityOneYear {
			return nil, ErrInvalidValidity
		}
		invite.ValidityMonths = *req.ValidityMonths
	}

	if err := s.repo.InviteCode.Update(ctx, invite); err != nil {
		s.logger.Error("更新激活码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toInviteCodeResponse(invite, nil)
	return &resp, nil
}

// ────────────────────── Revoke ──────────────────────

func (s *inviteService) Revoke(ctx context.Context, id string) error {
	invite, err := s.repo.InviteCode.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if invite.Used {
		return ErrInviteAlreadyUsed
	}

	if err := s.repo.InviteCode.Delete(ctx, id); err != nil {
		s.logger.Error("删除激活码失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

func toInviteCodeResponse(invite *model.InviteCode, usedBy *string) dto.InviteCodeResponse {
	return dto.InviteCodeResponse{
		ID:             invite.InviteCodeID,
		Code:           invite.Code,
		Industry:       invite.Industry,
		ValidityMonths: invite.ValidityMonths,
		Used:           invite.Used,
		UsedAt:         invite.UsedAt,
		UsedByUsername: usedBy,
		CreatedAt:      invite.CreatedAt,
	}
}

// generateInviteCode 生成指定长度的随机激活码（大写字母+数字）
func generateInviteCode(length int) (string, error) {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("生成随机激活码失败: %w", err)
		}
		result[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(result), nil
}
