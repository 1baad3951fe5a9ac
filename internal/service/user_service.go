package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ErrEmptyIndustries 更新后的行业权限集合不能为空
var ErrEmptyIndustries = errors.New("行业权限不能为空")

// 用户有效期状态标签
const (
	userStatusPermanent = "永久"
	userStatusActive    = "正常"
	userStatusDueToday  = "今日到期"
	userStatusExpired   = "已过期"
)

// UserService 管理端用户业务接口。
// 行业权限与有效期的修改直接写库；用户侧授权每次请求重新解析
// （见 EntitlementService），修改无需用户重新登录即可生效。
type UserService interface {
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.AdminUserResponse, int64, error)
	UpdateIndustries(ctx context.Context, userID string, req *dto.UpdateIndustriesRequest) (*dto.AdminUserResponse, error)
	RenewExpiry(ctx context.Context, userID string, req *dto.RenewExpiryRequest) (*dto.AdminUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.AdminUserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	now := time.Now()
	result := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		result = append(result, toAdminUserResponse(&users[i], now))
	}
	return result, total, nil
}

// ────────────────────── UpdateIndustries ──────────────────────

func (s *userService) UpdateIndustries(ctx context.Context, userID string, req *dto.UpdateIndustriesRequest) (*dto.AdminUserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 去空白、去空项；空集合拒绝写入（授权集合为空会锁死账户）
	industries := make(model.IndustryList, 0, len(req.Industries))
	for _, v := range req.Industries {
		v = strings.TrimSpace(v)
		if v != "" {
			industries = append(industries, v)
		}
	}
	if len(industries) == 0 {
		return nil, ErrEmptyIndustries
	}

	user.Industries = industries
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户行业权限失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户行业权限已更新",
		zap.String("username", user.Username),
		zap.String("industries", industries.String()),
	)

	resp := toAdminUserResponse(user, time.Now())
	return &resp, nil
}

// ────────────────────── RenewExpiry ──────────────────────

// RenewExpiry 续期：从当前时间起顺延指定月数（而非原到期日顺延），
// 已过期账户续期后立即恢复访问。
func (s *userService) RenewExpiry(ctx context.Context, userID string, req *dto.RenewExpiryRequest) (*dto.AdminUserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	expiresAt := time.Now().AddDate(0, req.Months, 0)
	user.ExpiresAt = &expiresAt

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("续期失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已续期",
		zap.String("username", user.Username),
		zap.Int("months", req.Months),
		zap.Time("expires_at", expiresAt),
	)

	resp := toAdminUserResponse(user, time.Now())
	return &resp, nil
}

// ── 内部辅助 ──

func toAdminUserResponse(user *model.User, now time.Time) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		UserResponse: toUserResponse(user, now),
		Status:       userStatus(user, now),
		CreatedAt:    user.CreatedAt,
	}
}

// userStatus 推导有效期状态标签
func userStatus(user *model.User, now time.Time) string {
	if user.IsAdmin() || user.ExpiresAt == nil {
		return userStatusPermanent
	}
	if IsExpired(*user.ExpiresAt, now) {
		return userStatusExpired
	}
	y1, m1, d1 := user.ExpiresAt.Year(), user.ExpiresAt.Month(), user.ExpiresAt.Day()
	y2, m2, d2 := now.Year(), now.Month(), now.Day()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return userStatusDueToday
	}
	return userStatusActive
}
