package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
	apperrors "invest-portal/pkg/errors"
)

// ErrEntitlementIntegrity 非管理员账户的授权行业集合为空。
// 注册与管理端写入都保证该集合非空，出现即为数据异常；按拒绝处理，绝不放行。
var ErrEntitlementIntegrity = errors.New("账户行业权限数据异常，已拒绝访问")

// Entitlement 单次请求的有效授权。
// 由当前数据库中的账户行派生，而非 Token 中签发时的快照：
// 管理员对行业权限或有效期的修改在用户的下一个请求立即生效。
type Entitlement struct {
	UserID   string
	Username string
	Role     string
	// Unrestricted 为 true 时不做行业过滤：管理员，或存量 "all" 哨兵账户
	Unrestricted bool
	// Industries 授权行业集合；Unrestricted 时为 nil
	Industries model.IndustryList
	ExpiresAt  *time.Time
	Warning    *dto.ExpiryWarning
}

// IsAdmin 管理员判断
func (e *Entitlement) IsAdmin() bool { return e.Role == model.RoleAdmin }

// EntitlementService 授权解析业务接口
type EntitlementService interface {
	// Resolve 加载账户当前状态并产出授权裁决：
	// 管理员 → 放行且不过滤；已过期 → *apperrors.AccountExpiredError；
	// 剩余 ≤7 天 → 放行并附提醒；其余 → 放行。
	Resolve(ctx context.Context, userID string) (*Entitlement, error)
}

type entitlementService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEntitlementService 创建 EntitlementService 实例
func NewEntitlementService(repo *repository.Repository, logger *zap.Logger) EntitlementService {
	return &entitlementService{repo: repo, logger: logger}
}

func (s *entitlementService) Resolve(ctx context.Context, userID string) (*Entitlement, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("加载账户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	ent := &Entitlement{
		UserID:    user.UserID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: user.ExpiresAt,
	}

	// 管理员：跳过有效期检查，不做行业过滤
	if user.IsAdmin() {
		ent.Unrestricted = true
		return ent, nil
	}

	now := time.Now()
	if user.ExpiresAt != nil {
		if IsExpired(*user.ExpiresAt, now) {
			return nil, &apperrors.AccountExpiredError{ExpiresAt: *user.ExpiresAt}
		}
		ent.Warning = NewExpiryWarning(*user.ExpiresAt, now)
	}

	// 存量 "all" 哨兵账户（管理员开通）不做行业过滤
	if user.Industries.IsAll() {
		ent.Unrestricted = true
		return ent, nil
	}

	if len(user.Industries) == 0 {
		s.logger.Error("非管理员账户行业权限为空",
			zap.String("user_id", user.UserID),
			zap.String("username", user.Username),
		)
		return nil, ErrEntitlementIntegrity
	}

	ent.Industries = user.Industries
	return ent, nil
}
