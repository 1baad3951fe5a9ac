package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"invest-portal/config"
	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
	apperrors "invest-portal/pkg/errors"
	"invest-portal/pkg/jwt"
	"invest-portal/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials    = errors.New("用户名或密码错误")
	ErrUserNotFound          = errors.New("用户不存在")
	ErrUsernameExists        = errors.New("用户名已存在")
	ErrEmailExists           = errors.New("邮箱已存在")
	ErrInviteMissingIndustry = errors.New("无效的激活码：缺少行业权限信息")
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Register 激活码注册。核销激活码与创建账户在同一事务内完成：
	// 任一步骤失败（重名、重邮箱、哈希失败、写库失败）整体回滚，
	// 激活码保持未使用状态，不产生半成品账户。
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 有效期裁决：过期账户硬性拒绝登录（管理员除外）
	now := time.Now()
	if !user.IsAdmin() && user.ExpiresAt != nil && IsExpired(*user.ExpiresAt, now) {
		return nil, &apperrors.AccountExpiredError{ExpiresAt: *user.ExpiresAt}
	}

	// 4. 生成 Token 对
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user, now),
	}, nil
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 1. 查询激活码（已使用或不存在都视为无效，不向调用方泄露差异）
	invite, err := txRepo.InviteCode.GetByCode(ctx, req.InviteCode)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		s.logger.Error("查询激活码失败", zap.Error(err))
		return nil, err
	}
	if invite.Used {
		rollback()
		return nil, ErrInvalidInviteCode
	}

	// 2. 公开注册通道拒绝 "all" 哨兵码：普通用户必须绑定具体行业
	if invite.Industry == "" || invite.Industry == model.IndustryAll {
		rollback()
		return nil, ErrInviteMissingIndustry
	}

	// 3. 用户名/邮箱唯一性
	if _, err := txRepo.User.GetByUsername(ctx, req.Username); err == nil {
		rollback()
		return nil, ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		return nil, err
	}
	if _, err := txRepo.User.GetByEmail(ctx, req.Email); err == nil {
		rollback()
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		return nil, err
	}

	// 4. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		rollback()
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	// 5. 由激活码推导账户有效期：注册时刻 + 6/12 个自然月
	validity := invite.ValidityMonths
	if validity != model.ValidityHalfYear && validity != model.ValidityOneYear {
		validity = model.ValidityOneYear // 存量数据未填有效期时按 12 个月
	}
	now := time.Now()
	expiresAt := now.AddDate(0, validity, 0)

	// 6. 创建账户，继承激活码的行业权限
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		Industries:   model.IndustryList{invite.Industry},
		ExpiresAt:    &expiresAt,
	}
	if err := txRepo.User.Create(ctx, user); err != nil {
		rollback()
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 7. 核销激活码：compare-and-swap，并发注册同一码时恰好一方成功
	rows, err := txRepo.InviteCode.Redeem(ctx, invite.Code, user.UserID)
	if err != nil {
		rollback()
		s.logger.Error("核销激活码失败", zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		// 竞争失败：另一次注册已抢先核销
		rollback()
		return nil, ErrInvalidInviteCode
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交注册事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("用户注册成功",
		zap.String("username", user.Username),
		zap.String("industry", invite.Industry),
		zap.Int("validity_months", validity),
	)

	return &dto.RegisterResponse{
		ID:             user.UserID,
		Username:       user.Username,
		Industry:       invite.Industry,
		ValidityMonths: validity,
		ExpiresAt:      expiresAt,
	}, nil
}

// ────────────────────── Logout ──────────────────────

// Logout 将当前 Token 的 JWT ID 加入黑名单；Redis 不可用时静默降级
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.BlacklistToken(ctx, jti, time.Until(expiresAt))
}

// ────────────────────── GetCurrentUser ──────────────────────

// GetCurrentUser 返回当前账户的最新状态（含行业权限与有效期提醒）。
// 始终读库，不回放 Token 中的快照。
func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user, time.Now())
	return &resp, nil
}

// ── 内部辅助 ──

// toUserResponse 将 model.User 转换为响应结构，附剩余天数与临期提醒
func toUserResponse(user *model.User, now time.Time) dto.UserResponse {
	resp := dto.UserResponse{
		ID:         user.UserID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		Industries: []string(user.Industries),
		ExpiresAt:  user.ExpiresAt,
	}
	if user.ExpiresAt != nil && !user.IsAdmin() {
		days := DaysRemaining(*user.ExpiresAt, now)
		resp.DaysRemaining = &days
		resp.ExpireWarning = NewExpiryWarning(*user.ExpiresAt, now)
	}
	return resp
}
