package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"invest-portal/internal/model"
)

// InviteCodeWithUser 激活码及使用者用户名（管理端列表展示用）
type InviteCodeWithUser struct {
	model.InviteCode
	UsedByUsername *string `json:"used_by_username,omitempty"`
}

// InviteStat 激活码统计（按行业 × 是否使用分组）
type InviteStat struct {
	Industry string `json:"industry"`
	Used     bool   `json:"is_used"`
	Count    int64  `json:"count"`
}

// InviteCodeRepository 激活码数据访问接口
type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByID(ctx context.Context, id string) (*model.InviteCode, error)
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// Redeem 以单条 UPDATE 的 compare-and-swap 方式核销激活码：
	// 仅当 is_used = FALSE 时翻转为 TRUE，返回受影响行数。
	// 并发核销同一码时恰好一方返回 1，另一方返回 0。
	Redeem(ctx context.Context, code, userID string) (int64, error)
	Update(ctx context.Context, code *model.InviteCode) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, industry string, offset, limit int) ([]InviteCodeWithUser, int64, error)
	ListAll(ctx context.Context) ([]model.InviteCode, error)
	Stats(ctx context.Context) ([]InviteStat, error)
}

type inviteCodeRepo struct {
	db *gorm.DB
}

// NewInviteCodeRepo 创建 InviteCodeRepository 实例
func NewInviteCodeRepo(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepo{db: db}
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *inviteCodeRepo) GetByID(ctx context.Context, id string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.WithContext(ctx).
		Where("invite_code_id = ?", id).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteCodeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("code = ?", code).
		Count(&n).Error
	return n > 0, err
}

func (r *inviteCodeRepo) Redeem(ctx context.Context, code, userID string) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("code = ? AND is_used = ?", code, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"used_at":    now,
			"used_by":    userID,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *inviteCodeRepo) Update(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *inviteCodeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("invite_code_id = ?", id).
		Delete(&model.InviteCode{}).Error
}

func (r *inviteCodeRepo) List(ctx context.Context, industry string, offset, limit int) ([]InviteCodeWithUser, int64, error) {
	var total int64

	db := r.db.WithContext(ctx).Model(&model.InviteCode{})
	if industry != "" && industry != model.IndustryAll {
		db = db.Where("invite_codes.industry = ?", industry)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []InviteCodeWithUser
	err := db.
		Select("invite_codes.*, users.username AS used_by_username").
		Joins("LEFT JOIN users ON invite_codes.used_by = users.user_id").
		Order("invite_codes.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *inviteCodeRepo) ListAll(ctx context.Context) ([]model.InviteCode, error) {
	var codes []model.InviteCode
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&codes).Error
	return codes, err
}

func (r *inviteCodeRepo) Stats(ctx context.Context) ([]InviteStat, error) {
	var stats []InviteStat
	err := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Select("industry, is_used AS used, COUNT(*) AS count").
		Group("industry, is_used").
		Scan(&stats).Error
	return stats, err
}
