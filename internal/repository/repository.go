package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User       UserRepository
	InviteCode InviteCodeRepository
	Investment InvestmentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		User:       NewUserRepo(db),
		InviteCode: NewInviteCodeRepo(db),
		Investment: NewInvestmentRepo(db),
	}
}

// BeginTx 开启事务。
// 测试中以字面量构造的 Repository（db 为 nil）返回 nil 事务，
// 配合 WithTx(nil) 原样返回，使 Service 层事务脚本可在 mock 上运行。
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到指定事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{
		db:         tx,
		User:       NewUserRepo(tx),
		InviteCode: NewInviteCodeRepo(tx),
		Investment: NewInvestmentRepo(tx),
	}
}
