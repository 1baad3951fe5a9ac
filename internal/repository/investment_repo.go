package repository

import (
	"context"

	"gorm.io/gorm"

	"invest-portal/internal/model"
)

// InvestmentFilter 投资数据查询条件。
// Industries 为 nil 表示不做行业过滤（管理员或 "all" 权限）；
// 非 nil 时按精确匹配的 IN 集合过滤。Query 为空表示不做关键字搜索。
type InvestmentFilter struct {
	Industries []string
	Query      string
}

// IndustryCount 行业数据量统计
type IndustryCount struct {
	Industry string `json:"industry"`
	Count    int64  `json:"count"`
}

// InvestmentRepository 投资数据访问接口
type InvestmentRepository interface {
	Create(ctx context.Context, inv *model.Investment) error
	BatchCreate(ctx context.Context, invs []*model.Investment) error
	GetByID(ctx context.Context, id string) (*model.Investment, error)
	Update(ctx context.Context, inv *model.Investment) error
	Delete(ctx context.Context, id string) (int64, error)
	List(ctx context.Context, filter *InvestmentFilter, offset, limit int) ([]model.Investment, int64, error)
	ListAll(ctx context.Context) ([]model.Investment, error)
	DistinctIndustries(ctx context.Context) ([]string, error)
	IndustryCounts(ctx context.Context) ([]IndustryCount, error)
	Count(ctx context.Context) (int64, error)
}

type investmentRepo struct {
	db *gorm.DB
}

// NewInvestmentRepo 创建 InvestmentRepository 实例
func NewInvestmentRepo(db *gorm.DB) InvestmentRepository {
	return &investmentRepo{db: db}
}

func (r *investmentRepo) Create(ctx context.Context, inv *model.Investment) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *investmentRepo) BatchCreate(ctx context.Context, invs []*model.Investment) error {
	const batchSize = 100
	return r.db.WithContext(ctx).CreateInBatches(invs, batchSize).Error
}

func (r *investmentRepo) GetByID(ctx context.Context, id string) (*model.Investment, error) {
	var inv model.Investment
	err := r.db.WithContext(ctx).
		Where("investment_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *investmentRepo) Update(ctx context.Context, inv *model.Investment) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *investmentRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("investment_id = ?", id).
		Delete(&model.Investment{})
	return result.RowsAffected, result.Error
}

// applyFilter 构建查询谓词。
// 计数查询与数据查询必须共用同一谓词，总数与页内容才能一致。
func (r *investmentRepo) applyFilter(db *gorm.DB, filter *InvestmentFilter) *gorm.DB {
	if filter == nil {
		return db
	}
	if filter.Industries != nil {
		// 精确匹配的 IN 集合；不做大小写折叠或去空白
		db = db.Where("industry IN ?", filter.Industries)
	}
	if filter.Query != "" {
		q := "%" + filter.Query + "%"
		db = db.Where(
			"(company_name ILIKE ? OR company_description ILIKE ? OR industry ILIKE ? OR investment_institution ILIKE ?)",
			q, q, q, q,
		)
	}
	return db
}

func (r *investmentRepo) List(ctx context.Context, filter *InvestmentFilter, offset, limit int) ([]model.Investment, int64, error) {
	var invs []model.Investment
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Investment{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("investment_id ASC").
		Offset(offset).Limit(limit).
		Find(&invs).Error; err != nil {
		return nil, 0, err
	}

	return invs, total, nil
}

func (r *investmentRepo) ListAll(ctx context.Context) ([]model.Investment, error) {
	var invs []model.Investment
	err := r.db.WithContext(ctx).Order("investment_id ASC").Find(&invs).Error
	return invs, err
}

func (r *investmentRepo) DistinctIndustries(ctx context.Context) ([]string, error) {
	var industries []string
	err := r.db.WithContext(ctx).
		Model(&model.Investment{}).
		Distinct("industry").
		Where("industry IS NOT NULL AND industry <> ''").
		Order("industry").
		Pluck("industry", &industries).Error
	return industries, err
}

func (r *investmentRepo) IndustryCounts(ctx context.Context) ([]IndustryCount, error) {
	var counts []IndustryCount
	err := r.db.WithContext(ctx).
		Model(&model.Investment{}).
		Select("industry, COUNT(*) AS count").
		Group("industry").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (r *investmentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Investment{}).Count(&n).Error
	return n, err
}
