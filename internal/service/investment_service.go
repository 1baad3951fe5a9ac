package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"invest-portal/internal/dto"
	"invest-portal/internal/model"
	"invest-portal/internal/repository"
)

// ── 投资数据模块业务错误 ──

var (
	ErrInvestmentNotFound = errors.New("投资数据不存在")
	ErrImportEmptyFile    = errors.New("导入文件为空或格式不正确")
	ErrImportNoCompanyCol = errors.New("导入文件缺少公司名称列")
)

// 导入时行业为空的兜底标签
const fallbackIndustry = "其他"

// InvestmentService 投资数据业务接口。
// 读取路径（List/Search/Get）按调用方的授权行业集合过滤，
// 过滤集合之外的记录对调用方不存在（单条查询同样返回不存在，不泄露记录存在性）。
type InvestmentService interface {
	List(ctx context.Context, ent *Entitlement, req *dto.InvestmentListRequest) ([]dto.InvestmentResponse, int64, error)
	Search(ctx context.Context, ent *Entitlement, req *dto.InvestmentSearchRequest) ([]dto.InvestmentResponse, int64, error)
	Get(ctx context.Context, ent *Entitlement, id string) (*dto.InvestmentResponse, error)

	Create(ctx context.Context, req *dto.InvestmentRequest) (*dto.InvestmentResponse, error)
	Update(ctx context.Context, id string, req *dto.InvestmentRequest) (*dto.InvestmentResponse, error)
	Delete(ctx context.Context, id string) error
	// Import 解析 Excel 文件并批量入库。缺少公司名称的行记为错误行，
	// 其余行一次性批量写入；写入失败时本次导入整体失败。
	Import(ctx context.Context, r io.Reader) (*dto.ImportInvestmentResponse, error)

	// Industries 返回可选行业标签：预设行业与数据中实际出现行业的并集
	Industries(ctx context.Context) ([]string, error)
}

type investmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInvestmentService 创建 InvestmentService 实例
func NewInvestmentService(repo *repository.Repository, logger *zap.Logger) InvestmentService {
	return &investmentService{repo: repo, logger: logger}
}

// filterFor 由授权结果推导查询过滤条件
func filterFor(ent *Entitlement, query string) *repository.InvestmentFilter {
	filter := &repository.InvestmentFilter{Query: query}
	if !ent.Unrestricted {
		filter.Industries = []string(ent.Industries)
	}
	return filter
}

// ────────────────────── 读取 ──────────────────────

func (s *investmentService) List(ctx context.Context, ent *Entitlement, req *dto.InvestmentListRequest) ([]dto.InvestmentResponse, int64, error) {
	invs, total, err := s.repo.Investment.List(ctx, filterFor(ent, ""), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询投资数据列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toInvestmentResponses(invs), total, nil
}

func (s *investmentService) Search(ctx context.Context, ent *Entitlement, req *dto.InvestmentSearchRequest) ([]dto.InvestmentResponse, int64, error) {
	query := strings.TrimSpace(req.Query)
	invs, total, err := s.repo.Investment.List(ctx, filterFor(ent, query), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("搜索投资数据失败", zap.String("query", query), zap.Error(err))
		return nil, 0, err
	}
	return toInvestmentResponses(invs), total, nil
}

func (s *investmentService) Get(ctx context.Context, ent *Entitlement, id string) (*dto.InvestmentResponse, error) {
	inv, err := s.repo.Investment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		s.logger.Error("查询投资数据失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 授权范围之外的记录按不存在处理
	if !ent.Unrestricted && !ent.Industries.Contains(inv.Industry) {
		return nil, ErrInvestmentNotFound
	}

	resp := toInvestmentResponse(inv)
	return &resp, nil
}

// ────────────────────── 管理端写入 ──────────────────────

func (s *investmentService) Create(ctx context.Context, req *dto.InvestmentRequest) (*dto.InvestmentResponse, error) {
	inv := &model.Investment{
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Description:  req.Description,
		FundingRound: req.FundingRound,
		Date:         req.Date,
		Industry:     strings.TrimSpace(req.Industry),
		Institution:  req.Institution,
	}
	if inv.Industry == "" {
		inv.Industry = fallbackIndustry
	}

	if err := s.repo.Investment.Create(ctx, inv); err != nil {
		s.logger.Error("创建投资数据失败", zap.String("company", inv.CompanyName), zap.Error(err))
		return nil, err
	}

	resp := toInvestmentResponse(inv)
	return &resp, nil
}

func (s *investmentService) Update(ctx context.Context, id string, req *dto.InvestmentRequest) (*dto.InvestmentResponse, error) {
	inv, err := s.repo.Investment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvestmentNotFound
		}
		return nil, err
	}

	inv.CompanyName = strings.TrimSpace(req.CompanyName)
	inv.Description = req.Description
	inv.FundingRound = req.FundingRound
	inv.Date = req.Date
	inv.Industry = strings.TrimSpace(req.Industry)
	inv.Institution = req.Institution
	if inv.Industry == "" {
		inv.Industry = fallbackIndustry
	}

	if err := s.repo.Investment.Update(ctx, inv); err != nil {
		s.logger.Error("更新投资数据失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toInvestmentResponse(inv)
	return &resp, nil
}

func (s *investmentService) Delete(ctx context.Context, id string) error {
	rows, err := s.repo.Investment.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除投资数据失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrInvestmentNotFound
	}
	return nil
}

// ────────────────────── Excel 导入 ──────────────────────

// 列名别名表：兼容不同来源表格的中英文表头
var importColumnAliases = map[string][]string{
	"company_name":  {"公司名称", "企业名称", "公司", "company_name", "company name", "company"},
	"description":   {"公司简介", "公司描述", "简介", "description", "company_description"},
	"funding_round": {"融资轮次", "轮次", "funding_round", "round"},
	"date":          {"日期", "投资日期", "时间", "date"},
	"industry":      {"行业赛道", "行业", "行业领域", "赛道", "industry"},
	"institution":   {"投资机构", "投资方", "机构", "institution", "investment_institution"},
}

func (s *investmentService) Import(ctx context.Context, r io.Reader) (*dto.ImportInvestmentResponse, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportEmptyFile
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrImportEmptyFile
	}

	colIndex := resolveImportColumns(rows[0])
	if _, ok := colIndex["company_name"]; !ok {
		return nil, ErrImportNoCompanyCol
	}

	cell := func(row []string, field string) string {
		idx, ok := colIndex[field]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var (
		invs      []*model.Investment
		rowErrors []dto.ImportRowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2 // Excel 行号，表头占第 1 行

		companyName := cell(row, "company_name")
		if companyName == "" {
			rowErrors = append(rowErrors, dto.ImportRowError{Row: rowNum, Reason: "公司名称为空"})
			continue
		}

		industry := cell(row, "industry")
		if industry == "" {
			industry = fallbackIndustry
		}

		invs = append(invs, &model.Investment{
			CompanyName:  companyName,
			Description:  cell(row, "description"),
			FundingRound: cell(row, "funding_round"),
			Date:         cell(row, "date"),
			Industry:     industry,
			Institution:  cell(row, "institution"),
		})
	}

	if len(invs) > 0 {
		if err := s.repo.Investment.BatchCreate(ctx, invs); err != nil {
			s.logger.Error("批量导入投资数据失败", zap.Int("rows", len(invs)), zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("投资数据导入完成",
		zap.Int("total", len(rows)-1),
		zap.Int("success", len(invs)),
		zap.Int("failed", len(rowErrors)),
	)

	return &dto.ImportInvestmentResponse{
		Total:   len(rows) - 1,
		Success: len(invs),
		Failed:  len(rowErrors),
		Errors:  rowErrors,
	}, nil
}

// resolveImportColumns 按别名表解析表头，返回字段到列下标的映射
func resolveImportColumns(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, name := range header {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		for field, aliases := range importColumnAliases {
			if _, taken := colIndex[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					colIndex[field] = i
					break
				}
			}
		}
	}
	return colIndex
}

// ────────────────────── 行业标签 ──────────────────────

func (s *investmentService) Industries(ctx context.Context) ([]string, error) {
	existing, err := s.repo.Investment.DistinctIndustries(ctx)
	if err != nil {
		s.logger.Error("查询行业列表失败", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(model.PredefinedIndustries)+len(existing))
	result := make([]string, 0, len(model.PredefinedIndustries)+len(existing))
	for _, v := range model.PredefinedIndustries {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}

	// 数据中实际出现而预设之外的行业排在末尾，按字典序
	var extra []string
	for _, v := range existing {
		if !seen[v] {
			seen[v] = true
			extra = append(extra, v)
		}
	}
	sort.Strings(extra)
	result = append(result, extra...)

	return result, nil
}

// ── 内部辅助 ──

func toInvestmentResponse(inv *model.Investment) dto.InvestmentResponse {
	return dto.InvestmentResponse{
		ID:           inv.InvestmentID,
		CompanyName:  inv.CompanyName,
		Description:  inv.Description,
		FundingRound: inv.FundingRound,
		Date:         inv.Date,
		Industry:     inv.Industry,
		Institution:  inv.Institution,
	}
}

func toInvestmentResponses(invs []model.Investment) []dto.InvestmentResponse {
	result := make([]dto.InvestmentResponse, 0, len(invs))
	for i := range invs {
		result = append(result, toInvestmentResponse(&invs[i]))
	}
	return result
}
