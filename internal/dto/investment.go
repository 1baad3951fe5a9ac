package dto

// ── 投资数据模块 DTO ──

// InvestmentListRequest 投资数据列表查询参数
type InvestmentListRequest struct {
	PaginationRequest
}

// InvestmentSearchRequest 投资数据搜索参数
type InvestmentSearchRequest struct {
	PaginationRequest
	Query string `form:"query" binding:"required,max=100"`
}

// InvestmentRequest 创建/更新投资数据请求
type InvestmentRequest struct {
	CompanyName  string `json:"company_name"           binding:"required,max=255"`
	Description  string `json:"company_description"    binding:"omitempty"`
	FundingRound string `json:"funding_round"          binding:"omitempty,max=50"`
	Date         string `json:"date"                   binding:"omitempty,max=50"`
	Industry     string `json:"industry"               binding:"omitempty,max=100"`
	Institution  string `json:"investment_institution" binding:"omitempty,max=255"`
}

// InvestmentResponse 投资数据响应
type InvestmentResponse struct {
	ID           string `json:"id"`
	CompanyName  string `json:"company_name"`
	Description  string `json:"company_description"`
	FundingRound string `json:"funding_round"`
	Date         string `json:"date"`
	Industry     string `json:"industry"`
	Institution  string `json:"investment_institution"`
}

// ImportInvestmentResponse 批量导入投资数据响应
type ImportInvestmentResponse struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// ImportRowError 导入错误详情
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
