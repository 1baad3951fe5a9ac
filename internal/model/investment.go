package model

// Investment 投资数据表 — 对应 investments
// 全局数据，无归属；查询时按访问者的行业权限过滤。
type Investment struct {
	InvestmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"investment_id"`
	CompanyName  string `gorm:"type:varchar(255);not null"                     json:"company_name"`
	Description  string `gorm:"column:company_description;type:text"           json:"company_description"`
	FundingRound string `gorm:"type:varchar(50)"                               json:"funding_round"`
	Date         string `gorm:"type:varchar(50)"                               json:"date"` // 自由文本日期，尽力归一化
	Industry     string `gorm:"type:varchar(100);index"                        json:"industry"`
	Institution  string `gorm:"column:investment_institution;type:varchar(255)" json:"investment_institution"`
	BaseModel
}

// TableName 指定表名
func (Investment) TableName() string { return "investments" }
