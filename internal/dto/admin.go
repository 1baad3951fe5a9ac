package dto

import "time"

// ── 管理端 DTO ──

// UpdateIndustriesRequest 更新用户行业权限请求（多行业）
type UpdateIndustriesRequest struct {
	Industries []string `json:"industries" binding:"required,min=1,dive,required"`
}

// RenewExpiryRequest 续期请求：从当前时间起顺延 6 或 12 个月
type RenewExpiryRequest struct {
	Months int `json:"months" binding:"required,oneof=6 12"`
}

// AdminUserResponse 管理端用户列表项（含有效期状态）
type AdminUserResponse struct {
	UserResponse
	Status    string    `json:"status"` // 永久 / 正常 / 今日到期 / 已过期
	CreatedAt time.Time `json:"created_at"`
}

// StatsResponse 系统统计响应
type StatsResponse struct {
	UserStats        interface{} `json:"user_stats"`
	InviteStats      interface{} `json:"invite_stats"`
	IndustryStats    interface{} `json:"industry_stats"`
	TotalInvestments int64       `json:"total_investments"`
}

// BackupInfo 备份文件信息
type BackupInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
	Type    string    `json:"type"` // scheduled | manual
}

// BackupResponse 手动备份响应
type BackupResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
