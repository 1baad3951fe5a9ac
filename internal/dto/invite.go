package dto

import "time"

// ── 激活码模块 DTO ──

// CreateInviteCodesRequest 批量创建激活码请求
type CreateInviteCodesRequest struct {
	Industry       string `json:"industry"        binding:"required"`
	Count          int    `json:"count"           binding:"omitempty,min=1,max=100"`
	ValidityMonths int    `json:"validity_months" binding:"omitempty,oneof=6 12"`
}

// UpdateInviteCodeRequest 修改未使用激活码请求
type UpdateInviteCodeRequest struct {
	Industry       string `json:"industry"        binding:"required"`
	ValidityMonths *int   `json:"validity_months" binding:"omitempty,oneof=6 12"`
}

// InviteCodeListRequest 激活码列表查询参数
type InviteCodeListRequest struct {
	PaginationRequest
	Industry string `form:"industry" binding:"omitempty,max=100"`
}

// InviteCodeResponse 激活码响应
type InviteCodeResponse struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Industry       string     `json:"industry"`
	ValidityMonths int        `json:"validity_months"`
	Used           bool       `json:"is_used"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	UsedByUsername *string    `json:"used_by_username,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
