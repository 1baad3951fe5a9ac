package model

import "time"

// 激活码有效期选项（月）
const (
	ValidityHalfYear = 6
	ValidityOneYear  = 12
)

// InviteCode 激活码表 — 对应 invite_codes
// 一次性令牌：used 只会从 false 变为 true，且仅在创建用户的同一事务内翻转。
type InviteCode struct {
	InviteCodeID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	Code           string     `gorm:"type:varchar(8);not null;uniqueIndex"           json:"code"`
	Industry       string     `gorm:"type:varchar(100);not null"                     json:"industry"`
	ValidityMonths int        `gorm:"not null;default:12"                            json:"validity_months"`
	Used           bool       `gorm:"column:is_used;not null;default:false"          json:"is_used"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	UsedBy         *string    `gorm:"type:uuid"                                      json:"used_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }
