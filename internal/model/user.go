package model

import "time"

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username     string       `gorm:"type:varchar(50);not null;uniqueIndex"          json:"username"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string       `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string       `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	Industries   IndustryList `gorm:"column:industry;type:text;not null"             json:"industries"`
	ExpiresAt    *time.Time   `gorm:"column:expire_date"                             json:"expires_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 管理员判断；管理员不受行业过滤与有效期约束
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
