package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest 激活码注册请求
type RegisterRequest struct {
	Username   string `json:"username"    binding:"required,min=2,max=50"`
	Password   string `json:"password"    binding:"required,min=8,max=64"`
	Email      string `json:"email"       binding:"required,email"`
	InviteCode string `json:"invite_code" binding:"required,len=8"`
}
