package handler

import "invest-portal/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Investment *InvestmentHandler
	Invite     *InviteHandler
	AdminUser  *AdminUserHandler
	System     *SystemHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Investment: NewInvestmentHandler(svc.Investment),
		Invite:     NewInviteHandler(svc.Invite),
		AdminUser:  NewAdminUserHandler(svc.User),
		System:     NewSystemHandler(svc.Stats, svc.Backup),
	}
}
