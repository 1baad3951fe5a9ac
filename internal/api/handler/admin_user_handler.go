package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/dto"
	"invest-portal/internal/service"
	"invest-portal/pkg/response"
)

// AdminUserHandler 管理端用户模块 HTTP 处理器
type AdminUserHandler struct {
	userSvc service.UserService
}

// NewAdminUserHandler 创建 AdminUserHandler
func NewAdminUserHandler(userSvc service.UserService) *AdminUserHandler {
	return &AdminUserHandler{userSvc: userSvc}
}

// List 用户列表（含剩余天数与有效期状态）
// GET /api/v1/admin/users
func (h *AdminUserHandler) List(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rows, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, rows, total, req.GetPage(), req.GetPageSize())
}

// UpdateIndustries 授予多行业权限
// PUT /api/v1/admin/users/:id/industries
func (h *AdminUserHandler) UpdateIndustries(c *gin.Context) {
	var req dto.UpdateIndustriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.UpdateIndustries(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 14001, "用户不存在")
		case errors.Is(err, service.ErrEmptyIndustries):
			response.BadRequest(c, 10001, "行业权限不能为空")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// RenewExpiry 续期 6 或 12 个月
// PUT /api/v1/admin/users/:id/expire
func (h *AdminUserHandler) RenewExpiry(c *gin.Context) {
	var req dto.RenewExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.RenewExpiry(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 14001, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
