package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/dto"
	"invest-portal/internal/service"
	"invest-portal/pkg/response"
)

// InviteHandler 激活码模块 HTTP 处理器（管理员）
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler 创建 InviteHandler
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// Create 批量生成激活码
// POST /api/v1/admin/invite-codes
func (h *InviteHandler) Create(c *gin.Context) {
	var req dto.CreateInviteCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.inviteSvc.Issue(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidIndustry):
			response.BadRequest(c, 10001, "无效的行业选择")
		case errors.Is(err, service.ErrInvalidValidity):
			response.BadRequest(c, 10001, "有效期只能是6个月或12个月")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 激活码列表（含使用者用户名）
// GET /api/v1/admin/invite-codes
func (h *InviteHandler) List(c *gin.Context) {
	var req dto.InviteCodeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rows, total, err := h.inviteSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, rows, total, req.GetPage(), req.GetPageSize())
}

// Update 修改未使用的激活码
// PUT /api/v1/admin/invite-codes/:id
func (h *InviteHandler) Update(c *gin.Context) {
	var req dto.UpdateInviteCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.inviteSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, 14001, "激活码不存在")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			response.BadRequest(c, 12002, "已使用的激活码不能修改")
		case errors.Is(err, service.ErrInvalidIndustry):
			response.BadRequest(c, 10001, "无效的行业选择")
		case errors.Is(err, service.ErrInvalidValidity):
			response.BadRequest(c, 10001, "有效期只能是6个月或12个月")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Delete 删除未使用的激活码
// DELETE /api/v1/admin/invite-codes/:id
func (h *InviteHandler) Delete(c *gin.Context) {
	if err := h.inviteSvc.Revoke(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, 14001, "激活码不存在")
		case errors.Is(err, service.ErrInviteAlreadyUsed):
			response.BadRequest(c, 12002, "已使用的激活码不能删除")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}
