package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/dto"
	"invest-portal/internal/service"
	"invest-portal/pkg/response"
)

// 导入文件大小上限
const maxImportFileSize = 20 << 20 // 20MB

// InvestmentHandler 投资数据模块 HTTP 处理器
type InvestmentHandler struct {
	invSvc service.InvestmentService
}

// NewInvestmentHandler 创建 InvestmentHandler
func NewInvestmentHandler(invSvc service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{invSvc: invSvc}
}

// List 投资数据列表（按授权行业过滤）
// GET /api/v1/investments
func (h *InvestmentHandler) List(c *gin.Context) {
	ent, ok := MustGetEntitlement(c)
	if !ok {
		return
	}

	var req dto.InvestmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rows, total, err := h.invSvc.List(c.Request.Context(), ent, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPageWarn(c, rows, total, req.GetPage(), req.GetPageSize(), ent.Warning)
}

// Search 投资数据搜索（关键字 + 授权行业过滤）
// GET /api/v1/investments/search?query=
func (h *InvestmentHandler) Search(c *gin.Context) {
	ent, ok := MustGetEntitlement(c)
	if !ok {
		return
	}

	var req dto.InvestmentSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	rows, total, err := h.invSvc.Search(c.Request.Context(), ent, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPageWarn(c, rows, total, req.GetPage(), req.GetPageSize(), ent.Warning)
}

// Get 单条投资数据（授权范围之外返回 404）
// GET /api/v1/investments/:id
func (h *InvestmentHandler) Get(c *gin.Context) {
	ent, ok := MustGetEntitlement(c)
	if !ok {
		return
	}

	result, err := h.invSvc.Get(c.Request.Context(), ent, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvestmentNotFound) {
			response.NotFound(c, 14001, "投资数据不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ── 管理端 ──

// Create 创建投资数据（管理员）
// POST /api/v1/admin/investments
func (h *InvestmentHandler) Create(c *gin.Context) {
	var req dto.InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.invSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Update 更新投资数据（管理员）
// PUT /api/v1/admin/investments/:id
func (h *InvestmentHandler) Update(c *gin.Context) {
	var req dto.InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.invSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvestmentNotFound) {
			response.NotFound(c, 14001, "投资数据不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Delete 删除投资数据（管理员）
// DELETE /api/v1/admin/investments/:id
func (h *InvestmentHandler) Delete(c *gin.Context) {
	if err := h.invSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrInvestmentNotFound) {
			response.NotFound(c, 14001, "投资数据不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Import Excel 批量导入（管理员）
// POST /api/v1/admin/investments/import  (multipart, 字段名 file)
func (h *InvestmentHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 文件")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		response.BadRequest(c, 10001, "文件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c)
		return
	}
	defer f.Close()

	result, err := h.invSvc.Import(c.Request.Context(), f)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportEmptyFile):
			response.BadRequest(c, 10001, "导入文件为空或格式不正确")
		case errors.Is(err, service.ErrImportNoCompanyCol):
			response.BadRequest(c, 10001, "导入文件缺少公司名称列")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Industries 可选行业标签（管理员）
// GET /api/v1/admin/industries
func (h *InvestmentHandler) Industries(c *gin.Context) {
	result, err := h.invSvc.Industries(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
