package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"invest-portal/internal/service"
	"invest-portal/pkg/response"
)

// SystemHandler 系统管理 HTTP 处理器：统计与备份（管理员）
type SystemHandler struct {
	statsSvc  service.StatsService
	backupSvc service.BackupService
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(statsSvc service.StatsService, backupSvc service.BackupService) *SystemHandler {
	return &SystemHandler{statsSvc: statsSvc, backupSvc: backupSvc}
}

// Stats 系统统计
// GET /api/v1/admin/stats
func (h *SystemHandler) Stats(c *gin.Context) {
	result, err := h.statsSvc.Overview(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Backup 触发手动备份
// POST /api/v1/admin/backup
func (h *SystemHandler) Backup(c *gin.Context) {
	result, err := h.backupSvc.Run(c.Request.Context(), "manual")
	if err != nil {
		if errors.Is(err, service.ErrBackupDisabled) {
			response.BadRequest(c, 10001, "备份功能未启用")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Backups 备份文件列表
// GET /api/v1/admin/backups
func (h *SystemHandler) Backups(c *gin.Context) {
	result, err := h.backupSvc.List()
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
