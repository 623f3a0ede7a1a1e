package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"unihub-board/internal/dto"
	"unihub-board/internal/service"
	"unihub-board/pkg/response"
)

// ExportHandler 数据导出页 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	authSvc   service.AuthService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, authSvc service.AuthService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, authSvc: authSvc}
}

// Query 查询打卡明细
// POST /api/v1/console/export/query
func (h *ExportHandler) Query(c *gin.Context) {
	var req dto.ExportQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	rows, err := h.exportSvc.Query(c.Request.Context(), sess, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rows, "total": len(rows)})
}

// Remote 由上游生成 Excel，返回下载地址
// POST /api/v1/console/export/remote
func (h *ExportHandler) Remote(c *gin.Context) {
	var req dto.ExportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "没有可导出的数据")
		return
	}
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	res, err := h.exportSvc.ExportRemote(c.Request.Context(), sess, req.Rows)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.OK(c, res)
}

// Local 在控制台本地生成 Excel 并直接下载
// POST /api/v1/console/export/xlsx
func (h *ExportHandler) Local(c *gin.Context) {
	var req dto.ExportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "没有可导出的数据")
		return
	}

	buf, filename, err := h.exportSvc.ExportLocal(c.Request.Context(), req.Rows)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.BadRequest(c, 16101, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		respondError(c, h.authSvc, err)
	}
}
