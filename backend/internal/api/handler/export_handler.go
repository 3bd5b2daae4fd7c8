package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/chrissi82/Dashboard-IU/backend/internal/service"
)

const (
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCalendar = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTranscript 导出成绩单
// GET /api/v1/export/transcript
func (h *ExportHandler) ExportTranscript(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportTranscript(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeXLSX)
}

// ExportCalendar 导出学期日历
// GET /api/v1/export/calendar
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	username, ok := MustGetUsername(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), username)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	sendFile(c, buf, filename, contentTypeCalendar)
}

// sendFile 设置下载响应头并写入文件内容
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
