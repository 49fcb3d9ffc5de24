package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"fintrack/database"
	"fintrack/ledger"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出处理器
type ExportHandler struct {
	loc *time.Location
}

// NewExportHandler 创建导出处理器
func NewExportHandler(loc *time.Location) *ExportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ExportHandler{loc: loc}
}

// dateRange 解析 date_start/date_end，缺省为本月
func (h *ExportHandler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().In(h.loc)
	start, end := ledger.MonthBounds(now.Year(), int(now.Month()), h.loc)

	if raw := c.Query("date_start"); raw != "" {
		d, err := ledger.ParseDate(raw, h.loc)
		if err != nil {
			BadRequest(c, "date_start inválido, use AAAA-MM-DD.")
			return start, end, false
		}
		start = d
	}
	if raw := c.Query("date_end"); raw != "" {
		d, err := ledger.ParseDate(raw, h.loc)
		if err != nil {
			BadRequest(c, "date_end inválido, use AAAA-MM-DD.")
			return start, end, false
		}
		end = d
	}
	if end.Before(start) {
		BadRequest(c, "date_end deve ser posterior a date_start.")
		return start, end, false
	}
	return start, end, true
}

// export 查询数据并以附件形式返回
func (h *ExportHandler) export(c *gin.Context, ext, contentType string, write func(io.Writer, []service.ExportRow) error) {
	userID := middleware.GetCurrentUserID(c)
	start, end, ok := h.dateRange(c)
	if !ok {
		return
	}

	rows, err := service.ExportRows(c.Request.Context(), database.DB, userID, start, end)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao consultar transações."))
		return
	}

	buf := new(bytes.Buffer)
	if err := write(buf, rows); err != nil {
		InternalError(c, SafeErrorMessage(err, "Falha ao gerar arquivo."))
		return
	}

	filename := fmt.Sprintf("transacoes_%s_%s.%s", start.Format("2006-01-02"), end.Format("2006-01-02"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ExportCSV 导出交易为 CSV
// @Summary 导出 CSV
// @Description 根据日期范围导出交易，缺省为本月
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param date_start query string false "开始日期 (2024-01-01)"
// @Param date_end query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv; charset=utf-8", service.WriteCSV)
}

// ExportXLSX 导出交易为 Excel
// @Summary 导出 Excel
// @Description 根据日期范围导出交易，末行为合计，缺省为本月
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param date_start query string false "开始日期 (2024-01-01)"
// @Param date_end query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", xlsxContentType, service.WriteXLSX)
}
