package handler

import (
	"fmt"
	"net/http"

	"github.com/artenioreis/loja-caixa/internal/apperr"
	"github.com/artenioreis/loja-caixa/internal/dto"
	"github.com/artenioreis/loja-caixa/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func bindReportFilter(c *gin.Context) (dto.ReportFilter, bool) {
	var filter dto.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Validation("%s", err.Error()))
		return filter, false
	}
	return filter, true
}

// Sales godoc
// @Summary      Sales report for a date window
// @Description  Aggregates finalized sales: totals, per-method breakdown, top products and detailed rows. Bad or missing dates fall back to the trailing 7 days.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        start          query string false "YYYY-MM-DD"
// @Param        end            query string false "YYYY-MM-DD"
// @Param        operator_id    query string false "Filter by operator UUID"
// @Param        payment_method query string false "dinheiro | cartao | pix"
// @Success      200 {object} dto.SalesReportResponse
// @Router       /v1/reports/sales [get]
func (h *ReportsHandler) Sales(c *gin.Context) {
	filter, ok := bindReportFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.SalesReport(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export godoc
// @Summary      Download the sales report as a spreadsheet
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        start          query string false "YYYY-MM-DD"
// @Param        end            query string false "YYYY-MM-DD"
// @Param        operator_id    query string false "Filter by operator UUID"
// @Param        payment_method query string false "dinheiro | cartao | pix"
// @Success      200 {file} binary
// @Failure      404 {object} apperr.Error
// @Router       /v1/reports/sales/export [get]
func (h *ReportsHandler) Export(c *gin.Context) {
	filter, ok := bindReportFilter(c)
	if !ok {
		return
	}
	data, filename, err := h.svc.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Dashboard godoc
// @Summary      Back-office dashboard
// @Description  Today's totals, catalog counters, the per-operator till board and forgotten open sessions.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reports/dashboard [get]
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
