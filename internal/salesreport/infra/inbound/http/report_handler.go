package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexaprojector/internal/salesreport/application"
	reportDomain "github.com/davicafu/hexaprojector/internal/salesreport/domain"
	"github.com/davicafu/hexaprojector/pkg/utils"
)

// ReportHandler expone el informe de ventas por HTTP.
type ReportHandler struct {
	service *application.ReportService
}

func NewReportHandler(service *application.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetReport endpoint GET /reports/sales/:date
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.service.GetReport(c.Request.Context(), c.Param("date"))
	if err != nil {
		switch {
		case errors.Is(err, reportDomain.ErrInvalidDate):
			utils.SendBadRequest(c, err.Error())
		case errors.Is(err, reportDomain.ErrReportNotFound):
			utils.SendNotFound(c, "sales report not found")
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, report)
}

// GetTrend endpoint GET /reports/sales/trend?from=yyyy-MM-dd&to=yyyy-MM-dd
func (h *ReportHandler) GetTrend(c *gin.Context) {
	trend, err := h.service.Trend(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		switch {
		case errors.Is(err, reportDomain.ErrInvalidDate):
			utils.SendBadRequest(c, err.Error())
		case errors.Is(err, application.ErrTrendUnavailable):
			utils.SendServiceUnavailable(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	if trend == nil {
		trend = []reportDomain.DailySales{}
	}
	utils.SendSuccess(c, http.StatusOK, trend)
}
