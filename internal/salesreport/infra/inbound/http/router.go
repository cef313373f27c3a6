package http

import "github.com/gin-gonic/gin"

// RegisterReportRoutes registra las rutas HTTP del informe de ventas.
func RegisterReportRoutes(r gin.IRouter, handler *ReportHandler) {
	reports := r.Group("/reports/sales")
	{
		reports.GET("/trend", handler.GetTrend)  // Trend diario (ClickHouse)
		reports.GET("/:date", handler.GetReport) // Informe tal y como estaba en la fecha
	}
}
