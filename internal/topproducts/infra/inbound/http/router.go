package http

import "github.com/gin-gonic/gin"

// RegisterRankingRoutes registra las rutas del top de productos.
func RegisterRankingRoutes(r gin.IRouter, handler *RankingHandler) {
	top := r.Group("/top-products")
	{
		top.GET("", handler.TopOfLastHours)  // Top de las últimas N horas
		top.GET("/:hour", handler.TopOfHour) // Top de una hora yyyyMMddHH
	}
}
