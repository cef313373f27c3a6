package http

import "github.com/gin-gonic/gin"

func RegisterFulfillmentRoutes(r gin.IRouter, handler *FulfillmentHandler) {
	r.GET("/fulfillments/:orderId", handler.GetFulfillment)
}
