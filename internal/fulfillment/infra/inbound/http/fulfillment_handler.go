package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexaprojector/internal/fulfillment/application"
	fulfillmentDomain "github.com/davicafu/hexaprojector/internal/fulfillment/domain"
	"github.com/davicafu/hexaprojector/pkg/utils"
)

type FulfillmentHandler struct {
	service *application.FulfillmentService
}

func NewFulfillmentHandler(service *application.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{service: service}
}

// GetFulfillment endpoint GET /fulfillments/:orderId
func (h *FulfillmentHandler) GetFulfillment(c *gin.Context) {
	f, err := h.service.GetFulfillment(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, fulfillmentDomain.ErrFulfillmentNotFound) {
			utils.SendNotFound(c, "fulfillment not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}
	utils.SendSuccess(c, http.StatusOK, f)
}
