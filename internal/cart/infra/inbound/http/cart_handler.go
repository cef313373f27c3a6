package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexaprojector/internal/cart/application"
	cartDomain "github.com/davicafu/hexaprojector/internal/cart/domain"
	sharedQuery "github.com/davicafu/hexaprojector/internal/shared/infra/platform/query"
	"github.com/davicafu/hexaprojector/pkg/utils"
)

// CartHandler expone el read model de carritos por HTTP.
type CartHandler struct {
	service *application.CartService
}

func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// GetCart endpoint GET /carts/:id
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.service.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, cartDomain.ErrCartNotFound) {
			utils.SendNotFound(c, "cart not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, cart)
}

// ListCarts endpoint GET /carts con filtros, paginación y ordenamiento
func (h *CartHandler) ListCarts(c *gin.Context) {
	filter := application.CartFilter{
		CartID:     c.Query("cartId"),
		CustomerID: c.Query("customerId"),
		Status:     c.Query("status"),
	}

	// --- Sort ---
	sortParam := cartDomain.DefaultSort
	if sortField := c.Query("sort"); sortField != "" {
		sortParam = sharedQuery.Sort{Field: sortField, Desc: c.Query("desc") == "true"}
	}

	// --- Paginación ---
	page, err := utils.QueryInt(c, "page", 1)
	if err != nil {
		utils.SendBadRequest(c, "invalid page")
		return
	}
	pageSize, err := utils.QueryInt(c, "pageSize", sharedQuery.DefaultPageSize)
	if err != nil {
		utils.SendBadRequest(c, "invalid pageSize")
		return
	}

	carts, err := h.service.ListCarts(c.Request.Context(), filter, sharedQuery.Page(page, pageSize), sortParam)
	if err != nil {
		if errors.Is(err, cartDomain.ErrInvalidStatus) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	if carts == nil {
		carts = []*cartDomain.Cart{}
	}
	utils.SendSuccess(c, http.StatusOK, carts)
}
