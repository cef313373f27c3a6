package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/hexaprojector/internal/topproducts/application"
	rankingDomain "github.com/davicafu/hexaprojector/internal/topproducts/domain"
	"github.com/davicafu/hexaprojector/pkg/utils"
)

type RankingHandler struct {
	service *application.RankingService
}

func NewRankingHandler(service *application.RankingService) *RankingHandler {
	return &RankingHandler{service: service}
}

// TopOfHour endpoint GET /top-products/:hour?limit=
func (h *RankingHandler) TopOfHour(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	ranking, err := h.service.TopOfHour(c.Request.Context(), c.Param("hour"), limit)
	if err != nil {
		if errors.Is(err, rankingDomain.ErrInvalidHour) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}
	utils.SendSuccess(c, http.StatusOK, ranking)
}

// TopOfLastHours endpoint GET /top-products?hours=&limit=
func (h *RankingHandler) TopOfLastHours(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	hours, err := utils.QueryInt(c, "hours", 24)
	if err != nil || hours <= 0 || hours > 24*31 {
		utils.SendBadRequest(c, "invalid hours")
		return
	}

	ranking, err := h.service.TopOfLastHours(c.Request.Context(), hours, limit)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}
	utils.SendSuccess(c, http.StatusOK, ranking)
}

func queryLimit(c *gin.Context) (int, bool) {
	limit, err := utils.QueryInt(c, "limit", rankingDomain.DefaultLimit)
	if err != nil || limit <= 0 {
		utils.SendBadRequest(c, "invalid limit")
		return 0, false
	}
	return limit, true
}
