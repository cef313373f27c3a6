package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/hexaprojector/internal/shared/domain"
	"github.com/davicafu/hexaprojector/pkg/utils"
)

// OpsHandler expone salud y checkpoints de los proyectores.
type OpsHandler struct {
	checkpoints map[string]sharedDomain.CheckpointStore
}

// NewOpsHandler recibe el almacén de checkpoints de cada read model.
func NewOpsHandler(checkpoints map[string]sharedDomain.CheckpointStore) *OpsHandler {
	return &OpsHandler{checkpoints: checkpoints}
}

func RegisterOpsRoutes(r gin.IRouter, handler *OpsHandler) {
	r.GET("/health", handler.Health)
	r.GET("/checkpoints/:readModel", handler.GetCheckpoint)
}

// Health endpoint GET /health
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type checkpointResponse struct {
	ReadModel string  `json:"readModel"`
	Position  *uint64 `json:"position"`
}

// GetCheckpoint endpoint GET /checkpoints/:readModel. Position es null si aún no hay checkpoint.
func (h *OpsHandler) GetCheckpoint(c *gin.Context) {
	readModel := c.Param("readModel")
	store, ok := h.checkpoints[readModel]
	if !ok {
		utils.SendNotFound(c, "unknown read model")
		return
	}

	pos, found, err := store.GetCheckpoint(c.Request.Context(), readModel)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	resp := checkpointResponse{ReadModel: readModel}
	if found {
		resp.Position = &pos
	}
	utils.SendSuccess(c, http.StatusOK, resp)
}
