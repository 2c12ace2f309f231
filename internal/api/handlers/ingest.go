package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwilcox/tcg-arbitrage/internal/services"
)

type IngestHandler struct {
	worker *services.IngestWorker
}

func NewIngestHandler(worker *services.IngestWorker) *IngestHandler {
	return &IngestHandler{
		worker: worker,
	}
}

// GetStatus handles GET /api/ingest/status.
func (h *IngestHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.Status())
}

// TriggerSync handles POST /api/ingest/run, requesting an immediate sync.
func (h *IngestHandler) TriggerSync(c *gin.Context) {
	if !h.worker.TriggerSync() {
		c.JSON(http.StatusConflict, gin.H{"error": "a sync is already pending"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "sync queued"})
}
