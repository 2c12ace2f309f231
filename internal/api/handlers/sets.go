package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwilcox/tcg-arbitrage/internal/database"
)

type SetHandler struct {
	catalog *database.Catalog
}

func NewSetHandler(catalog *database.Catalog) *SetHandler {
	return &SetHandler{
		catalog: catalog,
	}
}

// GetSets handles GET /api/sets, newest release first.
func (h *SetHandler) GetSets(c *gin.Context) {
	sets, err := h.catalog.ListSets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sets)
}
