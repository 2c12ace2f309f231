package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mwilcox/tcg-arbitrage/internal/database"
)

type CardHandler struct {
	catalog *database.Catalog
}

func NewCardHandler(catalog *database.Catalog) *CardHandler {
	return &CardHandler{
		catalog: catalog,
	}
}

// GetCards handles GET /api/cards with pagination and filters.
// Query parameters: page (>= 1, default 1), limit (1-100, default 20),
// set_id, rarity, search.
func (h *CardHandler) GetCards(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be an integer >= 1"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	result, err := h.catalog.SearchCards(c.Request.Context(), database.CardSearch{
		Page:   page,
		Limit:  limit,
		SetID:  c.Query("set_id"),
		Rarity: c.Query("rarity"),
		Search: c.Query("search"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCard handles GET /api/cards/:id, returning the card with its full price
// history, newest snapshot first.
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.catalog.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}

	c.JSON(http.StatusOK, card)
}
