package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mwilcox/tcg-arbitrage/internal/arbitrage"
	"github.com/mwilcox/tcg-arbitrage/internal/metrics"
)

type OpportunityHandler struct {
	engine *arbitrage.Engine
}

func NewOpportunityHandler(engine *arbitrage.Engine) *OpportunityHandler {
	return &OpportunityHandler{
		engine: engine,
	}
}

// GetOpportunities handles GET /api/opportunities.
// Query parameters: min_roi (float >= 0, default 0), set_id, rarity,
// sort_by (roi|spread|price, default roi), limit (1-200, default 50).
func (h *OpportunityHandler) GetOpportunities(c *gin.Context) {
	minROI, err := strconv.ParseFloat(c.DefaultQuery("min_roi", "0"), 64)
	if err != nil {
		metrics.OpportunityQueriesTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "min_roi must be a number"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		metrics.OpportunityQueriesTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}

	query := arbitrage.Query{
		SetID:  c.Query("set_id"),
		Rarity: c.Query("rarity"),
		MinROI: minROI,
		SortBy: arbitrage.SortKey(c.DefaultQuery("sort_by", "roi")),
		Limit:  limit,
	}

	opportunities, err := h.engine.FindOpportunities(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, arbitrage.ErrInvalidSortKey) ||
			errors.Is(err, arbitrage.ErrInvalidMinROI) ||
			errors.Is(err, arbitrage.ErrInvalidLimit) {
			metrics.OpportunityQueriesTotal.WithLabelValues("invalid").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		metrics.OpportunityQueriesTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.OpportunityQueriesTotal.WithLabelValues("ok").Inc()
	metrics.OpportunitySignalsReturned.Observe(float64(len(opportunities)))
	c.JSON(http.StatusOK, opportunities)
}
