package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mwilcox/tcg-arbitrage/internal/api/handlers"
	"github.com/mwilcox/tcg-arbitrage/internal/arbitrage"
	"github.com/mwilcox/tcg-arbitrage/internal/database"
	"github.com/mwilcox/tcg-arbitrage/internal/metrics"
	"github.com/mwilcox/tcg-arbitrage/internal/services"
)

func SetupRouter(engine *arbitrage.Engine, catalog *database.Catalog, ingestWorker *services.IngestWorker) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	router.Use(requestMetrics())

	// Initialize handlers
	opportunityHandler := handlers.NewOpportunityHandler(engine)
	cardHandler := handlers.NewCardHandler(catalog)
	setHandler := handlers.NewSetHandler(catalog)
	ingestHandler := handlers.NewIngestHandler(ingestWorker)

	// API routes
	api := router.Group("/api")
	{
		api.GET("/opportunities", opportunityHandler.GetOpportunities)

		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.GetCards)
			cards.GET("/:id", cardHandler.GetCard)
		}

		api.GET("/sets", setHandler.GetSets)

		ingest := api.Group("/ingest")
		{
			ingest.GET("/status", ingestHandler.GetStatus)
			ingest.POST("/run", ingestHandler.TriggerSync)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency per route template.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
