package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mwilcox/tcg-arbitrage/internal/api"
	"github.com/mwilcox/tcg-arbitrage/internal/arbitrage"
	"github.com/mwilcox/tcg-arbitrage/internal/database"
	"github.com/mwilcox/tcg-arbitrage/internal/services"
)

const defaultEURUSDRate = 1.10

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./tcg_arbitrage.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	catalog := database.NewCatalog(database.GetDB())

	// EUR -> USD conversion for Cardmarket prices. Fixed per process; no
	// live-rate fetch.
	rate := defaultEURUSDRate
	if rateStr := os.Getenv("EUR_USD_RATE"); rateStr != "" {
		parsed, err := strconv.ParseFloat(rateStr, 64)
		if err != nil || parsed <= 0 {
			log.Fatalf("Invalid EUR_USD_RATE %q", rateStr)
		}
		rate = parsed
	}
	engine := arbitrage.NewEngine(catalog, rate)
	log.Printf("Opportunity engine using EUR/USD rate %.4f", rate)

	// Initialize pokemontcg.io client
	tcgioService, err := services.NewTCGioService(os.Getenv("POKEMONTCG_API_KEY"))
	if err != nil {
		log.Fatalf("Failed to initialize pokemontcg.io service: %v", err)
	}

	// Sets to ingest, comma separated
	sets := []string{"swshp"}
	if setList := os.Getenv("INGEST_SETS"); setList != "" {
		sets = sets[:0]
		for _, id := range strings.Split(setList, ",") {
			if id = strings.TrimSpace(id); id != "" {
				sets = append(sets, id)
			}
		}
	}

	interval := 6 * time.Hour
	if minutesStr := os.Getenv("INGEST_INTERVAL_MINUTES"); minutesStr != "" {
		if minutes, err := strconv.Atoi(minutesStr); err == nil && minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}

	ingestWorker := services.NewIngestWorker(tcgioService, catalog, sets, interval)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start ingest worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in ingest worker: %v - restarting in 30 seconds", r)
					}
				}()
				ingestWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Ingest worker restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(engine, catalog, ingestWorker)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the ingest worker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
