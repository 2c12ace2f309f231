package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwilcox/tcg-arbitrage/internal/database"
	"github.com/mwilcox/tcg-arbitrage/internal/metrics"
	"github.com/mwilcox/tcg-arbitrage/internal/models"
)

const defaultIngestInterval = 6 * time.Hour

// IngestWorker periodically syncs the configured sets from pokemontcg.io into
// the catalog: set metadata, card records, and one appended price snapshot per
// quoted card per run. The opportunity engine only ever reads what this
// worker writes.
type IngestWorker struct {
	tcgio    *TCGioService
	catalog  *database.Catalog
	sets     []string
	interval time.Duration

	// Manual sync trigger; buffered so at most one request is pending.
	trigger chan struct{}

	mu               sync.RWMutex
	lastRunID        string
	lastRunTime      time.Time
	lastRunDuration  time.Duration
	cardsSynced      int
	snapshotsWritten int
	lastError        string
}

// IngestStatus is the worker state reported at /api/ingest/status.
type IngestStatus struct {
	Sets             []string      `json:"sets"`
	Interval         time.Duration `json:"interval_ns"`
	LastRunID        string        `json:"last_run_id,omitempty"`
	LastRunTime      time.Time     `json:"last_run_time"`
	NextRunTime      time.Time     `json:"next_run_time"`
	LastRunSeconds   float64       `json:"last_run_seconds"`
	CardsSynced      int           `json:"cards_synced"`
	SnapshotsWritten int           `json:"snapshots_written"`
	LastError        string        `json:"last_error,omitempty"`
}

func NewIngestWorker(tcgio *TCGioService, catalog *database.Catalog, sets []string, interval time.Duration) *IngestWorker {
	if interval <= 0 {
		interval = defaultIngestInterval
	}
	return &IngestWorker{
		tcgio:    tcgio,
		catalog:  catalog,
		sets:     sets,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
}

// Start runs the sync loop until the context is cancelled. An initial sync
// runs immediately so a fresh database has data before the first tick.
func (w *IngestWorker) Start(ctx context.Context) {
	log.Printf("Ingest worker started: syncing %d sets every %s", len(w.sets), w.interval)

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ingest worker stopping...")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

// TriggerSync requests an immediate sync. Returns false when a manual sync is
// already pending.
func (w *IngestWorker) TriggerSync() bool {
	select {
	case w.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Status returns a snapshot of the worker state.
func (w *IngestWorker) Status() IngestStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := IngestStatus{
		Sets:             w.sets,
		Interval:         w.interval,
		LastRunID:        w.lastRunID,
		LastRunTime:      w.lastRunTime,
		LastRunSeconds:   w.lastRunDuration.Seconds(),
		CardsSynced:      w.cardsSynced,
		SnapshotsWritten: w.snapshotsWritten,
		LastError:        w.lastError,
	}
	if !w.lastRunTime.IsZero() {
		status.NextRunTime = w.lastRunTime.Add(w.interval)
	}
	return status
}

func (w *IngestWorker) runOnce(ctx context.Context) {
	runID := uuid.New().String()
	start := time.Now()
	log.Printf("Ingest run %s: starting sync of %d sets", runID, len(w.sets))

	cardsSynced := 0
	snapshotsWritten := 0
	var runErr error

	for _, setID := range w.sets {
		if ctx.Err() != nil {
			return
		}

		cards, snapshots, err := w.syncSet(ctx, setID)
		if err != nil {
			log.Printf("Ingest run %s: set %s failed: %v", runID, setID, err)
			runErr = err
			continue
		}
		cardsSynced += cards
		snapshotsWritten += snapshots
	}

	duration := time.Since(start)
	w.recordRun(runID, start, duration, cardsSynced, snapshotsWritten, runErr)

	result := "success"
	if runErr != nil {
		result = "failed"
	}
	metrics.IngestRunsTotal.WithLabelValues(result).Inc()
	metrics.IngestRunDuration.Observe(duration.Seconds())
	metrics.IngestCardsSynced.Add(float64(cardsSynced))
	metrics.IngestSnapshotsWritten.Add(float64(snapshotsWritten))
	metrics.UpdateCatalogMetrics(database.GetDB())

	log.Printf("Ingest run %s: synced %d cards, wrote %d snapshots in %s",
		runID, cardsSynced, snapshotsWritten, duration.Round(time.Millisecond))
}

// syncSet pulls one set and writes it through: set row, card rows, and a new
// snapshot per quoted card. Returns cards synced and snapshots written.
func (w *IngestWorker) syncSet(ctx context.Context, setID string) (int, int, error) {
	set, err := w.tcgio.GetSet(ctx, setID)
	if err != nil {
		return 0, 0, err
	}
	if err := w.catalog.SaveSet(ctx, set); err != nil {
		return 0, 0, err
	}

	records, err := w.tcgio.GetCardsBySet(ctx, setID)
	if err != nil {
		return 0, 0, err
	}

	cards := make([]models.Card, 0, len(records))
	for _, r := range records {
		cards = append(cards, r.Card)
	}
	if err := w.catalog.SaveCards(ctx, cards); err != nil {
		return 0, 0, err
	}

	now := time.Now()
	snapshots := 0
	for _, r := range records {
		if r.Snapshot == nil {
			continue
		}
		snapshot := *r.Snapshot
		snapshot.CreatedAt = now
		if err := w.catalog.AppendSnapshot(ctx, &snapshot); err != nil {
			return len(cards), snapshots, err
		}
		snapshots++
	}

	return len(cards), snapshots, nil
}

func (w *IngestWorker) recordRun(runID string, start time.Time, duration time.Duration, cards, snapshots int, runErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRunID = runID
	w.lastRunTime = start
	w.lastRunDuration = duration
	w.cardsSynced = cards
	w.snapshotsWritten = snapshots
	if runErr != nil {
		w.lastError = runErr.Error()
	} else {
		w.lastError = ""
	}
}
