package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"revenue-forecast/internal/config"
	"revenue-forecast/internal/errors"
	"revenue-forecast/internal/models"
)

// Engine holds the current dataset and answers the product, history and
// forecast queries against it. An upload replaces the dataset atomically:
// readers snapshot the pointer and never observe a partial load.
type Engine struct {
	mu      sync.RWMutex
	data    *dataset
	cfg     config.ForecastConfig
	logger  *slog.Logger
	uploads atomic.Int64
}

func NewEngine(cfg config.ForecastConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		data:   newDataset(nil),
		cfg:    cfg,
		logger: logger,
	}
}

// LoadCSV parses and ingests a full CSV upload. The load is atomic: any bad
// row rejects the whole upload and the previous dataset stays active.
// Returns the number of accepted rows.
func (e *Engine) LoadCSV(ctx context.Context, r io.Reader) (int, error) {
	start := time.Now()

	records, err := parseTransactions(ctx, r)
	if err != nil {
		return 0, err
	}

	d := newDataset(records)
	e.replace(d)

	duration := time.Since(start)
	e.logger.Info("dataset replaced",
		"rows", len(records),
		"products", len(d.catalog),
		"months", d.monthSpan(),
		"duration", duration,
	)
	return len(records), nil
}

// LoadRecords replaces the dataset from already-parsed records.
func (e *Engine) LoadRecords(records []models.Transaction) int {
	e.replace(newDataset(records))
	return len(records)
}

func (e *Engine) replace(d *dataset) {
	e.mu.Lock()
	e.data = d
	e.mu.Unlock()
	e.uploads.Add(1)
}

func (e *Engine) snapshot() *dataset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data
}

// Products returns the catalog: the distinct product ids of the current
// dataset, sorted. Empty (not nil) before the first upload.
func (e *Engine) Products() []string {
	return e.snapshot().catalog
}

// History returns total revenue across all products for the trailing window
// of months ending at the last observed month, zero-filling gaps. Fewer
// points come back when the dataset spans fewer months than requested.
func (e *Engine) History(months int) ([]models.HistoryPoint, error) {
	if months < 1 {
		return nil, errors.Validation(fmt.Sprintf("months must be at least 1, got %d", months))
	}
	return e.snapshot().historyWindow(months), nil
}

func (e *Engine) Stats() map[string]any {
	d := e.snapshot()
	return map[string]any{
		"record_count": len(d.records),
		"products":     len(d.catalog),
		"months":       d.monthSpan(),
		"uploads":      e.uploads.Load(),
		"last_loaded":  d.loadedAt,
	}
}
