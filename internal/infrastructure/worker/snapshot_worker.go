package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/storage"
)

// snapshotLayout names snapshot files by the minute they were taken
const snapshotLayout = "20060102-1504"

// BalanceExporter writes the leave balance workbook
type BalanceExporter interface {
	ExportLeaveBalances(ctx context.Context, w io.Writer) (int, error)
}

// SnapshotStats describes the worker's progress
type SnapshotStats struct {
	Taken     int
	Failed    int
	LastPath  string
	LastError error
}

// SnapshotWorker periodically saves the leave balance workbook to storage
type SnapshotWorker struct {
	interval time.Duration
	exporter BalanceExporter
	storage  storage.FileStorage
	now      func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	done      chan struct{}
	stats     SnapshotStats
}

// NewSnapshotWorker creates a worker that takes a snapshot every interval
func NewSnapshotWorker(interval time.Duration, exporter BalanceExporter, store storage.FileStorage, logger *zap.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		interval: interval,
		exporter: exporter,
		storage:  store,
		now:      time.Now,
		logger:   logger,
	}
}

// Name returns the worker name for identification
func (w *SnapshotWorker) Name() string {
	return "SnapshotWorker"
}

// Start begins the snapshot loop
func (w *SnapshotWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %s", w.interval)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("snapshot worker already running")
	}

	var loopCtx context.Context
	loopCtx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.isRunning = true

	w.logger.Info("SnapshotWorker started",
		zap.Duration("interval", w.interval),
		zap.String("dir", w.storage.BaseDir()))

	go w.loop(loopCtx, w.done)
	return nil
}

// Stop terminates the loop and waits for an in-flight snapshot to finish
func (w *SnapshotWorker) Stop() error {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return nil
	}
	w.isRunning = false
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	cancel()
	<-done

	stats := w.Stats()
	w.logger.Info("SnapshotWorker stopped",
		zap.Int("taken", stats.Taken),
		zap.Int("failed", stats.Failed))
	return nil
}

// Stats returns a copy of the worker's counters
func (w *SnapshotWorker) Stats() SnapshotStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *SnapshotWorker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			path, err := w.Snapshot(ctx)
			w.mu.Lock()
			if err != nil {
				w.stats.Failed++
				w.stats.LastError = err
			} else {
				w.stats.Taken++
				w.stats.LastPath = path
			}
			w.mu.Unlock()
			if err != nil {
				w.logger.Error("Failed to take leave balance snapshot", zap.Error(err))
			}
		}
	}
}

// Snapshot exports the workbook once and returns where it was saved
func (w *SnapshotWorker) Snapshot(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	n, err := w.exporter.ExportLeaveBalances(ctx, &buf)
	if err != nil {
		return "", fmt.Errorf("export leave balances: %w", err)
	}

	name := fmt.Sprintf("leave_balances_%s.xlsx", w.now().Format(snapshotLayout))
	path, err := w.storage.Save(name, buf.Bytes())
	if err != nil {
		return "", err
	}

	w.logger.Info("Leave balance snapshot saved",
		zap.String("path", path),
		zap.Int("employees", n))
	return path, nil
}
