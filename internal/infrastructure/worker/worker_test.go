package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/garyjia/hr-assistant/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeExporter struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExporter) ExportLeaveBalances(ctx context.Context, w io.Writer) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	_, err := w.Write([]byte("workbook"))
	return 4, err
}

func TestSnapshotWorker_Snapshot(t *testing.T) {
	dir := t.TempDir()
	w := NewSnapshotWorker(time.Hour, &fakeExporter{}, storage.NewLocalFileStorage(dir, zap.NewNop()), zap.NewNop())
	w.now = func() time.Time { return time.Date(2025, 10, 16, 9, 30, 0, 0, time.UTC) }

	path, err := w.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "leave_balances_20251016-0930.xlsx"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(content))
}

func TestSnapshotWorker_SnapshotExportFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewSnapshotWorker(time.Hour, &fakeExporter{err: errors.New("database is locked")},
		storage.NewLocalFileStorage(dir, zap.NewNop()), zap.NewNop())

	_, err := w.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSnapshotWorker_Loop(t *testing.T) {
	exporter := &fakeExporter{}
	w := NewSnapshotWorker(5*time.Millisecond, exporter, storage.NewLocalFileStorage(t.TempDir(), zap.NewNop()), zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start")

	require.Eventually(t, func() bool { return w.Stats().Taken >= 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")

	stats := w.Stats()
	assert.NotEmpty(t, stats.LastPath)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, int32(stats.Taken), exporter.calls.Load())
}

func TestSnapshotWorker_LoopCountsFailures(t *testing.T) {
	w := NewSnapshotWorker(5*time.Millisecond, &fakeExporter{err: errors.New("boom")},
		storage.NewLocalFileStorage(t.TempDir(), zap.NewNop()), zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool { return w.Stats().Failed >= 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())

	assert.ErrorContains(t, w.Stats().LastError, "boom")
}

func TestSnapshotWorker_RejectsNonPositiveInterval(t *testing.T) {
	w := NewSnapshotWorker(0, &fakeExporter{}, storage.NewLocalFileStorage(t.TempDir(), zap.NewNop()), zap.NewNop())
	assert.Error(t, w.Start(context.Background()))
	assert.NoError(t, w.Stop())
}

type fakeWorker struct {
	name     string
	startErr error
	started  bool
	stopped  bool
}

func (f *fakeWorker) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeWorker) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeWorker) Name() string { return f.name }

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(zap.NewNop())
	ok := &fakeWorker{name: "ok"}
	broken := &fakeWorker{name: "broken", startErr: errors.New("no interval")}
	m.Register(ok)
	m.Register(broken)
	assert.Equal(t, 2, m.Count())

	require.NoError(t, m.StopAll(), "stopping before start is a no-op")
	assert.False(t, ok.stopped)

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.True(t, ok.started)
	assert.False(t, broken.started)
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.True(t, ok.stopped)
}
