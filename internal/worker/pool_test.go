package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	records []models.GameRecord
	block   chan struct{}
	err     error
}

func (f *fakeWriter) InsertRecord(ctx context.Context, record *models.GameRecord) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func TestPoolFlushesOnShutdown(t *testing.T) {
	writer := &fakeWriter{}
	pool := NewWorkerPool(2, 16, writer, nil)
	pool.Start()

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(models.GameRecord{Nickname: "alice", Score: float64(i)}))
	}

	require.NoError(t, pool.Shutdown(5*time.Second))
	assert.Equal(t, 10, writer.count())

	snap := pool.GetMetrics()
	assert.Equal(t, int64(10), snap.Processed)
	assert.Zero(t, snap.Failed)
}

func TestPoolBackpressure(t *testing.T) {
	writer := &fakeWriter{}
	// Not started: nothing drains the queue
	pool := NewWorkerPool(1, 2, writer, nil)

	require.NoError(t, pool.Submit(models.GameRecord{Member: "a"}))
	require.NoError(t, pool.Submit(models.GameRecord{Member: "b"}))
	assert.ErrorIs(t, pool.Submit(models.GameRecord{Member: "c"}), ErrQueueFull)
	assert.Equal(t, int64(1), pool.GetMetrics().BackpressureEvents)

	pool.Start()
	require.NoError(t, pool.Shutdown(5*time.Second))
	assert.Equal(t, 2, writer.count())
}

func TestPoolCountsFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("duplicate key")}
	pool := NewWorkerPool(1, 4, writer, nil)
	pool.Start()

	require.NoError(t, pool.Submit(models.GameRecord{Member: "a"}))
	require.NoError(t, pool.Shutdown(5*time.Second))

	assert.Equal(t, int64(1), pool.GetMetrics().Failed)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := NewWorkerPool(1, 4, &fakeWriter{}, nil)
	pool.Start()
	require.NoError(t, pool.Shutdown(time.Second))

	assert.ErrorIs(t, pool.Submit(models.GameRecord{}), ErrPoolClosed)
	assert.NoError(t, pool.Shutdown(time.Second), "second shutdown is a no-op")
}

func TestShutdownTimeout(t *testing.T) {
	writer := &fakeWriter{block: make(chan struct{})}
	pool := NewWorkerPool(1, 4, writer, nil)
	pool.Start()

	require.NoError(t, pool.Submit(models.GameRecord{Member: "slow"}))

	err := pool.Shutdown(50 * time.Millisecond)
	assert.Error(t, err)
	close(writer.block)
}
