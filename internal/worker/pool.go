package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/metrics"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned by Submit when the pool applies backpressure
var ErrQueueFull = errors.New("worker pool queue full (backpressure)")

// ErrPoolClosed is returned by Submit after Shutdown
var ErrPoolClosed = errors.New("worker pool closed")

// RecordWriter persists a single game record
type RecordWriter interface {
	InsertRecord(ctx context.Context, record *models.GameRecord) error
}

// WorkerPool manages a pool of workers for asynchronous database writes
type WorkerPool struct {
	jobs        chan models.GameRecord
	workerCount int
	writer      RecordWriter
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	stats       *PoolMetrics
	metrics     *metrics.Metrics

	closeMu sync.RWMutex
	closed  bool

	writeTimeout time.Duration
}

// PoolMetrics tracks worker pool performance
type PoolMetrics struct {
	mu              sync.RWMutex
	processed       int64
	failed          int64
	backpressure    int64
	totalProcessing time.Duration
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(workerCount, queueSize int, writer RecordWriter, m *metrics.Metrics) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		jobs:         make(chan models.GameRecord, queueSize),
		workerCount:  workerCount,
		writer:       writer,
		ctx:          ctx,
		cancel:       cancel,
		stats:        &PoolMetrics{},
		metrics:      m,
		writeTimeout: 5 * time.Second,
	}
}

// Start initializes and starts all worker goroutines
func (wp *WorkerPool) Start() {
	log.Info().Int("workers", wp.workerCount).Int("queue_size", cap(wp.jobs)).Msg("starting archive worker pool")

	for i := 1; i <= wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// worker is the main worker loop that processes jobs
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			log.Debug().Int("worker", id).Msg("worker shutting down")
			return

		case record, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.processRecord(id, record)
		}
	}
}

// processRecord writes a single record with panic recovery
func (wp *WorkerPool) processRecord(workerID int, record models.GameRecord) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Int("worker", workerID).Interface("panic", r).Str("member", record.Member).Msg("worker panic recovered")
			wp.stats.incrementFailed()
			wp.metrics.Archive("failed")
		}
	}()

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(wp.ctx, wp.writeTimeout)
	defer cancel()

	err := wp.writer.InsertRecord(ctx, &record)

	processingTime := time.Since(startTime)

	if err != nil {
		log.Error().Err(err).Int("worker", workerID).Str("member", record.Member).Dur("took", processingTime).Msg("failed to archive game record")
		wp.stats.incrementFailed()
		wp.metrics.Archive("failed")
		return
	}

	wp.stats.recordSuccess(processingTime)
	wp.metrics.Archive("processed")
}

// Submit queues a record without blocking; a full queue drops it
func (wp *WorkerPool) Submit(record models.GameRecord) error {
	wp.closeMu.RLock()
	defer wp.closeMu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- record:
		return nil

	default:
		log.Warn().Str("member", record.Member).Msg("archive queue full, dropping game record")
		wp.stats.incrementBackpressure()
		wp.metrics.Archive("backpressure")
		return ErrQueueFull
	}
}

// Shutdown stops accepting records and waits for queued ones to be written
func (wp *WorkerPool) Shutdown(timeout time.Duration) error {
	wp.closeMu.Lock()
	if wp.closed {
		wp.closeMu.Unlock()
		return nil
	}
	wp.closed = true
	close(wp.jobs)
	wp.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.logMetrics()
		wp.cancel()
		return nil

	case <-time.After(timeout):
		wp.cancel() // Force cancel remaining writes
		return fmt.Errorf("shutdown timeout exceeded after %v", timeout)
	}
}

// Snapshot is a point-in-time view of the pool counters
type Snapshot struct {
	Processed          int64  `json:"processed"`
	Failed             int64  `json:"failed"`
	BackpressureEvents int64  `json:"backpressure_events"`
	AvgProcessingTime  string `json:"avg_processing_time"`
	QueueUtilization   string `json:"queue_utilization"`
}

// GetMetrics returns a snapshot of the pool metrics
func (wp *WorkerPool) GetMetrics() Snapshot {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	avgProcessing := time.Duration(0)
	if wp.stats.processed > 0 {
		avgProcessing = wp.stats.totalProcessing / time.Duration(wp.stats.processed)
	}

	return Snapshot{
		Processed:          wp.stats.processed,
		Failed:             wp.stats.failed,
		BackpressureEvents: wp.stats.backpressure,
		AvgProcessingTime:  avgProcessing.String(),
		QueueUtilization:   fmt.Sprintf("%d/%d", len(wp.jobs), cap(wp.jobs)),
	}
}

func (wp *WorkerPool) logMetrics() {
	s := wp.GetMetrics()
	log.Info().
		Int64("processed", s.Processed).
		Int64("failed", s.Failed).
		Int64("backpressure_events", s.BackpressureEvents).
		Str("avg_processing_time", s.AvgProcessingTime).
		Msg("archive worker pool stopped")
}

func (pm *PoolMetrics) recordSuccess(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.processed++
	pm.totalProcessing += duration
}

func (pm *PoolMetrics) incrementFailed() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.failed++
}

func (pm *PoolMetrics) incrementBackpressure() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.backpressure++
}
