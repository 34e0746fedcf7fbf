package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning is returned when Start is called twice
var ErrAlreadyRunning = errors.New("simulation already running")

// Submitter records one finished round
type Submitter interface {
	Submit(ctx context.Context, nickname string, diff float64) (*models.SubmitResponse, error)
}

// Simulator plays timer rounds for a fixed set of players, bypassing HTTP
type Simulator struct {
	submitter Submitter
	players   []string
	clock     clockwork.Clock

	faker   *gofakeit.Faker
	fakerMu sync.Mutex
	next    int

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// Metrics
	totalRounds  atomic.Int64
	successCount atomic.Int64
	errorCount   atomic.Int64
	startTime    time.Time

	tickInterval   time.Duration
	roundsPerTick  int
	maxDiff        float64
	reportInterval time.Duration
}

// SimulatorConfig holds configuration for the simulator
type SimulatorConfig struct {
	TickInterval   time.Duration // Default: 100ms
	RoundsPerTick  int           // Default: 1
	MaxDiff        float64       // Largest |diff| in ms. Default: 2000
	ReportInterval time.Duration // Default: 30s
	Seed           uint64        // 0 picks a random seed
}

// SimulatorMetrics is a point-in-time view of simulator progress
type SimulatorMetrics struct {
	Running     bool    `json:"running"`
	TotalRounds int64   `json:"total_rounds"`
	Successful  int64   `json:"successful"`
	Errors      int64   `json:"errors"`
	DurationSec float64 `json:"duration_sec"`
	Rate        float64 `json:"rate"`
}

// NewSimulator creates a simulator for players
func NewSimulator(submitter Submitter, players []string, clock clockwork.Clock, config SimulatorConfig) *Simulator {
	// Apply defaults
	if config.TickInterval <= 0 {
		config.TickInterval = 100 * time.Millisecond
	}
	if config.RoundsPerTick <= 0 {
		config.RoundsPerTick = 1
	}
	if config.MaxDiff <= 0 {
		config.MaxDiff = 2000
	}
	if config.ReportInterval <= 0 {
		config.ReportInterval = 30 * time.Second
	}

	return &Simulator{
		submitter:      submitter,
		players:        append([]string(nil), players...),
		clock:          clock,
		faker:          gofakeit.New(config.Seed),
		stopCh:         make(chan struct{}),
		tickInterval:   config.TickInterval,
		roundsPerTick:  config.RoundsPerTick,
		maxDiff:        config.MaxDiff,
		reportInterval: config.ReportInterval,
	}
}

// Play runs n rounds synchronously and returns how many were recorded
func (s *Simulator) Play(ctx context.Context, n int) int {
	if s.startTime.IsZero() {
		s.startTime = s.clock.Now()
	}
	recorded := 0
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		if s.playRound(ctx) {
			recorded++
		}
	}
	return recorded
}

// Start begins playing RoundsPerTick rounds every TickInterval
func (s *Simulator) Start(ctx context.Context) error {
	if len(s.players) == 0 {
		return errors.New("no players available for simulation")
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	s.startTime = s.clock.Now()

	log.Info().
		Int("players", len(s.players)).
		Dur("tick_interval", s.tickInterval).
		Int("rounds_per_tick", s.roundsPerTick).
		Float64("max_diff_ms", s.maxDiff).
		Msg("simulation started")

	s.wg.Add(2)
	go s.simulationLoop(ctx)
	go s.metricsReporter(ctx)

	return nil
}

// Stop halts the simulation and waits for its goroutines
func (s *Simulator) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()

	m := s.GetMetrics()
	log.Info().
		Int64("total", m.TotalRounds).
		Int64("successful", m.Successful).
		Int64("errors", m.Errors).
		Float64("rate", m.Rate).
		Msg("simulation stopped")
}

// IsRunning returns whether the simulation loop is active
func (s *Simulator) IsRunning() bool {
	return s.running.Load()
}

// GetMetrics returns current simulation metrics
func (s *Simulator) GetMetrics() SimulatorMetrics {
	elapsed := s.clock.Since(s.startTime)
	total := s.totalRounds.Load()

	var rate float64
	if elapsed > 0 {
		rate = float64(total) / elapsed.Seconds()
	}

	return SimulatorMetrics{
		Running:     s.running.Load(),
		TotalRounds: total,
		Successful:  s.successCount.Load(),
		Errors:      s.errorCount.Load(),
		DurationSec: elapsed.Seconds(),
		Rate:        rate,
	}
}

func (s *Simulator) simulationLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.Chan():
			for i := 0; i < s.roundsPerTick; i++ {
				s.playRound(ctx)
			}
		}
	}
}

// playRound picks the next player and submits a random stop
func (s *Simulator) playRound(ctx context.Context) bool {
	if len(s.players) == 0 {
		return false
	}
	nickname, diff := s.nextRound()

	s.totalRounds.Add(1)
	if _, err := s.submitter.Submit(ctx, nickname, diff); err != nil {
		// Only every hundredth failure is logged
		if s.errorCount.Add(1)%100 == 1 {
			log.Warn().Err(err).Int64("errors", s.errorCount.Load()).Msg("simulation round failed")
		}
		return false
	}
	s.successCount.Add(1)
	return true
}

func (s *Simulator) nextRound() (string, float64) {
	s.fakerMu.Lock()
	defer s.fakerMu.Unlock()

	// Wrap around and reshuffle for variety
	if s.next >= len(s.players) {
		s.next = 0
		s.faker.ShuffleStrings(s.players)
	}
	nickname := s.players[s.next]
	s.next++

	// Whole milliseconds, early or late
	diff := float64(int64(s.faker.Float64Range(-s.maxDiff, s.maxDiff)))
	return nickname, diff
}

func (s *Simulator) metricsReporter(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.Chan():
			m := s.GetMetrics()
			log.Info().
				Int64("rounds", m.TotalRounds).
				Float64("rate", m.Rate).
				Int64("errors", m.Errors).
				Msg("simulation progress")
		}
	}
}
