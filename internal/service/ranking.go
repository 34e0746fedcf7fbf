package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/calendar"
	"github.com/HoonDongKang/daily-ranking-redis/internal/metrics"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultRankingSize is how many entries a daily board keeps
const DefaultRankingSize = 10

// RecordArchive accepts submissions for asynchronous persistence
type RecordArchive interface {
	Submit(record models.GameRecord) error
}

// RankingConfig holds the daily board rules
type RankingConfig struct {
	Size              int
	ExpireDaily       bool
	RequireRegistered bool
	Location          *time.Location
}

// RankingService records timing results on the daily board and reads it back
type RankingService struct {
	store     repository.Store
	nicknames *NicknameService
	archive   RecordArchive
	clock     clockwork.Clock
	cfg       RankingConfig
	metrics   *metrics.Metrics
}

// NewRankingService creates a new ranking service. nicknames is only consulted
// when cfg.RequireRegistered is set; archive may be nil.
func NewRankingService(
	store repository.Store,
	nicknames *NicknameService,
	archive RecordArchive,
	clock clockwork.Clock,
	cfg RankingConfig,
	m *metrics.Metrics,
) *RankingService {
	if cfg.Size <= 0 {
		cfg.Size = DefaultRankingSize
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &RankingService{
		store:     store,
		nicknames: nicknames,
		archive:   archive,
		clock:     clock,
		cfg:       cfg,
		metrics:   m,
	}
}

// Today returns the current game day (YYYY-MM-DD)
func (s *RankingService) Today() string {
	return calendar.DayKey(s.clock.Now(), s.cfg.Location)
}

// Submit records diff (elapsed minus target, in ms) for nickname on today's
// board. The board is trimmed to the configured size in the same store call.
func (s *RankingService) Submit(ctx context.Context, nickname string, diff float64) (*models.SubmitResponse, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || math.IsNaN(diff) || math.IsInf(diff, 0) {
		s.metrics.Submission("invalid")
		return nil, apperrors.ErrBadRequest
	}

	if s.cfg.RequireRegistered && s.nicknames != nil {
		registered, err := s.nicknames.IsReserved(ctx, nickname)
		if err != nil {
			s.metrics.Submission("error")
			return nil, err
		}
		if !registered {
			s.metrics.Submission("unregistered")
			return nil, apperrors.ErrNicknameNotRegistered
		}
	}

	now := s.clock.Now()
	day := calendar.DayKey(now, s.cfg.Location)

	var ttl time.Duration
	if s.cfg.ExpireDaily {
		ttl = calendar.UntilMidnight(now, s.cfg.Location)
	}

	sign := signOf(diff)
	score := math.Abs(diff)
	member := EncodeMember(nickname, sign, now.UnixMilli())

	version, err := s.store.AddScore(ctx,
		repository.RankingKey(day),
		repository.RankingVersionKey(day),
		repository.ScoredMember{Member: member, Score: score},
		int64(s.cfg.Size),
		ttl,
	)
	if err != nil {
		s.metrics.Submission("error")
		s.metrics.StoreError("add_score")
		return nil, fmt.Errorf("failed to add score: %w", err)
	}

	s.metrics.Submission("accepted")
	log.Debug().Str("member", member).Float64("score", score).Int64("version", version).Msg("score recorded")

	if s.archive != nil {
		// A full queue only loses the archive copy; the board already has the entry
		_ = s.archive.Submit(models.GameRecord{
			Day:         day,
			Nickname:    nickname,
			Sign:        sign,
			Diff:        diff,
			Score:       score,
			Member:      member,
			SubmittedAt: now,
		})
	}

	return &models.SubmitResponse{Member: member, Score: score}, nil
}

// Top returns today's best n entries, most accurate first. n outside
// 1..size falls back to the board size.
func (s *RankingService) Top(ctx context.Context, n int) ([]models.RankingEntry, error) {
	if n <= 0 || n > s.cfg.Size {
		n = s.cfg.Size
	}

	results, err := s.store.TopScores(ctx, repository.RankingKey(s.Today()), int64(n))
	if err != nil {
		s.metrics.StoreError("top_scores")
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}

	entries := make([]models.RankingEntry, 0, len(results))
	for _, result := range results {
		nickname, sign, timestamp, err := ParseMember(result.Member)
		if err != nil {
			log.Warn().Err(err).Msg("skipping unparseable ranking member")
			continue
		}

		entries = append(entries, models.RankingEntry{
			Nickname:  nickname,
			Sign:      sign,
			Timestamp: timestamp,
			Diff:      signedDiff(sign, result.Score),
		})
	}

	return entries, nil
}

// Version returns today's board change counter
func (s *RankingService) Version(ctx context.Context) (int64, error) {
	version, err := s.store.Version(ctx, repository.RankingVersionKey(s.Today()))
	if err != nil {
		s.metrics.StoreError("version")
		return 0, err
	}
	return version, nil
}
