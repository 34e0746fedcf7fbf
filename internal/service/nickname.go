package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/calendar"
	"github.com/HoonDongKang/daily-ranking-redis/internal/metrics"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// NicknameService reserves one nickname per player per calendar day
type NicknameService struct {
	store   repository.Store
	clock   clockwork.Clock
	loc     *time.Location
	metrics *metrics.Metrics
}

// NewNicknameService creates a new nickname registry
func NewNicknameService(store repository.Store, clock clockwork.Clock, loc *time.Location, m *metrics.Metrics) *NicknameService {
	if loc == nil {
		loc = time.Local
	}
	return &NicknameService{
		store:   store,
		clock:   clock,
		loc:     loc,
		metrics: m,
	}
}

// Reserve claims nickname for today. The day's set expires at the next
// midnight, armed by whoever reserves first.
func (s *NicknameService) Reserve(ctx context.Context, nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		s.metrics.Reservation("invalid")
		return "", apperrors.ErrBadRequest
	}

	now := s.clock.Now()
	key := repository.NicknameKey(calendar.DayKey(now, s.loc))

	added, err := s.store.AddNickname(ctx, key, nickname, calendar.UntilMidnight(now, s.loc))
	if err != nil {
		s.metrics.Reservation("error")
		s.metrics.StoreError("add_nickname")
		return "", fmt.Errorf("failed to reserve nickname: %w", err)
	}
	if !added {
		s.metrics.Reservation("duplicate")
		return "", apperrors.ErrNicknameDuplicate
	}

	s.metrics.Reservation("reserved")
	log.Debug().Str("nickname", nickname).Str("key", key).Msg("nickname reserved")

	return nickname, nil
}

// IsReserved reports whether nickname has been reserved today
func (s *NicknameService) IsReserved(ctx context.Context, nickname string) (bool, error) {
	key := repository.NicknameKey(calendar.DayKey(s.clock.Now(), s.loc))

	ok, err := s.store.HasNickname(ctx, key, strings.TrimSpace(nickname))
	if err != nil {
		s.metrics.StoreError("has_nickname")
		return false, fmt.Errorf("failed to look up nickname: %w", err)
	}
	return ok, nil
}
