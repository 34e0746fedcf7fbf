package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is an in-process Store with the same expiry and trimming
// semantics as the Redis scripts. Suitable for tests and single-instance runs.
type MemoryStore struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	sets     map[string]map[string]struct{}
	boards   map[string][]ScoredMember
	counters map[string]int64
	expiry   map[string]time.Time
}

// NewMemoryStore creates an empty store whose expiries follow clock
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		clock:    clock,
		sets:     make(map[string]map[string]struct{}),
		boards:   make(map[string][]ScoredMember),
		counters: make(map[string]int64),
		expiry:   make(map[string]time.Time),
	}
}

// AddNickname adds nickname to the set, arming ttl on the first insert
func (m *MemoryStore) AddNickname(_ context.Context, key, nickname string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(key)

	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	if _, exists := set[nickname]; exists {
		return false, nil
	}
	set[nickname] = struct{}{}
	m.armExpiry(key, ttl)

	return true, nil
}

// HasNickname reports set membership
func (m *MemoryStore) HasNickname(_ context.Context, key, nickname string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(key)
	_, ok := m.sets[key][nickname]
	return ok, nil
}

// AddScore upserts entry, trims the board to keep entries and bumps the version
func (m *MemoryStore) AddScore(_ context.Context, key, versionKey string, entry ScoredMember, keep int64, ttl time.Duration) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive, got %d", keep)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(key)
	m.evictExpired(versionKey)

	board := m.boards[key]
	replaced := false
	for i := range board {
		if board[i].Member == entry.Member {
			board[i].Score = entry.Score
			replaced = true
			break
		}
	}
	if !replaced {
		board = append(board, entry)
	}

	sort.Slice(board, func(i, j int) bool {
		if board[i].Score != board[j].Score {
			return board[i].Score < board[j].Score
		}
		return board[i].Member < board[j].Member
	})
	if int64(len(board)) > keep {
		board = board[:keep]
	}
	m.boards[key] = board

	m.counters[versionKey]++
	m.armExpiry(key, ttl)
	m.armExpiry(versionKey, ttl)

	return m.counters[versionKey], nil
}

// TopScores returns up to n entries, lowest score first
func (m *MemoryStore) TopScores(_ context.Context, key string, n int64) ([]ScoredMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(key)

	board := m.boards[key]
	if n > int64(len(board)) {
		n = int64(len(board))
	}
	if n <= 0 {
		return []ScoredMember{}, nil
	}

	out := make([]ScoredMember, n)
	copy(out, board[:n])
	return out, nil
}

// Version returns the counter at versionKey
func (m *MemoryStore) Version(_ context.Context, versionKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(versionKey)
	return m.counters[versionKey], nil
}

// TTL returns the remaining lifetime of key, or -1 when it has no expiry
func (m *MemoryStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(key)
	deadline, ok := m.expiry[key]
	if !ok {
		return -1
	}
	return deadline.Sub(m.clock.Now())
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// armExpiry sets ttl on key unless it already carries one. Callers hold mu.
func (m *MemoryStore) armExpiry(key string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if _, ok := m.expiry[key]; ok {
		return
	}
	m.expiry[key] = m.clock.Now().Add(ttl)
}

// evictExpired drops key if its deadline has passed. Callers hold mu.
func (m *MemoryStore) evictExpired(key string) {
	deadline, ok := m.expiry[key]
	if !ok || m.clock.Now().Before(deadline) {
		return
	}
	delete(m.expiry, key)
	delete(m.sets, key)
	delete(m.boards, key)
	delete(m.counters, key)
}
