package repository

import (
	"context"
	"time"
)

// ScoredMember is a sorted set member with its score
type ScoredMember struct {
	Member string
	Score  float64
}

// Store is the key-value capability the registry and ranking board run on.
// Implementations must make AddNickname and AddScore atomic per call.
type Store interface {
	// AddNickname adds nickname to the set at key and reports whether it was new.
	// The first insert into a key without an expiry arms ttl on it.
	AddNickname(ctx context.Context, key, nickname string, ttl time.Duration) (bool, error)

	// HasNickname reports whether nickname is a member of the set at key
	HasNickname(ctx context.Context, key, nickname string) (bool, error)

	// AddScore upserts member into the sorted set at key, trims it to the keep
	// lowest scores and bumps versionKey. A positive ttl is armed on both keys
	// when they have no expiry yet. Returns the new version.
	AddScore(ctx context.Context, key, versionKey string, entry ScoredMember, keep int64, ttl time.Duration) (int64, error)

	// TopScores returns up to n members of key, lowest score first
	TopScores(ctx context.Context, key string, n int64) ([]ScoredMember, error)

	// Version returns the counter at versionKey, 0 when unset
	Version(ctx context.Context, versionKey string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
