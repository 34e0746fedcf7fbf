package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// NicknameKeyPrefix prefixes the per-day nickname set
	NicknameKeyPrefix = "nicknames:"

	// RankingKeyPrefix prefixes the per-day ranking sorted set
	RankingKeyPrefix = "ranking:"

	// VersionKeySuffix is appended to a ranking key for its change counter
	VersionKeySuffix = ":version"
)

// NicknameKey returns the nickname set key for day (YYYY-MM-DD)
func NicknameKey(day string) string {
	return NicknameKeyPrefix + day
}

// RankingKey returns the ranking sorted set key for day (YYYY-MM-DD)
func RankingKey(day string) string {
	return RankingKeyPrefix + day
}

// RankingVersionKey returns the change counter key for day (YYYY-MM-DD)
func RankingVersionKey(day string) string {
	return RankingKey(day) + VersionKeySuffix
}

// reserveNicknameScript adds the nickname and arms the expiry only when the
// set has none yet, so the first reservation of the day wins.
// KEYS[1] = nickname set, ARGV[1] = nickname, ARGV[2] = ttl seconds (0 = none)
var reserveNicknameScript = redis.NewScript(`
local added = redis.call('SADD', KEYS[1], ARGV[1])
local ttl = tonumber(ARGV[2])
if added == 1 and ttl > 0 and redis.call('TTL', KEYS[1]) == -1 then
	redis.call('EXPIRE', KEYS[1], ttl)
end
return added
`)

// addScoreScript upserts the member, evicts everything past the kept ranks
// and bumps the day's version counter in one round trip.
// KEYS[1] = ranking set, KEYS[2] = version counter
// ARGV[1] = member, ARGV[2] = score, ARGV[3] = keep, ARGV[4] = ttl seconds (0 = none)
var addScoreScript = redis.NewScript(`
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
redis.call('ZREMRANGEBYRANK', KEYS[1], tonumber(ARGV[3]), -1)
local version = redis.call('INCR', KEYS[2])
local ttl = tonumber(ARGV[4])
if ttl > 0 then
	if redis.call('TTL', KEYS[1]) == -1 then
		redis.call('EXPIRE', KEYS[1], ttl)
	end
	if redis.call('TTL', KEYS[2]) == -1 then
		redis.call('EXPIRE', KEYS[2], ttl)
	end
end
return version
`)

// RedisRepository handles all Redis operations
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis repository
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{
		client: client,
	}
}

// AddNickname reserves nickname in the set at key, arming ttl on first insert
func (r *RedisRepository) AddNickname(ctx context.Context, key, nickname string, ttl time.Duration) (bool, error) {
	added, err := reserveNicknameScript.Run(ctx, r.client, []string{key}, nickname, ttlSeconds(ttl)).Int64()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

// HasNickname checks set membership
func (r *RedisRepository) HasNickname(ctx context.Context, key, nickname string) (bool, error) {
	return r.client.SIsMember(ctx, key, nickname).Result()
}

// AddScore upserts a ranking entry and keeps only the best keep entries
func (r *RedisRepository) AddScore(ctx context.Context, key, versionKey string, entry ScoredMember, keep int64, ttl time.Duration) (int64, error) {
	if keep <= 0 {
		return 0, fmt.Errorf("keep must be positive, got %d", keep)
	}

	score := strconv.FormatFloat(entry.Score, 'f', -1, 64)
	return addScoreScript.Run(ctx, r.client, []string{key, versionKey},
		entry.Member, score, keep, ttlSeconds(ttl),
	).Int64()
}

// TopScores retrieves the n best (lowest score) entries in ascending order
func (r *RedisRepository) TopScores(ctx context.Context, key string, n int64) ([]ScoredMember, error) {
	if n <= 0 {
		return []ScoredMember{}, nil
	}

	results, err := r.client.ZRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	members := make([]ScoredMember, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		members = append(members, ScoredMember{Member: member, Score: z.Score})
	}

	return members, nil
}

// Version returns the ranking change counter
func (r *RedisRepository) Version(ctx context.Context, versionKey string) (int64, error) {
	version, err := r.client.Get(ctx, versionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil // Nothing submitted yet today
		}
		return 0, err
	}
	return version, nil
}

// Ping checks if Redis is reachable
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// ttlSeconds converts ttl into the whole seconds EXPIRE expects, 0 meaning none
func ttlSeconds(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
