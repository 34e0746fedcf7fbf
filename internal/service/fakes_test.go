package service

import (
	"context"
	"sync"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"
)

// recordingStore wraps a Store, counting calls and optionally failing them
type recordingStore struct {
	repository.Store

	mu    sync.Mutex
	calls int
	err   error
}

func (r *recordingStore) hit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *recordingStore) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *recordingStore) AddNickname(ctx context.Context, key, nickname string, ttl time.Duration) (bool, error) {
	if err := r.hit(); err != nil {
		return false, err
	}
	return r.Store.AddNickname(ctx, key, nickname, ttl)
}

func (r *recordingStore) HasNickname(ctx context.Context, key, nickname string) (bool, error) {
	if err := r.hit(); err != nil {
		return false, err
	}
	return r.Store.HasNickname(ctx, key, nickname)
}

func (r *recordingStore) AddScore(ctx context.Context, key, versionKey string, entry repository.ScoredMember, keep int64, ttl time.Duration) (int64, error) {
	if err := r.hit(); err != nil {
		return 0, err
	}
	return r.Store.AddScore(ctx, key, versionKey, entry, keep, ttl)
}

func (r *recordingStore) TopScores(ctx context.Context, key string, n int64) ([]repository.ScoredMember, error) {
	if err := r.hit(); err != nil {
		return nil, err
	}
	return r.Store.TopScores(ctx, key, n)
}

// fakeArchive collects submitted records
type fakeArchive struct {
	mu      sync.Mutex
	records []models.GameRecord
}

func (f *fakeArchive) Submit(record models.GameRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

// fakeRecordReader returns canned records
type fakeRecordReader struct {
	ListRecordsFunc func(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error)
}

func (f *fakeRecordReader) ListRecords(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error) {
	return f.ListRecordsFunc(ctx, nickname, limit)
}

// fakePinger fails with err when set
type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }
