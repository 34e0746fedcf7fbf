package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"
)

const (
	// DefaultHistoryLimit mirrors the per-device history the client keeps
	DefaultHistoryLimit = 50

	maxHistoryLimit = 200
)

// RecordReader reads archived game records
type RecordReader interface {
	ListRecords(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error)
}

// HistoryService serves a nickname's archived submissions
type HistoryService struct {
	records RecordReader
}

// NewHistoryService creates a new history service
func NewHistoryService(records RecordReader) *HistoryService {
	return &HistoryService{records: records}
}

// Records returns up to limit records for nickname, newest first
func (s *HistoryService) Records(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperrors.ErrBadRequest
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.records.ListRecords(ctx, nickname, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}
