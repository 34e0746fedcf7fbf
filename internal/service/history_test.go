package service

import (
	"context"
	"errors"
	"testing"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecords(t *testing.T) {
	tests := []struct {
		name      string
		nickname  string
		limit     int
		wantLimit int
		readErr   error
		wantErr   error
	}{
		{name: "default limit", nickname: "alice", limit: 0, wantLimit: DefaultHistoryLimit},
		{name: "explicit limit", nickname: "alice", limit: 5, wantLimit: 5},
		{name: "limit capped", nickname: "alice", limit: 10_000, wantLimit: maxHistoryLimit},
		{name: "blank nickname", nickname: " ", wantErr: apperrors.ErrBadRequest},
		{name: "database error", nickname: "alice", readErr: errors.New("pq: connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit int
			reader := &fakeRecordReader{
				ListRecordsFunc: func(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error) {
					gotLimit = limit
					if tt.readErr != nil {
						return nil, tt.readErr
					}
					return []models.GameRecord{{Nickname: nickname, Score: 12}}, nil
				},
			}

			records, err := NewHistoryService(reader).Records(context.Background(), tt.nickname, tt.limit)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.readErr != nil:
				require.Error(t, err)
				assert.True(t, apperrors.IsInternal(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantLimit, gotLimit)
				require.Len(t, records, 1)
				assert.Equal(t, tt.nickname, records[0].Nickname)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewHealthService(fakePinger{}, nil).Check(ctx))
	assert.NoError(t, NewHealthService(fakePinger{}, fakePinger{}).Check(ctx))
	assert.ErrorContains(t, NewHealthService(fakePinger{err: errors.New("down")}, nil).Check(ctx), "store")
	assert.ErrorContains(t, NewHealthService(fakePinger{}, fakePinger{err: errors.New("down")}).Check(ctx), "database")
}
