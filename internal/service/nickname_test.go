package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HoonDongKang/daily-ranking-redis/internal/apperrors"
	"github.com/HoonDongKang/daily-ranking-redis/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

func newNicknameFixture(t *testing.T) (*NicknameService, *repository.MemoryStore, *recordingStore, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	mem := repository.NewMemoryStore(clock)
	store := &recordingStore{Store: mem}
	return NewNicknameService(store, clock, time.UTC, nil), mem, store, clock
}

func TestReserve(t *testing.T) {
	svc, mem, _, _ := newNicknameFixture(t)
	ctx := context.Background()

	got, err := svc.Reserve(ctx, "  alice  ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)

	assert.Equal(t, 8*time.Hour+30*time.Minute, mem.TTL("nicknames:2026-10-18"))

	_, err = svc.Reserve(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrNicknameDuplicate)

	got, err = svc.Reserve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", got)

	ok, err := svc.IsReserved(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserveTTLArmedOnlyOnce(t *testing.T) {
	svc, mem, _, clock := newNicknameFixture(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "alice")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.Reserve(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 6*time.Hour+30*time.Minute, mem.TTL("nicknames:2026-10-18"),
		"later reservations must not push the expiry out")
}

func TestReserveAgainOnNextDay(t *testing.T) {
	svc, _, _, clock := newNicknameFixture(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, "alice")
	require.NoError(t, err)

	clock.Advance(9 * time.Hour)

	got, err := svc.Reserve(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

func TestReserveRejectsBlank(t *testing.T) {
	for _, nickname := range []string{"", "   ", "\t\n"} {
		t.Run("nickname="+nickname, func(t *testing.T) {
			svc, _, store, _ := newNicknameFixture(t)

			_, err := svc.Reserve(context.Background(), nickname)
			assert.ErrorIs(t, err, apperrors.ErrBadRequest)
			assert.Zero(t, store.Calls(), "no store mutation for invalid input")
		})
	}
}

func TestReserveStoreFailure(t *testing.T) {
	svc, _, store, _ := newNicknameFixture(t)
	store.err = errors.New("connection refused")

	_, err := svc.Reserve(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}
