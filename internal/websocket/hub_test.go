package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	day     string
	version int64
	err     error
}

func (f *fakeSource) Today() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.day
}

func (f *fakeSource) Version(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, f.err
}

func (f *fakeSource) set(day string, version int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.day = day
	f.version = version
}

func receive(t *testing.T, c *Client) RankingUpdate {
	t.Helper()
	select {
	case msg := <-c.send:
		var update RankingUpdate
		require.NoError(t, json.Unmarshal(msg, &update))
		return update
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ranking update")
		return RankingUpdate{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %s", msg)
	default:
	}
}

func TestCheckAndBroadcastOnlyOnChange(t *testing.T) {
	source := &fakeSource{day: "2026-10-18", version: 3}
	hub := NewHub(source)
	client := &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.clients[client] = true

	hub.sendCurrent(context.Background(), client)
	assert.Equal(t, RankingUpdate{Type: RankingUpdateType, Day: "2026-10-18", Version: 3}, receive(t, client))

	hub.checkAndBroadcast(context.Background())
	assertSilent(t, client)

	source.set("2026-10-18", 4)
	hub.checkAndBroadcast(context.Background())
	assert.Equal(t, int64(4), receive(t, client).Version)

	// Day rollover with a fresh counter still announces
	source.set("2026-10-19", 4)
	hub.checkAndBroadcast(context.Background())
	assert.Equal(t, "2026-10-19", receive(t, client).Day)
}

func TestCheckAndBroadcastSourceError(t *testing.T) {
	source := &fakeSource{day: "2026-10-18", err: errors.New("redis down")}
	hub := NewHub(source)
	client := &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.clients[client] = true

	hub.checkAndBroadcast(context.Background())
	assertSilent(t, client)
}

func TestRunRegistersAndPolls(t *testing.T) {
	source := &fakeSource{day: "2026-10-18", version: 1}
	hub := NewHub(source)
	hub.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.register <- client

	assert.Equal(t, int64(1), receive(t, client).Version)
	assert.Equal(t, 1, hub.GetClientCount())

	source.set("2026-10-18", 2)
	assert.Equal(t, int64(2), receive(t, client).Version)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}
