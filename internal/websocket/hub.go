package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// How often the hub polls the board version. Clients refetch the top list
	// only when told the version moved, at most once per interval.
	defaultPollInterval = 2 * time.Second

	// Buffered outbound messages per client
	sendBufferSize = 16

	// RankingUpdateType tags messages announcing a changed daily board
	RankingUpdateType = "RANKING_UPDATE"
)

// VersionSource exposes the current game day and its board version
type VersionSource interface {
	Today() string
	Version(ctx context.Context) (int64, error)
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts board changes to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	source       VersionSource
	pollInterval time.Duration

	mu sync.RWMutex

	// Last broadcast state, owned by the Run goroutine
	lastDay     string
	lastVersion int64
}

// RankingUpdate is pushed to clients whenever today's board changes
type RankingUpdate struct {
	Type    string `json:"type"`
	Day     string `json:"day"`
	Version int64  `json:"version"`
}

// NewHub creates a new WebSocket hub
func NewHub(source VersionSource) *Hub {
	return &Hub{
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		clients:      make(map[*Client]bool),
		source:       source,
		pollInterval: defaultPollInterval,
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run(ctx context.Context) {
	log.Info().Dur("poll_interval", h.pollInterval).Msg("websocket hub started")

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Debug().Int("clients", total).Msg("websocket client connected")

			h.sendCurrent(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Debug().Int("clients", total).Msg("websocket client disconnected")

		case <-ticker.C:
			h.checkAndBroadcast(ctx)

		case <-ctx.Done():
			h.closeAll()
			log.Info().Msg("websocket hub shutting down")
			return
		}
	}
}

// checkAndBroadcast broadcasts when the day or its board version changed
func (h *Hub) checkAndBroadcast(ctx context.Context) {
	day := h.source.Today()
	version, err := h.source.Version(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get ranking version")
		return
	}

	if day == h.lastDay && version == h.lastVersion {
		return
	}
	h.lastDay = day
	h.lastVersion = version

	message, err := json.Marshal(RankingUpdate{Type: RankingUpdateType, Day: day, Version: version})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal ranking update")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow client; it will catch up on the next change
			log.Warn().Msg("client send buffer full, skipping")
		}
	}
}

// sendCurrent tells a newly connected client the current version
func (h *Hub) sendCurrent(ctx context.Context, client *Client) {
	day := h.source.Today()
	version, err := h.source.Version(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to get initial ranking version")
		return
	}

	if h.lastDay == "" {
		h.lastDay = day
		h.lastVersion = version
	}

	message, err := json.Marshal(RankingUpdate{Type: RankingUpdateType, Day: day, Version: version})
	if err != nil {
		return
	}

	select {
	case client.send <- message:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains the connection until the client goes away
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Msg("websocket unexpected close")
			}
			return
		}
		// Client messages are ignored
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// ServeWS registers conn with the hub and blocks until it disconnects
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
