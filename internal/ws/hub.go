package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/quickchess/internal/model"
)

// sendBufferSize is the per-client buffer for outgoing events
const sendBufferSize = 64

// Client is the reply channel for one connected player: the means by
// which the coordinator pushes events to that specific client. It is
// connection-scoped and never serialized anywhere.
type Client struct {
	playerID model.PlayerID
	send     chan model.Event
}

// Events returns the channel the connection's write pump drains
func (c *Client) Events() <-chan model.Event {
	return c.send
}

// Hub is the side table of live reply channels, keyed by player id.
// It deliberately lives apart from the player registry so persisting a
// player never touches a live connection handle.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	logger  *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		logger:  logger.With(slog.String("component", "hub")),
	}
}

// Bind registers a reply channel for playerID, replacing and closing
// any channel left over from a previous connection of the same id.
func (h *Hub) Bind(playerID model.PlayerID) *Client {
	client := &Client{
		playerID: playerID,
		send:     make(chan model.Event, sendBufferSize),
	}

	h.mu.Lock()
	old := h.clients[playerID]
	h.clients[playerID] = client
	total := len(h.clients)
	h.mu.Unlock()

	if old != nil {
		close(old.send)
		h.logger.Info("reply channel replaced", slog.String("player", string(playerID)))
	}
	h.logger.Info("reply channel bound",
		slog.String("player", string(playerID)),
		slog.Int("total_clients", total))

	return client
}

// Unbind removes client's reply channel and reports whether it was
// still the current one. A channel superseded by a newer Bind for the
// same player is left alone, and the caller must then skip its
// player-level teardown: the player is still connected, just elsewhere.
func (h *Hub) Unbind(client *Client) bool {
	h.mu.Lock()
	current, ok := h.clients[client.playerID]
	wasCurrent := ok && current == client
	if wasCurrent {
		delete(h.clients, client.playerID)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if wasCurrent {
		close(client.send)
		h.logger.Info("reply channel unbound",
			slog.String("player", string(client.playerID)),
			slog.Int("total_clients", total))
	}
	return wasCurrent
}

// Send delivers an event to playerID's reply channel without blocking.
// It reports whether the event was enqueued; players with no live
// channel or a full buffer drop the event.
func (h *Hub) Send(playerID model.PlayerID, event model.Event) bool {
	h.mu.RLock()
	client, ok := h.clients[playerID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	select {
	case client.send <- event:
		return true
	default:
		h.logger.Warn("event dropped - client buffer full",
			slog.String("player", string(playerID)),
			slog.String("event", string(event.Type)))
		return false
	}
}

// Connected reports whether playerID has a live reply channel
func (h *Hub) Connected(playerID model.PlayerID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[playerID]
	return ok
}

// ClientCount returns the number of bound reply channels
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
