package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/quickchess/internal/model"
	"github.com/mcoot/quickchess/internal/services/matchmaker"
	"github.com/mcoot/quickchess/internal/services/registry"
	"github.com/mcoot/quickchess/internal/services/session"
)

const (
	// writeWait is the time allowed to write an event to the peer
	writeWait = 10 * time.Second
)

// HandlerConfig holds the collaborators for the connection handler
type HandlerConfig struct {
	Logger     *slog.Logger
	Hub        *Hub
	Registry   *registry.Service
	Matchmaker *matchmaker.Service
	Sessions   *session.Controller
}

// Handler binds one websocket connection to one identity and routes
// protocol events between the transport and the coordinator services.
// Every failure it produces is a protocol message or a closed
// connection, never a fault that escapes the handler.
type Handler struct {
	logger     *slog.Logger
	hub        *Hub
	registry   *registry.Service
	matchmaker *matchmaker.Service
	sessions   *session.Controller
	upgrader   websocket.Upgrader
}

// NewHandler creates a connection handler
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		logger:     cfg.Logger.With(slog.String("component", "ws")),
		hub:        cfg.Hub,
		registry:   cfg.Registry,
		matchmaker: cfg.Matchmaker,
		sessions:   cfg.Sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Identity is the protocol's own concern; no origin gate
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the connection to completion
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &conn{h: h, ws: ws}
	c.serve()
}

// conn is the per-connection state: the bound identity plus the most
// recent match resolution, which is what makes lazy session creation
// possible on the first submitted move.
type conn struct {
	h  *Handler
	ws *websocket.Conn
	id model.PlayerID

	client *Client

	mu    sync.Mutex
	match *matchmaker.Resolution
}

func (c *conn) serve() {
	defer func() { _ = c.ws.Close() }()

	id, ok := c.identityPhase()
	if !ok {
		return
	}
	c.id = id

	c.h.registry.Add(id)
	c.client = c.h.hub.Bind(id)
	c.h.logger.Info("player connected", slog.String("player", string(id)))

	// Single writer: everything after the identity phase reaches the
	// socket through the reply channel
	writeDone := make(chan struct{})
	go c.writePump(writeDone)

	c.readLoop()

	// Teardown closes the reply channel (directly via unbind, or it
	// was already closed by a replacing bind), which stops the pump
	c.teardown()
	<-writeDone
}

// identityPhase prompts for and validates the client's identity.
// Malformed ids get invalid_identity and another chance; the client is
// expected to generate a fresh identity and resubmit.
func (c *conn) identityPhase() (model.PlayerID, bool) {
	if err := c.writeEvent(model.MustEvent(model.EventRegister, nil)); err != nil {
		return "", false
	}

	for {
		var ev model.Event
		if err := c.ws.ReadJSON(&ev); err != nil {
			return "", false
		}
		if ev.Type != model.EventIdentity {
			continue
		}

		var payload model.IdentityPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil || !model.IsValidPlayerID(payload.ID) {
			c.h.logger.Info("invalid identity rejected", slog.String("id", string(payload.ID)))
			if err := c.writeEvent(model.MustEvent(model.EventInvalidIdentity, nil)); err != nil {
				return "", false
			}
			continue
		}

		return payload.ID, true
	}
}

func (c *conn) writePump(done chan<- struct{}) {
	defer close(done)

	for ev := range c.client.Events() {
		if err := c.writeEvent(ev); err != nil {
			// Unblock the read loop; remaining events are drained by
			// the hub closing the channel on unbind
			_ = c.ws.Close()
			for range c.client.Events() {
			}
			return
		}
	}
}

func (c *conn) writeEvent(ev model.Event) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(ev)
}

func (c *conn) readLoop() {
	for {
		var ev model.Event
		if err := c.ws.ReadJSON(&ev); err != nil {
			return
		}

		switch ev.Type {
		case model.EventRequestUsers:
			c.handleRequestUsers()
		case model.EventRequestQuickMatch:
			c.handleQuickMatch(ev.Data)
		case model.EventCancelQuickMatch:
			c.h.matchmaker.CancelMatch(c.id)
		case model.EventSubmitMove:
			c.handleSubmitMove(ev.Data)
		case model.EventRequestDisconnect:
			// Same teardown as a transport-level disconnect
			return
		default:
			c.h.logger.Debug("unknown event ignored",
				slog.String("player", string(c.id)),
				slog.String("type", string(ev.Type)))
		}
	}
}

func (c *conn) handleRequestUsers() {
	c.h.hub.Send(c.id, model.MustEvent(model.EventUsers, model.UsersPayload{
		Players: c.h.registry.OnlinePlayers(),
	}))
}

func (c *conn) handleQuickMatch(data json.RawMessage) {
	var payload model.QuickMatchPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			c.h.logger.Debug("malformed quick match payload", slog.String("player", string(c.id)))
			return
		}
	}
	if payload.Info != nil {
		c.h.registry.SetInfo(c.id, payload.Info)
	}

	resolution, err := c.h.matchmaker.RequestMatch(c.id)
	if err != nil {
		// Duplicate or raced-offline requests are tolerated quietly;
		// the original request (if any) is still pending
		c.h.logger.Debug("quick match request rejected",
			slog.String("player", string(c.id)),
			slog.String("error", err.Error()))
		return
	}

	// Forward the resolution, whenever it arrives, through the reply
	// channel. A cancelled request closes the channel without ever
	// delivering, which releases this goroutine.
	go func() {
		res, ok := <-resolution
		if !ok {
			return
		}

		if res.TimedOut {
			c.h.hub.Send(c.id, model.MustEvent(model.EventMatchResult, model.MatchResultPayload{
				Reason: model.MatchReasonTimeout,
			}))
			return
		}

		c.mu.Lock()
		c.match = &res
		c.mu.Unlock()

		c.h.hub.Send(c.id, model.MustEvent(model.EventMatchResult, model.MatchResultPayload{
			Opponent: res.Opponent,
			Color:    res.Color,
		}))
	}()
}

func (c *conn) handleSubmitMove(data json.RawMessage) {
	var payload model.SubmitMovePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	ctx := context.Background()

	// Sessions are created lazily on the first submitted move, from
	// the pairing this connection last resolved. Either way the
	// pairing is consumed: one resolution begets at most one game.
	sess := c.h.sessions.SessionFor(c.id)
	if sess == nil {
		c.mu.Lock()
		match := c.match
		c.match = nil
		c.mu.Unlock()
		if match == nil {
			// No game and no pairing: tolerate the race, drop it
			return
		}

		var err error
		sess, err = c.h.sessions.GetOrCreate(ctx, c.id, match.Opponent, match.Color)
		if err != nil {
			c.h.logger.Warn("session creation refused",
				slog.String("player", string(c.id)),
				slog.String("error", err.Error()))
			return
		}
	} else {
		c.mu.Lock()
		c.match = nil
		c.mu.Unlock()
	}

	game := sess.Game()
	outcome, err := c.h.sessions.SubmitMove(ctx, c.id, payload.Move)
	if err != nil {
		return
	}

	if !outcome.Accepted {
		// Resynchronize the requester only; the opponent never hears
		// about rejected submissions
		c.h.hub.Send(c.id, model.MustEvent(model.EventMoveRejected, model.MoveRejectedPayload{
			FEN: outcome.FEN,
			PGN: outcome.PGN,
		}))
		return
	}

	c.h.hub.Send(game.Opponent(c.id), model.MustEvent(model.EventMove, model.MovePayload{
		GameID: game.ID,
		Move:   payload.Move,
		FEN:    outcome.FEN,
		PGN:    outcome.PGN,
		Result: outcome.Result,
	}))
}

// teardown propagates a disconnect: unbind the reply channel, withdraw
// any pending match request, abort the active session (notifying the
// opponent exactly once) and mark the player offline. If a newer
// connection already took over this identity, only the socket dies.
func (c *conn) teardown() {
	if !c.h.hub.Unbind(c.client) {
		return
	}

	c.h.matchmaker.CancelMatch(c.id)

	if game := c.h.sessions.Disconnect(context.Background(), c.id); game != nil {
		c.h.hub.Send(game.Opponent(c.id), model.MustEvent(model.EventGameAborted, model.GameAbortedPayload{
			GameID: game.ID,
		}))
	}

	c.h.registry.Remove(c.id)
	c.h.logger.Info("player disconnected", slog.String("player", string(c.id)))
}
