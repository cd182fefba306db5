package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/quickchess/internal/model"
)

const (
	handshakeTimeout = 10 * time.Second

	// identityAttempts bounds how many fresh identities the client
	// will try before giving up
	identityAttempts = 3
)

// Client is a websocket client for the coordinator protocol
type Client struct {
	conn *websocket.Conn
	cfg  *Config
}

// Connect dials the server and completes the identity handshake. If
// the server rejects the stored identity, a fresh one is generated and
// persisted.
func Connect(cfg *Config) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(cfg.ServerURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.ServerURL, err)
	}

	c := &Client{conn: conn, cfg: cfg}

	ev, err := c.ReadEvent(handshakeTimeout)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("no register prompt from server: %w", err)
	}
	if ev.Type != model.EventRegister {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected handshake event %q", ev.Type)
	}

	if err := c.identify(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return c, nil
}

// identify submits the identity and probes with a users request: the
// server only ever answers bad identities, so the probe's reply is
// what confirms acceptance.
func (c *Client) identify() error {
	for attempt := 0; attempt < identityAttempts; attempt++ {
		if err := c.Send(model.EventIdentity, model.IdentityPayload{
			ID: model.PlayerID(c.cfg.Identity),
		}); err != nil {
			return err
		}
		if err := c.Send(model.EventRequestUsers, nil); err != nil {
			return err
		}

		ev, err := c.ReadEvent(handshakeTimeout)
		if err != nil {
			return fmt.Errorf("identity handshake failed: %w", err)
		}

		switch ev.Type {
		case model.EventUsers:
			return nil
		case model.EventInvalidIdentity:
			if err := c.cfg.SaveIdentity(GenerateIdentity()); err != nil {
				return fmt.Errorf("failed to save regenerated identity: %w", err)
			}
		default:
			return fmt.Errorf("unexpected handshake event %q", ev.Type)
		}
	}
	return fmt.Errorf("server rejected %d identities in a row", identityAttempts)
}

// Identity returns the identity the connection is bound to
func (c *Client) Identity() model.PlayerID {
	return model.PlayerID(c.cfg.Identity)
}

// Send writes one protocol event
func (c *Client) Send(t model.EventType, payload any) error {
	ev, err := model.NewEvent(t, payload)
	if err != nil {
		return err
	}
	return c.conn.WriteJSON(ev)
}

// ReadEvent reads the next protocol event, failing after the timeout.
// A zero timeout waits forever.
func (c *Client) ReadEvent(timeout time.Duration) (model.Event, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return model.Event{}, err
	}

	var ev model.Event
	if err := c.conn.ReadJSON(&ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// WaitFor reads events until one of the wanted type arrives, ignoring
// everything else
func (c *Client) WaitFor(t model.EventType, timeout time.Duration) (model.Event, error) {
	for {
		ev, err := c.ReadEvent(timeout)
		if err != nil {
			return model.Event{}, err
		}
		if ev.Type == t {
			return ev, nil
		}
	}
}

// Decode unmarshals an event payload
func Decode[T any](ev model.Event) (T, error) {
	var payload T
	if len(ev.Data) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(ev.Data, &payload)
	return payload, err
}

// Close sends a clean disconnect and closes the connection
func (c *Client) Close() error {
	_ = c.Send(model.EventRequestDisconnect, nil)
	return c.conn.Close()
}
