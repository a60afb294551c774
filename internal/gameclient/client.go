// Package gameclient is the HTTP+WebSocket client for the game server. The
// orchestrator plays through it: it never adjudicates locally, it submits the
// orders the server offered and waits for phase events.
package gameclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event mirrors the server's WebSocket event envelope.
type Event struct {
	Type   string         `json:"type"`
	GameID string         `json:"game_id"`
	Data   map[string]any `json:"data"`
}

// PhaseInfo is the current phase as reported by the server, including the
// legal orders for the power this client plays.
type PhaseInfo struct {
	ID             string              `json:"id"`
	Year           int                 `json:"year"`
	Season         string              `json:"season"`
	PhaseType      string              `json:"phase_type"`
	State          json.RawMessage     `json:"state"`
	PossibleOrders map[string][]string `json:"possible_orders"`
}

// Client is an authenticated session for one power.
type Client struct {
	power   string
	baseURL string
	log     zerolog.Logger
	httpC   *http.Client

	mu       sync.Mutex
	token    string
	wsConn   *websocket.Conn
	events   chan Event
	closedWS bool
}

// New creates a client targeting the given server URL.
func New(power, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		power:   power,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("power", power).Logger(),
		httpC:   &http.Client{Timeout: 30 * time.Second},
		events:  make(chan Event, 64),
	}
}

// Power returns the power this client plays.
func (c *Client) Power() string { return c.power }

// Login authenticates as this client's power and stores the session token.
func (c *Client) Login(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/auth/agent?power="+url.QueryEscape(c.power), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpC.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login status %d: %s", resp.StatusCode, body)
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return fmt.Errorf("decode tokens: %w", err)
	}
	c.mu.Lock()
	c.token = tokens.AccessToken
	c.mu.Unlock()
	c.log.Debug().Msg("logged in")
	return nil
}

// EnsureSession re-logs in when the stored token is near expiry.
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" && !TokenNearExpiry(token, time.Now()) {
		return nil
	}
	c.log.Debug().Msg("session token expiring, re-login")
	return c.Login(ctx)
}

// CurrentPhase fetches the current phase and this power's legal orders.
func (c *Client) CurrentPhase(ctx context.Context, gameID string) (*PhaseInfo, error) {
	var phase PhaseInfo
	if err := c.getJSON(ctx, "/api/v1/games/"+gameID+"/phases/current", &phase); err != nil {
		return nil, err
	}
	return &phase, nil
}

// SubmitOrders submits order strings for the current phase. Orders must be
// drawn verbatim from the server's legal lists.
func (c *Client) SubmitOrders(ctx context.Context, gameID string, orders []string) error {
	return c.post(ctx, "/api/v1/games/"+gameID+"/orders", map[string]any{"orders": orders})
}

// MarkReady marks this power ready for adjudication.
func (c *Client) MarkReady(ctx context.Context, gameID string) error {
	return c.post(ctx, "/api/v1/games/"+gameID+"/orders/ready", nil)
}

// ConnectWS opens the WebSocket connection and starts the read loop.
func (c *Client) ConnectWS() error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.mu.Lock()
	c.wsConn = conn
	c.mu.Unlock()

	go c.readWSLoop(conn)
	return nil
}

// SubscribeGame subscribes the WebSocket session to a game's events.
func (c *Client) SubscribeGame(gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn == nil {
		return fmt.Errorf("websocket not connected")
	}
	return c.wsConn.WriteJSON(map[string]string{"action": "subscribe", "game_id": gameID})
}

// Events returns the channel of incoming events. Closed when the read loop
// exits.
func (c *Client) Events() <-chan Event { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop(conn *websocket.Conn) {
	defer close(c.events)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				c.log.Debug().Err(err).Msg("ws read error")
			}
			return
		}
		var event Event
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}
		c.events <- event
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, body)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	req.Header.Set("Authorization", "Bearer "+c.token)
}
