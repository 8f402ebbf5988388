// Package realtime listens to the backend's websocket feed and dispatches
// {type, data} events to registered handlers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/threadswap/storefront/internal/api"
)

const DefaultReconnectDelay = 3 * time.Second

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("realtime: client closed")

// Event is one frame on the feed.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type HandlerFunc func(data json.RawMessage)

type Client struct {
	url    string
	tokens api.TokenSource
	dialer *websocket.Dialer
	delay  time.Duration
	log    *slog.Logger

	mu       sync.Mutex
	handlers map[string][]HandlerFunc
	conn     *websocket.Conn
	closed   bool
	done     chan struct{}
}

// New returns a client for socketURL. Nothing is dialled until Run.
func New(socketURL string, tokens api.TokenSource) *Client {
	return &Client{
		url:      socketURL,
		tokens:   tokens,
		dialer:   websocket.DefaultDialer,
		delay:    DefaultReconnectDelay,
		log:      slog.Default().With("component", "realtime"),
		handlers: make(map[string][]HandlerFunc),
		done:     make(chan struct{}),
	}
}

// SetReconnectDelay overrides the pause between connection attempts.
func (c *Client) SetReconnectDelay(d time.Duration) {
	c.delay = d
}

// On registers fn for events of type t.
func (c *Client) On(t string, fn HandlerFunc) {
	c.mu.Lock()
	c.handlers[t] = append(c.handlers[t], fn)
	c.mu.Unlock()
}

// Run connects and reads events until ctx ends or Close is called,
// reconnecting after a fixed delay whenever the connection drops.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.isClosed() {
			return ErrClosed
		}
		c.log.Warn("connection lost", "error", err, "retry_in", c.delay)

		t := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-c.done:
			t.Stop()
			return ErrClosed
		case <-t.C:
		}
	}
}

// Close disconnects and stops Run.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) session(ctx context.Context) error {
	target, header, err := c.endpoint()
	if err != nil {
		return err
	}
	conn, _, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.mu.Unlock()
	c.log.Info("connected", "url", c.url)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil || ev.Type == "" {
			c.log.Debug("skipping malformed frame", "error", err)
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	hs := append([]HandlerFunc(nil), c.handlers[ev.Type]...)
	c.mu.Unlock()
	for _, h := range hs {
		h(ev.Data)
	}
}

// endpoint carries the token both as a bearer header and as ?token= for
// servers that only read the handshake query.
func (c *Client) endpoint() (string, http.Header, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", nil, err
	}
	header := http.Header{}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			q := u.Query()
			q.Set("token", tok)
			u.RawQuery = q.Encode()
			header.Set("Authorization", "Bearer "+tok)
		}
	}
	return u.String(), header, nil
}
