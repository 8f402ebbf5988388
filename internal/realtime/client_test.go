package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_dispatchesEventsWithToken(t *testing.T) {
	t.Parallel()

	var auth, query atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		query.Store(r.URL.Query().Get("token"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"presence","data":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"listing:updated","data":{"listingId":"l1"}}`))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	c := New(wsURL(srv), staticToken("tok"))
	got := make(chan json.RawMessage, 1)
	c.On("listing:updated", func(data json.RawMessage) { got <- data })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case data := <-got:
		assert.JSONEq(t, `{"listingId":"l1"}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("event not dispatched")
	}
	assert.Equal(t, "Bearer tok", auth.Load())
	assert.Equal(t, "tok", query.Load())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClient_reconnectsAfterDrop(t *testing.T) {
	t.Parallel()

	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if conns.Add(1) == 1 {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"listing:deleted","data":{"id":"l9"}}`))
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	c := New(wsURL(srv), nil)
	c.SetReconnectDelay(10 * time.Millisecond)
	got := make(chan struct{}, 1)
	c.On("listing:deleted", func(json.RawMessage) { got <- struct{}{} })

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("no event after reconnect")
	}
	assert.GreaterOrEqual(t, conns.Load(), int32(2))

	require.NoError(t, c.Close())
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestClient_closeBeforeRun(t *testing.T) {
	t.Parallel()

	c := New("ws://127.0.0.1:1/unused", nil)
	c.SetReconnectDelay(time.Hour)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
