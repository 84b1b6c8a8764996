package websocket

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"HelpBeacon/pkg/geo"
	"HelpBeacon/pkg/sse"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *sse.Hub {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return sse.NewHub(time.Hour, sse.WithLogger(l))
}

func dial(t *testing.T, hub *sse.Hub, sub sse.Subscription) *websocket.Conn {
	t.Helper()
	return dialWithConfig(t, hub, DefaultConfig(), sub)
}

func dialWithConfig(t *testing.T, hub *sse.Hub, cfg *Config, sub sse.Subscription) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub, cfg, w, r, sub)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestWebSocketReceivesHubEvents(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	conn := dial(t, hub, sse.Subscription{Groups: []string{"alert-1"}})

	hub.Publish(sse.Event{Type: sse.EventDirectMessage, Data: map[string]string{"text": "hi"}, Group: "alert-1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, sse.EventDirectMessage, msg.Type)
	assert.Equal(t, "hi", msg.Data["text"])
}

func TestWebSocketPingPong(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	center := geo.Point{Lat: 19.07, Lng: 72.88}
	conn := dial(t, hub, sse.Subscription{Center: &center, RadiusKm: 5})

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypePong, msg.Type)
}

func TestHandleWebSocketLeavesSharedConfigUntouched(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	shared := &Config{ReadBufferSize: DefaultReadBufferSize, WriteBufferSize: DefaultWriteBufferSize}
	conn := dialWithConfig(t, hub, shared, sse.Subscription{Groups: []string{"g"}})

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypePing}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypePong, msg.Type)

	assert.Zero(t, shared.HeartbeatInterval)
	assert.Zero(t, shared.ConnectionTimeout)
	assert.Zero(t, shared.MaxMessageSize)
}

func TestWebSocketDisconnectRemovesClient(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()
	conn := dial(t, hub, sse.Subscription{Groups: []string{"g"}})

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvWebSocketHeartbeatInterval, "20")
	t.Setenv(EnvWebSocketConnectionTimeout, "10")
	t.Setenv(EnvWebSocketAllowedOriginsList, "https://a.example, https://b.example")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, 20*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 40*time.Second, cfg.ConnectionTimeout, "timeout raised above the heartbeat")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestCheckOrigin(t *testing.T) {
	up := newUpgrader(&Config{AllowedOrigins: []string{"https://a.example"}})
	ok := httptest.NewRequest(http.MethodGet, "/ws", nil)
	ok.Header.Set("Origin", "https://a.example")
	bad := httptest.NewRequest(http.MethodGet, "/ws", nil)
	bad.Header.Set("Origin", "https://evil.example")

	assert.True(t, up.CheckOrigin(ok))
	assert.False(t, up.CheckOrigin(bad))
}
