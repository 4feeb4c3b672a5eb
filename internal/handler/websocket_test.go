package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowa-blast/internal/model"
	"gowa-blast/internal/ws"
)

func newWsServer(t *testing.T, env *testEnv, hub *ws.Hub) *httptest.Server {
	t.Helper()
	e := echo.New()
	e.GET("/ws", WebSocketHandler(hub))
	e.GET("/ws/:sessionId", ListenSession(hub, env.reg))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func dialWs(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWsEvent(t *testing.T, conn *websocket.Conn) ws.WsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event ws.WsEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	return event
}

func TestListenSessionReplaysCurrentState(t *testing.T) {
	env := newTestEnv(t)
	hub := ws.NewHub()
	go hub.Run()
	srv := newWsServer(t, env, hub)

	env.reg.Init("s1")
	handle := env.handle(t, "s1")
	handle(model.LifecycleEvent{Kind: model.EventQRIssued, QR: "QR-REPLAY"})

	sess, _ := env.reg.Get("s1")
	require.Eventually(t, func() bool {
		return sess.Status() == model.StatusQRReady
	}, 2*time.Second, 5*time.Millisecond)

	conn := dialWs(t, srv, "/ws/s1")

	// A late joiner first gets the current status, then the pending QR.
	first := readWsEvent(t, conn)
	assert.Equal(t, ws.EventStatus, first.Event)
	data, ok := first.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(model.StatusQRReady), data["status"])

	second := readWsEvent(t, conn)
	assert.Equal(t, ws.EventQR, second.Event)
	qrData, ok := second.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "QR-REPLAY", qrData["qr"])
}

func TestListenSessionUnknownSessionStillSubscribes(t *testing.T) {
	env := newTestEnv(t)
	hub := ws.NewHub()
	go hub.Run()
	srv := newWsServer(t, env, hub)

	conn := dialWs(t, srv, "/ws/ghost")

	// No replay for unknown ids, but live events still arrive.
	time.Sleep(50 * time.Millisecond)
	hub.Publish(ws.NewLogEvent("ghost", "hello", ws.LevelInfo))

	event := readWsEvent(t, conn)
	assert.Equal(t, ws.EventLog, event.Event)
	assert.Equal(t, "ghost", event.SessionID)
}

func TestFirehoseReceivesAllSessions(t *testing.T) {
	env := newTestEnv(t)
	hub := ws.NewHub()
	go hub.Run()
	srv := newWsServer(t, env, hub)

	conn := dialWs(t, srv, "/ws")
	time.Sleep(50 * time.Millisecond)

	hub.Publish(ws.NewLogEvent("a", "one", ws.LevelInfo))
	hub.Publish(ws.NewLogEvent("b", "two", ws.LevelInfo))

	assert.Equal(t, "a", readWsEvent(t, conn).SessionID)
	assert.Equal(t, "b", readWsEvent(t, conn).SessionID)
}
