package handler

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"gowa-blast/internal/model"
	"gowa-blast/internal/service"
	"gowa-blast/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict allowed origins in production
		return true
	},
}

// WebSocketHandler serves GET /ws: a firehose of every session's
// events.
func WebSocketHandler(hub *ws.Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return err
		}

		client := ws.NewClient(hub, conn)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()

		return nil
	}
}

// ListenSession serves GET /ws/:sessionId: join one session's topic.
// Late joiners immediately get a replay of the current status (and the
// QR artifact while pairing), so a page refresh never loses state.
func ListenSession(hub *ws.Hub, reg *service.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		sessionID := c.Param("sessionId")
		if sessionID == "" {
			return ErrorResponse(c, http.StatusBadRequest, "sessionId is required")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return err
		}

		client := ws.NewClient(hub, conn)
		client.SessionID = sessionID
		hub.Register(client)

		if sess, ok := reg.Get(sessionID); ok {
			info := sess.Snapshot()
			client.Enqueue(ws.NewStatusEvent(sessionID, info.Status, info.LastError))
			if qr := sess.QR(); qr != "" && info.Status == model.StatusQRReady {
				client.Enqueue(ws.NewQREvent(sessionID, qr))
			}
		}

		go client.WritePump()
		go client.ReadPump()

		return nil
	}
}
